package github

import (
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// OAuthConfig builds the authorization-code flow config used to obtain a
// repo-scoped token that gets persisted on the project.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"repo"},
		Endpoint:     githuboauth.Endpoint,
	}
}
