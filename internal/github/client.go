package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"

	"github.com/trackhub/backend/internal/models"
)

// Client wraps the GitHub REST API for one resolved credential.
type Client struct {
	gh *github.Client
}

// NewClient builds a client authenticated with the given token. An empty
// token yields an unauthenticated client, good enough for public repos.
func NewClient(ctx context.Context, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		))
	}
	return &Client{gh: github.NewClient(httpClient)}
}

// NewClientWithBase points the client at a different API root. Tests use it
// to talk to a local fake server.
func NewClientWithBase(httpClient *http.Client, baseURL string) (*Client, error) {
	gh, err := github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{gh: gh}, nil
}

// ResolveToken picks the usable credential: the project's own token first,
// then the server-wide fallback.
func ResolveToken(projectToken, serverToken string) (string, error) {
	if projectToken != "" {
		return projectToken, nil
	}
	if serverToken != "" {
		return serverToken, nil
	}
	return "", models.ErrNoToken
}

// httpStatus extracts the upstream status code from a go-github error, or 0
// when the failure never reached GitHub (network, context cancellation).
func httpStatus(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return http.StatusForbidden
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return http.StatusForbidden
	}
	return 0
}
