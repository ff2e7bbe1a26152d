package github

import (
	"strings"

	"github.com/trackhub/backend/internal/models"
)

// ParseRepoURL extracts owner and repo from a repository URL: the last two
// path segments, with any .git suffix dropped.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(repoURL, "/"), ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", models.ErrInvalidRepository
	}
	owner = parts[len(parts)-2]
	repo = parts[len(parts)-1]
	if owner == "" || repo == "" || strings.Contains(owner, ":") {
		return "", "", models.ErrInvalidRepository
	}
	return owner, repo, nil
}
