package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v61/github"

	"github.com/trackhub/backend/internal/models"
)

// ListBranches returns all branch names of a repository.
func (c *Client) ListBranches(ctx context.Context, owner, repo string) ([]string, error) {
	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		branches, resp, err := c.gh.Repositories.ListBranches(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapListError(err)
		}
		for _, b := range branches {
			if b.Name != nil {
				names = append(names, *b.Name)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// mapListError maps read-path failures: 401 means the token is bad, 403 is
// rate limiting, everything else is an opaque upstream problem.
func mapListError(err error) error {
	switch httpStatus(err) {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", models.ErrAuthenticationFailed, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", models.ErrRateLimited, err)
	default:
		return fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
}
