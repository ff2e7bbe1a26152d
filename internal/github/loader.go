package github

import (
	"context"
	"time"

	"github.com/google/go-github/v61/github"

	"github.com/trackhub/backend/internal/models"
)

// pollLimit bounds how much history one poll pulls in.
const pollLimit = 15

// CountFiles walks the repository's default branch tree and returns the
// number of blobs. The count doubles as the price of indexing, in credits.
func (c *Client) CountFiles(ctx context.Context, owner, repo string) (int, error) {
	repoInfo, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return 0, mapListError(err)
	}

	branch := repoInfo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	// The trees endpoint accepts a ref name in place of a tree SHA, so one
	// recursive call covers the whole branch.
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, branch, true)
	if err != nil {
		return 0, mapListError(err)
	}

	count := 0
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			count++
		}
	}
	return count, nil
}

// ListRecentCommits returns the newest commits of the default branch, mapped
// into our commit records.
func (c *Client) ListRecentCommits(ctx context.Context, owner, repo string) ([]*models.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: pollLimit},
	}
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, mapListError(err)
	}

	out := make([]*models.Commit, 0, len(commits))
	for _, rc := range commits {
		commit := &models.Commit{
			SHA:     rc.GetSHA(),
			Message: rc.GetCommit().GetMessage(),
		}
		if author := rc.GetCommit().GetAuthor(); author != nil {
			commit.AuthorName = author.GetName()
			if !author.GetDate().IsZero() {
				commit.CommittedAt = author.GetDate().Time
			}
		}
		if rc.Author != nil {
			commit.AuthorAvatar = rc.Author.GetAvatarURL()
			if commit.AuthorName == "" {
				commit.AuthorName = rc.Author.GetLogin()
			}
		}
		if commit.CommittedAt.IsZero() {
			commit.CommittedAt = time.Now().UTC()
		}
		out = append(out, commit)
	}
	return out, nil
}
