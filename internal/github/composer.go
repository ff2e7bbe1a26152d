package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/google/go-github/v61/github"

	"github.com/trackhub/backend/internal/models"
)

// maxCommitAttempts bounds retries when the branch ref moves mid-sequence.
const maxCommitAttempts = 3

// errRefMoved marks a concurrent writer advancing the ref between head
// resolution and the final ref update. The only failure worth retrying.
var errRefMoved = errors.New("branch ref moved during commit")

// CommitFiles emulates an atomic multi-file commit with the Git data API:
// resolve the branch head, layer the changed blobs onto the head's tree,
// create a single-parent commit, then fast-forward the ref. Nothing is
// written locally and partial failures leave only unreferenced objects on
// the host, which it garbage-collects. The ref update is the sole
// concurrency guard; a lost race is retried from a freshly resolved head.
func (c *Client) CommitFiles(ctx context.Context, owner, repo, branch, message string, files []models.CommitFile) (string, error) {
	sha, err := retry.DoWithData(
		func() (string, error) {
			return c.commitOnce(ctx, owner, repo, branch, message, files)
		},
		retry.Context(ctx),
		retry.Attempts(maxCommitAttempts),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errRefMoved)
		}),
	)
	if err != nil {
		if errors.Is(err, errRefMoved) {
			return "", fmt.Errorf("%w: %v", models.ErrCommitFailed, err)
		}
		return "", err
	}
	return sha, nil
}

func (c *Client) commitOnce(ctx context.Context, owner, repo, branch, message string, files []models.CommitFile) (string, error) {
	ref, _, err := c.gh.Git.GetRef(ctx, owner, repo, "heads/"+branch)
	if err != nil {
		return "", mapCommitError(err)
	}
	baseCommitSHA := ref.GetObject().GetSHA()

	baseCommit, _, err := c.gh.Git.GetCommit(ctx, owner, repo, baseCommitSHA)
	if err != nil {
		return "", mapCommitError(err)
	}
	baseTreeSHA := baseCommit.GetTree().GetSHA()

	// Only the changed paths are listed; base_tree makes the host supply
	// every untouched path, so the full tree never crosses the wire.
	entries := make([]*github.TreeEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, &github.TreeEntry{
			Path:    github.String(f.Path),
			Mode:    github.String("100644"),
			Type:    github.String("blob"),
			Content: github.String(f.Content),
		})
	}

	newTree, _, err := c.gh.Git.CreateTree(ctx, owner, repo, baseTreeSHA, entries)
	if err != nil {
		return "", mapCommitError(err)
	}

	commit := &github.Commit{
		Message: github.String(message),
		Tree:    newTree,
		Parents: []*github.Commit{{SHA: github.String(baseCommitSHA)}},
	}
	newCommit, _, err := c.gh.Git.CreateCommit(ctx, owner, repo, commit, nil)
	if err != nil {
		return "", mapCommitError(err)
	}

	// Fast-forward only, no force. GitHub rejects the update when the ref
	// moved since the head was resolved.
	updated := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: newCommit.SHA},
	}
	if _, _, err := c.gh.Git.UpdateRef(ctx, owner, repo, updated, false); err != nil {
		switch httpStatus(err) {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return "", fmt.Errorf("%w: %v", errRefMoved, err)
		}
		return "", mapCommitError(err)
	}

	return newCommit.GetSHA(), nil
}

// mapCommitError maps write-path failures: 401 means the token expired and
// the caller should re-run OAuth, 403 covers both missing scope and rate
// limiting, 404 is a branch that does not exist.
func mapCommitError(err error) error {
	switch httpStatus(err) {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", models.ErrAuthenticationFailed, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", models.ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", models.ErrBranchNotFound, err)
	default:
		return fmt.Errorf("%w: %v", models.ErrCommitFailed, err)
	}
}
