package git

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitService manages shallow working copies used by the indexer.
type GitService struct {
	basePath string
}

func NewGitService(basePath string) *GitService {
	return &GitService{basePath: basePath}
}

// Clone makes a shallow clone of the repository under the base path, keyed
// by project so two projects on the same repo do not share a checkout. An
// existing checkout is updated instead.
func (s *GitService) Clone(ctx context.Context, projectID, repoURL, token string) (string, error) {
	repoPath := filepath.Join(s.basePath, projectID)

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		return repoPath, s.pull(ctx, repoPath)
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create repos directory: %w", err)
	}

	cloneURL, err := authenticatedURL(repoURL, token)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", cloneURL, repoPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git clone failed: %w: %s", err, sanitize(stderr.String(), token))
	}

	return repoPath, nil
}

func (s *GitService) pull(ctx context.Context, repoPath string) error {
	cmd := exec.CommandContext(ctx, "git", "pull", "--ff-only")
	cmd.Dir = repoPath
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git pull failed: %w: %s", err, stderr.String())
	}
	return nil
}

// Remove deletes a project's checkout.
func (s *GitService) Remove(projectID string) error {
	return os.RemoveAll(filepath.Join(s.basePath, projectID))
}

// authenticatedURL injects the access token into an https clone URL so
// private repositories can be fetched without credential helpers.
func authenticatedURL(repoURL, token string) (string, error) {
	if token == "" {
		return repoURL, nil
	}
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("unparseable repository URL %q", repoURL)
	}
	u.User = url.UserPassword("x-access-token", token)
	return u.String(), nil
}

// sanitize keeps tokens out of error messages and logs.
func sanitize(s, token string) string {
	if token == "" {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(strings.ReplaceAll(s, token, "***"))
}

// ExtractRepoName extracts the repository name from a URL.
func ExtractRepoName(url string) string {
	url = strings.TrimSuffix(url, ".git")

	if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
		parts := strings.Split(url, "/")
		return parts[len(parts)-1]
	}

	// SSH form: git@github.com:owner/repo
	if strings.Contains(url, ":") {
		parts := strings.Split(url, ":")
		if len(parts) > 1 {
			pathParts := strings.Split(parts[1], "/")
			return pathParts[len(pathParts)-1]
		}
	}

	return url
}
