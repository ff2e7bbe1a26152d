package api

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/github"
	"github.com/trackhub/backend/internal/models"
)

// GetBranches lists the branches of a project's repository.
func (h *Handler) GetBranches(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	project, err := db.GetProject(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	if project == nil || project.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repository URL not configured"})
	}

	// URL validation happens before any remote call.
	owner, repo, err := github.ParseRepoURL(project.RepoURL)
	if err != nil {
		return fail(c, err)
	}

	token, _ := github.ResolveToken(project.GithubToken, h.cfg.GithubAccessToken)
	gh := github.NewClient(c.Context(), token)

	branches, err := gh.ListBranches(c.Context(), owner, repo)
	if err != nil {
		return fail(c, err)
	}
	if branches == nil {
		branches = []string{}
	}
	return c.JSON(branches)
}

// CommitToRepo pushes a multi-file commit onto a branch of the project's
// repository.
func (h *Handler) CommitToRepo(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	var input models.CommitToRepoInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Branch == "" || input.Message == "" || len(input.Files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "branch, message and files are required"})
	}
	for _, f := range input.Files {
		if f.Path == "" || f.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "every file needs a path and content"})
		}
	}

	project, err := db.GetProject(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	if project == nil || project.RepoURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "repository URL not configured"})
	}

	owner, repo, err := github.ParseRepoURL(project.RepoURL)
	if err != nil {
		return fail(c, err)
	}

	// Writes need a real credential; there is no anonymous fallback here.
	token, err := github.ResolveToken(project.GithubToken, h.cfg.GithubAccessToken)
	if err != nil {
		return fail(c, err)
	}
	gh := github.NewClient(c.Context(), token)

	sha, err := gh.CommitFiles(c.Context(), owner, repo, input.Branch, input.Message, input.Files)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"commitSha": sha})
}

// GetCommits returns the stored commit history, refreshing it from GitHub
// in the background on every read.
func (h *Handler) GetCommits(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	go h.pollCommits(projectID)

	commits, err := db.ListCommits(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(commits)
}

type oauthState struct {
	ProjectID string `json:"projectId"`
}

// OAuthStart redirects the browser into GitHub's authorization flow. The
// project id rides along in the state parameter.
func (h *Handler) OAuthStart(c fiber.Ctx) error {
	projectID := c.Query("projectId")
	if projectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "projectId is required"})
	}
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	state, err := json.Marshal(oauthState{ProjectID: projectID})
	if err != nil {
		return fail(c, err)
	}

	cfg := github.OAuthConfig(h.cfg.GithubClientID, h.cfg.GithubClientSecret, h.cfg.OAuthRedirectURL)
	return c.Redirect().To(cfg.AuthCodeURL(string(state)))
}

// OAuthCallback exchanges the authorization code and persists the access
// token on the project. The code itself is the proof of authorization; the
// browser arrives here without our bearer token.
func (h *Handler) OAuthCallback(c fiber.Ctx) error {
	code := c.Query("code")
	var state oauthState
	if err := json.Unmarshal([]byte(c.Query("state")), &state); err != nil || code == "" || state.ProjectID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid OAuth callback"})
	}

	project, err := db.GetProject(c.Context(), h.dbClient, state.ProjectID)
	if err != nil {
		return fail(c, err)
	}
	if project == nil {
		return fail(c, fmt.Errorf("%w: project", models.ErrNotFound))
	}

	cfg := github.OAuthConfig(h.cfg.GithubClientID, h.cfg.GithubClientSecret, h.cfg.OAuthRedirectURL)
	token, err := cfg.Exchange(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "OAuth exchange failed"})
	}

	if err := db.SetProjectToken(c.Context(), h.dbClient, project.ID, token.AccessToken); err != nil {
		return fail(c, err)
	}

	return c.Redirect().To(h.cfg.OAuthFinishURL)
}
