package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/github"
	"github.com/trackhub/backend/internal/models"
)

// CreateProject is the admission path: price the repository in credits,
// admit only if the balance covers it, create project + membership + debit
// in one transaction, then kick off polling and indexing in the background.
// The response reflects only the synchronous part.
func (h *Handler) CreateProject(c fiber.Ctx) error {
	var input models.CreateProjectInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	owner, repo, err := github.ParseRepoURL(input.RepoURL)
	if err != nil {
		return fail(c, err)
	}

	user, err := db.GetUser(c.Context(), h.dbClient, userID(c))
	if err != nil {
		return fail(c, err)
	}
	if user == nil {
		return fail(c, fmt.Errorf("%w: user", models.ErrNotFound))
	}

	// Price the job. The same count is the indexing workload later, so
	// there is no separate pricing formula.
	token, _ := github.ResolveToken(input.GithubToken, h.cfg.GithubAccessToken)
	gh := github.NewClient(c.Context(), token)
	fileCount, err := gh.CountFiles(c.Context(), owner, repo)
	if err != nil {
		return fail(c, err)
	}

	if fileCount > user.Credits {
		return fail(c, models.ErrInsufficientCredits)
	}

	project := &models.Project{
		Name:        input.Name,
		RepoURL:     input.RepoURL,
		GithubToken: input.GithubToken,
	}
	project, err = db.CreateProject(c.Context(), h.dbClient, user.ID, project, fileCount)
	if err != nil {
		return fail(c, err)
	}

	// Fire and forget: neither job can fail the admission response.
	go h.pollCommits(project.ID)
	go h.pipeline.IndexRepo(context.Background(), project.ID, project.RepoURL, token)

	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProjects returns the caller's projects.
func (h *Handler) GetProjects(c fiber.Ctx) error {
	projects, err := db.ListProjects(c.Context(), h.dbClient, userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(projects)
}

// DeleteProject soft-deletes a project for all members.
func (h *Handler) DeleteProject(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	if err := db.SoftDeleteProject(c.Context(), h.dbClient, projectID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetTeamMembers returns a project's memberships with user payloads.
func (h *Handler) GetTeamMembers(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	members, err := db.ListTeamMembers(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(members)
}

// GetProjectFiles returns the indexed file tree.
func (h *Handler) GetProjectFiles(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	files, err := h.retriever.GetFileTree(c.Context(), projectID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(files)
}

// ReindexProject re-runs the indexing pipeline.
func (h *Handler) ReindexProject(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	project, err := db.GetProject(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	if project == nil {
		return fail(c, fmt.Errorf("%w: project", models.ErrNotFound))
	}

	token, _ := github.ResolveToken(project.GithubToken, h.cfg.GithubAccessToken)
	go h.pipeline.IndexRepo(context.Background(), project.ID, project.RepoURL, token)

	return c.JSON(fiber.Map{"status": "indexing started"})
}

type checkCreditsInput struct {
	GithubURL   string `json:"githubUrl"`
	GithubToken string `json:"githubToken"`
}

// CheckCredits prices an indexing job without committing to it.
func (h *Handler) CheckCredits(c fiber.Ctx) error {
	var input checkCreditsInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	owner, repo, err := github.ParseRepoURL(input.GithubURL)
	if err != nil {
		return fail(c, err)
	}

	token, err := github.ResolveToken(input.GithubToken, h.cfg.GithubAccessToken)
	if err != nil {
		return fail(c, err)
	}

	gh := github.NewClient(c.Context(), token)
	fileCount, err := gh.CountFiles(c.Context(), owner, repo)
	if err != nil {
		return fail(c, err)
	}

	user, err := db.GetUser(c.Context(), h.dbClient, userID(c))
	if err != nil {
		return fail(c, err)
	}

	credits := 0
	if user != nil {
		credits = user.Credits
	}
	return c.JSON(fiber.Map{
		"fileCount": fileCount,
		"credits":   credits,
	})
}

// GetMyCredits returns the caller's balance.
func (h *Handler) GetMyCredits(c fiber.Ctx) error {
	user, err := db.GetUser(c.Context(), h.dbClient, userID(c))
	if err != nil {
		return fail(c, err)
	}
	if user == nil {
		return fail(c, fmt.Errorf("%w: user", models.ErrNotFound))
	}
	return c.JSON(fiber.Map{"credits": user.Credits})
}

// pollCommits refreshes a project's stored commit history from GitHub.
// Always runs detached; every failure ends in the log.
func (h *Handler) pollCommits(projectID string) {
	ctx := context.Background()

	project, err := db.GetProject(ctx, h.dbClient, projectID)
	if err != nil || project == nil {
		if err == nil {
			err = errors.New("project not found")
		}
		log.Error().Err(err).Str("project_id", projectID).Msg("poll commits: project lookup failed")
		return
	}

	owner, repo, err := github.ParseRepoURL(project.RepoURL)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("poll commits: bad repo URL")
		return
	}

	token, _ := github.ResolveToken(project.GithubToken, h.cfg.GithubAccessToken)
	gh := github.NewClient(ctx, token)

	commits, err := gh.ListRecentCommits(ctx, owner, repo)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("poll commits: listing failed")
		return
	}

	if err := db.SaveCommits(ctx, h.dbClient, projectID, commits); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("poll commits: save failed")
	}
}
