package api

import (
	"github.com/gofiber/fiber/v3"

	"github.com/trackhub/backend/internal/config"
	"github.com/trackhub/backend/internal/db"
)

func SetupRoutes(app *fiber.App, cfg *config.Config, client *db.Neo4jClient, h *Handler) {
	// Called by Stripe and by the browser mid-OAuth; no bearer token here.
	app.Post("/api/billing/webhook", h.StripeWebhook)
	app.Get("/api/github/oauth/callback", h.OAuthCallback)

	api := app.Group("/api", AuthRequired(cfg, client))

	// Credits and billing
	api.Get("/credits", h.GetMyCredits)
	api.Get("/credits/history", h.GetTransactions)
	api.Post("/credits/check", h.CheckCredits)
	api.Post("/billing/checkout", h.CreateCheckout)

	// Projects
	projects := api.Group("/projects")
	projects.Get("/", h.GetProjects)
	projects.Post("/", h.CreateProject)
	projects.Delete("/:id", h.DeleteProject)
	projects.Get("/:id/members", h.GetTeamMembers)
	projects.Get("/:id/files", h.GetProjectFiles)
	projects.Post("/:id/reindex", h.ReindexProject)

	// GitHub integration
	projects.Get("/:id/branches", h.GetBranches)
	projects.Get("/:id/commits", h.GetCommits)
	projects.Post("/:id/commit", h.CommitToRepo)

	// Q&A
	projects.Post("/:id/ask", h.AskQuestion)
	projects.Post("/:id/questions", h.SaveAnswer)
	projects.Get("/:id/questions", h.GetQuestions)

	// Meetings
	projects.Post("/:id/meetings", h.UploadMeeting)
	projects.Get("/:id/meetings", h.GetMeetings)
	api.Get("/meetings/:meetingId", h.GetMeetingByID)
	api.Delete("/meetings/:meetingId", h.DeleteMeeting)

	// OAuth entry point
	api.Get("/github/oauth/start", h.OAuthStart)
}
