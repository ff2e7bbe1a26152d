package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/trackhub/backend/internal/agent"
	"github.com/trackhub/backend/internal/billing"
	"github.com/trackhub/backend/internal/config"
	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/embedding"
	"github.com/trackhub/backend/internal/git"
	"github.com/trackhub/backend/internal/indexer"
	"github.com/trackhub/backend/internal/models"
)

type Handler struct {
	cfg        *config.Config
	dbClient   *db.Neo4jClient
	pipeline   *indexer.Pipeline
	retriever  *db.Retriever
	teiClient  *embedding.TEIClient
	agentProxy *agent.AgentProxy
	billingSvc *billing.Service
}

func NewHandler(cfg *config.Config, dbClient *db.Neo4jClient) *Handler {
	gitSvc := git.NewGitService(cfg.ReposPath)
	teiClient := embedding.NewTEIClient(cfg.TEIURL)

	return &Handler{
		cfg:        cfg,
		dbClient:   dbClient,
		pipeline:   indexer.NewPipeline(dbClient, gitSvc, teiClient),
		retriever:  db.NewRetriever(dbClient),
		teiClient:  teiClient,
		agentProxy: agent.NewAgentProxy(cfg.AgentURL),
		billingSvc: billing.NewService(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.CheckoutSuccessURL,
			CancelURL:     cfg.CheckoutCancelURL,
		}),
	}
}

func (h *Handler) Close() {
	h.pipeline.Close()
}

// fail turns a domain error into the HTTP response; the message string is
// what the UI shows.
func fail(c fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInvalidRepository):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientCredits):
		return fiber.StatusPaymentRequired
	case errors.Is(err, models.ErrNoToken):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrAuthenticationFailed):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden), errors.Is(err, models.ErrRateLimited):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrBranchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrCommitFailed), errors.Is(err, models.ErrUpstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// requireMember is the authorization gate for project-scoped calls. A
// missing project and a missing membership fail identically so callers
// cannot probe which projects exist.
func (h *Handler) requireMember(c fiber.Ctx, projectID string) error {
	ok, err := db.IsMember(c.Context(), h.dbClient, userID(c), projectID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrUnauthorized
	}
	return nil
}
