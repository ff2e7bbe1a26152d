package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"github.com/trackhub/backend/internal/agent"
	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/models"
)

// searchLimit caps how many retrieval hits ground an answer.
const searchLimit = 8

// AskQuestion answers a question over the indexed codebase: embed the
// question, retrieve the nearest declarations, hand both to the agent.
// Nothing is persisted; saving is the client's explicit follow-up call.
func (h *Handler) AskQuestion(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	var input models.AskInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question is required"})
	}

	embeddings, err := h.teiClient.Embed(c.Context(), []string{input.Question})
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "embedding service unavailable"})
	}

	hits, err := h.retriever.VectorSearch(c.Context(), projectID, embeddings[0], searchLimit)
	if err != nil {
		return fail(c, err)
	}

	snippets := make([]agent.Snippet, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, agent.Snippet{
			FileName: hit.FilePath,
			Summary:  hit.Summary,
		})
	}

	answer, err := h.agentProxy.Answer(c.Context(), input.Question, snippets)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "answer service unavailable"})
	}

	refs, err := json.Marshal(hits)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(models.AskResult{
		Answer:         answer,
		FileReferences: refs,
	})
}

// SaveAnswer persists a Q&A exchange the user chose to keep.
func (h *Handler) SaveAnswer(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	var input models.SaveAnswerInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Question == "" || input.Answer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "question and answer are required"})
	}

	question, err := db.CreateQuestion(c.Context(), h.dbClient, &models.Question{
		ProjectID:      projectID,
		UserID:         userID(c),
		Question:       input.Question,
		Answer:         input.Answer,
		FileReferences: input.FileReferences,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

// GetQuestions returns a project's saved questions, newest first, with the
// asking user attached.
func (h *Handler) GetQuestions(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	questions, err := db.ListQuestions(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(questions)
}
