package api

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/models"
)

// UploadMeeting registers an uploaded recording. The meeting starts in
// PROCESSING; transcription happens elsewhere and flips the status later.
func (h *Handler) UploadMeeting(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}

	var input models.UploadMeetingInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Name == "" || input.MeetingURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and meetingUrl are required"})
	}

	meeting, err := db.CreateMeeting(c.Context(), h.dbClient, &models.Meeting{
		ProjectID:  projectID,
		Name:       input.Name,
		MeetingURL: input.MeetingURL,
		Status:     models.MeetingProcessing,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(meeting)
}

// GetMeetings lists a project's meetings with their issues.
func (h *Handler) GetMeetings(c fiber.Ctx) error {
	projectID := c.Params("id")
	if err := h.requireMember(c, projectID); err != nil {
		return fail(c, err)
	}
	meetings, err := db.ListMeetings(c.Context(), h.dbClient, projectID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(meetings)
}

// GetMeetingByID returns one meeting. Membership is checked against the
// meeting's own project, since the route is not project-scoped.
func (h *Handler) GetMeetingByID(c fiber.Ctx) error {
	meeting, err := h.authorizedMeeting(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(meeting)
}

// DeleteMeeting removes a meeting and its extracted issues.
func (h *Handler) DeleteMeeting(c fiber.Ctx) error {
	meeting, err := h.authorizedMeeting(c)
	if err != nil {
		return fail(c, err)
	}
	if err := db.DeleteMeeting(c.Context(), h.dbClient, meeting.ID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) authorizedMeeting(c fiber.Ctx) (*models.Meeting, error) {
	meeting, err := db.GetMeeting(c.Context(), h.dbClient, c.Params("meetingId"))
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("%w: meeting", models.ErrNotFound)
	}
	if err := h.requireMember(c, meeting.ProjectID); err != nil {
		return nil, err
	}
	return meeting, nil
}
