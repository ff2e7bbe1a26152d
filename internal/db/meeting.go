package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// CreateMeeting stores a new meeting in PROCESSING state. Transcription and
// issue extraction happen in a separate worker that flips the status.
func CreateMeeting(ctx context.Context, client *Neo4jClient, meeting *models.Meeting) (*models.Meeting, error) {
	meeting.ID = uuid.New().String()
	meeting.Status = models.MeetingProcessing
	meeting.CreatedAt = time.Now().UTC()
	if meeting.Issues == nil {
		meeting.Issues = []models.Issue{}
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})
			CREATE (m:Meeting {
				id: $id,
				projectId: $projectId,
				name: $name,
				meetingUrl: $meetingUrl,
				status: $status,
				createdAt: $createdAt
			})
			CREATE (p)-[:HAS_MEETING]->(m)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":         meeting.ID,
			"projectId":  meeting.ProjectID,
			"name":       meeting.Name,
			"meetingUrl": meeting.MeetingURL,
			"status":     string(meeting.Status),
			"createdAt":  meeting.CreatedAt,
		})
		return nil, err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return meeting, nil
}

// GetMeeting returns a meeting with its issues, or nil when missing.
func GetMeeting(ctx context.Context, client *Neo4jClient, id string) (*models.Meeting, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (m:Meeting {id: $id})
			OPTIONAL MATCH (m)-[:HAS_ISSUE]->(i:Issue)
			WITH m, i ORDER BY i.start
			WITH m, collect({
				id: i.id, start: i.start, end: i.end,
				gist: i.gist, headline: i.headline, summary: i.summary
			}) AS issues
			RETURN m.id AS id, m.projectId AS projectId, m.name AS name,
			       m.meetingUrl AS meetingUrl, m.status AS status,
			       m.createdAt AS createdAt, issues
		`
		records, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if records.Next(ctx) {
			return recordToMeeting(records.Record()), nil
		}
		return nil, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*models.Meeting), nil
}

// ListMeetings returns a project's meetings with issues, newest first.
func ListMeetings(ctx context.Context, client *Neo4jClient, projectID string) ([]*models.Meeting, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})-[:HAS_MEETING]->(m:Meeting)
			OPTIONAL MATCH (m)-[:HAS_ISSUE]->(i:Issue)
			WITH m, i ORDER BY i.start
			WITH m, collect({
				id: i.id, start: i.start, end: i.end,
				gist: i.gist, headline: i.headline, summary: i.summary
			}) AS issues
			RETURN m.id AS id, m.projectId AS projectId, m.name AS name,
			       m.meetingUrl AS meetingUrl, m.status AS status,
			       m.createdAt AS createdAt, issues
			ORDER BY m.createdAt DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}

		var meetings []*models.Meeting
		for records.Next(ctx) {
			meetings = append(meetings, recordToMeeting(records.Record()))
		}
		return meetings, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.Meeting{}, nil
	}
	return result.([]*models.Meeting), nil
}

// DeleteMeeting removes a meeting and its issues.
func DeleteMeeting(ctx context.Context, client *Neo4jClient, id string) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (m:Meeting {id: $id})
			OPTIONAL MATCH (m)-[:HAS_ISSUE]->(i:Issue)
			DETACH DELETE i, m
		`
		_, err := tx.Run(ctx, query, map[string]any{"id": id})
		return nil, err
	})
	return err
}

func recordToMeeting(record *neo4j.Record) *models.Meeting {
	meeting := &models.Meeting{Issues: []models.Issue{}}

	if v, ok := record.Get("id"); ok && v != nil {
		meeting.ID = v.(string)
	}
	if v, ok := record.Get("projectId"); ok && v != nil {
		meeting.ProjectID = v.(string)
	}
	if v, ok := record.Get("name"); ok && v != nil {
		meeting.Name = v.(string)
	}
	if v, ok := record.Get("meetingUrl"); ok && v != nil {
		meeting.MeetingURL = v.(string)
	}
	if v, ok := record.Get("status"); ok && v != nil {
		meeting.Status = models.MeetingStatus(v.(string))
	}
	if v, ok := record.Get("createdAt"); ok && v != nil {
		if t, ok := v.(time.Time); ok {
			meeting.CreatedAt = t
		}
	}
	if v, ok := record.Get("issues"); ok && v != nil {
		for _, raw := range v.([]any) {
			m := raw.(map[string]any)
			// OPTIONAL MATCH yields one all-nil entry when there are no issues
			if m["id"] == nil {
				continue
			}
			issue := models.Issue{ID: m["id"].(string)}
			if s, ok := m["start"].(string); ok {
				issue.Start = s
			}
			if s, ok := m["end"].(string); ok {
				issue.End = s
			}
			if s, ok := m["gist"].(string); ok {
				issue.Gist = s
			}
			if s, ok := m["headline"].(string); ok {
				issue.Headline = s
			}
			if s, ok := m["summary"].(string); ok {
				issue.Summary = s
			}
			meeting.Issues = append(meeting.Issues, issue)
		}
	}

	return meeting
}
