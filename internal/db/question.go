package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// CreateQuestion persists a Q&A exchange. File references are stored as a
// JSON string because their shape is owned by the answering service.
func CreateQuestion(ctx context.Context, client *Neo4jClient, question *models.Question) (*models.Question, error) {
	question.ID = uuid.New().String()
	question.CreatedAt = time.Now().UTC()

	refs := "null"
	if len(question.FileReferences) > 0 {
		refs = string(question.FileReferences)
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})
			MATCH (u:User {id: $userId})
			CREATE (q:Question {
				id: $id,
				projectId: $projectId,
				userId: $userId,
				question: $question,
				answer: $answer,
				fileReferences: $fileReferences,
				createdAt: $createdAt
			})
			CREATE (p)-[:HAS_QUESTION]->(q)
			CREATE (u)-[:ASKED]->(q)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":             question.ID,
			"projectId":      question.ProjectID,
			"userId":         question.UserID,
			"question":       question.Question,
			"answer":         question.Answer,
			"fileReferences": refs,
			"createdAt":      question.CreatedAt,
		})
		return nil, err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// ListQuestions returns a project's questions newest first, authors attached.
func ListQuestions(ctx context.Context, client *Neo4jClient, projectID string) ([]*models.Question, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})-[:HAS_QUESTION]->(q:Question)
			OPTIONAL MATCH (u:User)-[:ASKED]->(q)
			RETURN q.id AS qid, q.projectId AS projectId, q.userId AS userId,
			       q.question AS question, q.answer AS answer,
			       q.fileReferences AS fileReferences, q.createdAt AS qCreatedAt,
			       u.id AS id, u.email AS email, u.firstName AS firstName,
			       u.lastName AS lastName, u.imageUrl AS imageUrl,
			       u.credits AS credits, u.createdAt AS createdAt
			ORDER BY q.createdAt DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}

		var questions []*models.Question
		for records.Next(ctx) {
			rec := records.Record()
			q := &models.Question{}

			if v, ok := rec.Get("qid"); ok && v != nil {
				q.ID = v.(string)
			}
			if v, ok := rec.Get("projectId"); ok && v != nil {
				q.ProjectID = v.(string)
			}
			if v, ok := rec.Get("userId"); ok && v != nil {
				q.UserID = v.(string)
			}
			if v, ok := rec.Get("question"); ok && v != nil {
				q.Question = v.(string)
			}
			if v, ok := rec.Get("answer"); ok && v != nil {
				q.Answer = v.(string)
			}
			if v, ok := rec.Get("fileReferences"); ok && v != nil {
				if s, ok := v.(string); ok && s != "" && s != "null" && json.Valid([]byte(s)) {
					q.FileReferences = json.RawMessage(s)
				}
			}
			if v, ok := rec.Get("qCreatedAt"); ok && v != nil {
				if t, ok := v.(time.Time); ok {
					q.CreatedAt = t
				}
			}
			if v, ok := rec.Get("id"); ok && v != nil {
				q.User = recordToUser(rec)
			}

			questions = append(questions, q)
		}
		return questions, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.Question{}, nil
	}
	return result.([]*models.Question), nil
}
