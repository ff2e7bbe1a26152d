package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// SaveCommits upserts polled commits keyed by (projectId, sha), so repeated
// polls of the same history are no-ops.
func SaveCommits(ctx context.Context, client *Neo4jClient, projectID string, commits []*models.Commit) error {
	if len(commits) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, map[string]any{
			"id":           uuid.New().String(),
			"sha":          c.SHA,
			"message":      c.Message,
			"authorName":   c.AuthorName,
			"authorAvatar": c.AuthorAvatar,
			"committedAt":  c.CommittedAt.UTC(),
		})
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})
			UNWIND $rows AS row
			MERGE (c:Commit {projectId: $projectId, sha: row.sha})
			ON CREATE SET c.id = row.id,
			              c.message = row.message,
			              c.authorName = row.authorName,
			              c.authorAvatar = row.authorAvatar,
			              c.committedAt = row.committedAt
			MERGE (p)-[:HAS_COMMIT]->(c)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"projectId": projectID,
			"rows":      rows,
		})
		return nil, err
	})
	return err
}

// ListCommits returns a project's stored commits newest first.
func ListCommits(ctx context.Context, client *Neo4jClient, projectID string) ([]*models.Commit, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})-[:HAS_COMMIT]->(c:Commit)
			RETURN c.id AS id, c.sha AS sha, c.message AS message,
			       c.authorName AS authorName, c.authorAvatar AS authorAvatar,
			       c.committedAt AS committedAt
			ORDER BY c.committedAt DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}

		var commits []*models.Commit
		for records.Next(ctx) {
			rec := records.Record()
			c := &models.Commit{ProjectID: projectID}

			if v, ok := rec.Get("id"); ok && v != nil {
				c.ID = v.(string)
			}
			if v, ok := rec.Get("sha"); ok && v != nil {
				c.SHA = v.(string)
			}
			if v, ok := rec.Get("message"); ok && v != nil {
				c.Message = v.(string)
			}
			if v, ok := rec.Get("authorName"); ok && v != nil {
				c.AuthorName = v.(string)
			}
			if v, ok := rec.Get("authorAvatar"); ok && v != nil {
				c.AuthorAvatar = v.(string)
			}
			if v, ok := rec.Get("committedAt"); ok && v != nil {
				if t, ok := v.(time.Time); ok {
					c.CommittedAt = t
				}
			}
			commits = append(commits, c)
		}
		return commits, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.Commit{}, nil
	}
	return result.([]*models.Commit), nil
}
