package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// CreateProject creates the project node, links the creator as a member and
// debits the indexing price, all in one write transaction. The WHERE guard
// on credits makes the debit conditional: of two admissions racing on the
// same balance, at most one matches and wins. No row created means the
// balance moved under us, which surfaces as ErrInsufficientCredits.
func CreateProject(ctx context.Context, client *Neo4jClient, userID string, project *models.Project, fileCount int) (*models.Project, error) {
	project.ID = uuid.New().String()
	project.IndexStatus = "pending"
	project.CreatedAt = time.Now().UTC()

	result, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $userId})
			WHERE u.credits >= $fileCount
			SET u.credits = u.credits - $fileCount
			CREATE (p:Project {
				id: $id,
				name: $name,
				repoUrl: $repoUrl,
				githubToken: $githubToken,
				indexStatus: $indexStatus,
				createdAt: $createdAt
			})
			CREATE (u)-[:MEMBER_OF {createdAt: $createdAt}]->(p)
			RETURN p.id AS id
		`
		records, err := tx.Run(ctx, query, map[string]any{
			"userId":      userID,
			"fileCount":   fileCount,
			"id":          project.ID,
			"name":        project.Name,
			"repoUrl":     project.RepoURL,
			"githubToken": project.GithubToken,
			"indexStatus": project.IndexStatus,
			"createdAt":   project.CreatedAt,
		})
		if err != nil {
			return nil, err
		}
		if !records.Next(ctx) {
			return nil, records.Err()
		}
		return project, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	if result == nil {
		return nil, models.ErrInsufficientCredits
	}
	return result.(*models.Project), nil
}

// GetProject returns the project or nil when missing or soft-deleted.
func GetProject(ctx context.Context, client *Neo4jClient, id string) (*models.Project, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			WHERE p.deletedAt IS NULL
			RETURN p.id AS id, p.name AS name, p.repoUrl AS repoUrl,
			       p.githubToken AS githubToken, p.indexStatus AS indexStatus,
			       p.createdAt AS createdAt
		`
		records, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if records.Next(ctx) {
			return recordToProject(records.Record()), nil
		}
		return nil, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*models.Project), nil
}

// ListProjects returns the caller's projects, soft-deleted ones excluded.
func ListProjects(ctx context.Context, client *Neo4jClient, userID string) ([]*models.Project, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $userId})-[:MEMBER_OF]->(p:Project)
			WHERE p.deletedAt IS NULL
			RETURN p.id AS id, p.name AS name, p.repoUrl AS repoUrl,
			       p.githubToken AS githubToken, p.indexStatus AS indexStatus,
			       p.createdAt AS createdAt
			ORDER BY p.createdAt DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{"userId": userID})
		if err != nil {
			return nil, err
		}

		var projects []*models.Project
		for records.Next(ctx) {
			projects = append(projects, recordToProject(records.Record()))
		}
		return projects, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.Project{}, nil
	}
	return result.([]*models.Project), nil
}

// IsMember is the authorization predicate for every project-scoped call.
// Membership is binary: there are no roles.
func IsMember(ctx context.Context, client *Neo4jClient, userID, projectID string) (bool, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User {id: $userId})-[:MEMBER_OF]->(p:Project {id: $projectId})
			WHERE p.deletedAt IS NULL
			RETURN p.id AS id
		`
		records, err := tx.Run(ctx, query, map[string]any{
			"userId":    userID,
			"projectId": projectID,
		})
		if err != nil {
			return nil, err
		}
		return records.Next(ctx), records.Err()
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// ListTeamMembers returns the memberships of a project with user payloads.
func ListTeamMembers(ctx context.Context, client *Neo4jClient, projectID string) ([]*models.TeamMember, error) {
	result, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (u:User)-[m:MEMBER_OF]->(p:Project {id: $projectId})
			RETURN u.id AS id, u.email AS email, u.firstName AS firstName,
			       u.lastName AS lastName, u.imageUrl AS imageUrl,
			       u.credits AS credits, u.createdAt AS createdAt,
			       m.createdAt AS joinedAt
			ORDER BY m.createdAt
		`
		records, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}

		var members []*models.TeamMember
		for records.Next(ctx) {
			rec := records.Record()
			member := &models.TeamMember{
				ProjectID: projectID,
				User:      recordToUser(rec),
			}
			member.UserID = member.User.ID
			if v, ok := rec.Get("joinedAt"); ok && v != nil {
				if t, ok := v.(time.Time); ok {
					member.JoinedAt = t
				}
			}
			members = append(members, member)
		}
		return members, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []*models.TeamMember{}, nil
	}
	return result.([]*models.TeamMember), nil
}

// SetProjectToken persists the OAuth access token obtained for a project.
func SetProjectToken(ctx context.Context, client *Neo4jClient, projectID, token string) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			SET p.githubToken = $token
		`
		_, err := tx.Run(ctx, query, map[string]any{"id": projectID, "token": token})
		return nil, err
	})
	return err
}

// SetIndexStatus updates the indexing state machine on the project.
func SetIndexStatus(ctx context.Context, client *Neo4jClient, projectID, status string) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			SET p.indexStatus = $status
		`
		_, err := tx.Run(ctx, query, map[string]any{"id": projectID, "status": status})
		return nil, err
	})
	return err
}

// SoftDeleteProject marks the project deleted. Indexed data and history stay
// in place; listings filter on deletedAt.
func SoftDeleteProject(ctx context.Context, client *Neo4jClient, projectID string) error {
	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			SET p.deletedAt = $now
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":  projectID,
			"now": time.Now().UTC(),
		})
		return nil, err
	})
	return err
}

func recordToProject(record *neo4j.Record) *models.Project {
	project := &models.Project{}

	if v, ok := record.Get("id"); ok && v != nil {
		project.ID = v.(string)
	}
	if v, ok := record.Get("name"); ok && v != nil {
		project.Name = v.(string)
	}
	if v, ok := record.Get("repoUrl"); ok && v != nil {
		project.RepoURL = v.(string)
	}
	if v, ok := record.Get("githubToken"); ok && v != nil {
		project.GithubToken = v.(string)
	}
	if v, ok := record.Get("indexStatus"); ok && v != nil {
		project.IndexStatus = v.(string)
	}
	if v, ok := record.Get("createdAt"); ok && v != nil {
		if t, ok := v.(time.Time); ok {
			project.CreatedAt = t
		}
	}

	return project
}
