package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trackhub/backend/internal/models"
)

// IndexWriter persists one indexing run under a project.
type IndexWriter struct {
	client *Neo4jClient
}

func NewIndexWriter(client *Neo4jClient) *IndexWriter {
	return &IndexWriter{client: client}
}

// WriteIndexResult replaces the project's indexed graph with a fresh run and
// flips indexStatus to ready.
func (w *IndexWriter) WriteIndexResult(ctx context.Context, result *models.IndexResult) error {
	if err := w.ClearProjectIndex(ctx, result.ProjectID); err != nil {
		return fmt.Errorf("failed to clear previous index: %w", err)
	}

	for _, file := range result.Files {
		if err := w.writeFile(ctx, file); err != nil {
			return fmt.Errorf("failed to write file %s: %w", file.Path, err)
		}
	}

	// Entities are batched per file path to keep transactions small.
	byFile := map[string][]models.CodeEntity{}
	for _, e := range result.Entities {
		byFile[e.FilePath] = append(byFile[e.FilePath], e)
	}
	for path, entities := range byFile {
		if err := w.writeEntities(ctx, result.ProjectID, path, entities); err != nil {
			return fmt.Errorf("failed to write entities for %s: %w", path, err)
		}
	}

	return w.finishIndex(ctx, result.ProjectID, len(result.Files), result.EntitiesFound)
}

func (w *IndexWriter) writeFile(ctx context.Context, file *models.SourceFile) error {
	file.ID = uuid.New().String()

	_, err := w.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})
			MERGE (f:File {projectId: $projectId, path: $path})
			SET f.id = $id,
			    f.language = $language,
			    f.size = $size
			MERGE (p)-[:CONTAINS]->(f)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":        file.ID,
			"projectId": file.ProjectID,
			"path":      file.Path,
			"language":  file.Language,
			"size":      file.Size,
		})
		return nil, err
	})
	return err
}

func (w *IndexWriter) writeEntities(ctx context.Context, projectID, path string, entities []models.CodeEntity) error {
	rows := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		row := map[string]any{
			"id":        uuid.New().String(),
			"kind":      e.Kind,
			"name":      e.Name,
			"summary":   e.Summary,
			"startLine": e.StartLine,
			"endLine":   e.EndLine,
		}
		if len(e.Embedding) > 0 {
			row["embedding"] = e.Embedding
		} else {
			row["embedding"] = nil
		}
		rows = append(rows, row)
	}

	_, err := w.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (f:File {projectId: $projectId, path: $path})
			UNWIND $rows AS row
			CREATE (e:Entity {
				id: row.id,
				projectId: $projectId,
				filePath: $path,
				kind: row.kind,
				name: row.name,
				summary: row.summary,
				startLine: row.startLine,
				endLine: row.endLine
			})
			SET e.embedding = row.embedding
			CREATE (f)-[:DECLARES]->(e)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"projectId": projectID,
			"path":      path,
			"rows":      rows,
		})
		return nil, err
	})
	return err
}

func (w *IndexWriter) finishIndex(ctx context.Context, projectID string, filesCount, entitiesCount int) error {
	_, err := w.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			SET p.filesCount = $filesCount,
			    p.entitiesCount = $entitiesCount,
			    p.indexStatus = 'ready'
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":            projectID,
			"filesCount":    filesCount,
			"entitiesCount": entitiesCount,
		})
		return nil, err
	})
	return err
}

// ClearProjectIndex removes all indexed files and entities for a project.
func (w *IndexWriter) ClearProjectIndex(ctx context.Context, projectID string) error {
	_, err := w.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $id})
			OPTIONAL MATCH (p)-[:CONTAINS]->(f:File)
			OPTIONAL MATCH (f)-[:DECLARES]->(e:Entity)
			DETACH DELETE e, f
		`
		_, err := tx.Run(ctx, query, map[string]any{"id": projectID})
		return nil, err
	})
	return err
}
