package db

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Retriever reads the indexed code graph: file tree for the UI, vector
// search for Q&A context.
type Retriever struct {
	client *Neo4jClient
}

func NewRetriever(client *Neo4jClient) *Retriever {
	return &Retriever{client: client}
}

type FileNode struct {
	ID       string      `json:"id"`
	Path     string      `json:"path"`
	Language string      `json:"language"`
	Entities []EntityRef `json:"entities"`
}

type EntityRef struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// SearchResult is one retrieval hit for a Q&A query.
type SearchResult struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Summary  string  `json:"summary"`
	FilePath string  `json:"fileName"`
	Score    float64 `json:"score"`
}

// GetFileTree returns all indexed files of a project with their declarations.
func (r *Retriever) GetFileTree(ctx context.Context, projectID string) ([]FileNode, error) {
	result, err := r.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (p:Project {id: $projectId})-[:CONTAINS]->(f:File)
			OPTIONAL MATCH (f)-[:DECLARES]->(e:Entity)
			WITH f, e
			ORDER BY e.startLine
			WITH f, collect({
				id: e.id,
				kind: e.kind,
				name: e.name,
				startLine: e.startLine,
				endLine: e.endLine
			}) AS entities
			RETURN f.id AS id, f.path AS path, f.language AS language, entities
			ORDER BY f.path
		`
		records, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}

		var files []FileNode
		for records.Next(ctx) {
			rec := records.Record()

			id, _ := rec.Get("id")
			path, _ := rec.Get("path")
			language, _ := rec.Get("language")
			entitiesRaw, _ := rec.Get("entities")

			file := FileNode{
				ID:       id.(string),
				Path:     path.(string),
				Language: language.(string),
				Entities: []EntityRef{},
			}

			if entitiesRaw != nil {
				for _, raw := range entitiesRaw.([]any) {
					m := raw.(map[string]any)
					// nil entries come from OPTIONAL MATCH on empty files
					if m["id"] == nil {
						continue
					}
					file.Entities = append(file.Entities, EntityRef{
						ID:        m["id"].(string),
						Kind:      m["kind"].(string),
						Name:      m["name"].(string),
						StartLine: int(m["startLine"].(int64)),
						EndLine:   int(m["endLine"].(int64)),
					})
				}
			}

			files = append(files, file)
		}

		if err := records.Err(); err != nil {
			return nil, err
		}
		return files, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []FileNode{}, nil
	}
	return result.([]FileNode), nil
}

// VectorSearch returns the project's entities closest to the query
// embedding, best match first.
func (r *Retriever) VectorSearch(ctx context.Context, projectID string, embedding []float32, limit int) ([]SearchResult, error) {
	result, err := r.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			CALL db.index.vector.queryNodes('entity_embeddings', $limit, $embedding)
			YIELD node, score
			WHERE node.projectId = $projectId
			RETURN node.id AS id, node.name AS name, node.kind AS kind,
			       node.summary AS summary, node.filePath AS filePath, score
			ORDER BY score DESC
		`
		records, err := tx.Run(ctx, query, map[string]any{
			"projectId": projectID,
			"embedding": embedding,
			"limit":     limit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to run vector search query: %w", err)
		}

		var results []SearchResult
		for records.Next(ctx) {
			rec := records.Record()
			res := SearchResult{}

			if v, ok := rec.Get("id"); ok && v != nil {
				res.ID = v.(string)
			}
			if v, ok := rec.Get("name"); ok && v != nil {
				res.Name = v.(string)
			}
			if v, ok := rec.Get("kind"); ok && v != nil {
				res.Kind = v.(string)
			}
			if v, ok := rec.Get("summary"); ok && v != nil {
				res.Summary = v.(string)
			}
			if v, ok := rec.Get("filePath"); ok && v != nil {
				res.FilePath = v.(string)
			}
			if v, ok := rec.Get("score"); ok && v != nil {
				res.Score = v.(float64)
			}
			results = append(results, res)
		}
		return results, records.Err()
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return []SearchResult{}, nil
	}
	return result.([]SearchResult), nil
}
