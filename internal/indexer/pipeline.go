package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/embedding"
	"github.com/trackhub/backend/internal/git"
	"github.com/trackhub/backend/internal/models"
)

// Pipeline indexes a project's repository: clone, extract declarations,
// embed their summaries, replace the project's code graph.
type Pipeline struct {
	dbClient  *db.Neo4jClient
	gitSvc    *git.GitService
	teiClient *embedding.TEIClient
	writer    *db.IndexWriter
	extractor *Extractor

	// tree-sitter parsers are not safe for concurrent use
	mu sync.Mutex
}

func NewPipeline(dbClient *db.Neo4jClient, gitSvc *git.GitService, teiClient *embedding.TEIClient) *Pipeline {
	return &Pipeline{
		dbClient:  dbClient,
		gitSvc:    gitSvc,
		teiClient: teiClient,
		writer:    db.NewIndexWriter(dbClient),
		extractor: NewExtractor(),
	}
}

func (p *Pipeline) Close() {
	p.extractor.Close()
}

// IndexRepo runs one full indexing pass. It is invoked fire-and-forget from
// project admission, so every failure ends here: logged, status set to
// error, nothing propagated.
func (p *Pipeline) IndexRepo(ctx context.Context, projectID, repoURL, token string) {
	if err := db.SetIndexStatus(ctx, p.dbClient, projectID, "indexing"); err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("failed to mark project indexing")
		return
	}

	result, err := p.run(ctx, projectID, repoURL, token)
	if err != nil {
		log.Error().Err(err).Str("project_id", projectID).Msg("indexing failed")
		if statusErr := db.SetIndexStatus(ctx, p.dbClient, projectID, "error"); statusErr != nil {
			log.Error().Err(statusErr).Str("project_id", projectID).Msg("failed to mark project errored")
		}
		return
	}

	log.Info().
		Str("project_id", projectID).
		Int("files", result.FilesProcessed).
		Int("entities", result.EntitiesFound).
		Int("errors", len(result.Errors)).
		Msg("indexing complete")
}

func (p *Pipeline) run(ctx context.Context, projectID, repoURL, token string) (*models.IndexResult, error) {
	repoPath, err := p.gitSvc.Clone(ctx, projectID, repoURL, token)
	if err != nil {
		return nil, err
	}

	result, err := p.indexDirectory(ctx, repoPath, projectID)
	if err != nil {
		return nil, err
	}

	if err := p.embedEntities(ctx, result); err != nil {
		// Retrieval degrades without embeddings but the index is still
		// useful for the file tree, so keep going.
		log.Warn().Err(err).Str("project_id", projectID).Msg("embedding failed, indexing without vectors")
	}

	if err := p.writer.WriteIndexResult(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) indexDirectory(ctx context.Context, dirPath, projectID string) (*models.IndexResult, error) {
	result := &models.IndexResult{ProjectID: projectID}

	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			name := info.Name()
			if name == ".git" || name == "node_modules" || name == "vendor" ||
				name == "__pycache__" || name == ".venv" || name == "dist" ||
				name == "build" || name == "target" {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, _ := filepath.Rel(dirPath, path)
		if models.DetectLanguage(relPath) != "" {
			files = append(files, relPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	for _, relPath := range files {
		file, entities, err := p.processFile(ctx, filepath.Join(dirPath, relPath), relPath, projectID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
			continue
		}
		result.FilesProcessed++
		result.Files = append(result.Files, file)
		result.Entities = append(result.Entities, entities...)
		result.EntitiesFound += len(entities)
	}

	return result, nil
}

func (p *Pipeline) processFile(ctx context.Context, fullPath, relPath, projectID string) (*models.SourceFile, []models.CodeEntity, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	lang := models.DetectLanguage(relPath)

	file := &models.SourceFile{
		ProjectID: projectID,
		Path:      relPath,
		Language:  lang,
		Size:      info.Size(),
	}

	p.mu.Lock()
	entities, err := p.extractor.Extract(ctx, content, lang, relPath)
	p.mu.Unlock()
	if err != nil {
		return file, nil, fmt.Errorf("extraction failed: %w", err)
	}

	for i := range entities {
		entities[i].ProjectID = projectID
	}
	return file, entities, nil
}

func (p *Pipeline) embedEntities(ctx context.Context, result *models.IndexResult) error {
	if len(result.Entities) == 0 {
		return nil
	}

	texts := make([]string, len(result.Entities))
	for i := range result.Entities {
		texts[i] = result.Entities[i].Summary
	}

	embeddings, err := p.teiClient.Embed(ctx, texts)
	if err != nil {
		return err
	}

	for i := range result.Entities {
		result.Entities[i].Embedding = embeddings[i]
	}
	return nil
}
