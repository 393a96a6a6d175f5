package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/apperrors"
	"github.com/krahmanglobys/llm-to-sql/pkg/llm"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
	"github.com/krahmanglobys/llm-to-sql/pkg/repositories"
	"github.com/krahmanglobys/llm-to-sql/pkg/retry"
)

// SchemaIndexingService builds the column embedding index from a schema
// export. Rebuilding replaces the whole index; the index is otherwise
// read-only for the process lifetime.
type SchemaIndexingService interface {
	// RebuildIndex renders, embeds, and stores one document per column.
	// Returns the number of documents indexed.
	RebuildIndex(ctx context.Context, rows []models.SchemaColumnRow) (int, error)
	// IndexedColumns reports the current index size.
	IndexedColumns(ctx context.Context) (int, error)
}

type schemaIndexingService struct {
	embedder  llm.EmbeddingClient
	repo      repositories.SchemaEmbeddingRepository
	batchSize int
	logger    *zap.Logger
}

// NewSchemaIndexingService creates a SchemaIndexingService. batchSize
// bounds how many texts go into one embedding request.
func NewSchemaIndexingService(
	embedder llm.EmbeddingClient,
	repo repositories.SchemaEmbeddingRepository,
	batchSize int,
	logger *zap.Logger,
) SchemaIndexingService {
	if batchSize <= 0 {
		batchSize = 16
	}
	return &schemaIndexingService{
		embedder:  embedder,
		repo:      repo,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (s *schemaIndexingService) RebuildIndex(ctx context.Context, rows []models.SchemaColumnRow) (int, error) {
	documents := BuildColumnDocuments(rows)
	if len(documents) == 0 {
		return 0, apperrors.ErrNoRelevantColumns
	}

	texts := make([]string, len(documents))
	for i, d := range documents {
		texts[i] = d.Text
	}

	vectors := make([][]float32, 0, len(documents))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		// Offline rebuild, so transient provider failures are retried here.
		// Question-time embedding calls are not.
		input := texts[start:end]
		batch, err := retry.DoWithResult(ctx, nil, func() ([][]float32, error) {
			return s.embedder.CreateEmbeddings(ctx, input)
		})
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		for _, v := range batch {
			vectors = append(vectors, NormalizeVector(v))
		}

		s.logger.Debug("Embedded schema document batch",
			zap.Int("start", start),
			zap.Int("size", end-start))
	}

	if err := s.repo.ReplaceAll(ctx, documents, vectors); err != nil {
		return 0, fmt.Errorf("failed to store schema embeddings: %w", err)
	}

	s.logger.Info("Rebuilt schema index",
		zap.Int("columns", len(documents)),
		zap.Int("batch_size", s.batchSize))

	return len(documents), nil
}

func (s *schemaIndexingService) IndexedColumns(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
