// Package repositories contains the persistence layer for the schema
// embedding index.
package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/apperrors"
	"github.com/krahmanglobys/llm-to-sql/pkg/database"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

// SchemaEmbeddingRepository is the vector index over (table, column)
// documents: it stores one normalized embedding per document and answers
// top-k similarity searches.
type SchemaEmbeddingRepository interface {
	// ReplaceAll atomically rebuilds the index from aligned documents and
	// vectors. Alignment is validated up front, never per query.
	ReplaceAll(ctx context.Context, docs []models.ColumnDocument, vectors [][]float32) error

	// Search returns the k nearest documents by inner product on normalized
	// vectors (cosine similarity), scores descending, rank 1-based. Ties are
	// broken by insertion order.
	Search(ctx context.Context, vector []float32, k int) ([]models.ColumnRecord, error)

	// Count reports the number of indexed documents.
	Count(ctx context.Context) (int, error)
}

type pgSchemaEmbeddingRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSchemaEmbeddingRepository creates a pgvector-backed embedding repository.
func NewSchemaEmbeddingRepository(db *database.DB, logger *zap.Logger) SchemaEmbeddingRepository {
	return &pgSchemaEmbeddingRepository{
		db:     db,
		logger: logger.Named("embedding_repo"),
	}
}

func (r *pgSchemaEmbeddingRepository) ReplaceAll(ctx context.Context, docs []models.ColumnDocument, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("%w: %d documents, %d vectors",
			apperrors.ErrMetadataMisaligned, len(docs), len(vectors))
	}
	if len(vectors) > 0 {
		dim := len(vectors[0])
		for i, v := range vectors {
			if len(v) != dim {
				return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
					apperrors.ErrMetadataMisaligned, i, len(v), dim)
			}
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rebuild transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM schema_column_embeddings`); err != nil {
		return fmt.Errorf("clear embedding index: %w", err)
	}

	batch := &pgx.Batch{}
	for i, doc := range docs {
		batch.Queue(`
			INSERT INTO schema_column_embeddings
				(id, table_schema, table_name, column_name, content, embedding, position)
			VALUES ($1, $2, $3, $4, $5, $6::vector, $7)`,
			doc.ID, doc.TableSchema, doc.TableName, doc.ColumnName,
			doc.Text, formatVector(vectors[i]), i,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range docs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert embedding row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close embedding batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rebuild transaction: %w", err)
	}

	r.logger.Info("rebuilt schema embedding index", zap.Int("documents", len(docs)))
	return nil
}

func (r *pgSchemaEmbeddingRepository) Search(ctx context.Context, vector []float32, k int) ([]models.ColumnRecord, error) {
	// <#> is negative inner product; on unit vectors -(<#>) is cosine
	// similarity. Secondary ordering on position keeps ties stable.
	rows, err := r.db.Query(ctx, `
		SELECT id, table_schema, table_name, column_name, content,
		       -(embedding <#> $1::vector) AS score
		FROM schema_column_embeddings
		ORDER BY embedding <#> $1::vector, position
		LIMIT $2`,
		formatVector(vector), k,
	)
	if err != nil {
		return nil, fmt.Errorf("search embedding index: %w", err)
	}
	defer rows.Close()

	var records []models.ColumnRecord
	for rows.Next() {
		var rec models.ColumnRecord
		if err := rows.Scan(&rec.ID, &rec.TableSchema, &rec.TableName,
			&rec.ColumnName, &rec.Text, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan embedding row: %w", err)
		}
		rec.Rank = len(records) + 1
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embedding rows: %w", err)
	}

	if len(records) == 0 {
		return nil, apperrors.ErrEmptyIndex
	}
	return records, nil
}

func (r *pgSchemaEmbeddingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM schema_column_embeddings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count embedding rows: %w", err)
	}
	return count, nil
}

// formatVector renders a float32 slice as a pgvector literal, e.g.
// "[0.1,-0.5,1]".
func formatVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
