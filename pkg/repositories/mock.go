package repositories

import (
	"context"

	"github.com/krahmanglobys/llm-to-sql/pkg/apperrors"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

// MockSchemaEmbeddingRepository is a configurable in-memory mock for
// testing index consumers. Set the function fields to control behavior.
type MockSchemaEmbeddingRepository struct {
	// ReplaceAllFunc is called when ReplaceAll is invoked. If nil, the
	// documents and vectors are recorded and nil is returned.
	ReplaceAllFunc func(ctx context.Context, docs []models.ColumnDocument, vectors [][]float32) error

	// SearchFunc is called when Search is invoked. If nil, returns
	// apperrors.ErrEmptyIndex.
	SearchFunc func(ctx context.Context, vector []float32, k int) ([]models.ColumnRecord, error)

	// CountFunc is called when Count is invoked. If nil, returns the
	// number of stored documents.
	CountFunc func(ctx context.Context) (int, error)

	// Call tracking for verification
	ReplaceAllCalls int
	SearchCalls     int
	StoredDocs      []models.ColumnDocument
	StoredVectors   [][]float32
	SearchVectors   [][]float32
}

// NewMockSchemaEmbeddingRepository creates a new mock repository.
func NewMockSchemaEmbeddingRepository() *MockSchemaEmbeddingRepository {
	return &MockSchemaEmbeddingRepository{}
}

// ReplaceAll implements SchemaEmbeddingRepository.
func (m *MockSchemaEmbeddingRepository) ReplaceAll(ctx context.Context, docs []models.ColumnDocument, vectors [][]float32) error {
	m.ReplaceAllCalls++
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, docs, vectors)
	}
	m.StoredDocs = docs
	m.StoredVectors = vectors
	return nil
}

// Search implements SchemaEmbeddingRepository.
func (m *MockSchemaEmbeddingRepository) Search(ctx context.Context, vector []float32, k int) ([]models.ColumnRecord, error) {
	m.SearchCalls++
	m.SearchVectors = append(m.SearchVectors, vector)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vector, k)
	}
	return nil, apperrors.ErrEmptyIndex
}

// Count implements SchemaEmbeddingRepository.
func (m *MockSchemaEmbeddingRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return len(m.StoredDocs), nil
}

var _ SchemaEmbeddingRepository = (*MockSchemaEmbeddingRepository)(nil)
