package services

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/config"
	"github.com/krahmanglobys/llm-to-sql/pkg/llm"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
	"github.com/krahmanglobys/llm-to-sql/pkg/repositories"
)

// normEpsilon guards against division by zero when normalizing a vector.
const normEpsilon = 1e-10

// SchemaRetrievalService prunes a large schema down to the tables and
// columns relevant to one question.
type SchemaRetrievalService interface {
	// RetrieveColumns returns up to k column records ranked by descending
	// similarity to the question.
	RetrieveColumns(ctx context.Context, question string, k int) ([]models.ColumnRecord, error)
	// PruneSchema runs the full pipeline and returns the rendered schema
	// block for the prompt.
	PruneSchema(ctx context.Context, question string) (string, error)
}

type schemaRetrievalService struct {
	embedder llm.EmbeddingClient
	repo     repositories.SchemaEmbeddingRepository
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

// NewSchemaRetrievalService creates a SchemaRetrievalService backed by an
// embedding client and the schema embedding store.
func NewSchemaRetrievalService(
	embedder llm.EmbeddingClient,
	repo repositories.SchemaEmbeddingRepository,
	cfg config.RetrievalConfig,
	logger *zap.Logger,
) SchemaRetrievalService {
	return &schemaRetrievalService{
		embedder: embedder,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *schemaRetrievalService) RetrieveColumns(ctx context.Context, question string, k int) ([]models.ColumnRecord, error) {
	vectors, err := s.embedder.CreateEmbeddings(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 question embedding, got %d", len(vectors))
	}

	records, err := s.repo.Search(ctx, NormalizeVector(vectors[0]), k)
	if err != nil {
		return nil, fmt.Errorf("failed to search schema index: %w", err)
	}

	s.logger.Debug("Retrieved candidate columns",
		zap.Int("k", k),
		zap.Int("hits", len(records)))

	return records, nil
}

func (s *schemaRetrievalService) PruneSchema(ctx context.Context, question string) (string, error) {
	columns, err := s.RetrieveColumns(ctx, question, s.cfg.KColumns)
	if err != nil {
		return "", err
	}

	tables := SelectTables(columns, s.cfg.MaxTables)
	perTable := RefineColumns(columns, tables, s.cfg.MaxColsPerTable)
	block := RenderSchemaBlock(perTable, s.cfg.MaxCharPerTable)

	s.logger.Debug("Pruned schema for question",
		zap.Int("candidate_columns", len(columns)),
		zap.Strings("tables", tables),
		zap.Int("block_chars", len(block)))

	return block, nil
}

// SelectTables reduces column-level scores to table-level scores and picks
// the top tables. A table's aggregate is the maximum of its columns'
// scores, so one outstanding column is enough to carry its table. Ties
// keep first-encountered order.
func SelectTables(columns []models.ColumnRecord, maxTables int) []string {
	type tableScore struct {
		id    string
		score float64
	}

	index := make(map[string]int)
	var scores []tableScore

	for i := range columns {
		tid := columns[i].TableID()
		if j, ok := index[tid]; ok {
			if columns[i].Score > scores[j].score {
				scores[j].score = columns[i].Score
			}
			continue
		}
		index[tid] = len(scores)
		scores = append(scores, tableScore{id: tid, score: columns[i].Score})
	}

	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].score > scores[b].score
	})

	if len(scores) > maxTables {
		scores = scores[:maxTables]
	}

	tables := make([]string, len(scores))
	for i, ts := range scores {
		tables[i] = ts.id
	}
	return tables
}

// RefineColumns restricts retained columns to the selected tables, keeping
// at most maxColsPerTable per table ordered by descending score. Output
// table order follows selectedTables. Columns of unselected tables are
// dropped even when they scored well individually.
func RefineColumns(columns []models.ColumnRecord, selectedTables []string, maxColsPerTable int) []PrunedTable {
	byTable := make(map[string][]models.ColumnRecord, len(selectedTables))
	for _, tid := range selectedTables {
		byTable[tid] = nil
	}

	for _, c := range columns {
		tid := c.TableID()
		if _, ok := byTable[tid]; ok {
			byTable[tid] = append(byTable[tid], c)
		}
	}

	result := make([]PrunedTable, 0, len(selectedTables))
	for _, tid := range selectedTables {
		cols := byTable[tid]
		sort.SliceStable(cols, func(a, b int) bool {
			return cols[a].Score > cols[b].Score
		})
		if len(cols) > maxColsPerTable {
			cols = cols[:maxColsPerTable]
		}
		result = append(result, PrunedTable{ID: tid, Columns: cols})
	}
	return result
}

// NormalizeVector returns the L2-normalized copy of v. An epsilon keeps
// the zero vector from dividing by zero.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum) + normEpsilon

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
