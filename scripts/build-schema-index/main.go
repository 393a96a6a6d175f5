// build-schema-index builds the column embedding index from a schema export.
//
// The input CSV is one row per column with a header row naming the fields
// (table_schema, table_name, column_name, data_type, max_length, precision,
// scale, is_nullable, is_primary_key, is_foreign_key, column_default,
// column_description, referenced_schema, referenced_table,
// referenced_column). Unknown header fields are ignored.
//
// Usage: go run ./scripts/build-schema-index -csv schema_export.csv
//
// Database connection: standard PG* environment variables.
// Embedding endpoint: EMBEDDING_BASE_URL / EMBEDDING_API_KEY (falls back to
// LLM_BASE_URL / LLM_API_KEY).
//
// Flags:
//
//	-csv         Path to the schema export CSV (required)
//	-migrations  Path to the migrations directory (default "migrations")
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/config"
	"github.com/krahmanglobys/llm-to-sql/pkg/database"
	"github.com/krahmanglobys/llm-to-sql/pkg/llm"
	"github.com/krahmanglobys/llm-to-sql/pkg/logging"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
	"github.com/krahmanglobys/llm-to-sql/pkg/repositories"
	"github.com/krahmanglobys/llm-to-sql/pkg/services"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the schema export CSV")
	migrationsPath := flag.String("migrations", "migrations", "Path to the migrations directory")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <schema_export.csv> [-migrations <dir>]\n", os.Args[0])
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *csvPath, *migrationsPath, logger); err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}
}

func run(cfg *config.Config, csvPath, migrationsPath string, logger *zap.Logger) error {
	ctx := context.Background()

	rows, err := readSchemaExport(csvPath)
	if err != nil {
		return fmt.Errorf("failed to read schema export: %w", err)
	}
	logger.Info("Loaded schema export", zap.String("path", csvPath), zap.Int("rows", len(rows)))

	if err := database.RunMigrations(cfg.Database.MigrateURL(), migrationsPath, logger); err != nil {
		return err
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	embedder, err := llm.NewEmbeddingClient(&llm.Config{
		Endpoint: cfg.EffectiveEmbeddingBaseURL(),
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.EffectiveEmbeddingAPIKey(),
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		return err
	}

	repo := repositories.NewSchemaEmbeddingRepository(db, logger)
	indexer := services.NewSchemaIndexingService(embedder, repo, cfg.Embedding.BatchSize, logger)

	count, err := indexer.RebuildIndex(ctx, rows)
	if err != nil {
		return err
	}

	logger.Info("Schema index built", zap.Int("columns", count))
	return nil
}

// readSchemaExport parses the export CSV into schema column rows. The
// header row drives field positions, so exports with extra or reordered
// columns still load.
func readSchemaExport(path string) ([]models.SchemaColumnRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields := make(map[string]int, len(header))
	for i, name := range header {
		fields[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"table_schema", "table_name", "column_name", "data_type"} {
		if _, ok := fields[required]; !ok {
			return nil, fmt.Errorf("schema export is missing the %q column", required)
		}
	}

	get := func(record []string, name string) string {
		i, ok := fields[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []models.SchemaColumnRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(rows)+2, err)
		}

		rows = append(rows, models.SchemaColumnRow{
			TableSchema:       get(record, "table_schema"),
			TableName:         get(record, "table_name"),
			ColumnName:        get(record, "column_name"),
			DataType:          get(record, "data_type"),
			MaxLength:         parseInt(get(record, "max_length")),
			Precision:         parseInt(get(record, "precision")),
			Scale:             parseInt(get(record, "scale")),
			IsNullable:        parseNullable(get(record, "is_nullable")),
			IsPrimaryKey:      parseFlag(get(record, "is_primary_key")),
			IsForeignKey:      parseFlag(get(record, "is_foreign_key")),
			ColumnDefault:     get(record, "column_default"),
			ColumnDescription: get(record, "column_description"),
			ReferencedSchema:  get(record, "referenced_schema"),
			ReferencedTable:   get(record, "referenced_table"),
			ReferencedColumn:  get(record, "referenced_column"),
		})
	}

	return rows, nil
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseFlag reads the 0/1 and true/false spellings SQL exports produce.
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// parseNullable follows information_schema convention: anything but NO is
// nullable.
func parseNullable(s string) bool {
	return !strings.EqualFold(s, "no") && !strings.EqualFold(s, "false") && s != "0"
}
