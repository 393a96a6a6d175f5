// llm-to-sql is an interactive natural-language-to-SQL shell. It prunes a
// large warehouse schema down to the tables relevant to each question, asks
// a completion model for a T-SQL query, and validates the result against
// the pruned schema with bounded repair retries. Queries are generated,
// never executed.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
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

// Version is set at build time via ldflags
var Version = "dev"

const divider = "============================================================"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting llm-to-sql",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to the schema index store", zap.Error(err))
	}
	defer db.Close()

	generator, err := buildGenerator(cfg, db, logger)
	if err != nil {
		logger.Fatal("Failed to wire services", zap.Error(err))
	}

	repo := repositories.NewSchemaEmbeddingRepository(db, logger)
	if n, err := repo.Count(ctx); err != nil {
		logger.Warn("Could not check the schema index", zap.Error(err))
	} else if n == 0 {
		fmt.Println("The schema index is empty. Run scripts/build-schema-index first.")
		os.Exit(1)
	}

	runShell(ctx, generator, logger)
}

func buildGenerator(cfg *config.Config, db *database.DB, logger *zap.Logger) (services.SQLGenerationService, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	chat, err := llm.NewChatClient(cfg.LLM.Provider, &llm.Config{
		Endpoint:    cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		Timeout:     timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewEmbeddingClient(&llm.Config{
		Endpoint: cfg.EffectiveEmbeddingBaseURL(),
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.EffectiveEmbeddingAPIKey(),
		Timeout:  timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	repo := repositories.NewSchemaEmbeddingRepository(db, logger)
	retrieval := services.NewSchemaRetrievalService(embedder, repo, cfg.Retrieval, logger)
	return services.NewSQLGenerationService(retrieval, chat, cfg.Generate.MaxAttempts, logger), nil
}

func runShell(ctx context.Context, generator services.SQLGenerationService, logger *zap.Logger) {
	fmt.Println("Interactive LLM-to-SQL query generator")
	fmt.Println(divider)
	fmt.Println("Ask natural language questions to generate SQL queries.")
	fmt.Println("Type 'quit' or 'exit' to stop.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("Enter your question: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return
		case "":
			fmt.Println("Please enter a question.")
			continue
		}

		fmt.Println("\nGenerating SQL query...")

		result, err := generator.GenerateSQL(ctx, question)
		if err != nil {
			logger.Error("Generation failed", zap.Error(err))
			fmt.Printf("Error generating SQL: %v\n", err)
			fmt.Println("Please try again with a different question.")
			continue
		}

		printResult(result)
		fmt.Println("\nReady for the next question!")
		fmt.Println()
	}
}

func printResult(result *models.GenerationResult) {
	fmt.Println()
	fmt.Println(divider)
	fmt.Println("RELEVANT SCHEMA:")
	fmt.Println(divider)
	fmt.Println(result.SchemaBlock)

	fmt.Println()
	fmt.Println(divider)
	fmt.Println("FULL RESPONSE:")
	fmt.Println(divider)
	fmt.Println(result.RawResponse)

	fmt.Println()
	fmt.Println(divider)
	fmt.Println("SQL QUERY ONLY:")
	fmt.Println(divider)
	fmt.Println(result.SQL)
	fmt.Println(divider)

	if result.Outcome == models.OutcomeExhausted {
		fmt.Printf("\nWARNING: the query still failed validation after %d attempts:\n", result.Attempts)
		for _, e := range result.LastValidation.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}
