package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/llm"
	"github.com/krahmanglobys/llm-to-sql/pkg/logging"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
	"github.com/krahmanglobys/llm-to-sql/pkg/prompts"
	sqlcheck "github.com/krahmanglobys/llm-to-sql/pkg/sql"
)

// SQLGenerationService turns a natural-language question into a validated
// SQL query through a bounded generate-validate-repair loop.
type SQLGenerationService interface {
	GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error)
}

// loop states. The controller is a small state machine so every
// transition is explicit and the attempt bound is easy to audit.
type loopState int

const (
	stateGenerate loopState = iota
	stateValidate
	stateRepair
	stateDone
)

type sqlGenerationService struct {
	retrieval   SchemaRetrievalService
	chat        llm.ChatClient
	maxAttempts int
	logger      *zap.Logger
}

// NewSQLGenerationService wires the pruning pipeline and a chat client
// into a generation service. maxAttempts bounds the total number of
// completion calls per question (the initial generation plus repairs).
func NewSQLGenerationService(
	retrieval SchemaRetrievalService,
	chat llm.ChatClient,
	maxAttempts int,
	logger *zap.Logger,
) SQLGenerationService {
	return &sqlGenerationService{
		retrieval:   retrieval,
		chat:        chat,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// GenerateSQL runs the loop for one question. The schema block is computed
// once up front and held fixed for every attempt. Completion transport
// errors abort the loop; only validation failures are retried, up to the
// attempt bound. At exhaustion the last query is returned together with
// every accumulated validation error.
func (s *sqlGenerationService) GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error) {
	schemaBlock, err := s.retrieval.PruneSchema(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to prune schema: %w", err)
	}

	result := &models.GenerationResult{
		RequestID:   uuid.New(),
		Question:    question,
		SchemaBlock: schemaBlock,
	}

	var (
		raw            string
		currentSQL     string
		lastValidation models.ValidationResult
	)
	attempt := 0
	state := stateGenerate

	for state != stateDone {
		switch state {
		case stateGenerate:
			mode := prompts.SelectMode(question, attempt)
			prompt := prompts.BuildSQLPrompt(question, schemaBlock, mode)

			raw, err = s.chat.Complete(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("completion failed: %w", err)
			}
			currentSQL = sqlcheck.ExtractSQL(raw)
			state = stateValidate

		case stateValidate:
			lastValidation = sqlcheck.ValidateAgainstSchema(currentSQL, schemaBlock)
			for _, w := range lastValidation.Warnings {
				s.logger.Warn("Validation warning",
					zap.String("request_id", result.RequestID.String()),
					zap.Int("attempt", attempt),
					zap.String("warning", w))
			}

			if lastValidation.IsValid {
				result.Outcome = models.OutcomeSuccess
				state = stateDone
				break
			}

			result.ValidationErrors = append(result.ValidationErrors, lastValidation.Errors...)
			s.logger.Info("Query failed validation",
				zap.String("request_id", result.RequestID.String()),
				zap.Int("attempt", attempt),
				zap.Strings("errors", lastValidation.Errors),
				zap.String("query", logging.SanitizeQuery(currentSQL)))

			if attempt < s.maxAttempts-1 {
				state = stateRepair
			} else {
				result.Outcome = models.OutcomeExhausted
				state = stateDone
			}

		case stateRepair:
			attempt++
			mode := prompts.SelectMode(question, attempt)
			prompt := prompts.BuildRepairPrompt(currentSQL, lastValidation.Errors, schemaBlock, question, mode)

			raw, err = s.chat.Complete(ctx, prompt)
			if err != nil {
				return nil, fmt.Errorf("repair completion failed: %w", err)
			}
			// The repair prompt asks for bare SQL, so the response is the
			// new query as-is; no extraction pass here.
			currentSQL = strings.TrimSpace(raw)
			state = stateValidate
		}
	}

	result.RawResponse = raw
	result.SQL = currentSQL
	result.Attempts = attempt + 1
	result.LastValidation = lastValidation

	s.logger.Info("Generation finished",
		zap.String("request_id", result.RequestID.String()),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("attempts", result.Attempts),
		zap.String("model", s.chat.GetModel()))

	return result, nil
}
