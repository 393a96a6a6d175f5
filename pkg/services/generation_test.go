package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/krahmanglobys/llm-to-sql/pkg/llm"
	"github.com/krahmanglobys/llm-to-sql/pkg/models"
	"github.com/krahmanglobys/llm-to-sql/pkg/prompts"
)

const generationTestSchema = `Table dbo.t_acct:
Table dbo.t_acct. This table stores data related to accts.
Columns:
- acct_id (bigint ) [PK] NOT NULL
- acct_name (varchar max_length=100 ) NULL

Table dbo.t_billed:
Table dbo.t_billed. This table stores data related to billeds.
Columns:
- billed_id (bigint ) [PK] NOT NULL
- acct_id (bigint ) [FK] NOT NULL
- amount (decimal precision=18 scale=2 ) NOT NULL`

// stubRetrieval returns a fixed schema block without touching an index.
type stubRetrieval struct {
	block string
	err   error
}

func (s *stubRetrieval) RetrieveColumns(ctx context.Context, question string, k int) ([]models.ColumnRecord, error) {
	return nil, nil
}

func (s *stubRetrieval) PruneSchema(ctx context.Context, question string) (string, error) {
	return s.block, s.err
}

func TestGenerateSQLFirstAttemptSucceeds(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "```sql\nSELECT acct_id, acct_name FROM dbo.t_acct\n```", nil
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 3, zap.NewNop())

	result, err := svc.GenerateSQL(context.Background(), "list the accounts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != models.OutcomeSuccess {
		t.Errorf("expected success, got %s with errors %v", result.Outcome, result.ValidationErrors)
	}
	if result.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempts)
	}
	if chat.CompleteCalls != 1 {
		t.Errorf("expected exactly 1 completion call, got %d", chat.CompleteCalls)
	}
	if result.SQL != "SELECT acct_id, acct_name FROM dbo.t_acct" {
		t.Errorf("unexpected extracted SQL: %q", result.SQL)
	}
	if len(result.ValidationErrors) != 0 {
		t.Errorf("no errors should accumulate on a clean first attempt: %v", result.ValidationErrors)
	}
}

func TestGenerateSQLRepairsInvalidQuery(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		if chat.CompleteCalls == 1 {
			return "```sql\nSELECT * FROM dbo.t_orders\n```", nil
		}
		return "SELECT acct_id FROM dbo.t_acct", nil
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 3, zap.NewNop())

	result, err := svc.GenerateSQL(context.Background(), "list the accounts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outcome != models.OutcomeSuccess {
		t.Errorf("expected success after repair, got %s", result.Outcome)
	}
	if result.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", result.Attempts)
	}
	if chat.CompleteCalls != 2 {
		t.Errorf("expected 2 completion calls, got %d", chat.CompleteCalls)
	}
	// The first failure's errors stay on the result even after success.
	if len(result.ValidationErrors) == 0 {
		t.Error("errors from the failed attempt should be preserved")
	}
	if result.SQL != "SELECT acct_id FROM dbo.t_acct" {
		t.Errorf("repair output should be used verbatim, got %q", result.SQL)
	}

	repairPrompt := chat.Prompts[1]
	if !strings.Contains(repairPrompt, "ORIGINAL QUERY:") {
		t.Error("second call should use the repair prompt")
	}
	if !strings.Contains(repairPrompt, "SELECT * FROM dbo.t_orders") {
		t.Error("repair prompt should carry the failing query")
	}
	if !strings.Contains(repairPrompt, "not found in provided schema") {
		t.Error("repair prompt should carry the validation errors")
	}
	if !strings.Contains(repairPrompt, prompts.HierarchyNote) {
		t.Error("repair attempts should use the hierarchy-aware variant")
	}
}

func TestGenerateSQLExhaustsAttempts(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "SELECT * FROM dbo.t_orders", nil
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 3, zap.NewNop())

	result, err := svc.GenerateSQL(context.Background(), "show the orders")
	if err != nil {
		t.Fatalf("exhaustion is not a transport error: %v", err)
	}

	if result.Outcome != models.OutcomeExhausted {
		t.Errorf("expected exhausted outcome, got %s", result.Outcome)
	}
	if chat.CompleteCalls != 3 {
		t.Errorf("the attempt bound must cap completion calls at 3, got %d", chat.CompleteCalls)
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
	// One error set per failed validation pass.
	if len(result.ValidationErrors) != 3 {
		t.Errorf("expected 3 accumulated errors, got %d: %v", len(result.ValidationErrors), result.ValidationErrors)
	}
	if result.SQL == "" {
		t.Error("the last query must still be returned at exhaustion")
	}
}

func TestGenerateSQLSingleAttemptBound(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "SELECT * FROM dbo.t_orders", nil
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 1, zap.NewNop())

	result, err := svc.GenerateSQL(context.Background(), "show the orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.CompleteCalls != 1 {
		t.Errorf("bound of 1 means no repair calls, got %d", chat.CompleteCalls)
	}
	if result.Outcome != models.OutcomeExhausted {
		t.Errorf("expected exhausted outcome, got %s", result.Outcome)
	}
}

func TestGenerateSQLCompletionFailureAborts(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("gateway timeout")
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 3, zap.NewNop())

	if _, err := svc.GenerateSQL(context.Background(), "q"); err == nil {
		t.Fatal("transport errors must abort the loop, not be retried")
	}
	if chat.CompleteCalls != 1 {
		t.Errorf("no retry on transport failure, got %d calls", chat.CompleteCalls)
	}
}

func TestGenerateSQLPruneFailureAborts(t *testing.T) {
	chat := llm.NewMockChatClient()
	svc := NewSQLGenerationService(&stubRetrieval{err: errors.New("index unavailable")}, chat, 3, zap.NewNop())

	if _, err := svc.GenerateSQL(context.Background(), "q"); err == nil {
		t.Fatal("expected an error when pruning fails")
	}
	if chat.CompleteCalls != 0 {
		t.Error("no completion call should happen without a schema block")
	}
}

func TestGenerateSQLBaselinePromptForNeutralQuestion(t *testing.T) {
	chat := llm.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "SELECT amount FROM dbo.t_billed;", nil
	}

	svc := NewSQLGenerationService(&stubRetrieval{block: generationTestSchema}, chat, 3, zap.NewNop())

	if _, err := svc.GenerateSQL(context.Background(), "total amount per month"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(chat.Prompts[0], prompts.HierarchyNote) {
		t.Error("neutral first-attempt question should use the baseline prompt")
	}
}
