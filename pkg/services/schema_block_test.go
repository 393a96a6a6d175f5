package services

import (
	"strings"
	"testing"

	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

func TestRenderSchemaBlock(t *testing.T) {
	tables := []PrunedTable{
		{
			ID: "dbo.t_acct",
			Columns: []models.ColumnRecord{
				{ColumnName: "acct_id", Text: "Table dbo.t_acct. Accounts.\nColumns:\n- acct_id (bigint ) [PK] NOT NULL"},
			},
		},
		{
			ID: "dbo.t_billed",
			Columns: []models.ColumnRecord{
				{ColumnName: "amount", Text: "Table dbo.t_billed. Billing.\nColumns:\n- amount (decimal ) NOT NULL"},
			},
		},
	}

	block := RenderSchemaBlock(tables, 2000)

	if !strings.HasPrefix(block, "Table dbo.t_acct:\n") {
		t.Errorf("block should open with the first table header, got:\n%s", block)
	}
	if !strings.Contains(block, "\n\nTable dbo.t_billed:\n") {
		t.Errorf("tables should be separated by a blank line, got:\n%s", block)
	}
	if strings.HasSuffix(block, "\n") {
		t.Error("trailing whitespace should be trimmed")
	}
}

func TestRenderSchemaBlockEmpty(t *testing.T) {
	if block := RenderSchemaBlock(nil, 2000); block != "" {
		t.Errorf("expected empty block, got %q", block)
	}
}

func TestTruncateColumnTextShortUnchanged(t *testing.T) {
	text := "Table dbo.t_acct. Accounts.\nColumns:\n- acct_id (bigint )"
	if got := truncateColumnText(text, 2000); got != text {
		t.Errorf("short text must pass through unchanged, got %q", got)
	}
}

func TestTruncateColumnTextPreservesColumns(t *testing.T) {
	header := strings.Repeat("h", 290)
	columnsSection := "Columns:\n- a (int )\n- b (int )"
	text := header + "\n" + columnsSection

	got := truncateColumnText(text, 300)

	if !strings.HasPrefix(got, strings.Repeat("h", 100)+"...") {
		t.Errorf("long header should be cut to 100 chars plus ellipsis, got prefix %q", got[:110])
	}
	if !strings.Contains(got, columnsSection) {
		t.Error("the full columns section must survive truncation")
	}
}

func TestTruncateColumnTextHardCutWithMarker(t *testing.T) {
	text := "head\nColumns:\n" + strings.Repeat("- c (int )\n", 40)

	got := truncateColumnText(text, 300)

	if !strings.HasSuffix(got, "\n... [Schema truncated, key columns shown above]") {
		t.Errorf("expected the hard-cut notice, got suffix %q", got[len(got)-60:])
	}
	if !strings.HasPrefix(got, text[:250]) {
		t.Error("hard cut should keep the leading slice of the text")
	}
}

func TestTruncateColumnTextNoMarker(t *testing.T) {
	text := strings.Repeat("x", 150)

	got := truncateColumnText(text, 100)

	want := strings.Repeat("x", 100) + "... [Schema truncated]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncateColumnTextShortHeaderKept(t *testing.T) {
	columnsSection := "Columns:\n- a (int )"
	// Inflate the header past the cap while the columns section stays small.
	text := "short header" + strings.Repeat(".", 300) + "\n" + columnsSection

	got := truncateColumnText(text, 300)

	if !strings.Contains(got, columnsSection) {
		t.Error("columns section should be preserved")
	}
	if !strings.Contains(got, "...") {
		t.Error("cut header should carry an ellipsis")
	}
}
