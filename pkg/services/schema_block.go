package services

import (
	"fmt"
	"strings"

	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

// PrunedTable is one table that survived pruning, with its retained
// columns ordered by descending score.
type PrunedTable struct {
	ID      string
	Columns []models.ColumnRecord
}

// RenderSchemaBlock renders pruned tables into the schema text handed to
// the prompt builder. Each table emits a "Table {id}:" header followed by
// the descriptive text of every retained column, with a blank line between
// tables. The character cap applies to each column text independently, not
// to the table's running total.
func RenderSchemaBlock(tables []PrunedTable, maxCharPerTable int) string {
	var lines []string
	for _, t := range tables {
		lines = append(lines, fmt.Sprintf("Table %s:", t.ID))
		for _, c := range t.Columns {
			lines = append(lines, truncateColumnText(c.Text, maxCharPerTable))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n\r")
}

// truncateColumnText bounds one column's descriptive text. When the text
// carries a "Columns:" section the column list is preserved at the expense
// of the header sentence; only when the column list itself does not fit is
// the text hard-truncated.
func truncateColumnText(text string, maxChar int) string {
	if len(text) <= maxChar {
		return text
	}

	header, rest, found := strings.Cut(text, "Columns:")
	if !found {
		return text[:maxChar] + "... [Schema truncated]"
	}

	columnsSection := "Columns:" + rest
	if len(columnsSection) <= maxChar-100 {
		if len(header) > 100 {
			header = header[:100] + "..."
		}
		return header + "\n" + columnsSection
	}

	return text[:maxChar-50] + "\n... [Schema truncated, key columns shown above]"
}
