// Package services holds the schema indexing, retrieval, and SQL generation
// pipeline.
package services

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

// humanizeTableName turns an export table name like T_ACCT_PAYMENT_INFO
// into "acct payment infos" for the description line. A leading t_ prefix
// is dropped and the final word pluralized.
func humanizeTableName(name string) string {
	lower := strings.ToLower(name)
	lower = strings.TrimPrefix(lower, "t_")
	words := strings.Split(strings.ReplaceAll(lower, "_", " "), " ")
	if len(words) > 0 && words[len(words)-1] != "" {
		words[len(words)-1] = inflection.Plural(words[len(words)-1])
	}
	return strings.Join(words, " ")
}

// BuildColumnDocuments renders schema export rows into embeddable column
// documents. Rows are grouped by table in first-seen order; every column of
// a table shares the table's full rendered description as its text, so a
// single strong column hit carries the whole table into the prompt.
func BuildColumnDocuments(rows []models.SchemaColumnRow) []models.ColumnDocument {
	type tableGroup struct {
		schema string
		name   string
		rows   []models.SchemaColumnRow
	}

	groupIndex := make(map[string]int)
	var groups []tableGroup

	for _, row := range rows {
		key := row.TableSchema + "." + row.TableName
		i, ok := groupIndex[key]
		if !ok {
			i = len(groups)
			groupIndex[key] = i
			groups = append(groups, tableGroup{schema: row.TableSchema, name: row.TableName})
		}
		groups[i].rows = append(groups[i].rows, row)
	}

	var documents []models.ColumnDocument
	for _, g := range groups {
		text := renderTableText(g.schema, g.name, g.rows)
		for _, row := range g.rows {
			documents = append(documents, models.ColumnDocument{
				ID:          fmt.Sprintf("%s.%s.%s", g.schema, g.name, row.ColumnName),
				TableSchema: g.schema,
				TableName:   g.name,
				ColumnName:  row.ColumnName,
				Text:        text,
			})
		}
	}

	return documents
}

// renderTableText builds the full description of one table: a header
// sentence, a "Columns:" section, and an optional "Foreign keys:" section.
// The "Columns:" marker is load-bearing for the schema block assembler's
// truncation and for the validator's parser.
func renderTableText(schema, table string, rows []models.SchemaColumnRow) string {
	var colLines []string
	var fkLines []string

	for _, row := range rows {
		parts := []string{fmt.Sprintf("%s (%s", row.ColumnName, row.DataType)}

		if row.MaxLength > 0 {
			parts = append(parts, fmt.Sprintf("max_length=%d", row.MaxLength))
		}
		if row.Precision > 0 {
			parts = append(parts, fmt.Sprintf("precision=%d", row.Precision))
		}
		if row.Scale > 0 {
			parts = append(parts, fmt.Sprintf("scale=%d", row.Scale))
		}
		parts = append(parts, ")")

		if row.IsPrimaryKey {
			parts = append(parts, "[PK]")
		}
		if row.IsForeignKey {
			parts = append(parts, "[FK]")
		}
		if row.IsNullable {
			parts = append(parts, "NULL")
		} else {
			parts = append(parts, "NOT NULL")
		}
		if row.ColumnDefault != "" {
			parts = append(parts, fmt.Sprintf("default=%s", row.ColumnDefault))
		}
		if row.ColumnDescription != "" {
			parts = append(parts, fmt.Sprintf("- %s", row.ColumnDescription))
		}

		colLines = append(colLines, strings.Join(parts, " "))

		if row.IsForeignKey && row.ReferencedTable != "" && row.ReferencedColumn != "" {
			fkLines = append(fkLines, fmt.Sprintf("%s references %s.%s(%s)",
				row.ColumnName, row.ReferencedSchema, row.ReferencedTable, row.ReferencedColumn))
		}
	}

	header := fmt.Sprintf("Table %s.%s. This table stores data related to %s.",
		schema, table, humanizeTableName(table))
	text := header + "\nColumns:\n- " + strings.Join(colLines, "\n- ")
	if len(fkLines) > 0 {
		text += "\nForeign keys:\n- " + strings.Join(fkLines, "\n- ")
	}
	return text
}
