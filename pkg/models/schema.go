package models

import "fmt"

// ColumnRecord is a single column hit returned by the vector index.
// Records are created fresh for each question and discarded afterwards;
// they are never mutated after retrieval.
type ColumnRecord struct {
	ID          string  `json:"id"`
	TableSchema string  `json:"table_schema"`
	TableName   string  `json:"table_name"`
	ColumnName  string  `json:"column_name"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"` // cosine similarity, higher = more relevant
	Rank        int     `json:"rank"`  // 1-based position within the retrieval batch
}

// TableID returns the "schema.table" identifier this column belongs to.
// Every record maps to exactly one table identifier.
func (c *ColumnRecord) TableID() string {
	return c.TableSchema + "." + c.TableName
}

// ColumnDocument is one embeddable unit of the schema index: a (table, column)
// pair together with the full rendered description of its table. The schema
// block assembler relies on the text carrying the whole table description,
// including the "Columns:" marker.
type ColumnDocument struct {
	ID          string `json:"id"`
	TableSchema string `json:"table_schema"`
	TableName   string `json:"table_name"`
	ColumnName  string `json:"column_name"`
	Text        string `json:"text"`
}

// SchemaColumnRow is one row of a relational-schema export, the raw input to
// the schema document builder.
type SchemaColumnRow struct {
	TableSchema       string
	TableName         string
	ColumnName        string
	DataType          string
	MaxLength         int
	Precision         int
	Scale             int
	IsNullable        bool
	IsPrimaryKey      bool
	IsForeignKey      bool
	ColumnDefault     string
	ColumnDescription string
	ReferencedSchema  string
	ReferencedTable   string
	ReferencedColumn  string
}

// ValidationResult reports schema-conformance checks on a generated query.
// It is produced fresh per validation call and never mutated after return.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError records a validation error and marks the result invalid.
func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

// AddWarning records a non-fatal finding.
func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
