package sql

import (
	"regexp"
	"strings"

	"github.com/krahmanglobys/llm-to-sql/pkg/models"
)

var (
	fromTablePattern = regexp.MustCompile(`FROM\s+(\w+\.?\w+)`)
	joinTablePattern = regexp.MustCompile(`JOIN\s+(\w+\.?\w+)`)
)

// ValidateAgainstSchema checks a generated query against the schema block
// it was generated from. Checks are textual: every table referenced in a
// FROM or JOIN clause must match a table in the block, the query must
// contain SELECT, and parentheses must balance. Column references are not
// checked. The function never panics; an internal failure is reported as a
// single validation error instead.
func ValidateAgainstSchema(query, schemaText string) (result models.ValidationResult) {
	result.IsValid = true

	defer func() {
		if r := recover(); r != nil {
			result = models.ValidationResult{IsValid: true}
			result.AddError("Validation error: %v", r)
		}
	}()

	idx := ParseSchemaBlock(schemaText)
	upper := strings.ToUpper(query)

	for _, ref := range referencedTables(upper) {
		clean := strings.TrimSpace(strings.TrimPrefix(ref, "DBO."))
		if !idx.HasTable(clean) {
			result.AddError("Table '%s' not found in provided schema", ref)
		}
	}

	if !strings.Contains(upper, "SELECT") {
		result.AddError("Query does not appear to be a valid SELECT statement")
	}

	if strings.Count(query, "(") != strings.Count(query, ")") {
		result.AddError("Unmatched parentheses in query")
	}

	for _, w := range CheckLiteralInjection(query) {
		result.AddWarning("%s", w)
	}

	return result
}

// referencedTables returns the distinct table names pulled from FROM and
// JOIN clauses, in first-seen order. upper must already be uppercased.
func referencedTables(upper string) []string {
	seen := make(map[string]struct{})
	var tables []string

	for _, pattern := range []*regexp.Regexp{fromTablePattern, joinTablePattern} {
		for _, m := range pattern.FindAllStringSubmatch(upper, -1) {
			if _, ok := seen[m[1]]; ok {
				continue
			}
			seen[m[1]] = struct{}{}
			tables = append(tables, m[1])
		}
	}

	return tables
}
