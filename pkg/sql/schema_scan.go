package sql

import "strings"

// SchemaIndex is the table and column inventory recovered from a rendered
// schema block. Tables preserves first-seen order; Columns is keyed by the
// table identifier exactly as it appeared in the block.
type SchemaIndex struct {
	Tables  []string
	Columns map[string]map[string]struct{}
}

// HasTable reports whether name matches a known table. Matching is
// case-insensitive and by substring, so a bare table name matches its
// schema-qualified form.
func (s *SchemaIndex) HasTable(name string) bool {
	lower := strings.ToLower(name)
	for _, t := range s.Tables {
		if strings.Contains(strings.ToLower(t), lower) {
			return true
		}
	}
	return false
}

// ParseSchemaBlock scans a rendered schema block back into a SchemaIndex.
// A "Table X:" line opens a table; subsequent "- name (type ...)" bullets
// are its columns. Anything else is ignored, so truncation markers and
// description text pass through harmlessly.
func ParseSchemaBlock(schemaText string) *SchemaIndex {
	idx := &SchemaIndex{Columns: make(map[string]map[string]struct{})}

	var current string
	for _, line := range strings.Split(schemaText, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "Table ") && strings.Contains(stripped, ":") {
			name, _, _ := strings.Cut(stripped, ":")
			name = strings.TrimSpace(strings.TrimPrefix(name, "Table "))
			if name == "" {
				continue
			}
			current = name
			if _, ok := idx.Columns[current]; !ok {
				idx.Tables = append(idx.Tables, current)
				idx.Columns[current] = make(map[string]struct{})
			}
			continue
		}

		if current != "" && strings.HasPrefix(stripped, "- ") && strings.Contains(stripped, "(") {
			col, _, _ := strings.Cut(strings.ReplaceAll(stripped, "- ", ""), "(")
			col = strings.TrimSpace(col)
			if col != "" {
				idx.Columns[current][col] = struct{}{}
			}
		}
	}

	return idx
}
