// Package sql provides extraction and schema-conformance validation for
// generated SQL text. Nothing here parses SQL properly; these are the
// lightweight text heuristics the generation loop depends on.
package sql

import (
	"regexp"
	"strings"
)

var fencedSQLPattern = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")

// sqlKeywords is the stop-set for the line scanner: a non-empty line
// containing none of these no longer looks like SQL.
var sqlKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "GROUP", "ORDER",
	"HAVING", "AND", "OR", "ON", "AS", "INNER", "LEFT", "RIGHT",
}

// ExtractSQL isolates the SQL statement from a raw model response.
//
// Policy, in order: a fenced ```sql block wins; otherwise lines are
// collected from the first line beginning with SELECT until a statement
// terminator or a line that no longer looks like SQL; otherwise the whole
// trimmed response is returned. Extraction is best-effort and never fails -
// a bad result simply fails validation downstream and enters repair.
func ExtractSQL(response string) string {
	if m := fencedSQLPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	var sqlLines []string
	inSQL := false

	for _, line := range strings.Split(response, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToUpper(stripped), "SELECT") {
			inSQL = true
		}

		if inSQL {
			sqlLines = append(sqlLines, line)
			if strings.HasSuffix(stripped, ";") || (stripped != "" && !looksLikeSQL(stripped)) {
				break
			}
		}
	}

	if len(sqlLines) > 0 {
		return strings.TrimSpace(strings.Join(sqlLines, "\n"))
	}

	return strings.TrimSpace(response)
}

func looksLikeSQL(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range sqlKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
