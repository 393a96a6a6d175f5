package sql

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"
)

// CheckLiteralInjection runs every string literal in the query through
// libinjection's SQLi detector and returns a warning per suspicious
// literal. Only the literal values are checked - running the detector over
// a full SELECT statement would flag every query. Findings are advisory:
// queries here are never executed, so a hit is surfaced as a warning for
// the caller to log.
func CheckLiteralInjection(query string) []string {
	var warnings []string
	for _, lit := range stringLiterals(query) {
		if isSQLi, fingerprint := libinjection.IsSQLi(lit); isSQLi {
			warnings = append(warnings,
				fmt.Sprintf("String literal %q matches SQL injection fingerprint %q", lit, fingerprint))
		}
	}
	return warnings
}

// stringLiterals extracts the contents of single-quoted literals,
// honouring the doubled-quote escape ('').
func stringLiterals(query string) []string {
	var literals []string

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\'' {
			continue
		}
		var lit []rune
		for i++; i < len(runes); i++ {
			if runes[i] == '\'' {
				if i+1 < len(runes) && runes[i+1] == '\'' {
					lit = append(lit, '\'')
					i++
					continue
				}
				break
			}
			lit = append(lit, runes[i])
		}
		literals = append(literals, string(lit))
	}

	return literals
}
