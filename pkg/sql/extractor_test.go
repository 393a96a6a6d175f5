package sql

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "fenced sql block",
			response: "Here is the query:\n```sql\nSELECT 1\n```\nLet me know if you need anything else.",
			want:     "SELECT 1",
		},
		{
			name:     "fenced block with uppercase tag",
			response: "```SQL\nSELECT acct_id FROM t_acct;\n```",
			want:     "SELECT acct_id FROM t_acct;",
		},
		{
			name:     "fenced multiline block",
			response: "```sql\nSELECT a.acct_id, a.acct_name\nFROM t_acct a\nWHERE a.status = 'active'\n```",
			want:     "SELECT a.acct_id, a.acct_name\nFROM t_acct a\nWHERE a.status = 'active'",
		},
		{
			name:     "bare select line",
			response: "The query you need is:\nSELECT * FROM t_acct;\nThat should do it.",
			want:     "SELECT * FROM t_acct;",
		},
		{
			name:     "bare select spanning lines until terminator",
			response: "SELECT acct_id\nFROM t_acct\nWHERE acct_id > 10;\nExplanation follows here.",
			want:     "SELECT acct_id\nFROM t_acct\nWHERE acct_id > 10;",
		},
		{
			name:     "no sql at all",
			response: "  I could not determine a query for that request.  ",
			want:     "I could not determine a query for that request.",
		},
		{
			name:     "empty response",
			response: "",
			want:     "",
		},
		{
			name:     "fenced block wins over earlier bare select",
			response: "SELECT wrong FROM bad;\n```sql\nSELECT good FROM t_acct\n```",
			want:     "SELECT good FROM t_acct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSQL(tt.response)
			if got != tt.want {
				t.Errorf("ExtractSQL() = %q, want %q", got, tt.want)
			}
		})
	}
}
