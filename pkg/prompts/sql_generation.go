// Package prompts builds the deterministic prompt text sent to the
// completion model for SQL generation and repair.
package prompts

import (
	"fmt"
	"strings"
)

// Mode selects the prompt variant.
type Mode int

const (
	// ModeBaseline is the plain generation prompt.
	ModeBaseline Mode = iota
	// ModeHierarchy appends the identifier-hierarchy note for questions
	// that mix organization, account, and user identifiers.
	ModeHierarchy
)

// hierarchyKeywords trigger the hierarchy-aware variant when any of them
// appears in the question. Matching is case-insensitive substring; "id" is
// deliberately broad.
var hierarchyKeywords = []string{
	"account", "organization", "org", "user", "billing", "id", "hierarchy",
}

// HierarchyNote explains the identifier hierarchy of the billing data
// model. Injected verbatim when the hierarchy-aware variant is selected.
const HierarchyNote = `IMPORTANT - Identifier hierarchy:
The data model is hierarchical. An organization (org_id) owns one or more accounts (acct_id); each account belongs to exactly one organization. Users (user_id) are attached to accounts, not to organizations. Billing and payment tables reference acct_id. When a question mentions an organization, resolve it to its accounts through the account table before joining billing tables. Never compare org_id and acct_id directly - they are different identifier spaces.`

// SelectMode decides the prompt variant. Any repair attempt after the first
// uses the hierarchy-aware variant; otherwise the question is matched
// against the keyword vocabulary.
func SelectMode(question string, attempt int) Mode {
	if attempt >= 1 {
		return ModeHierarchy
	}
	lower := strings.ToLower(question)
	for _, kw := range hierarchyKeywords {
		if strings.Contains(lower, kw) {
			return ModeHierarchy
		}
	}
	return ModeBaseline
}

// BuildSQLPrompt renders the generation prompt for a question and its
// pruned schema block.
func BuildSQLPrompt(question, schemaText string, mode Mode) string {
	var b strings.Builder

	b.WriteString("You are an expert T-SQL assistant. You write correct and efficient queries for Microsoft SQL Server.\n\n")
	b.WriteString("User question:\n")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString(roleAndContextSection)
	b.WriteString("   ")
	b.WriteString(schemaText)
	b.WriteString("\n\n")
	b.WriteString(constructionAndOutputSection)

	if mode == ModeHierarchy {
		b.WriteString("\n\n")
		b.WriteString(HierarchyNote)
	}

	return strings.TrimSpace(b.String())
}

// BuildRepairPrompt renders the follow-up prompt that asks the model to
// correct a query that failed validation. The model is instructed to
// return bare SQL, so the response is used as-is without re-extraction.
func BuildRepairPrompt(originalQuery string, validationErrors []string, schemaText, question string, mode Mode) string {
	prompt := fmt.Sprintf(`The following SQL query has validation errors and needs to be corrected:

ORIGINAL QUERY:
`+"```sql\n"+`%s
`+"```\n"+`
VALIDATION ERRORS:
%s

AVAILABLE SCHEMA:
%s

USER QUESTION:
%s

Please provide a corrected T-SQL query that:
1. Fixes all the validation errors listed above
2. Uses only tables and columns that exist in the provided schema
3. Still answers the original user question accurately

Return ONLY the corrected SQL query without any explanation:`,
		originalQuery, strings.Join(validationErrors, "\n"), schemaText, question)

	if mode == ModeHierarchy {
		prompt += "\n\n" + HierarchyNote
	}

	return prompt
}

const roleAndContextSection = `# Role Definition

You are an expert T-SQL database developer with deep expertise in query optimization, schema analysis, and translating natural language questions into precise, efficient SQL queries. Your role is to analyze provided table schemas, understand user requirements, and construct accurate T-SQL queries that directly answer the user's question.

# Contextual Information

You will be provided with:
- A list of the most relevant database tables with their schemas (table names, column names, data types, and relationships)
- A natural language question from the user that requires a SQL query to answer

The tables provided have been pre-selected as the most relevant to the user's question, but you must determine the optimal way to query them. You are working within a T-SQL environment (SQL Server/Azure SQL Database).

# Task Description and Goals

Your primary goal is to generate a precise, executable T-SQL query that accurately answers the user's question using the provided table schemas. The query should be:

1. **Accurate**: Directly answers the specific question asked
2. **Efficient**: Uses appropriate joins, filters, and indexing strategies
3. **Specific**: Targets the exact data needed without over-fetching
4. **Readable**: Well-formatted with clear aliasing and logical structure

# Instructional Guidance and Constraints

Follow this systematic approach:

1. **Analyze the Question**: Break down what the user is asking for - identify required columns, filtering conditions, aggregations, and relationships between tables.

2. **Review Provided Tables**: Examine the table schemas to understand:
   - Which columns contain the needed data
   - How tables relate to each other (foreign keys, common columns)
   - What data types you're working with
`

const constructionAndOutputSection = `3. **Iterative Query Construction**: Attempt to build the most specific query first, following this progression:
   - **Attempt 1**: Construct a highly specific query targeting exact columns and relationships you've identified
   - **Attempt 2**: If the first approach has limitations or uncertainties, try an alternative approach with different joins or filtering logic
   - **Attempt 3**: If specific approaches are problematic, broaden the query slightly while maintaining precision
   - **Final Resort**: Only if the above attempts are insufficient, construct a more general query that captures the needed data with additional filtering that can be applied post-query

4. **Query Requirements**:
   - Use explicit JOIN syntax (INNER JOIN, LEFT JOIN, etc.) rather than implicit joins
   - Include WHERE clauses for any filtering conditions
   - Use appropriate aggregation functions (COUNT, SUM, AVG, etc.) when needed
   - Add ORDER BY clauses when the question implies a specific ordering
   - Include TOP or OFFSET-FETCH for limited result sets when appropriate
   - Use table aliases for readability
   - Comment complex logic within the query

5. **Validation Checks**:
   - Ensure all referenced columns exist in the provided tables
   - Verify join conditions are logical and complete
   - Confirm the output matches what the question asks for
   - Check for potential NULL handling issues

# Expected Output Format and Examples

Your response should follow this structure:

` + "```" + `
## Query Analysis
[Brief 2-3 sentence explanation of what the user is asking for and your approach]

## T-SQL Query
` + "```sql" + `
[Your complete, executable T-SQL query]
` + "```" + `

## Query Explanation
[Explain the key components: joins used, filtering logic, aggregations, and why this approach answers the question]

## Assumptions
[List any assumptions made about the data or relationships]
` + "```" + `

## Few-Shot Examples
**Example :**
` + "```" + `
User Question: "Get a list of org id, account id with their billed amount for which they have autopay enabled."
Tables Provided:
- t_acct
- t_billed

Query Analysis:
Get a list of org id, account id with their billed amount for which they have autopay enabled.

T-SQL Query:
` + "```sql" + `
WITH autopay_on AS (
    SELECT DISTINCT acct_id
    FROM dbo.t_acct_payment_info
    WHERE autopay_enabled IS NOT NULL
)
SELECT a.*
FROM dbo.t_billed AS a
JOIN autopay_on AS ap
    ON a.acct_id = ap.acct_id;
` + "```" + `

` + "```" + `

# Any Additional Notes on Scope or Limitations

- You should only generate queries using the tables explicitly provided to you
- If the provided tables are clearly insufficient to answer the question, state this explicitly and explain what additional tables or information would be needed
- Do not fabricate table names, column names, or relationships not present in the provided schema
- If the question is ambiguous, state your interpretation and proceed with the most logical query
- Focus on standard T-SQL syntax compatible with SQL Server 2016 and later versions
- Prioritize correctness over performance, but note any obvious optimization opportunities`
