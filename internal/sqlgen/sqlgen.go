// Package sqlgen drafts safe-by-default SQL Server queries from natural
// language. Drafts are read-only SELECT statements with a TOP (N) row
// limit and sensitive columns excluded; they are intended for human
// review, never execution.
package sqlgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/luthortech/aiops-assistant/internal/storage"
)

// DefaultTopN is the row limit applied when none is configured.
const DefaultTopN = 100

// maxSelectColumns caps the width of generated select lists.
const maxSelectColumns = 12

var sensitiveColumnHints = []string{
	"password", "passwd", "ssn", "social", "dob", "birth", "email", "mail", "phone", "mobile",
}

var preferredDateColumns = []string{"CreatedDate", "CreateDate", "HireDate", "EffectiveDate", "EFFDT"}

// Schema describes the tables available for query drafting.
type Schema struct {
	Tables map[string][]string `json:"tables"`
}

// Draft is a reviewable SQL artifact.
type Draft struct {
	Dialect             string   `json:"dialect"`
	Query               string   `json:"query"`
	Assumptions         []string `json:"assumptions"`
	SafetyNotes         []string `json:"safety_notes"`
	SuggestedNextInputs []string `json:"suggested_next_inputs"`
}

// Generator drafts SQL from user text, optionally guided by a schema
// document loaded through a FileProvider.
type Generator struct {
	provider storage.FileProvider
	topN     int
}

// New creates a generator. The provider may be nil when no schema
// storage is configured; drafts then fall back to placeholder tables.
func New(provider storage.FileProvider, topN int) *Generator {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Generator{
		provider: provider,
		topN:     topN,
	}
}

// Generate drafts a query for the given request text. schemaPath names
// a JSON schema document relative to the provider root; empty means no
// schema guidance.
func (g *Generator) Generate(ctx context.Context, userText, schemaPath string) (Draft, error) {
	schema, err := g.loadSchema(ctx, schemaPath)
	if err != nil {
		return Draft{}, err
	}

	table, cols := chooseTable(userText, schema)
	selectCols := chooseColumns(cols)
	whereClause := ""
	if len(cols) > 0 {
		whereClause = buildWhere(userText, cols)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT TOP (%d)\n    %s\nFROM %s", g.topN, strings.Join(selectCols, ",\n    "), table)
	if whereClause != "" {
		sb.WriteString("\n")
		sb.WriteString(whereClause)
	}
	sb.WriteString("\n;")

	assumptions := []string{
		"This is a draft SQL Server query intended for review (not execution).",
		fmt.Sprintf("Row limiting is applied by default (TOP %d) as a guardrail.", g.topN),
	}
	if schemaPath != "" {
		assumptions = append(assumptions, fmt.Sprintf("Schema guidance loaded from: %s", schemaPath))
	} else {
		assumptions = append(assumptions, "No schema file provided; table/columns may be placeholders.")
	}

	safetyNotes := []string{
		fmt.Sprintf("Read-only SELECT query with TOP (%d) row limit applied.", g.topN),
		"Avoid selecting sensitive columns (SSN, passwords, personal contact info).",
		"Confirm indexing and filters before running against production tables.",
	}
	if len(cols) > 0 && len(selectCols) == 1 && selectCols[0] == "*" {
		safetyNotes = append(safetyNotes,
			"Every schema column matched a sensitive hint; the SELECT * fallback will expand to those columns, so trim the select list before running.")
	}

	return Draft{
		Dialect:     "sqlserver",
		Query:       sb.String(),
		Assumptions: assumptions,
		SafetyNotes: safetyNotes,
		SuggestedNextInputs: []string{
			"Confirm the correct table(s) and key columns for your environment.",
			"Provide exact status codes and date fields used in your system.",
			"Specify ordering and expected row volume (for performance planning).",
		},
	}, nil
}

func (g *Generator) loadSchema(ctx context.Context, schemaPath string) (*Schema, error) {
	if schemaPath == "" || g.provider == nil {
		return nil, nil
	}

	data, err := g.provider.Read(ctx, schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
	}

	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", schemaPath, err)
	}

	return &schema, nil
}

// chooseTable picks the schema table best matching the request text.
// Without a schema it returns a placeholder table with no column info.
func chooseTable(userText string, schema *Schema) (string, []string) {
	if schema == nil || len(schema.Tables) == 0 {
		return "dbo.YourTable", nil
	}

	text := strings.ToLower(userText)

	names := make([]string, 0, len(schema.Tables))
	for name := range schema.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	var candidates []string
	for _, name := range names {
		lowered := strings.ToLower(name)
		switch {
		case strings.Contains(text, "employee") && strings.Contains(lowered, "employee"):
			candidates = append(candidates, name)
		case strings.Contains(text, "department") && (strings.Contains(lowered, "department") || strings.Contains(lowered, "dept")):
			candidates = append(candidates, name)
		case strings.Contains(text, "time") && (strings.Contains(lowered, "time") || strings.Contains(lowered, "labor")):
			candidates = append(candidates, name)
		}
	}

	table := names[0]
	if len(candidates) > 0 {
		table = candidates[0]
	}
	return table, schema.Tables[table]
}

// chooseColumns filters out sensitive columns and caps the list width.
func chooseColumns(cols []string) []string {
	if len(cols) == 0 {
		return []string{"*"}
	}

	var safe []string
	for _, col := range cols {
		if !isSensitive(col) {
			safe = append(safe, col)
		}
	}
	if len(safe) == 0 {
		return []string{"*"}
	}
	if len(safe) > maxSelectColumns {
		safe = safe[:maxSelectColumns]
	}
	return safe
}

func isSensitive(col string) bool {
	lowered := strings.ToLower(col)
	for _, hint := range sensitiveColumnHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	return false
}

func buildWhere(userText string, cols []string) string {
	text := strings.ToLower(userText)
	var clauses []string

	statusCol := ""
	for _, col := range cols {
		switch strings.ToLower(col) {
		case "status", "empstatus", "empl_status":
			statusCol = col
		}
		if statusCol != "" {
			break
		}
	}
	if strings.Contains(text, "active") && statusCol != "" {
		clauses = append(clauses, fmt.Sprintf("%s = 'ACTIVE'", statusCol))
	}

	if strings.Contains(text, "last 90 days") || strings.Contains(text, "past 90 days") {
		if dateCol := pickDateColumn(cols); dateCol != "" {
			clauses = append(clauses, fmt.Sprintf("%s >= DATEADD(DAY, -90, GETDATE())", dateCol))
		}
	}

	if len(clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(clauses, " AND ")
}

func pickDateColumn(cols []string) string {
	for _, preferred := range preferredDateColumns {
		for _, col := range cols {
			if col == preferred {
				return col
			}
		}
	}
	for _, col := range cols {
		if strings.Contains(strings.ToLower(col), "date") {
			return col
		}
	}
	return ""
}
