package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantIntent     Intent
		wantConfidence float64
	}{
		{
			name:           "sql request routes to query",
			text:           "Generate a SQL query to list active employees hired in the last 90 days",
			wantIntent:     IntentQuery,
			wantConfidence: 0.9,
		},
		{
			name:           "validation request",
			text:           "Please validate these business rules for compliance",
			wantIntent:     IntentValidate,
			wantConfidence: 0.9,
		},
		{
			name:           "summary request",
			text:           "Can you summarize this incident timeline",
			wantIntent:     IntentSummarize,
			wantConfidence: 0.6,
		},
		{
			name:           "explanation request",
			text:           "Explain why the reconciliation job failed",
			wantIntent:     IntentExplain,
			wantConfidence: 0.75,
		},
		{
			name:           "no keywords falls back to explain",
			text:           "good morning team",
			wantIntent:     IntentExplain,
			wantConfidence: 0.35,
		},
		{
			name:           "empty input defaults to explain",
			text:           "",
			wantIntent:     IntentExplain,
			wantConfidence: 0.35,
		},
		{
			name:           "whitespace only defaults to explain",
			text:           "   \t\n  ",
			wantIntent:     IntentExplain,
			wantConfidence: 0.35,
		},
		{
			name:           "confidence caps at 0.95",
			text:           "select a sql query report from the table join where count list",
			wantIntent:     IntentQuery,
			wantConfidence: 0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text)
			assert.Equal(t, tt.wantIntent, result.Intent)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 0.0001)
			assert.NotEmpty(t, result.Rationale)
		})
	}
}

func TestClassifyTieBreaksByPriority(t *testing.T) {
	// "check the summary" scores VALIDATE and SUMMARIZE equally;
	// VALIDATE wins on priority.
	result := Classify("check the summary")
	assert.Equal(t, IntentValidate, result.Intent)

	// QUERY outranks everything at equal score.
	result = Classify("query check")
	assert.Equal(t, IntentQuery, result.Intent)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	upper := Classify("SUMMARIZE THIS DOCUMENT")
	lower := Classify("summarize this document")
	assert.Equal(t, lower, upper)
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "validate the policy constraints and check edge cases"
	first := Classify(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Classify(text))
	}
}

func TestClassifyAlwaysYieldsActionableIntent(t *testing.T) {
	actionable := []Intent{IntentQuery, IntentValidate, IntentSummarize, IntentExplain}

	inputs := []string{
		"",
		"   \t\n",
		"good morning team",
		"select * from somewhere",
		"validate this",
		"!!! ??? ...",
		"日本語のテキスト",
	}

	for _, text := range inputs {
		result := Classify(text)
		assert.Contains(t, actionable, result.Intent, "input %q", text)
		assert.Greater(t, result.Confidence, 0.0)
	}
}
