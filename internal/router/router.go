// Package router classifies natural-language requests into one of the
// supported intents using deterministic keyword scoring. The router is
// intentionally simple and auditable; every classification carries a
// confidence and a human-readable rationale.
package router

import (
	"fmt"
	"strings"
)

// Intent is the classification assigned to a user request.
type Intent string

const (
	IntentQuery     Intent = "QUERY"
	IntentValidate  Intent = "VALIDATE"
	IntentSummarize Intent = "SUMMARIZE"
	IntentExplain   Intent = "EXPLAIN"

	// IntentUnknown is never produced by Classify; it marks intents
	// with no registered action.
	IntentUnknown Intent = "UNKNOWN"
)

// String returns the intent tag.
func (i Intent) String() string {
	return string(i)
}

// RouteResult is the outcome of classifying a request.
type RouteResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// defaultConfidence is assigned when no keywords match and the router
// falls back to EXPLAIN.
const defaultConfidence = 0.35

// priority is the tie-break order when multiple intents score equally.
var priority = []Intent{IntentQuery, IntentValidate, IntentSummarize, IntentExplain}

var keywords = map[Intent][]string{
	IntentQuery:     {"select", "sql", "query", "report", "table", "join", "where", "count", "list"},
	IntentValidate:  {"validate", "check", "verify", "rule", "constraint", "policy", "compliance", "edge case"},
	IntentSummarize: {"summarize", "summary", "tl;dr", "recap", "shorten"},
	IntentExplain:   {"explain", "why", "how", "walk me through", "reason", "rationale"},
}

// Classify routes user text to an intent. It is a total function over
// any input: empty or unrecognizable text falls back to EXPLAIN with
// low confidence rather than failing, so every request yields an
// actionable intent.
func Classify(userText string) RouteResult {
	text := strings.ToLower(strings.TrimSpace(userText))
	if text == "" {
		return RouteResult{
			Intent:     IntentExplain,
			Confidence: defaultConfidence,
			Rationale:  "Empty input; defaulting to EXPLAIN",
		}
	}

	scores := make(map[Intent]int, len(keywords))
	for intent, terms := range keywords {
		for _, term := range terms {
			if strings.Contains(text, term) {
				scores[intent]++
			}
		}
	}

	// Walk in priority order so ties resolve deterministically.
	bestIntent := IntentExplain
	bestScore := 0
	for _, intent := range priority {
		if scores[intent] > bestScore {
			bestIntent = intent
			bestScore = scores[intent]
		}
	}

	if bestScore == 0 {
		return RouteResult{
			Intent:     IntentExplain,
			Confidence: defaultConfidence,
			Rationale:  "No explicit keywords matched; defaulting to EXPLAIN",
		}
	}

	confidence := 0.45 + float64(bestScore)*0.15
	if confidence > 0.95 {
		confidence = 0.95
	}

	return RouteResult{
		Intent:     bestIntent,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("Matched keywords for %s", bestIntent),
	}
}
