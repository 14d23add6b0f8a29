// Package audit records redacted request traces. Entries are append
// only: sinks may add records but never mutate or delete them. All
// text reaching a sink has already been through redaction.
package audit

import (
	"context"
	"time"

	"github.com/luthortech/aiops-assistant/pkg/prefixed_uuid"
)

// EntryIDPrefix is the prefix applied to generated audit identifiers.
const EntryIDPrefix = "audit"

// Entry is a single redacted audit record.
type Entry struct {
	EventID         prefixed_uuid.PrefixedUUID `json:"event_id"`
	Timestamp       time.Time                  `json:"timestamp"`
	Intent          string                     `json:"intent"`
	RedactedInput   string                     `json:"redacted_input"`
	PlanSummary     string                     `json:"plan_summary"`
	Status          string                     `json:"status"`
	Route           map[string]any             `json:"route"`
	Plan            map[string]any             `json:"plan"`
	SQL             map[string]any             `json:"sql,omitempty"`
	RedactionCounts map[string]int             `json:"redaction_counts"`
}

// NewEntry creates an entry with a fresh identifier and timestamp.
func NewEntry() Entry {
	return Entry{
		EventID:   prefixed_uuid.New(EntryIDPrefix),
		Timestamp: time.Now().UTC(),
	}
}

// Sink persists audit entries. Append must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
}
