// Package composer assembles the final response from a plan and an
// execution result, and records a redacted audit entry when auditing
// is enabled. Redaction always runs before anything is persisted.
package composer

import (
	"context"

	"github.com/luthortech/aiops-assistant/internal/audit"
	"github.com/luthortech/aiops-assistant/internal/executor"
	"github.com/luthortech/aiops-assistant/internal/governance"
	"github.com/luthortech/aiops-assistant/internal/planner"
	"github.com/luthortech/aiops-assistant/internal/router"
	"github.com/luthortech/aiops-assistant/pkg/logger"
	"github.com/luthortech/aiops-assistant/pkg/metrics"
)

// Response is the user-facing result of a planning request.
type Response struct {
	Route   router.RouteResult `json:"route"`
	Plan    planner.Plan       `json:"plan"`
	Result  executor.Result    `json:"result"`
	SQL     map[string]any     `json:"sql,omitempty"`
	AuditID string             `json:"audit_id,omitempty"`
}

// Composer builds responses and writes audit entries.
type Composer struct {
	sink    audit.Sink
	metrics *metrics.Metrics
	log     logger.Logger
}

// New creates a composer. The sink may be nil when auditing is
// disabled globally.
func New(sink audit.Sink, m *metrics.Metrics, log logger.Logger) *Composer {
	return &Composer{
		sink:    sink,
		metrics: m,
		log:     log,
	}
}

// Input carries everything the composer merges.
type Input struct {
	Text         string
	Route        router.RouteResult
	Plan         planner.Plan
	Result       executor.Result
	AuditEnabled bool
}

// Compose merges the plan and execution result into a response. When
// auditing is enabled and a sink is configured, a redacted entry is
// appended first; an audit failure is logged and surfaced as a missing
// audit_id, never as a failed request.
func (c *Composer) Compose(ctx context.Context, in Input) Response {
	resp := Response{
		Route:  in.Route,
		Plan:   in.Plan,
		Result: in.Result,
	}

	if in.Result.ActionName == executor.ActionGenerateSQL && in.Result.Status == executor.StatusOK {
		resp.SQL = in.Result.Output
	}

	c.metrics.ObservePlan(string(in.Plan.Intent))
	if in.Result.Status == executor.StatusUnsupported {
		c.metrics.ObserveUnsupportedAction()
	}

	if !in.AuditEnabled || c.sink == nil {
		return resp
	}

	redaction := governance.Redact(in.Text)
	c.metrics.ObserveRedactions(redaction.Counts)

	entry := audit.NewEntry()
	entry.Intent = string(in.Plan.Intent)
	entry.RedactedInput = redaction.RedactedText
	entry.PlanSummary = in.Plan.Summary()
	entry.Status = in.Result.Status
	entry.Route = map[string]any{
		"intent":     string(in.Route.Intent),
		"confidence": in.Route.Confidence,
		"rationale":  in.Route.Rationale,
	}
	entry.Plan = map[string]any{
		"plan_id":         in.Plan.PlanID.String(),
		"intent":          string(in.Plan.Intent),
		"assumptions":     in.Plan.Assumptions,
		"steps":           in.Plan.Steps,
		"required_inputs": in.Plan.RequiredInputs,
		"risk_flags":      in.Plan.RiskFlags,
		"output_format":   in.Plan.OutputFormat,
	}
	entry.SQL = resp.SQL
	entry.RedactionCounts = redaction.Counts

	if err := c.sink.Append(ctx, entry); err != nil {
		c.metrics.ObserveAudit(true)
		c.log.Error("failed to append audit entry",
			logger.StringField("event_id", entry.EventID.String()),
			logger.IntentField(entry.Intent),
			logger.ErrorField(err),
		)
		return resp
	}

	c.metrics.ObserveAudit(false)
	resp.AuditID = entry.EventID.String()
	return resp
}
