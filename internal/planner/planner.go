// Package planner expands a routed request into a structured plan
// artifact: assumptions, steps, required inputs and risk flags. Plans
// are deterministic template expansions per intent and are immutable
// once built.
package planner

import (
	"time"

	"github.com/luthortech/aiops-assistant/internal/governance"
	"github.com/luthortech/aiops-assistant/internal/router"
	"github.com/luthortech/aiops-assistant/pkg/prefixed_uuid"
)

// PlanIDPrefix is the prefix applied to generated plan identifiers.
const PlanIDPrefix = "plan"

// Output formats produced per intent.
const (
	OutputSQLPlan          = "sql_plan"
	OutputValidationReport = "validation_report"
	OutputSummary          = "summary"
	OutputExplanation      = "explanation"
)

// Plan is the structured reasoning artifact produced before any action
// is executed. Every plan carries at least one assumption.
type Plan struct {
	PlanID         prefixed_uuid.PrefixedUUID `json:"plan_id"`
	CreatedAt      time.Time                  `json:"created_at"`
	Intent         router.Intent              `json:"intent"`
	Confidence     float64                    `json:"confidence"`
	Assumptions    []string                   `json:"assumptions"`
	Steps          []string                   `json:"steps"`
	RequiredInputs []string                   `json:"required_inputs"`
	RiskFlags      []string                   `json:"risk_flags"`
	OutputFormat   string                     `json:"output_format"`
}

// Planner builds plans from routed requests.
type Planner struct {
	policy *governance.PolicyEngine
}

// New creates a planner using the given policy engine for risk flags.
func New(policy *governance.PolicyEngine) *Planner {
	return &Planner{policy: policy}
}

// Input carries the request context the planner needs.
type Input struct {
	Text          string
	HasSchemaPath bool
}

// Build expands a route result into a plan. The template per intent is
// fixed; only the risk flags vary with the request text.
func (p *Planner) Build(route router.RouteResult, in Input) Plan {
	plan := Plan{
		PlanID:     prefixed_uuid.New(PlanIDPrefix),
		CreatedAt:  time.Now().UTC(),
		Intent:     route.Intent,
		Confidence: route.Confidence,
	}

	plan.RiskFlags = p.policy.Evaluate(governance.EvaluateInput{
		Text:          in.Text,
		HasSchemaPath: in.HasSchemaPath,
		NeedsSchema:   route.Intent == router.IntentQuery,
	})

	switch route.Intent {
	case router.IntentQuery:
		plan.Assumptions = []string{
			"User intends to generate a SQL query plan (not execute it).",
			"Target schema/tables are not provided yet.",
			"Output should be safe-by-default (read-only).",
		}
		plan.RequiredInputs = []string{
			"Database type (e.g., SQL Server, Postgres, Oracle)",
			"Table names and key columns",
			"Desired filters and timeframe",
		}
		plan.Steps = []string{
			"Confirm data source and schema constraints.",
			"Draft a read-only SQL query with explicit joins/filters.",
			"Add guardrails (limit rows, avoid sensitive columns).",
			"Return query + explanation + assumptions.",
		}
		plan.OutputFormat = OutputSQLPlan

	case router.IntentValidate:
		plan.Assumptions = []string{
			"User wants to validate business rules or constraints.",
			"System context may be partial; clarify missing inputs.",
		}
		plan.RequiredInputs = []string{
			"Rules/constraints in a structured form (or examples)",
			"Edge cases or known failures (if any)",
		}
		plan.Steps = []string{
			"Extract rules and define them in a consistent schema.",
			"Check for contradictions and missing branches.",
			"Propose targeted test cases for risk areas.",
			"Return a structured risk report + next actions.",
		}
		plan.OutputFormat = OutputValidationReport

	case router.IntentSummarize:
		plan.Assumptions = []string{
			"User wants a concise summary faithful to the input content.",
			"No external facts will be introduced.",
		}
		plan.RequiredInputs = []string{
			"Text to summarize",
			"Preferred length (optional)",
		}
		plan.Steps = []string{
			"Identify key points and outcomes.",
			"Condense into a clear, structured summary.",
			"Return summary with optional bullet highlights.",
		}
		plan.OutputFormat = OutputSummary

	default:
		plan.Assumptions = []string{
			"User wants an explanation or reasoning-oriented response.",
			"We will state assumptions explicitly when context is missing.",
		}
		plan.RequiredInputs = []string{
			"Any relevant context or constraints (optional)",
		}
		plan.Steps = []string{
			"Clarify the goal and constraints.",
			"Explain the concept with concrete examples.",
			"Provide next-step actions or checks.",
		}
		plan.OutputFormat = OutputExplanation
	}

	return plan
}

// Summary returns a compact one-line description of the plan suitable
// for audit records.
func (plan Plan) Summary() string {
	return string(plan.Intent) + "/" + plan.OutputFormat
}
