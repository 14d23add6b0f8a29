// Package executor runs the whitelisted action registered for a plan's
// intent. The whitelist is built once at startup and never mutated;
// an intent without a registered action yields an unsupported result,
// never a failure.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/luthortech/aiops-assistant/internal/planner"
	"github.com/luthortech/aiops-assistant/internal/router"
	"github.com/luthortech/aiops-assistant/internal/sqlgen"
	"github.com/luthortech/aiops-assistant/pkg/logger"
)

// Action names in the whitelist.
const (
	ActionGenerateSQL    = "generate_sql"
	ActionValidateRules  = "validate_rules"
	ActionSummarizeText  = "summarize_text"
	ActionExplainConcept = "explain_concept"
)

// Statuses reported in execution results.
const (
	StatusOK          = "ok"
	StatusUnsupported = "unsupported"
)

// Result is the outcome of running an action against a plan.
type Result struct {
	ActionName string         `json:"action_name"`
	Status     string         `json:"status"`
	Output     map[string]any `json:"output,omitempty"`
}

// Input carries the request context an action runs against.
type Input struct {
	Text       string
	SchemaPath string
}

// Action is a deterministic, side-effect-free operation run against a
// plan.
type Action func(ctx context.Context, plan planner.Plan, in Input) (map[string]any, error)

// Executor dispatches plans to whitelisted actions.
type Executor struct {
	whitelist map[router.Intent]registeredAction
	log       logger.Logger
}

type registeredAction struct {
	name string
	run  Action
}

// New builds an executor with the standard whitelist. The SQL
// generator backs the QUERY action; the remaining intents run local
// deterministic stubs.
func New(gen *sqlgen.Generator, log logger.Logger) *Executor {
	e := &Executor{
		whitelist: map[router.Intent]registeredAction{},
		log:       log,
	}

	e.register(router.IntentQuery, ActionGenerateSQL, generateSQLAction(gen))
	e.register(router.IntentValidate, ActionValidateRules, validateRulesAction)
	e.register(router.IntentSummarize, ActionSummarizeText, summarizeTextAction)
	e.register(router.IntentExplain, ActionExplainConcept, explainConceptAction)

	return e
}

func (e *Executor) register(intent router.Intent, name string, action Action) {
	e.whitelist[intent] = registeredAction{name: name, run: action}
}

// Supports reports whether an action is registered for the intent.
func (e *Executor) Supports(intent router.Intent) bool {
	_, ok := e.whitelist[intent]
	return ok
}

// Execute looks up the plan's intent in the whitelist and runs the
// registered action. Unregistered intents and action errors both
// produce an unsupported result rather than an error to the caller.
func (e *Executor) Execute(ctx context.Context, plan planner.Plan, in Input) Result {
	registered, ok := e.whitelist[plan.Intent]
	if !ok {
		e.log.Warn("no action registered for intent",
			logger.IntentField(string(plan.Intent)),
			logger.StringField("plan_id", plan.PlanID.String()),
		)
		return Result{
			ActionName: "",
			Status:     StatusUnsupported,
		}
	}

	output, err := registered.run(ctx, plan, in)
	if err != nil {
		e.log.Error("action failed",
			logger.IntentField(string(plan.Intent)),
			logger.StringField("action", registered.name),
			logger.ErrorField(err),
		)
		return Result{
			ActionName: registered.name,
			Status:     StatusUnsupported,
			Output:     map[string]any{"error": err.Error()},
		}
	}

	return Result{
		ActionName: registered.name,
		Status:     StatusOK,
		Output:     output,
	}
}

func generateSQLAction(gen *sqlgen.Generator) Action {
	return func(ctx context.Context, plan planner.Plan, in Input) (map[string]any, error) {
		if gen == nil {
			return nil, fmt.Errorf("sql generator not configured")
		}

		draft, err := gen.Generate(ctx, in.Text, in.SchemaPath)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"dialect":               draft.Dialect,
			"query":                 draft.Query,
			"assumptions":           draft.Assumptions,
			"safety_notes":          draft.SafetyNotes,
			"suggested_next_inputs": draft.SuggestedNextInputs,
		}, nil
	}
}

func validateRulesAction(_ context.Context, plan planner.Plan, in Input) (map[string]any, error) {
	return map[string]any{
		"report_type": "validation_report",
		"checks": []string{
			"Rule extraction into a consistent schema",
			"Contradiction and missing-branch analysis",
			"Targeted test case proposal for risk areas",
		},
		"risk_flags": plan.RiskFlags,
		"next_steps": plan.Steps,
	}, nil
}

func summarizeTextAction(_ context.Context, _ planner.Plan, in Input) (map[string]any, error) {
	return map[string]any{
		"summary_type": "extractive",
		"word_count":   len(strings.Fields(in.Text)),
		"guidance":     "Provide the full text to summarize as a follow-up input.",
	}, nil
}

func explainConceptAction(_ context.Context, plan planner.Plan, _ Input) (map[string]any, error) {
	return map[string]any{
		"explanation_style": "structured",
		"outline":           plan.Steps,
	}, nil
}
