package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/luthortech/aiops-assistant/internal/audit"
	"github.com/luthortech/aiops-assistant/internal/composer"
	"github.com/luthortech/aiops-assistant/internal/executor"
	"github.com/luthortech/aiops-assistant/internal/governance"
	"github.com/luthortech/aiops-assistant/internal/planner"
	"github.com/luthortech/aiops-assistant/internal/router"
	"github.com/luthortech/aiops-assistant/internal/sqlgen"
	"github.com/luthortech/aiops-assistant/internal/storage"
	"github.com/luthortech/aiops-assistant/pkg/metrics"
)

// PlanCommand returns a command that runs the planning pipeline once
// for a request given on the command line.
func PlanCommand() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Aliases:   []string{"p"},
		Usage:     "Generate a plan for a single request",
		ArgsUsage: "\"request text\"",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-audit",
				Usage: "Disable writing audit logs",
			},
			&cli.StringFlag{
				Name:  "audit-path",
				Usage: "Audit log file (overrides configuration)",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "Path to a JSON schema file guiding SQL drafting",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full response as JSON",
			},
		},
		Action: planAction,
	}
}

func planAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	text := strings.TrimSpace(strings.Join(ctx.Args().Slice(), " "))
	if text == "" {
		return cli.Exit("Provide a request text. Example:\n  aiops-assistant plan \"Generate a SQL query to list active employees\"", 2)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	auditEnabled := cfg.Audit.Enabled && !ctx.Bool("no-audit")
	auditPath := cfg.Audit.Path
	if override := ctx.String("audit-path"); override != "" {
		auditPath = override
	}

	var sink audit.Sink
	var fileSink *audit.FileSink
	if auditEnabled {
		fileSink, err = audit.NewFileSink(auditPath)
		if err != nil {
			return fmt.Errorf("failed to open audit log: %w", err)
		}
		defer func() { _ = fileSink.Close() }()
		sink = fileSink
	}

	// Schema paths on the command line are plain filesystem paths.
	schemaPath := ctx.String("schema")
	generator := sqlgen.New(storage.NewLocalFileProvider("."), cfg.SQL.TopN)

	m := metrics.NewMetrics(false, false, log)
	p := planner.New(governance.NewPolicyEngine())
	exec := executor.New(generator, log)
	comp := composer.New(sink, &m, log)

	route := router.Classify(text)
	plan := p.Build(route, planner.Input{Text: text, HasSchemaPath: schemaPath != ""})
	result := exec.Execute(ctx.Context, plan, executor.Input{Text: text, SchemaPath: schemaPath})

	resp := comp.Compose(ctx.Context, composer.Input{
		Text:         text,
		Route:        route,
		Plan:         plan,
		Result:       result,
		AuditEnabled: auditEnabled,
	})

	out := ctx.App.Writer
	if ctx.Bool("json") {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
	} else {
		printPlan(out, resp)
	}

	if resp.AuditID != "" {
		fmt.Fprintf(out, "Audit entry written: %s (%s)\n", resp.AuditID, auditPath)
	}

	return nil
}

func printPlan(out io.Writer, resp composer.Response) {
	fmt.Fprintf(out, "\nIntent: %s (confidence=%.2f)\n", resp.Plan.Intent, resp.Plan.Confidence)
	if len(resp.Plan.RiskFlags) > 0 {
		fmt.Fprintf(out, "Risk flags: %s\n", strings.Join(resp.Plan.RiskFlags, ", "))
	}

	fmt.Fprintln(out, "\nAssumptions:")
	for _, a := range resp.Plan.Assumptions {
		fmt.Fprintf(out, "  - %s\n", a)
	}

	fmt.Fprintln(out, "\nSteps:")
	for _, s := range resp.Plan.Steps {
		fmt.Fprintf(out, "  - %s\n", s)
	}

	if len(resp.Plan.RequiredInputs) > 0 {
		fmt.Fprintln(out, "\nRequired inputs:")
		for _, ri := range resp.Plan.RequiredInputs {
			fmt.Fprintf(out, "  - %s\n", ri)
		}
	}

	fmt.Fprintf(out, "\nOutput format: %s\n", resp.Plan.OutputFormat)

	if query, ok := resp.SQL["query"].(string); ok {
		fmt.Fprintf(out, "\nSQL draft:\n%s\n", query)
	}
	fmt.Fprintln(out)
}
