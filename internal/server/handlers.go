package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/luthortech/aiops-assistant/internal/composer"
	"github.com/luthortech/aiops-assistant/internal/executor"
	"github.com/luthortech/aiops-assistant/internal/planner"
	"github.com/luthortech/aiops-assistant/internal/router"
	"github.com/luthortech/aiops-assistant/pkg/logger"
)

// maxRequestBody bounds the size of plan request bodies.
const maxRequestBody = 1 << 20

// PlanRequest is the body of POST /plan.
type PlanRequest struct {
	Text       string `json:"text"`
	SchemaPath string `json:"schema_path,omitempty"`
	Audit      *bool  `json:"audit,omitempty"`
}

// DiscoveryResponse is returned from the service root.
type DiscoveryResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Health  string `json:"health"`
	Plan    string `json:"plan"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/", s.handleDiscovery)
	r.Head("/", s.handleDiscovery)
	r.Get("/health", s.checker.CombinedHandler())
	r.Head("/health", s.checker.CombinedHandler())
	r.Get("/health/live", s.checker.LivenessHandler())
	r.Get("/health/ready", s.checker.ReadinessHandler())
	r.Post("/plan", s.handlePlan)
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DiscoveryResponse{
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Health:  "/health",
		Plan:    "/plan",
	})
}

// handlePlan runs the full pipeline: classify, plan, execute, compose.
// Redaction happens inside the composer before any audit persistence.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text must not be empty"})
		return
	}

	auditEnabled := s.cfg.Audit.Enabled
	if req.Audit != nil {
		auditEnabled = auditEnabled && *req.Audit
	}

	ctx := r.Context()
	log := s.log.WithCorrelationID(logger.GetCorrelationIDFromContext(ctx))

	route := router.Classify(text)
	plan := s.planner.Build(route, planner.Input{
		Text:          text,
		HasSchemaPath: req.SchemaPath != "",
	})
	result := s.executor.Execute(ctx, plan, executor.Input{
		Text:       text,
		SchemaPath: req.SchemaPath,
	})

	resp := s.composer.Compose(ctx, composer.Input{
		Text:         text,
		Route:        route,
		Plan:         plan,
		Result:       result,
		AuditEnabled: auditEnabled,
	})

	log.Info("plan request handled",
		logger.IntentField(string(route.Intent)),
		logger.StringField("plan_id", plan.PlanID.String()),
		logger.StringField("status", result.Status),
		logger.BoolField("audited", resp.AuditID != ""),
	)

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
