// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/agora/internal/domain/dedupe"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes an evaluation for async folding. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, e model.Evaluation) bool

	// Proposal lifecycle and reads.
	CreateProposal(ctx context.Context, id, title string) (model.Proposal, error)
	GetProposal(ctx context.Context, id string) (types.ProposalView, error)

	// SelectBatch assembles an adaptive evaluation batch for one evaluator.
	SelectBatch(ctx context.Context, evaluatorID string, size int) (types.Batch, error)
}

// Batch mirrors the read shape returned by batch selection.
type Batch = types.Batch

// ProposalView mirrors the read shape returned by proposal queries.
type ProposalView = types.ProposalView

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
	proposalsHandler   *ProposalsHandler
	batchHandler       *BatchHandler
	paymentsHandler    *PaymentsHandler
	acceptanceHandler  *AcceptanceHandler
	divergenceHandler  *DivergenceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluationsHandler: NewEvaluationsHandler(deps),
		proposalsHandler:   NewProposalsHandler(deps),
		batchHandler:       NewBatchHandler(deps),
		paymentsHandler:    NewPaymentsHandler(),
		acceptanceHandler:  NewAcceptanceHandler(),
		divergenceHandler:  NewDivergenceHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/proposals", MetricsMiddleware(s.proposalsHandler.HandleCreateProposal, "proposals"))
	mux.HandleFunc("/proposals/", MetricsMiddleware(s.proposalsHandler.HandleGetProposal, "proposal"))
	mux.HandleFunc("/batch", MetricsMiddleware(s.batchHandler.HandleGetBatch, "batch"))
	mux.HandleFunc("/payments", MetricsMiddleware(s.paymentsHandler.HandlePostPayments, "payments"))
	mux.HandleFunc("/acceptance", MetricsMiddleware(s.acceptanceHandler.HandlePostAcceptance, "acceptance"))
	mux.HandleFunc("/divergence", MetricsMiddleware(s.divergenceHandler.HandlePostDivergence, "divergence"))
}

type ackResponse struct {
	Status       string `json:"status"`
	Duplicate    bool   `json:"duplicate"`
	EvaluationID string `json:"evaluation_id,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
