// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/agora/internal/domain/dedupe"
	"github.com/okian/agora/internal/domain/model"
)

// EvaluationDependencies defines the interface for evaluation intake dependencies
type EvaluationDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.Evaluation) bool
}

// EvaluationsHandler handles evaluation submissions
type EvaluationsHandler struct {
	deps EvaluationDependencies
}

// NewEvaluationsHandler creates a new evaluations handler
func NewEvaluationsHandler(deps EvaluationDependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// evaluationRequest mirrors the OpenAPI schema for POST /evaluations.
type evaluationRequest struct {
	EvaluationID string  `json:"evaluation_id"`
	ProposalID   string  `json:"proposal_id"`
	EvaluatorID  string  `json:"evaluator_id"`
	Value        float64 `json:"value"`
	TS           string  `json:"ts"`
}

func (e evaluationRequest) validate() error {
	switch {
	case strings.TrimSpace(e.ProposalID) == "":
		return errors.New("missing proposal_id")
	case strings.TrimSpace(e.EvaluatorID) == "":
		return errors.New("missing evaluator_id")
	case strings.TrimSpace(e.TS) == "":
		return errors.New("missing ts")
	}
	if !model.ValidValue(e.Value) {
		return errors.New("value out of range; must be in [-1, 1]")
	}
	if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

// HandlePostEvaluation handles POST /evaluations requests
func (h *EvaluationsHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	// Clients may omit the idempotency key; mint one so retries of the
	// same server response stay traceable.
	if strings.TrimSpace(req.EvaluationID) == "" {
		req.EvaluationID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EvaluationID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, EvaluationID: req.EvaluationID})
		return
	}

	ts, _ := time.Parse(time.RFC3339, req.TS)
	eval := model.Evaluation{
		EvaluationID: req.EvaluationID,
		ProposalID:   req.ProposalID,
		EvaluatorID:  req.EvaluatorID,
		Value:        req.Value,
		TS:           ts,
	}

	// Try to enqueue for async folding
	if ok := h.deps.Enqueue(r.Context(), eval); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.EvaluationID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, EvaluationID: req.EvaluationID})
}
