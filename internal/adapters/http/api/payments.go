// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/okian/agora/internal/domain/fairness"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// PaymentsHandler computes the cost-sharing economics of one answer.
type PaymentsHandler struct{}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler() *PaymentsHandler {
	return &PaymentsHandler{}
}

// paymentsRequest mirrors the OpenAPI schema for POST /payments.
type paymentsRequest struct {
	Cost       float64              `json:"cost"`
	Evaluators []fairness.Evaluator `json:"evaluators"`
	TotalUsers int                  `json:"total_users"`
}

func (p paymentsRequest) validate() error {
	if p.Cost < 0 {
		return errors.New("cost must be non-negative")
	}
	if p.TotalUsers < 0 {
		return errors.New("total_users must be non-negative")
	}
	for i, e := range p.Evaluators {
		switch {
		case strings.TrimSpace(e.UserID) == "":
			return fmt.Errorf("evaluator %d: missing user_id", i)
		case !model.ValidValue(e.Evaluation):
			return fmt.Errorf("evaluator %d: evaluation out of range; must be in [-1, 1]", i)
		case e.Balance < 0:
			return fmt.Errorf("evaluator %d: balance must be non-negative", i)
		}
	}
	return nil
}

// answerMetricsPayload carries W/T/D/d on the wire. The per-supporter
// distance is omitted when no supporter exists because JSON cannot
// encode the +Inf it would hold.
type answerMetricsPayload struct {
	WeightedSupporters   float64  `json:"weighted_supporters"`
	TotalContribution    float64  `json:"total_contribution"`
	DistanceToGoal       float64  `json:"distance_to_goal"`
	DistancePerSupporter *float64 `json:"distance_per_supporter,omitempty"`
}

// completionPayload is the uniform top-up estimate to bring the answer
// within reach.
type completionPayload struct {
	PerUser float64 `json:"per_user"`
	Total   float64 `json:"total"`
}

type paymentsResponse struct {
	Metrics    answerMetricsPayload `json:"metrics"`
	Status     fairness.Status      `json:"status"`
	Progress   float64              `json:"progress"`
	Completion completionPayload    `json:"completion"`
	Payments   []fairness.Payment   `json:"payments"`
}

// HandlePostPayments handles POST /payments requests. Payments are
// finalized only for a reached goal; otherwise the list stays empty and
// the completion estimate tells callers what a uniform top-up would take.
func (h *PaymentsHandler) HandlePostPayments(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_payments"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req paymentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.TotalUsers == 0 {
		req.TotalUsers = len(req.Evaluators)
	}

	m := fairness.AnswerMetrics(req.Cost, req.Evaluators)
	status := fairness.StatusOf(m)
	perUser, total := fairness.CompleteToGoal(m.DistancePerSupporter, req.TotalUsers)

	resp := paymentsResponse{
		Metrics: answerMetricsPayload{
			WeightedSupporters: m.WeightedSupporters,
			TotalContribution:  m.TotalContribution,
			DistanceToGoal:     m.DistanceToGoal,
		},
		Status:     status,
		Progress:   fairness.Progress(req.Cost, m.TotalContribution),
		Completion: completionPayload{PerUser: perUser, Total: total},
		Payments:   []fairness.Payment{},
	}
	if !math.IsInf(m.DistancePerSupporter, 1) {
		d := m.DistancePerSupporter
		resp.Metrics.DistancePerSupporter = &d
	}
	if status == fairness.StatusReached {
		resp.Payments = fairness.Payments(req.Cost, req.Evaluators)
	}

	metrics.RecordPaymentRun()
	writeJSON(w, http.StatusOK, resp)
}
