// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/agora/internal/domain/fairness"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// AcceptanceHandler runs multi-round acceptance simulations.
type AcceptanceHandler struct{}

// NewAcceptanceHandler creates a new acceptance handler.
func NewAcceptanceHandler() *AcceptanceHandler {
	return &AcceptanceHandler{}
}

// acceptanceRequest mirrors the OpenAPI schema for POST /acceptance.
type acceptanceRequest struct {
	Candidates []fairness.Candidate `json:"candidates"`
	Balances   map[string]float64   `json:"balances"`
	MaxRounds  int                  `json:"max_rounds"`
}

func (a acceptanceRequest) validate() error {
	if len(a.Candidates) == 0 {
		return errors.New("missing candidates")
	}
	if a.MaxRounds < 0 {
		return errors.New("max_rounds must be non-negative")
	}
	seen := make(map[string]struct{}, len(a.Candidates))
	for i, c := range a.Candidates {
		id := strings.TrimSpace(c.ID)
		switch {
		case id == "":
			return fmt.Errorf("candidate %d: missing id", i)
		case c.Cost < 0:
			return fmt.Errorf("candidate %q: cost must be non-negative", c.ID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("candidate %q: duplicate id", c.ID)
		}
		seen[id] = struct{}{}
		for j, e := range c.Evaluators {
			switch {
			case strings.TrimSpace(e.UserID) == "":
				return fmt.Errorf("candidate %q: evaluator %d: missing user_id", c.ID, j)
			case !model.ValidValue(e.Evaluation):
				return fmt.Errorf("candidate %q: evaluator %d: evaluation out of range; must be in [-1, 1]", c.ID, j)
			}
		}
	}
	for id, b := range a.Balances {
		if b < 0 {
			return fmt.Errorf("balance %q: must be non-negative", id)
		}
	}
	return nil
}

type acceptanceResponse struct {
	Accepted []string `json:"accepted"`
	Rounds   int      `json:"rounds"`
}

// HandlePostAcceptance handles POST /acceptance requests.
func (h *AcceptanceHandler) HandlePostAcceptance(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_acceptance"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req acceptanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	accepted, rounds := fairness.SimulateAcceptance(req.Candidates, req.Balances, req.MaxRounds)

	metrics.RecordAcceptanceSimulation(rounds)
	writeJSON(w, http.StatusOK, acceptanceResponse{Accepted: accepted, Rounds: rounds})
}
