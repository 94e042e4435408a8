// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/agora/internal/domain/divergence"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// DivergenceHandler reports rating spread and cross-segment agreement.
// This is the enforcement point for the k-anonymity gate: statistics of
// undersized segments never leave the process.
type DivergenceHandler struct{}

// NewDivergenceHandler creates a new divergence handler.
func NewDivergenceHandler() *DivergenceHandler {
	return &DivergenceHandler{}
}

// divergenceRequest mirrors the OpenAPI schema for POST /divergence.
type divergenceRequest struct {
	Segments map[string][]float64 `json:"segments"`
}

func (d divergenceRequest) validate() error {
	if len(d.Segments) == 0 {
		return errors.New("missing segments")
	}
	for name, ratings := range d.Segments {
		if strings.TrimSpace(name) == "" {
			return errors.New("segment with empty name")
		}
		for i, v := range ratings {
			if !model.ValidValue(v) {
				return fmt.Errorf("segment %q: rating %d out of range; must be in [-1, 1]", name, i)
			}
		}
	}
	return nil
}

// segmentPayload is one segment's summary. Suppressed segments carry
// only their name and the flag; every statistic, the user count
// included, is withheld.
type segmentPayload struct {
	Value      string          `json:"value"`
	MAD        float64         `json:"mad"`
	Mean       float64         `json:"mean"`
	N          int             `json:"n"`
	Band       divergence.Band `json:"band,omitempty"`
	Suppressed bool            `json:"suppressed"`
}

type pairPayload struct {
	A    string          `json:"a"`
	B    string          `json:"b"`
	DCI  float64         `json:"dci"`
	Band divergence.Band `json:"band"`
}

type divergenceResponse struct {
	Segments []segmentPayload `json:"segments"`
	Pairs    []pairPayload    `json:"pairs"`
}

// HandlePostDivergence handles POST /divergence requests.
func (h *DivergenceHandler) HandlePostDivergence(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_divergence"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req divergenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	segments := divergence.BuildSegments(req.Segments)
	resp := divergenceResponse{
		Segments: make([]segmentPayload, 0, len(segments)),
		Pairs:    []pairPayload{},
	}
	exposed := make([]divergence.Segment, 0, len(segments))
	for _, s := range segments {
		if !divergence.MeetsKAnonymity(s.Summary.N) {
			resp.Segments = append(resp.Segments, segmentPayload{Value: s.Value, Suppressed: true})
			metrics.RecordSegmentSuppressed()
			continue
		}
		resp.Segments = append(resp.Segments, segmentPayload{
			Value: s.Value,
			MAD:   s.Summary.MAD,
			Mean:  s.Summary.Mean,
			N:     s.Summary.N,
			Band:  divergence.InterpretDivergence(s.Summary.MAD),
		})
		exposed = append(exposed, s)
	}
	for _, p := range divergence.PairwiseDCI(exposed) {
		resp.Pairs = append(resp.Pairs, pairPayload{
			A:    p.A,
			B:    p.B,
			DCI:  p.DCI,
			Band: divergence.InterpretDCI(p.DCI),
		})
	}

	metrics.RecordDivergenceReport()
	writeJSON(w, http.StatusOK, resp)
}
