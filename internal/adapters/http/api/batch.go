// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// BatchDependencies defines the interface for batch selection.
type BatchDependencies interface {
	SelectBatch(ctx context.Context, evaluatorID string, size int) (Batch, error)
}

// BatchHandler serves adaptive evaluation batches.
type BatchHandler struct {
	deps BatchDependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps BatchDependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// HandleGetBatch handles GET /batch?evaluator=ID&size=N requests.
// Size is optional; the service clamps absent or oversized values to
// its configured batch size.
func (h *BatchHandler) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_batch"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	evaluator := strings.TrimSpace(r.URL.Query().Get("evaluator"))
	if evaluator == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	size := 0
	if sizeStr := r.URL.Query().Get("size"); sizeStr != "" {
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		size = n
	}
	batch, err := h.deps.SelectBatch(r.Context(), evaluator, size)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
