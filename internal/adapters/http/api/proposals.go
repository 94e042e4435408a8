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

	"github.com/okian/agora/internal/adapters/repository"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/types"
)

// ProposalDependencies defines the interface for proposal operations.
type ProposalDependencies interface {
	CreateProposal(ctx context.Context, id, title string) (model.Proposal, error)
	GetProposal(ctx context.Context, id string) (types.ProposalView, error)
}

// ProposalsHandler handles proposal lifecycle requests.
type ProposalsHandler struct {
	deps ProposalDependencies
}

// NewProposalsHandler creates a new proposals handler.
func NewProposalsHandler(deps ProposalDependencies) *ProposalsHandler {
	return &ProposalsHandler{deps: deps}
}

// proposalRequest mirrors the OpenAPI schema for POST /proposals.
type proposalRequest struct {
	ProposalID string `json:"proposal_id"`
	Title      string `json:"title"`
}

func (p proposalRequest) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("missing title")
	}
	return nil
}

// proposalCreatedResponse acknowledges a registered proposal.
type proposalCreatedResponse struct {
	ProposalID string `json:"proposal_id"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
}

// HandleCreateProposal handles POST /proposals requests.
func (h *ProposalsHandler) HandleCreateProposal(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_proposal"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.ProposalID) == "" {
		req.ProposalID = uuid.NewString()
	}

	p, err := h.deps.CreateProposal(r.Context(), req.ProposalID, req.Title)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "already_exists", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, proposalCreatedResponse{
		ProposalID: p.ID,
		Title:      p.Title,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleGetProposal handles GET /proposals/{proposal_id} requests.
func (h *ProposalsHandler) HandleGetProposal(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_proposal"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /proposals/
	path := strings.TrimPrefix(r.URL.Path, "/proposals/")
	if path == "" || strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	view, err := h.deps.GetProposal(r.Context(), path)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}
