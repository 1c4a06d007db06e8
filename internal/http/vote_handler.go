package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/metrics"
	"github.com/eesyle/alx-polly/internal/platform/apperr"
)

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

type voteResponse struct {
	ID        uuid.UUID `json:"id"`
	PollID    uuid.UUID `json:"poll_id"`
	OptionID  uuid.UUID `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

type eligibilityResponse struct {
	CanVote bool `json:"can_vote"`
}

// @Summary     Cast a vote
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       id       path      string       true  "Poll ID"
// @Param       request  body      voteRequest  true  "Vote payload"
// @Success     201      {object}  voteResponse
// @Failure     400      {object}  map[string]string  "invalid body, expired poll or option mismatch"
// @Failure     401      {object}  map[string]string  "authentication required"
// @Failure     404      {object}  map[string]string  "poll not found"
// @Failure     409      {object}  map[string]string  "duplicate vote or vote limit reached"
// @Failure     500      {object}  map[string]string  "server error"
// @Router      /api/v1/polls/{id}/vote [post]
func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.OptionID == uuid.Nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "option_id is required", nil))
		return
	}

	// uuid.Nil when the poll is anonymous and no token was sent.
	userID := userIDFromCtx(r)

	v, err := h.voteSvc.Cast(r.Context(), pollID, req.OptionID, userID, clientIP(r))
	if err != nil {
		metrics.IncVote("rejected")
		errorResponse(w, err)
		return
	}
	metrics.IncVote("accepted")

	writeJSON(w, http.StatusCreated, voteResponse{
		ID:        v.ID,
		PollID:    v.PollID,
		OptionID:  v.OptionID,
		CreatedAt: v.CreatedAt,
	})
}

// @Summary     Retract own vote
// @Tags        votes
// @Security    BearerAuth
// @Accept      json
// @Param       id       path      string       true  "Poll ID"
// @Param       request  body      voteRequest  true  "Option to retract"
// @Success     204
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     401      {object}  map[string]string  "authentication required"
// @Failure     404      {object}  map[string]string  "vote not found"
// @Router      /api/v1/polls/{id}/vote [delete]
func (h *Handler) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.OptionID == uuid.Nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "option_id is required", nil))
		return
	}

	if err := h.voteSvc.Retract(r.Context(), pollID, req.OptionID, userIDFromCtx(r)); err != nil {
		errorResponse(w, err)
		return
	}
	metrics.IncVote("retracted")

	w.WriteHeader(http.StatusNoContent)
}

// @Summary     Poll results
// @Tags        polls
// @Produce     json
// @Param       id   path     string  true  "Poll ID"
// @Success     200  {object} vote.Stats
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Failure     404  {object}  map[string]string  "poll not found"
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /api/v1/polls/{id}/results [get]
func (h *Handler) handlePollResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	stats, err := h.voteSvc.Stats(r.Context(), pollID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// @Summary     Check vote eligibility
// @Tags        votes
// @Security    BearerAuth
// @Produce     json
// @Param       id   path     string  true  "Poll ID"
// @Success     200  {object} eligibilityResponse
// @Failure     400  {object}  map[string]string  "invalid poll id"
// @Router      /api/v1/polls/{id}/eligibility [get]
func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	pollID, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	ok, err := h.voteSvc.CanVote(r.Context(), pollID, userIDFromCtx(r))
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eligibilityResponse{CanVote: ok})
}
