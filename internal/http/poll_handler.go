package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/domain/poll"
	"github.com/eesyle/alx-polly/internal/platform/apperr"
	"github.com/eesyle/alx-polly/internal/worker"
)

type createPollRequest struct {
	Title              string   `json:"title"`
	Description        *string  `json:"description"`
	ExpiresAt          *string  `json:"expires_at"`
	AllowMultipleVotes bool     `json:"allow_multiple_votes"`
	IsAnonymous        bool     `json:"is_anonymous"`
	MaxVotesPerUser    int      `json:"max_votes_per_user"`
	Options            []string `json:"options"`
}

type updatePollRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ExpiresAt   *string `json:"expires_at"`
}

type updateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

type pollListItem struct {
	poll.Poll
	TotalVotes int64 `json:"total_votes"`
}

// @Summary     Create a poll with options
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      createPollRequest  true  "Poll definition"
// @Success     201      {object}  map[string]string
// @Failure     400      {object}  map[string]string  "validation error"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	p := &poll.Poll{
		Title:              req.Title,
		Description:        req.Description,
		ExpiresAt:          parseTimePtr(req.ExpiresAt),
		AllowMultipleVotes: req.AllowMultipleVotes,
		IsAnonymous:        req.IsAnonymous,
		MaxVotesPerUser:    req.MaxVotesPerUser,
		CreatorID:          userIDFromCtx(r),
	}

	opts := make([]poll.Option, 0, len(req.Options))
	for _, text := range req.Options {
		opts = append(opts, poll.Option{Text: text})
	}

	id, err := h.pollSvc.Create(r.Context(), p, opts)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// @Summary     List polls with vote counts
// @Tags        polls
// @Produce     json
// @Param       all  query     bool  false  "include inactive polls"
// @Success     200  {array}   pollListItem
// @Failure     500  {object}  map[string]string  "server error"
// @Router      /api/v1/polls [get]
func (h *Handler) handleListPolls(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("all") != "true"

	polls, err := h.pollSvc.List(r.Context(), onlyActive)
	if err != nil {
		errorResponse(w, err)
		return
	}

	ids := make([]uuid.UUID, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
	}
	counts, err := h.voteSvc.CountForPolls(r.Context(), ids)
	if err != nil {
		errorResponse(w, err)
		return
	}

	items := make([]pollListItem, len(polls))
	for i, p := range polls {
		items[i] = pollListItem{Poll: p, TotalVotes: counts[p.ID]}
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	p, opts, err := h.pollSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	// View analytics are best effort; drop the event if the recorder lags.
	select {
	case h.viewCh <- worker.ViewEvent{PollID: id, UserID: userIDFromCtx(r)}:
	default:
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll":    p,
		"options": opts,
	})
}

func (h *Handler) handleUpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req updatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	input := poll.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   parseTimePtr(req.ExpiresAt),
	}

	if err := h.pollSvc.Update(r.Context(), id, userIDFromCtx(r), input); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdatePollStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.IsActive == nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "is_active is required", nil))
		return
	}

	if err := h.pollSvc.SetActive(r.Context(), id, userIDFromCtx(r), *req.IsActive); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	if err := h.pollSvc.Delete(r.Context(), id, userIDFromCtx(r)); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
