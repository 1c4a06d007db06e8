package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/eesyle/alx-polly/internal/domain/poll"
	"github.com/eesyle/alx-polly/internal/domain/user"
	"github.com/eesyle/alx-polly/internal/domain/vote"
	"github.com/eesyle/alx-polly/internal/platform/apperr"
)

func errorResponse(w http.ResponseWriter, err error) {
	appErr := mapError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		slogLogger.Error("request failed", "code", appErr.Code, "error", appErr.Unwrap())
	}
	writeJSON(w, appErr.StatusCode(), map[string]string{
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

func mapError(err error) *apperr.AppError {
	if err == nil {
		return apperr.Internal("internal_error", "internal server error", nil)
	}

	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound("not_found", "resource not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Unavailable("store_timeout", "temporary failure, please retry", err)
	case errors.Is(err, user.ErrInvalidCredentials):
		return apperr.Unauthorized("invalid_credentials", "invalid credentials", err)
	case errors.Is(err, user.ErrInactiveUser):
		return apperr.Unauthorized("inactive_user", "user is inactive", err)
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.BadRequest("email_taken", "email already taken", err)
	case errors.Is(err, poll.ErrPollNotFound), errors.Is(err, vote.ErrPollNotFound):
		// Inactive and absent polls intentionally share this response.
		return apperr.NotFound("poll_not_found", "poll not found", err)
	case errors.Is(err, poll.ErrNotOwner):
		return apperr.Forbidden("not_owner", "only the poll creator may do this", err)
	case errors.Is(err, poll.ErrInvalidTitle),
		errors.Is(err, poll.ErrInvalidDesc),
		errors.Is(err, poll.ErrInvalidOptions),
		errors.Is(err, poll.ErrInvalidOption),
		errors.Is(err, poll.ErrInvalidQuota):
		return apperr.BadRequest("invalid_input", err.Error(), err)
	case errors.Is(err, vote.ErrAuthRequired):
		return apperr.Unauthorized("auth_required", "authentication required", err)
	case errors.Is(err, vote.ErrPollExpired):
		return apperr.BadRequest("poll_expired", "poll has expired", err)
	case errors.Is(err, vote.ErrQuotaExceeded):
		return apperr.Conflict("vote_limit_reached", "vote limit for this poll reached", err)
	case errors.Is(err, vote.ErrAlreadyVoted):
		return apperr.Conflict("already_voted", "user already voted", err)
	case errors.Is(err, vote.ErrOptionNotInPoll):
		return apperr.BadRequest("invalid_option", "option does not belong to poll", err)
	case errors.Is(err, vote.ErrVoteNotFound):
		return apperr.NotFound("vote_not_found", "vote not found", err)
	default:
		return apperr.Internal("internal_error", http.StatusText(http.StatusInternalServerError), err)
	}
}
