package vote

import "time"

// EvaluateEligibility decides whether a voter with priorVotes existing votes
// may cast another vote on p. It fails closed: a nil poll is treated the same
// as an absent one, and an inactive poll is reported as not found so callers
// cannot distinguish inactive from absent polls.
//
// The check is a pure read. Eligibility and insertion are not atomic, so a
// passing result here is only a fast path; the store's uniqueness constraint
// remains the final guard against concurrent duplicates.
func EvaluateEligibility(p *PollInfo, priorVotes int64, now time.Time) error {
	if p == nil {
		return ErrPollNotFound
	}
	if !p.IsActive {
		return ErrPollNotFound
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return ErrPollExpired
	}
	if priorVotes >= int64(p.MaxVotesPerUser) {
		return ErrQuotaExceeded
	}
	return nil
}
