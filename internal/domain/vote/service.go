package vote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/cache"
)

var (
	ErrAuthRequired    = errors.New("authentication required to vote on this poll")
	ErrPollNotFound    = errors.New("poll not found")
	ErrPollExpired     = errors.New("poll has expired")
	ErrQuotaExceeded   = errors.New("vote limit for this poll reached")
	ErrAlreadyVoted    = errors.New("user already voted")
	ErrOptionNotInPoll = errors.New("option does not belong to poll")
	ErrVoteNotFound    = errors.New("vote not found")
)

type Service struct {
	repo     Repository
	polls    PollReader
	cache    cache.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewService(repo Repository, polls PollReader, c cache.Cache) *Service {
	return &Service{
		repo:     repo,
		polls:    polls,
		cache:    c,
		cacheTTL: 5 * time.Second,
		now:      time.Now,
	}
}

func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// CanVote reports whether userID may currently cast another vote on pollID.
// It is a pure read and fails closed: absent and inactive polls are both
// ineligible. An anonymous identity (uuid.Nil) skips the per-user quota.
func (s *Service) CanVote(ctx context.Context, pollID, userID uuid.UUID) (bool, error) {
	p, err := s.polls.GetPoll(ctx, pollID)
	if errors.Is(err, ErrPollNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	prior, err := s.priorVotes(ctx, pollID, userID)
	if err != nil {
		return false, err
	}

	return EvaluateEligibility(p, prior, s.now()) == nil, nil
}

// Cast runs the full submission workflow: authentication, eligibility,
// option-ownership validation, duplicate checks, then insertion. Every check
// before the insert is advisory; a uniqueness violation reported by the
// repository is surfaced as the same ErrAlreadyVoted the proactive checks
// produce, since callers cannot tell the two apart.
func (s *Service) Cast(ctx context.Context, pollID, optionID, userID uuid.UUID, voterIP string) (*Vote, error) {
	p, err := s.polls.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	if !p.IsAnonymous && userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	prior, err := s.priorVotes(ctx, pollID, userID)
	if err != nil {
		return nil, err
	}
	if err := EvaluateEligibility(p, prior, s.now()); err != nil {
		// On a single-vote poll an exhausted quota means the user already
		// voted; report it as the duplicate it is.
		if errors.Is(err, ErrQuotaExceeded) && !p.AllowMultipleVotes && userID != uuid.Nil {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	opt, err := s.polls.GetOption(ctx, optionID)
	if err != nil {
		return nil, err
	}
	if opt.PollID != pollID {
		return nil, ErrOptionNotInPoll
	}

	if userID != uuid.Nil {
		if !p.AllowMultipleVotes {
			voted, err := s.repo.HasVoteOnPoll(ctx, pollID, userID)
			if err != nil {
				return nil, err
			}
			if voted {
				return nil, ErrAlreadyVoted
			}
		}

		voted, err := s.repo.HasVoteOnOption(ctx, pollID, optionID, userID)
		if err != nil {
			return nil, err
		}
		if voted {
			return nil, ErrAlreadyVoted
		}
	}

	v := &Vote{
		ID:        uuid.New(),
		PollID:    pollID,
		OptionID:  optionID,
		CreatedAt: s.now(),
	}
	if userID != uuid.Nil {
		uid := userID
		v.UserID = &uid
	}
	if voterIP != "" {
		ip := voterIP
		v.VoterIP = &ip
	}

	if err := s.repo.Insert(ctx, v); err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, pollID)
	return v, nil
}

// Retract deletes at most one vote, scoped to the caller's own identity.
func (s *Service) Retract(ctx context.Context, pollID, optionID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrAuthRequired
	}

	deleted, err := s.repo.DeleteOwn(ctx, pollID, optionID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrVoteNotFound
	}

	s.invalidateStats(ctx, pollID)
	return nil
}

func (s *Service) priorVotes(ctx context.Context, pollID, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, nil
	}
	return s.repo.CountByUser(ctx, pollID, userID)
}
