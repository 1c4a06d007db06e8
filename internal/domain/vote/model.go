package vote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Vote is one recorded choice of one option by one voter. UserID is nil for
// anonymous votes; VoterIP is kept for best-effort analytics only.
type Vote struct {
	ID        uuid.UUID  `json:"id"`
	PollID    uuid.UUID  `json:"poll_id"`
	OptionID  uuid.UUID  `json:"option_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	VoterIP   *string    `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// PollInfo is the slice of poll state the voting rules depend on.
type PollInfo struct {
	ID                 uuid.UUID
	IsActive           bool
	IsAnonymous        bool
	AllowMultipleVotes bool
	MaxVotesPerUser    int
	ExpiresAt          *time.Time
}

type OptionInfo struct {
	ID         uuid.UUID
	PollID     uuid.UUID
	Text       string
	OrderIndex int
}

// Repository persists votes. Insert must translate a store-level
// (poll_id, user_id, option_id) uniqueness violation into ErrAlreadyVoted;
// that violation, not the earlier eligibility read, is the authoritative
// duplicate signal under concurrency.
type Repository interface {
	Insert(ctx context.Context, v *Vote) error
	DeleteOwn(ctx context.Context, pollID, optionID, userID uuid.UUID) (bool, error)
	CountByUser(ctx context.Context, pollID, userID uuid.UUID) (int64, error)
	HasVoteOnPoll(ctx context.Context, pollID, userID uuid.UUID) (bool, error)
	HasVoteOnOption(ctx context.Context, pollID, optionID, userID uuid.UUID) (bool, error)
	CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error)
	CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
	CountUniqueVoters(ctx context.Context, pollID uuid.UUID) (int64, error)
}

// PollReader exposes the read-only poll state the vote service needs.
// GetPoll and GetOption return ErrPollNotFound and ErrOptionNotInPoll
// respectively when the row is absent.
type PollReader interface {
	GetPoll(ctx context.Context, id uuid.UUID) (*PollInfo, error)
	GetOption(ctx context.Context, optionID uuid.UUID) (*OptionInfo, error)
	ListOptions(ctx context.Context, pollID uuid.UUID) ([]OptionInfo, error)
	CountViews(ctx context.Context, pollID uuid.UUID) (int64, error)
}
