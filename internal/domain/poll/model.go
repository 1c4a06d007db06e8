package poll

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Poll struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        *string    `json:"description,omitempty"`
	CreatorID          uuid.UUID  `json:"creator_id"`
	IsActive           bool       `json:"is_active"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	IsAnonymous        bool       `json:"is_anonymous"`
	MaxVotesPerUser    int        `json:"max_votes_per_user"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Option order is stable and gap-tolerant: (poll_id, order_index) is unique
// but indexes are not required to be contiguous.
type Option struct {
	ID         uuid.UUID `json:"id"`
	PollID     uuid.UUID `json:"poll_id"`
	Text       string    `json:"text"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// View is an analytics record, written liberally with no eligibility check.
type View struct {
	ID        uuid.UUID  `json:"id"`
	PollID    uuid.UUID  `json:"poll_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type UpdateInput struct {
	Title       *string
	Description *string
	ExpiresAt   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, p *Poll) error
	InsertOptions(ctx context.Context, pollID uuid.UUID, options []Option) error
	GetByID(ctx context.Context, id uuid.UUID) (*Poll, []Option, error)
	List(ctx context.Context, onlyActive bool) ([]Poll, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecordView(ctx context.Context, v *View) error
}
