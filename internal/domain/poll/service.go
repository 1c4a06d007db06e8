package poll

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/saga"
)

var (
	ErrPollNotFound   = errors.New("poll not found")
	ErrNotOwner       = errors.New("poll belongs to another user")
	ErrInvalidTitle   = errors.New("title must be between 3 and 255 characters")
	ErrInvalidDesc    = errors.New("description must be at most 1000 characters")
	ErrInvalidOptions = errors.New("poll must have between 2 and 10 options")
	ErrInvalidOption  = errors.New("option text must be between 1 and 500 characters")
	ErrInvalidQuota   = errors.New("max_votes_per_user must be positive")
)

const (
	minTitleLen  = 3
	maxTitleLen  = 255
	maxDescLen   = 1000
	minOptions   = 2
	maxOptions   = 10
	maxOptionLen = 500
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, logger: slog.Default()}
}

func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Create persists a poll and its options as one logical operation. The two
// inserts are not covered by a single transaction, so a failed options
// insert triggers a compensating delete of the poll row.
func (s *Service) Create(ctx context.Context, p *Poll, options []Option) (uuid.UUID, error) {
	if err := validate(p, options); err != nil {
		return uuid.Nil, err
	}

	p.ID = uuid.New()
	p.IsActive = true
	if p.MaxVotesPerUser == 0 {
		p.MaxVotesPerUser = 1
	}

	for i := range options {
		options[i].ID = uuid.New()
		options[i].PollID = p.ID
		options[i].OrderIndex = i
	}

	err := saga.Run(ctx, s.logger,
		saga.Step{
			Name: "insert poll",
			Do: func(ctx context.Context) error {
				return s.repo.Insert(ctx, p)
			},
			Compensate: func(ctx context.Context) error {
				return s.repo.Delete(ctx, p.ID)
			},
		},
		saga.Step{
			Name: "insert options",
			Do: func(ctx context.Context) error {
				return s.repo.InsertOptions(ctx, p.ID, options)
			},
		},
	)
	if err != nil {
		return uuid.Nil, err
	}

	return p.ID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Poll, []Option, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]Poll, error) {
	return s.repo.List(ctx, onlyActive)
}

// Update mutates title, description, or expiration. Only the creator may
// modify a poll.
func (s *Service) Update(ctx context.Context, id, actorID uuid.UUID, input UpdateInput) error {
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	if input.Title != nil {
		if l := utf8.RuneCountInString(*input.Title); l < minTitleLen || l > maxTitleLen {
			return ErrInvalidTitle
		}
	}
	if input.Description != nil && utf8.RuneCountInString(*input.Description) > maxDescLen {
		return ErrInvalidDesc
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) SetActive(ctx context.Context, id, actorID uuid.UUID, active bool) error {
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, active)
}

// Delete removes the whole aggregate: the poll row plus its options, votes
// and views via store-level cascade.
func (s *Service) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	if err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) RecordView(ctx context.Context, pollID uuid.UUID, userID *uuid.UUID) error {
	v := &View{
		ID:     uuid.New(),
		PollID: pollID,
		UserID: userID,
	}
	return s.repo.RecordView(ctx, v)
}

func (s *Service) requireOwner(ctx context.Context, id, actorID uuid.UUID) error {
	p, _, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatorID != actorID {
		return ErrNotOwner
	}
	return nil
}

func validate(p *Poll, options []Option) error {
	if l := utf8.RuneCountInString(p.Title); l < minTitleLen || l > maxTitleLen {
		return ErrInvalidTitle
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > maxDescLen {
		return ErrInvalidDesc
	}
	if len(options) < minOptions || len(options) > maxOptions {
		return ErrInvalidOptions
	}
	for _, o := range options {
		if l := utf8.RuneCountInString(o.Text); l < 1 || l > maxOptionLen {
			return ErrInvalidOption
		}
	}
	if p.MaxVotesPerUser < 0 {
		return ErrInvalidQuota
	}
	return nil
}
