package poll

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type memoryPollRepo struct {
	mu         sync.Mutex
	polls      map[uuid.UUID]*Poll
	opts       map[uuid.UUID][]Option
	views      map[uuid.UUID]int
	failOption bool // next InsertOptions call fails
}

func newMemoryPollRepo() *memoryPollRepo {
	return &memoryPollRepo{
		polls: make(map[uuid.UUID]*Poll),
		opts:  make(map[uuid.UUID][]Option),
		views: make(map[uuid.UUID]int),
	}
}

func (r *memoryPollRepo) Insert(ctx context.Context, p *Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	copyPoll := *p
	r.polls[p.ID] = &copyPoll
	return nil
}

func (r *memoryPollRepo) InsertOptions(ctx context.Context, pollID uuid.UUID, options []Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOption {
		r.failOption = false
		return errors.New("options insert failed")
	}
	cloned := make([]Option, len(options))
	for i, opt := range options {
		opt.CreatedAt = time.Now()
		cloned[i] = opt
	}
	r.opts[pollID] = cloned
	return nil
}

func (r *memoryPollRepo) GetByID(ctx context.Context, id uuid.UUID) (*Poll, []Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return nil, nil, ErrPollNotFound
	}
	copyPoll := *p
	copiedOpts := make([]Option, len(r.opts[id]))
	copy(copiedOpts, r.opts[id])
	return &copyPoll, copiedOpts, nil
}

func (r *memoryPollRepo) List(ctx context.Context, onlyActive bool) ([]Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []Poll{}
	for _, p := range r.polls {
		if onlyActive && !p.IsActive {
			continue
		}
		res = append(res, *p)
	}
	return res, nil
}

func (r *memoryPollRepo) Update(ctx context.Context, id uuid.UUID, input UpdateInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return ErrPollNotFound
	}
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.ExpiresAt != nil {
		p.ExpiresAt = input.ExpiresAt
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memoryPollRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return ErrPollNotFound
	}
	p.IsActive = active
	p.UpdatedAt = time.Now()
	return nil
}

func (r *memoryPollRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[id]; !ok {
		return ErrPollNotFound
	}
	delete(r.polls, id)
	delete(r.opts, id)
	return nil
}

func (r *memoryPollRepo) RecordView(ctx context.Context, v *View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.PollID]++
	v.CreatedAt = time.Now()
	return nil
}

func optionsOf(texts ...string) []Option {
	opts := make([]Option, 0, len(texts))
	for _, t := range texts {
		opts = append(opts, Option{Text: t})
	}
	return opts
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryPollRepo())
	ctx := context.Background()
	creator := uuid.New()

	cases := []struct {
		name string
		poll Poll
		opts []Option
		want error
	}{
		{"title too short", Poll{Title: "ab", CreatorID: creator}, optionsOf("A", "B"), ErrInvalidTitle},
		{"title too long", Poll{Title: strings.Repeat("x", 256), CreatorID: creator}, optionsOf("A", "B"), ErrInvalidTitle},
		{"too few options", Poll{Title: "Lunch spot", CreatorID: creator}, optionsOf("A"), ErrInvalidOptions},
		{"too many options", Poll{Title: "Lunch spot", CreatorID: creator}, optionsOf("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"), ErrInvalidOptions},
		{"empty option text", Poll{Title: "Lunch spot", CreatorID: creator}, optionsOf("A", ""), ErrInvalidOption},
		{"option text too long", Poll{Title: "Lunch spot", CreatorID: creator}, optionsOf("A", strings.Repeat("y", 501)), ErrInvalidOption},
		{"negative quota", Poll{Title: "Lunch spot", CreatorID: creator, MaxVotesPerUser: -1}, optionsOf("A", "B"), ErrInvalidQuota},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, &tc.poll, tc.opts); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	longDesc := strings.Repeat("d", 1001)
	if _, err := svc.Create(ctx, &Poll{Title: "Lunch spot", CreatorID: creator, Description: &longDesc}, optionsOf("A", "B")); !errors.Is(err, ErrInvalidDesc) {
		t.Fatalf("expected ErrInvalidDesc, got %v", err)
	}
}

func TestCreateDefaultsAndOptionOrder(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, &Poll{Title: "Team lunch", CreatorID: uuid.New()}, optionsOf("A", "B", "C"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, opts, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !p.IsActive {
		t.Fatalf("new polls start active")
	}
	if p.MaxVotesPerUser != 1 {
		t.Fatalf("quota defaults to 1, got %d", p.MaxVotesPerUser)
	}

	if len(opts) != 3 {
		t.Fatalf("expected 3 options, got %d", len(opts))
	}
	for i, want := range []string{"A", "B", "C"} {
		if opts[i].Text != want || opts[i].OrderIndex != i {
			t.Fatalf("option %d out of order: %+v", i, opts[i])
		}
		if opts[i].PollID != id {
			t.Fatalf("option %d not bound to poll", i)
		}
	}
}

func TestCreateCompensatesFailedOptionsInsert(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	repo.failOption = true
	_, err := svc.Create(ctx, &Poll{Title: "Doomed poll", CreatorID: uuid.New()}, optionsOf("A", "B"))
	if err == nil {
		t.Fatalf("expected create to fail")
	}

	repo.mu.Lock()
	remaining := len(repo.polls)
	repo.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("poll row must be compensated away, %d polls left", remaining)
	}
}

func TestOnlyCreatorMayMutate(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	creator := uuid.New()
	stranger := uuid.New()
	id, err := svc.Create(ctx, &Poll{Title: "Owned poll", CreatorID: creator}, optionsOf("A", "B"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newTitle := "Hijacked"
	if err := svc.Update(ctx, id, stranger, UpdateInput{Title: &newTitle}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on update, got %v", err)
	}
	if err := svc.SetActive(ctx, id, stranger, false); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on deactivate, got %v", err)
	}
	if err := svc.Delete(ctx, id, stranger); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}

	if err := svc.SetActive(ctx, id, creator, false); err != nil {
		t.Fatalf("creator deactivate: %v", err)
	}
	if err := svc.Delete(ctx, id, creator); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if _, _, err := svc.Get(ctx, id); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("deleted poll must be gone, got %v", err)
	}
}

func TestUpdateValidatesFields(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	creator := uuid.New()
	id, err := svc.Create(ctx, &Poll{Title: "Valid title", CreatorID: creator}, optionsOf("A", "B"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "xy"
	if err := svc.Update(ctx, id, creator, UpdateInput{Title: &bad}); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	good := "Renamed poll"
	if err := svc.Update(ctx, id, creator, UpdateInput{Title: &good}); err != nil {
		t.Fatalf("update: %v", err)
	}
	p, _, _ := svc.Get(ctx, id)
	if p.Title != good {
		t.Fatalf("title not updated, got %q", p.Title)
	}
}

func TestListFiltersInactive(t *testing.T) {
	repo := newMemoryPollRepo()
	svc := NewService(repo)
	ctx := context.Background()

	creator := uuid.New()
	active, _ := svc.Create(ctx, &Poll{Title: "Active poll", CreatorID: creator}, optionsOf("A", "B"))
	inactive, _ := svc.Create(ctx, &Poll{Title: "Inactive poll", CreatorID: creator}, optionsOf("A", "B"))
	if err := svc.SetActive(ctx, inactive, creator, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	polls, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(polls) != 1 || polls[0].ID != active {
		t.Fatalf("expected only the active poll, got %+v", polls)
	}

	all, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 polls, got %d", len(all))
	}
}
