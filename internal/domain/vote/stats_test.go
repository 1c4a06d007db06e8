package vote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/cache"
)

func TestStatsZeroVotes(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	pollID, _ := store.addPoll(PollInfo{IsActive: true}, "A", "B", "C")

	stats, err := svc.Stats(ctx, pollID)
	if err != nil {
		t.Fatalf("stats on empty poll must not error: %v", err)
	}
	if stats.TotalVotes != 0 || stats.UniqueVoters != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
	if len(stats.Options) != 3 {
		t.Fatalf("zero-vote options must be included, got %d", len(stats.Options))
	}
	for _, o := range stats.Options {
		if o.VoteCount != 0 || o.Percentage != 0 {
			t.Fatalf("expected 0 count and 0%% for %s, got %+v", o.Text, o)
		}
	}
}

func TestStatsCountsOrderAndPercentages(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	pollID, opts := store.addPoll(PollInfo{
		IsActive:           true,
		AllowMultipleVotes: true,
		MaxVotesPerUser:    3,
	}, "first", "second", "third")

	u1, u2 := uuid.New(), uuid.New()
	mustCast(t, svc, pollID, opts[0], u1)
	mustCast(t, svc, pollID, opts[0], u2)
	mustCast(t, svc, pollID, opts[1], u1)

	store.mu.Lock()
	store.views[pollID] = 7
	store.mu.Unlock()

	stats, err := svc.Stats(ctx, pollID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalVotes != 3 {
		t.Fatalf("expected 3 total votes, got %d", stats.TotalVotes)
	}
	if stats.TotalViews != 7 {
		t.Fatalf("expected 7 views, got %d", stats.TotalViews)
	}
	if stats.UniqueVoters != 2 {
		t.Fatalf("expected 2 unique voters, got %d", stats.UniqueVoters)
	}

	if len(stats.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(stats.Options))
	}
	for i, want := range []string{"first", "second", "third"} {
		if stats.Options[i].Text != want {
			t.Fatalf("option order broken at %d: got %s", i, stats.Options[i].Text)
		}
	}

	var sum int64
	for _, o := range stats.Options {
		sum += o.VoteCount
	}
	if sum != stats.TotalVotes {
		t.Fatalf("option counts (%d) must sum to total (%d)", sum, stats.TotalVotes)
	}

	if stats.Options[0].Percentage != 66.67 {
		t.Fatalf("expected 66.67%%, got %v", stats.Options[0].Percentage)
	}
	if stats.Options[1].Percentage != 33.33 {
		t.Fatalf("expected 33.33%%, got %v", stats.Options[1].Percentage)
	}
	if stats.Options[2].Percentage != 0 {
		t.Fatalf("expected 0%% for unvoted option, got %v", stats.Options[2].Percentage)
	}
}

func TestStatsCacheHitAndInvalidation(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, store, cache.NewMemory())
	svc.cacheTTL = time.Hour
	ctx := context.Background()

	pollID, opts := store.addPoll(PollInfo{IsActive: true, AllowMultipleVotes: true, MaxVotesPerUser: 5}, "A", "B")
	mustCast(t, svc, pollID, opts[0], uuid.New())

	first, err := svc.Stats(ctx, pollID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if first.TotalVotes != 1 {
		t.Fatalf("expected 1 vote, got %d", first.TotalVotes)
	}

	// Mutate the store behind the cache; the cached snapshot must win.
	store.mu.Lock()
	uid := uuid.New()
	store.votes = append(store.votes, Vote{ID: uuid.New(), PollID: pollID, OptionID: opts[1], UserID: &uid})
	store.mu.Unlock()

	cached, err := svc.Stats(ctx, pollID)
	if err != nil {
		t.Fatalf("cached stats: %v", err)
	}
	if cached.TotalVotes != 1 {
		t.Fatalf("expected cached total 1, got %d", cached.TotalVotes)
	}

	// A write through the service invalidates the snapshot.
	mustCast(t, svc, pollID, opts[1], uuid.New())
	fresh, err := svc.Stats(ctx, pollID)
	if err != nil {
		t.Fatalf("fresh stats: %v", err)
	}
	if fresh.TotalVotes != 3 {
		t.Fatalf("expected fresh total 3 after invalidation, got %d", fresh.TotalVotes)
	}
}

func TestStatsMissingPoll(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.Stats(context.Background(), uuid.New()); !errors.Is(err, ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
}

func TestCountForPolls(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	pollA, optsA := store.addPoll(PollInfo{IsActive: true}, "A1", "A2")
	pollB, optsB := store.addPoll(PollInfo{IsActive: true}, "B1", "B2")
	mustCast(t, svc, pollA, optsA[0], uuid.New())
	mustCast(t, svc, pollB, optsB[0], uuid.New())
	mustCast(t, svc, pollB, optsB[1], uuid.New())

	counts, err := svc.CountForPolls(ctx, []uuid.UUID{pollA, pollB})
	if err != nil {
		t.Fatalf("CountForPolls: %v", err)
	}
	if counts[pollA] != 1 || counts[pollB] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestCountForPollsSurfacesFailure(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	pollA, _ := store.addPoll(PollInfo{IsActive: true}, "A1", "A2")
	store.countErr = errors.New("connection reset")

	if _, err := svc.CountForPolls(context.Background(), []uuid.UUID{pollA}); err == nil {
		t.Fatalf("count failures must be surfaced, not reported as zero")
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		count, total int64
		want         float64
	}{
		{0, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 1, 100},
		{1, 8, 12.5},
		{1, 6, 16.67},
	}
	for _, tc := range cases {
		if got := percentage(tc.count, tc.total); got != tc.want {
			t.Errorf("percentage(%d, %d) = %v, want %v", tc.count, tc.total, got, tc.want)
		}
	}
}

func mustCast(t *testing.T, svc *Service, pollID, optionID, userID uuid.UUID) {
	t.Helper()
	if _, err := svc.Cast(context.Background(), pollID, optionID, userID, ""); err != nil {
		t.Fatalf("cast: %v", err)
	}
}
