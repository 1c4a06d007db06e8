package vote

import (
	"context"
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eesyle/alx-polly/internal/metrics"
)

type OptionStat struct {
	OptionID   uuid.UUID `json:"option_id"`
	Text       string    `json:"option_text"`
	VoteCount  int64     `json:"vote_count"`
	Percentage float64   `json:"percentage"`
}

type Stats struct {
	PollID       uuid.UUID    `json:"poll_id"`
	TotalVotes   int64        `json:"total_votes"`
	TotalViews   int64        `json:"total_views"`
	UniqueVoters int64        `json:"unique_voters"`
	Options      []OptionStat `json:"options"`
}

// Stats computes a read-time snapshot of a poll's results: per-option counts
// in option order with zero-vote options included, total and unique-voter
// counts, and view counts. Nothing is persisted; the only denormalization is
// a short-lived cache entry invalidated on every write.
func (s *Service) Stats(ctx context.Context, pollID uuid.UUID) (*Stats, error) {
	key := statsKey(pollID)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var cached Stats
			if json.Unmarshal(data, &cached) == nil {
				metrics.IncStatsCache(true)
				return &cached, nil
			}
		}
		metrics.IncStatsCache(false)
	}

	if _, err := s.polls.GetPoll(ctx, pollID); err != nil {
		return nil, err
	}

	options, err := s.polls.ListOptions(ctx, pollID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	views, err := s.polls.CountViews(ctx, pollID)
	if err != nil {
		return nil, err
	}

	voters, err := s.repo.CountUniqueVoters(ctx, pollID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	result := &Stats{
		PollID:       pollID,
		TotalVotes:   total,
		TotalViews:   views,
		UniqueVoters: voters,
		Options:      make([]OptionStat, 0, len(options)),
	}
	for _, opt := range options {
		c := counts[opt.ID]
		result.Options = append(result.Options, OptionStat{
			OptionID:   opt.ID,
			Text:       opt.Text,
			VoteCount:  c,
			Percentage: percentage(c, total),
		})
	}

	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}

	return result, nil
}

// CountForPolls returns total vote counts for a set of polls. The counts
// touch disjoint poll ids, so they are issued concurrently; any single
// failure fails the whole call rather than being silently reported as zero.
func (s *Service) CountForPolls(ctx context.Context, pollIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	results := make([]int64, len(pollIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, id := range pollIDs {
		i, id := i, id
		g.Go(func() error {
			c, err := s.repo.CountByPoll(gctx, id)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]int64, len(pollIDs))
	for i, id := range pollIDs {
		out[id] = results[i]
	}
	return out, nil
}

// percentage is vote share rounded to two decimals; zero totals yield 0,
// never NaN.
func percentage(count, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*10000) / 100
}

func statsKey(pollID uuid.UUID) string {
	return "poll:stats:" + pollID.String()
}

func (s *Service) invalidateStats(ctx context.Context, pollID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, statsKey(pollID))
	}
}
