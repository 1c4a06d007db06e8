package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eesyle/alx-polly/internal/domain/vote"
)

// VoteRepo implements both vote.Repository and vote.PollReader against the
// shared polls/options/votes/poll_views tables.
type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

func (r *VoteRepo) Insert(ctx context.Context, v *vote.Vote) error {
	query := `
        INSERT INTO votes (id, poll_id, option_id, user_id, voter_ip)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := r.db.QueryRowContext(ctx, query,
		v.ID, v.PollID, v.OptionID, nullableUUID(v.UserID), v.VoterIP,
	).Scan(&v.CreatedAt)
	if err != nil {
		// The unique index on (poll_id, user_id, option_id) is the
		// authoritative duplicate guard; a violation here means a
		// concurrent request won the race after our eligibility read.
		if isUniqueViolation(err) {
			return vote.ErrAlreadyVoted
		}
		return err
	}
	return nil
}

func (r *VoteRepo) DeleteOwn(ctx context.Context, pollID, optionID, userID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM votes
        WHERE poll_id = $1 AND option_id = $2 AND user_id = $3
    `, pollID, optionID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *VoteRepo) CountByUser(ctx context.Context, pollID, userID uuid.UUID) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM votes WHERE poll_id = $1 AND user_id = $2
    `, pollID, userID).Scan(&c)
	return c, err
}

func (r *VoteRepo) HasVoteOnPoll(ctx context.Context, pollID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM votes WHERE poll_id = $1 AND user_id = $2)
    `, pollID, userID).Scan(&exists)
	return exists, err
}

func (r *VoteRepo) HasVoteOnOption(ctx context.Context, pollID, optionID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM votes WHERE poll_id = $1 AND option_id = $2 AND user_id = $3
        )
    `, pollID, optionID, userID).Scan(&exists)
	return exists, err
}

func (r *VoteRepo) CountByPoll(ctx context.Context, pollID uuid.UUID) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&c)
	return c, err
}

func (r *VoteRepo) CountByOption(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT option_id, COUNT(*)
        FROM votes
        WHERE poll_id = $1
        GROUP BY option_id
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[uuid.UUID]int64)
	for rows.Next() {
		var optID uuid.UUID
		var c int64
		if err := rows.Scan(&optID, &c); err != nil {
			return nil, err
		}
		res[optID] = c
	}
	return res, rows.Err()
}

// CountUniqueVoters counts distinct authenticated voters; NULL user ids from
// anonymous votes are excluded by COUNT(DISTINCT ...).
func (r *VoteRepo) CountUniqueVoters(ctx context.Context, pollID uuid.UUID) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM votes WHERE poll_id = $1`, pollID).Scan(&c)
	return c, err
}

func (r *VoteRepo) GetPoll(ctx context.Context, id uuid.UUID) (*vote.PollInfo, error) {
	p := &vote.PollInfo{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, is_active, is_anonymous, allow_multiple_votes, max_votes_per_user, expires_at
        FROM polls WHERE id = $1
    `, id).Scan(&p.ID, &p.IsActive, &p.IsAnonymous, &p.AllowMultipleVotes, &p.MaxVotesPerUser, &p.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vote.ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *VoteRepo) GetOption(ctx context.Context, optionID uuid.UUID) (*vote.OptionInfo, error) {
	o := &vote.OptionInfo{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, poll_id, text, order_index FROM options WHERE id = $1
    `, optionID).Scan(&o.ID, &o.PollID, &o.Text, &o.OrderIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vote.ErrOptionNotInPoll
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *VoteRepo) ListOptions(ctx context.Context, pollID uuid.UUID) ([]vote.OptionInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, poll_id, text, order_index
        FROM options WHERE poll_id = $1
        ORDER BY order_index
    `, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []vote.OptionInfo
	for rows.Next() {
		var o vote.OptionInfo
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.OrderIndex); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (r *VoteRepo) CountViews(ctx context.Context, pollID uuid.UUID) (int64, error) {
	var c int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM poll_views WHERE poll_id = $1`, pollID).Scan(&c)
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
