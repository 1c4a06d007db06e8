package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/domain/poll"
)

type PollRepo struct {
	db *sql.DB
}

func NewPollRepo(db *sql.DB) *PollRepo {
	return &PollRepo{db: db}
}

func (r *PollRepo) Insert(ctx context.Context, p *poll.Poll) error {
	query := `
        INSERT INTO polls (id, title, description, creator_id, is_active,
                           allow_multiple_votes, is_anonymous, max_votes_per_user, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	return r.db.QueryRowContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.CreatorID,
		p.IsActive,
		p.AllowMultipleVotes,
		p.IsAnonymous,
		p.MaxVotesPerUser,
		p.ExpiresAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PollRepo) InsertOptions(ctx context.Context, pollID uuid.UUID, options []poll.Option) error {
	query := `
        INSERT INTO options (id, poll_id, text, order_index)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `
	for i := range options {
		options[i].PollID = pollID
		if err := r.db.QueryRowContext(ctx, query,
			options[i].ID, pollID, options[i].Text, options[i].OrderIndex,
		).Scan(&options[i].CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PollRepo) GetByID(ctx context.Context, id uuid.UUID) (*poll.Poll, []poll.Option, error) {
	p := &poll.Poll{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, title, description, creator_id, is_active, allow_multiple_votes,
               is_anonymous, max_votes_per_user, expires_at, created_at, updated_at
        FROM polls WHERE id = $1
    `, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.IsActive, &p.AllowMultipleVotes,
		&p.IsAnonymous, &p.MaxVotesPerUser, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, poll.ErrPollNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, poll_id, text, order_index, created_at
        FROM options WHERE poll_id = $1
        ORDER BY order_index
    `, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var opts []poll.Option
	for rows.Next() {
		var o poll.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.Text, &o.OrderIndex, &o.CreatedAt); err != nil {
			return nil, nil, err
		}
		opts = append(opts, o)
	}

	return p, opts, rows.Err()
}

func (r *PollRepo) List(ctx context.Context, onlyActive bool) ([]poll.Poll, error) {
	query := `
        SELECT id, title, description, creator_id, is_active, allow_multiple_votes,
               is_anonymous, max_votes_per_user, expires_at, created_at, updated_at
        FROM polls
    `
	var rows *sql.Rows
	var err error

	if onlyActive {
		query += " WHERE is_active = TRUE ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query)
	} else {
		query += " ORDER BY created_at DESC"
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.CreatorID, &p.IsActive,
			&p.AllowMultipleVotes, &p.IsAnonymous, &p.MaxVotesPerUser, &p.ExpiresAt,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *PollRepo) Update(ctx context.Context, id uuid.UUID, input poll.UpdateInput) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE polls
        SET title       = COALESCE($1, title),
            description = COALESCE($2, description),
            expires_at  = COALESCE($3, expires_at),
            updated_at  = now()
        WHERE id = $4
    `, input.Title, input.Description, input.ExpiresAt, id)
	if err != nil {
		return err
	}
	return requirePoll(res)
}

func (r *PollRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE polls SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return requirePoll(res)
}

// Delete removes the poll row; options, votes and views follow via
// ON DELETE CASCADE.
func (r *PollRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requirePoll(res)
}

func (r *PollRepo) RecordView(ctx context.Context, v *poll.View) error {
	query := `
        INSERT INTO poll_views (id, poll_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `
	return r.db.QueryRowContext(ctx, query, v.ID, v.PollID, nullableUUID(v.UserID)).
		Scan(&v.CreatedAt)
}

func requirePoll(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return poll.ErrPollNotFound
	}
	return nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
