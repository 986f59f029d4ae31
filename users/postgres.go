package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/teamhackers/boardbooster/core/logger"
)

// PostgresRegistry persists users in Postgres.
type PostgresRegistry struct {
	db *sqlx.DB
}

func NewPostgresRegistry(db *sqlx.DB) *PostgresRegistry {
	return &PostgresRegistry{db: db}
}

type userRow struct {
	ID        int64        `db:"id"`
	Username  string       `db:"username"`
	FirstName string       `db:"first_name"`
	Warnings  int          `db:"warnings"`
	Blocked   bool         `db:"blocked"`
	BlockedTo sql.NullTime `db:"blocked_until"`
	JoinedAt  time.Time    `db:"joined_at"`
}

func (r userRow) user() User {
	u := User{
		ID:        r.ID,
		Username:  r.Username,
		FirstName: r.FirstName,
		Warnings:  r.Warnings,
		Blocked:   r.Blocked,
		JoinedAt:  r.JoinedAt,
	}
	if r.BlockedTo.Valid {
		u.BlockedTo = r.BlockedTo.Time
	}
	return u
}

func (r *PostgresRegistry) Ensure(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, first_name, joined_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, first_name = EXCLUDED.first_name`,
		u.ID, u.Username, u.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) Get(ctx context.Context, id int64) (User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return row.user(), nil
}

func (r *PostgresRegistry) List(ctx context.Context) ([]User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.user())
	}
	return out, nil
}

func (r *PostgresRegistry) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	logger.USERS.Log(ctx, slog.LevelInfo, "user removed",
		slog.String("event", "users.remove"),
		slog.Int64("user_id", id),
	)
	return nil
}

func (r *PostgresRegistry) Warn(ctx context.Context, id int64, now time.Time) (User, error) {
	var row userRow
	err := r.db.QueryRowxContext(ctx,
		`UPDATE users SET
			warnings = CASE WHEN warnings + 1 >= $2 THEN 0 ELSE warnings + 1 END,
			blocked_until = CASE WHEN warnings + 1 >= $2 THEN $3 ELSE blocked_until END
		 WHERE id = $1
		 RETURNING *`,
		id, MaxWarnings, now.Add(AutoBlockFor)).StructScan(&row)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("warn user: %w", err)
	}
	u := row.user()
	if u.BlockedAt(now) {
		logger.USERS.Log(ctx, slog.LevelWarn, "user auto blocked",
			slog.String("event", "users.autoblock"),
			slog.Int64("user_id", id),
			slog.Time("blocked_until", u.BlockedTo),
		)
	}
	return u, nil
}

func (r *PostgresRegistry) SetBlocked(ctx context.Context, id int64, blocked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET blocked = $2, blocked_until = NULL WHERE id = $1`, id, blocked)
	if err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	logger.USERS.Log(ctx, slog.LevelInfo, "user block changed",
		slog.String("event", "users.block"),
		slog.Int64("user_id", id),
		slog.Bool("blocked", blocked),
	)
	return nil
}
