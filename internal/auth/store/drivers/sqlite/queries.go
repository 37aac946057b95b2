package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries {
	return &queries{db: db}
}

type userRow struct {
	ID           int64
	Username     string
	PasswordHash string
	TOTPSecret   sql.NullString
	TwoFAEnabled bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const selectUser = `SELECT id, username, hashed_password, totp_secret, is_2fa_enabled, created_at, updated_at FROM users`

func scanUser(row *sql.Row) (userRow, error) {
	var u userRow
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.TOTPSecret,
		&u.TwoFAEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (q *queries) GetUserByID(ctx context.Context, id int64) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
}

func (q *queries) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	return scanUser(q.db.QueryRowContext(ctx, selectUser+` WHERE username = ?`, username))
}

func (q *queries) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (username, hashed_password) VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) UpdateUserTOTPSecret(ctx context.Context, id int64, secret sql.NullString) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users
		    SET totp_secret = ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ? AND is_2fa_enabled = 0`,
		secret, id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) EnableUserTwoFactor(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users
		    SET is_2fa_enabled = 1, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ? AND is_2fa_enabled = 0 AND totp_secret IS NOT NULL AND totp_secret <> ''`,
		id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
