// repository/token/repo.go
//
// Persisted refresh tokens backing POST /v1/token/refresh. A token row is
// deleted when rotated or expired.
package tokenrepo

import (
	"context"
	"database/sql"
	"time"
)

type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
}

type Repo interface {
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	const q = `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1,$2,$3)`
	_, err := r.db.ExecContext(ctx, q, token, userID, time.Now().Add(validity))
	return err
}

func (r *repo) Find(ctx context.Context, token string) (*RefreshToken, error) {
	const q = `
		SELECT token, user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1`
	rt := &RefreshToken{}
	err := r.db.QueryRowContext(ctx, q, token).Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *repo) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *repo) DeleteForUser(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}
