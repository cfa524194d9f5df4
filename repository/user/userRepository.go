package userrepo

import (
	"context"
	"database/sql"

	"librental/model"
)

type UpdateFields struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, f UpdateFields) (*model.User, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users(first_name, last_name, email, is_staff, password_hash)
		VALUES ($1,$2,lower($3),$4,$5)
		RETURNING id, created_at`,
		u.FirstName, u.LastName, u.Email, u.IsStaff, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, is_staff, password_hash, created_at
        FROM users
        WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.IsStaff, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, first_name, last_name, email, is_staff, password_hash, created_at
        FROM users
        WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.IsStaff, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Update(ctx context.Context, id int64, f UpdateFields) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET first_name    = COALESCE($2, first_name),
			last_name     = COALESCE($3, last_name),
			email         = COALESCE(lower($4), email),
			password_hash = COALESCE($5, password_hash)
		WHERE id = $1
		RETURNING id, first_name, last_name, email, is_staff, password_hash, created_at`,
		id, f.FirstName, f.LastName, f.Email, f.PasswordHash,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.IsStaff, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
