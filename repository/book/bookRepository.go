// repository/book/repo.go
package bookrepo

import (
	"context"
	"database/sql"

	"librental/model"
)

type UpdateFields struct {
	Title     *string
	Author    *string
	Cover     *model.CoverType
	Inventory *int64
	DailyFee  *float64
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, f UpdateFields) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, cover, inventory, daily_fee)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.Cover, b.Inventory, b.DailyFee).Scan(&b.ID)
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT id, title, author, cover, inventory, daily_fee
		FROM books
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFee); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, cover, inventory, daily_fee
		FROM books
		WHERE id = $1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFee)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update applies only the non-nil fields via COALESCE and returns the new row.
func (r *repo) Update(ctx context.Context, id int64, f UpdateFields) (*model.Book, error) {
	const q = `
		UPDATE books
		SET title     = COALESCE($2, title),
			author    = COALESCE($3, author),
			cover     = COALESCE($4, cover),
			inventory = COALESCE($5, inventory),
			daily_fee = COALESCE($6, daily_fee)
		WHERE id = $1
		RETURNING id, title, author, cover, inventory, daily_fee`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id, f.Title, f.Author, f.Cover, f.Inventory, f.DailyFee).
		Scan(&b.ID, &b.Title, &b.Author, &b.Cover, &b.Inventory, &b.DailyFee)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
