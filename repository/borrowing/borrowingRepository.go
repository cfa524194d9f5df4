// repository/borrowing/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"librental/model"
)

// Row is the read shape: a borrowing joined with its book.
type Row struct {
	model.Borrowing
	Book model.Book `json:"book"`
}

type ListFilter struct {
	UserID   *int64
	IsActive *bool
}

type Repo interface {
	// Borrow path. DecrementInventory is a conditional update: it reports
	// false when the book has no available copies, without erroring, so two
	// concurrent borrows can never both succeed on the last copy.
	BookExists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	DecrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error

	// Return path. Both writes run on the same tx; the borrowing row is
	// locked first.
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrowing, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returned time.Time) error
	IncrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) error

	// Reads.
	List(ctx context.Context, f ListFilter) ([]Row, error)
	Get(ctx context.Context, id int64) (*Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) BookExists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) DecrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	const q = `
		UPDATE books
		SET inventory = inventory - 1
		WHERE id = $1
		AND inventory >= 1`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error {
	const q = `
		INSERT INTO borrowings (user_id, book_id, borrow_date, expected_return_date)
		VALUES ($1,$2,$3,$4)
		RETURNING id`
	return tx.QueryRowContext(ctx, q, b.UserID, b.BookID, b.BorrowDate, b.ExpectedReturnDate).Scan(&b.ID)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrowing, error) {
	const q = `
		SELECT id, user_id, book_id, borrow_date, expected_return_date, actual_return_date
		FROM borrowings
		WHERE id = $1
		FOR UPDATE`
	b := &model.Borrowing{}
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&b.ID, &b.UserID, &b.BookID, &b.BorrowDate, &b.ExpectedReturnDate, &b.ActualReturnDate)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returned time.Time) error {
	const q = `
		UPDATE borrowings
		SET actual_return_date = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, returned)
	return err
}

func (r *repo) IncrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		UPDATE books
		SET inventory = inventory + 1
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID)
	return err
}

const selectRow = `
	SELECT
		br.id, br.user_id, br.book_id, br.borrow_date,
		br.expected_return_date, br.actual_return_date,
		b.id, b.title, b.author, b.cover, b.inventory, b.daily_fee
	FROM borrowings br
	JOIN books b ON b.id = br.book_id`

func (r *repo) List(ctx context.Context, f ListFilter) ([]Row, error) {
	q := selectRow
	var args []any
	if f.UserID != nil {
		args = append(args, *f.UserID)
		q += fmt.Sprintf(" WHERE br.user_id = $%d", len(args))
	}
	if f.IsActive != nil {
		clause := " WHERE"
		if len(args) > 0 {
			clause = " AND"
		}
		if *f.IsActive {
			q += clause + " br.actual_return_date IS NULL"
		} else {
			q += clause + " br.actual_return_date IS NOT NULL"
		}
	}
	q += " ORDER BY br.id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := scanRow(rows, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) Get(ctx context.Context, id int64) (*Row, error) {
	row := &Row{}
	err := scanRow(r.db.QueryRowContext(ctx, selectRow+" WHERE br.id = $1", id), row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanRow(s scanner, row *Row) error {
	return s.Scan(
		&row.ID, &row.UserID, &row.BookID, &row.BorrowDate,
		&row.ExpectedReturnDate, &row.ActualReturnDate,
		&row.Book.ID, &row.Book.Title, &row.Book.Author, &row.Book.Cover,
		&row.Book.Inventory, &row.Book.DailyFee,
	)
}
