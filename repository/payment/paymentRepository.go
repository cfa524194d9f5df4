// repository/payment/repo.go
package paymentrepo

import (
	"context"
	"database/sql"

	"librental/model"
	borrowrepo "librental/repository/borrowing"
)

// Row is a payment joined with its borrowing (and that borrowing's book),
// matching the detail response shape.
type Row struct {
	model.Payment
	Borrowing borrowrepo.Row `json:"borrowing"`
}

// OwnerID reports which user the payment ultimately belongs to, resolved
// through the borrowing.
func (r Row) OwnerID() int64 { return r.Borrowing.UserID }

type Repo interface {
	// List returns all payments when userID is nil, otherwise only payments
	// whose borrowing belongs to that user.
	List(ctx context.Context, userID *int64) ([]Row, error)
	Get(ctx context.Context, id int64) (*Row, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

const selectRow = `
	SELECT
		p.id, p.borrowing_id, p.status, p.type, p.session_url, p.session_id, p.money_to_pay,
		br.id, br.user_id, br.book_id, br.borrow_date,
		br.expected_return_date, br.actual_return_date,
		b.id, b.title, b.author, b.cover, b.inventory, b.daily_fee
	FROM payments p
	JOIN borrowings br ON br.id = p.borrowing_id
	JOIN books b ON b.id = br.book_id`

func (r *repo) List(ctx context.Context, userID *int64) ([]Row, error) {
	q := selectRow
	var args []any
	if userID != nil {
		q += " WHERE br.user_id = $1"
		args = append(args, *userID)
	}
	q += " ORDER BY p.id"

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
	err := scanRow(r.db.QueryRowContext(ctx, selectRow+" WHERE p.id = $1", id), row)
	if err != nil {
		return nil, err
	}
	return row, nil
}

type scanner interface{ Scan(dest ...any) error }

func scanRow(s scanner, row *Row) error {
	return s.Scan(
		&row.ID, &row.BorrowingID, &row.Status, &row.Type,
		&row.SessionURL, &row.SessionID, &row.MoneyToPay,
		&row.Borrowing.ID, &row.Borrowing.UserID, &row.Borrowing.BookID,
		&row.Borrowing.BorrowDate, &row.Borrowing.ExpectedReturnDate, &row.Borrowing.ActualReturnDate,
		&row.Borrowing.Book.ID, &row.Borrowing.Book.Title, &row.Borrowing.Book.Author,
		&row.Borrowing.Book.Cover, &row.Borrowing.Book.Inventory, &row.Borrowing.Book.DailyFee,
	)
}
