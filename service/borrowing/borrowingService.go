package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"librental/model"
	borrowrepo "librental/repository/borrowing"
	"librental/service/policy"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrNotAvailable    ErrCode = "NOT_AVAILABLE"
	ErrPastDate        ErrCode = "PAST_DATE"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Query are the caller-supplied list filters. UserID only takes effect for
// staff callers; for everyone else the listing is scoped to the caller no
// matter what was passed.
type Query struct {
	UserID   *int64
	IsActive *bool
}

type Row = borrowrepo.Row

type Repo interface {
	BookExists(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	DecrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, b *model.Borrowing) error

	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.Borrowing, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, returned time.Time) error
	IncrementInventory(ctx context.Context, tx *sql.Tx, bookID int64) error

	List(ctx context.Context, f borrowrepo.ListFilter) ([]Row, error)
	Get(ctx context.Context, id int64) (*Row, error)
}

type Service interface {
	// Create borrows one copy of a book: decrements inventory and inserts
	// the borrowing in one transaction.
	Create(ctx context.Context, caller policy.Caller, bookID int64, expectedReturn time.Time) (*Row, error)

	// List returns the caller's borrowings, or everyone's for staff.
	List(ctx context.Context, caller policy.Caller, q Query) ([]Row, error)

	// Get returns one borrowing; rows not visible to the caller read as
	// missing.
	Get(ctx context.Context, caller policy.Caller, id int64) (*Row, error)

	// Return stamps the return date and puts the copy back, once.
	Return(ctx context.Context, caller policy.Caller, id int64) (*Row, error)
}

type service struct {
	db *sql.DB
	r  Repo
}

func New(db *sql.DB, r Repo) Service { return &service{db: db, r: r} }

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func (s *service) Create(ctx context.Context, caller policy.Caller, bookID int64, expectedReturn time.Time) (*Row, error) {
	now := today()
	if expectedReturn.Before(now) {
		return nil, makeErr(ErrPastDate)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exists, err := s.r.BookExists(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = makeErr(ErrBookNotFound)
		return nil, err
	}

	ok, err := s.r.DecrementInventory(ctx, tx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		err = makeErr(ErrNotAvailable)
		return nil, err
	}

	b := &model.Borrowing{
		UserID:             caller.ID,
		BookID:             bookID,
		BorrowDate:         now,
		ExpectedReturnDate: expectedReturn,
	}
	if err = s.r.Insert(ctx, tx, b); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return s.r.Get(ctx, b.ID)
}

func (s *service) List(ctx context.Context, caller policy.Caller, q Query) ([]Row, error) {
	f := borrowrepo.ListFilter{IsActive: q.IsActive}
	if caller.IsStaff {
		f.UserID = q.UserID
	} else {
		// non-staff always see only their own rows
		f.UserID = &caller.ID
	}
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, caller policy.Caller, id int64) (*Row, error) {
	row, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !caller.IsStaff && row.UserID != caller.ID {
		// existence is not leaked to non-owners
		return nil, makeErr(ErrNotFound)
	}
	return row, nil
}

func (s *service) Return(ctx context.Context, caller policy.Caller, id int64) (*Row, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b, err := s.r.GetForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !caller.IsStaff && b.UserID != caller.ID {
		err = makeErr(ErrNotFound)
		return nil, err
	}
	if b.ActualReturnDate != nil {
		err = makeErr(ErrAlreadyReturned)
		return nil, err
	}

	if err = s.r.MarkReturned(ctx, tx, id, today()); err != nil {
		return nil, err
	}
	if err = s.r.IncrementInventory(ctx, tx, b.BookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return s.r.Get(ctx, id)
}
