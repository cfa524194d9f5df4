package paymentsvc

import (
	"context"
	"database/sql"
	"errors"

	paymentrepo "librental/repository/payment"
	"librental/service/policy"
)

type ErrCode string

const ErrNotFound ErrCode = "NOT_FOUND"

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

type Row = paymentrepo.Row

type Repo interface {
	List(ctx context.Context, userID *int64) ([]Row, error)
	Get(ctx context.Context, id int64) (*Row, error)
}

// Service is the read-only payment ledger: rows are created by the external
// payment flow, never through this API.
type Service interface {
	List(ctx context.Context, caller policy.Caller) ([]Row, error)
	Get(ctx context.Context, caller policy.Caller, id int64) (*Row, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, caller policy.Caller) ([]Row, error) {
	if caller.IsStaff {
		return s.r.List(ctx, nil)
	}
	return s.r.List(ctx, &caller.ID)
}

func (s *service) Get(ctx context.Context, caller policy.Caller, id int64) (*Row, error) {
	row, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if !caller.IsStaff && row.OwnerID() != caller.ID {
		// same response as a missing row
		return nil, makeErr(ErrNotFound)
	}
	return row, nil
}
