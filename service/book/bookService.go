package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"librental/model"
	bookrepo "librental/repository/book"
)

type ErrCode string

const (
	ErrInvalid  ErrCode = "INVALID"
	ErrNotFound ErrCode = "NOT_FOUND"
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

type CreateInput struct {
	Title     string
	Author    string
	Cover     model.CoverType
	Inventory int64
	DailyFee  float64
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
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
	Update(ctx context.Context, id int64, f bookrepo.UpdateFields) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Book, error) {
	if in.Title == "" || in.Author == "" || !in.Cover.Valid() || in.Inventory < 0 || in.DailyFee <= 0 {
		return nil, makeErr(ErrInvalid)
	}
	b := &model.Book{
		Title:     in.Title,
		Author:    in.Author,
		Cover:     in.Cover,
		Inventory: in.Inventory,
		DailyFee:  in.DailyFee,
	}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Book, error) {
	if in.Title != nil && *in.Title == "" {
		return nil, makeErr(ErrInvalid)
	}
	if in.Author != nil && *in.Author == "" {
		return nil, makeErr(ErrInvalid)
	}
	if in.Cover != nil && !in.Cover.Valid() {
		return nil, makeErr(ErrInvalid)
	}
	if in.Inventory != nil && *in.Inventory < 0 {
		return nil, makeErr(ErrInvalid)
	}
	if in.DailyFee != nil && *in.DailyFee <= 0 {
		return nil, makeErr(ErrInvalid)
	}
	b, err := s.r.Update(ctx, id, bookrepo.UpdateFields{
		Title:     in.Title,
		Author:    in.Author,
		Cover:     in.Cover,
		Inventory: in.Inventory,
		DailyFee:  in.DailyFee,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}
