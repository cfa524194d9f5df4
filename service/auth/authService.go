package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"librental/model"
	tokenrepo "librental/repository/token"
	userrepo "librental/repository/user"
	"librental/util/hash"
	jwtutil "librental/util/jwt"
)

type ErrCode string

const (
	ErrEmailTaken     ErrCode = "EMAIL_TAKEN"
	ErrBadInput       ErrCode = "BAD_INPUT"
	ErrInvalidCreds   ErrCode = "INVALID_CREDENTIALS"
	ErrInvalidRefresh ErrCode = "INVALID_REFRESH"
	ErrNotFound       ErrCode = "NOT_FOUND"
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

// TokenPair is the credential pair handed out on login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Service interface {
	// Register creates a non-staff account. The password is stored only as
	// a bcrypt hash.
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)

	// Login verifies credentials and issues an access + refresh pair. The
	// refresh token is persisted.
	Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error)

	// Refresh rotates a refresh token: the old row is deleted and a fresh
	// pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	Me(ctx context.Context, userID int64) (*model.User, error)

	// UpdateMe partially updates the caller's profile. Changing the
	// password revokes all of the caller's refresh tokens.
	UpdateMe(ctx context.Context, userID int64, req model.UpdateMeReq) (*model.User, error)
}

type service struct {
	ur         userrepo.Repo
	tr         tokenrepo.Repo
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(ur userrepo.Repo, tr tokenrepo.Repo, secret string, accessTTL, refreshTTL time.Duration) Service {
	return &service{ur: ur, tr: tr, secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        email,
		IsStaff:      false,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return makeErr(ErrEmailTaken)
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, nil, makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, nil, makeErr(ErrInvalidCreds)
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, makeErr(ErrInvalidCreds)
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, makeErr(ErrInvalidRefresh)
	}

	rt, err := s.tr.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrInvalidRefresh)
		}
		return nil, err
	}
	if time.Now().After(rt.ExpiresAt) {
		_ = s.tr.Delete(ctx, refreshToken)
		return nil, makeErr(ErrInvalidRefresh)
	}

	u, err := s.ur.ByID(ctx, rt.UserID)
	if err != nil {
		return nil, makeErr(ErrInvalidRefresh)
	}

	// rotate: old token is single-use
	if err := s.tr.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, u)
}

func (s *service) issuePair(ctx context.Context, u *model.User) (*TokenPair, error) {
	access, err := jwtutil.Issue(s.secret, u.ID, u.Email, u.IsStaff, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	if err := s.tr.Create(ctx, u.ID, refresh, s.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) UpdateMe(ctx context.Context, userID int64, req model.UpdateMeReq) (*model.User, error) {
	f := userrepo.UpdateFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" {
			return nil, makeErr(ErrBadInput)
		}
		f.Email = &email
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, makeErr(ErrBadInput)
		}
		hashed, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		f.PasswordHash = &hashed
	}

	u, err := s.ur.Update(ctx, userID, f)
	if err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	// A password change invalidates every outstanding refresh token.
	if f.PasswordHash != nil {
		if err := s.tr.DeleteForUser(ctx, userID); err != nil {
			return nil, err
		}
	}
	return u, nil
}
