// service/auth/auth_service_test.go
package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"librental/model"
	tokenrepo "librental/repository/token"
	userrepo "librental/repository/user"
	"librental/util/hash"
)

type userRepoMock struct {
	createFn  func(ctx context.Context, u *model.User) error
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	updateFn  func(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error)
}

var _ userrepo.Repo = (*userRepoMock)(nil)

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error { return m.createFn(ctx, u) }
func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}
func (m *userRepoMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *userRepoMock) Update(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error) {
	return m.updateFn(ctx, id, f)
}

type tokenRepoMock struct {
	created map[string]int64
	rows    map[string]tokenrepo.RefreshToken
	deleted []string
}

var _ tokenrepo.Repo = (*tokenRepoMock)(nil)

func newTokenRepoMock() *tokenRepoMock {
	return &tokenRepoMock{
		created: map[string]int64{},
		rows:    map[string]tokenrepo.RefreshToken{},
	}
}

func (m *tokenRepoMock) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	m.created[token] = userID
	m.rows[token] = tokenrepo.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (m *tokenRepoMock) Find(ctx context.Context, token string) (*tokenrepo.RefreshToken, error) {
	rt, ok := m.rows[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rt, nil
}

func (m *tokenRepoMock) Delete(ctx context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	delete(m.rows, token)
	return nil
}

func (m *tokenRepoMock) DeleteForUser(ctx context.Context, userID int64) error {
	for tok, rt := range m.rows {
		if rt.UserID == userID {
			m.deleted = append(m.deleted, tok)
			delete(m.rows, tok)
		}
	}
	return nil
}

func newSvc(ur userrepo.Repo, tr tokenrepo.Repo) Service {
	return New(ur, tr, "test-secret", 30*time.Minute, 7*24*time.Hour)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	u, err := svc.Register(ctx, model.RegisterReq{
		FirstName: "Test",
		LastName:  "User",
		Email:     "USER@Example.COM",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.False(t, u.IsStaff, "registration never creates staff")
	require.NotEmpty(t, u.PasswordHash)
	require.NotEqual(t, "supersecret", u.PasswordHash)
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := newSvc(&userRepoMock{}, newTokenRepoMock())

	_, err := svc.Register(ctx, model.RegisterReq{Email: " ", Password: "123456"})
	require.Equal(t, ErrBadInput, Code(err))

	_, err = svc.Register(ctx, model.RegisterReq{Email: "a@example.com", Password: "123"})
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"}
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	_, err := svc.Register(ctx, model.RegisterReq{Email: "taken@example.com", Password: "123456"})
	require.Equal(t, ErrEmailTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		createFn: func(ctx context.Context, u *model.User) error { return errors.New("db down") },
	}
	svc := newSvc(m, newTokenRepoMock())

	_, err := svc.Register(ctx, model.RegisterReq{Email: "ok@example.com", Password: "123456"})
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	m := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: "user@example.com", PasswordHash: hashed}, nil
		},
	}
	tm := newTokenRepoMock()
	svc := newSvc(m, tm)

	u, pair, err := svc.Login(ctx, model.LoginReq{Email: "User@Example.com", Password: pw})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.Equal(t, int64(7), tm.created[pair.Refresh], "refresh token persisted for the user")
}

func TestLogin_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	_, _, err := svc.Login(ctx, model.LoginReq{Email: "missing@example.com", Password: "whatever"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	hashed := mustHash(t, "correct-password")

	m := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 101, Email: "user@example.com", PasswordHash: hashed}, nil
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	_, _, err := svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "wrong-password"})
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestRefresh_Rotates(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "user@example.com"}, nil
		},
	}
	tm := newTokenRepoMock()
	require.NoError(t, tm.Create(ctx, 7, "old-refresh", time.Hour))

	svc := newSvc(m, tm)
	pair, err := svc.Refresh(ctx, "old-refresh")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEqual(t, "old-refresh", pair.Refresh)
	require.Contains(t, tm.deleted, "old-refresh", "old refresh token is single-use")

	// old token no longer works
	_, err = svc.Refresh(ctx, "old-refresh")
	require.Equal(t, ErrInvalidRefresh, Code(err))
}

func TestRefresh_UnknownToken(t *testing.T) {
	svc := newSvc(&userRepoMock{}, newTokenRepoMock())
	_, err := svc.Refresh(context.Background(), "nope")
	require.Equal(t, ErrInvalidRefresh, Code(err))
}

func TestRefresh_Expired(t *testing.T) {
	ctx := context.Background()
	tm := newTokenRepoMock()
	require.NoError(t, tm.Create(ctx, 7, "stale", -time.Hour))

	svc := newSvc(&userRepoMock{}, tm)
	_, err := svc.Refresh(ctx, "stale")
	require.Equal(t, ErrInvalidRefresh, Code(err))
	require.Contains(t, tm.deleted, "stale")
}

func TestUpdateMe_RehashesPassword(t *testing.T) {
	ctx := context.Background()
	var got userrepo.UpdateFields
	m := &userRepoMock{
		updateFn: func(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error) {
			got = f
			return &model.User{ID: id}, nil
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	pw := "newpassword"
	_, err := svc.UpdateMe(ctx, 7, model.UpdateMeReq{Password: &pw})
	require.NoError(t, err)
	require.NotNil(t, got.PasswordHash)
	require.True(t, hash.Check(*got.PasswordHash, pw))
	require.Nil(t, got.Email)
	require.Nil(t, got.FirstName)
}

func TestUpdateMe_PasswordChangeRevokesRefreshTokens(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		updateFn: func(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	tm := newTokenRepoMock()
	require.NoError(t, tm.Create(ctx, 7, "tok-a", time.Hour))
	require.NoError(t, tm.Create(ctx, 7, "tok-b", time.Hour))
	require.NoError(t, tm.Create(ctx, 8, "tok-other", time.Hour))
	svc := newSvc(m, tm)

	pw := "newpassword"
	_, err := svc.UpdateMe(ctx, 7, model.UpdateMeReq{Password: &pw})
	require.NoError(t, err)

	// Both of user 7's tokens are gone, user 8's survives.
	_, err = tm.Find(ctx, "tok-a")
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = tm.Find(ctx, "tok-b")
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = tm.Find(ctx, "tok-other")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, "tok-a")
	require.Equal(t, ErrInvalidRefresh, Code(err))
}

func TestUpdateMe_NameChangeKeepsRefreshTokens(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		updateFn: func(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	tm := newTokenRepoMock()
	require.NoError(t, tm.Create(ctx, 7, "tok-a", time.Hour))
	svc := newSvc(m, tm)

	name := "Ada"
	_, err := svc.UpdateMe(ctx, 7, model.UpdateMeReq{FirstName: &name})
	require.NoError(t, err)

	_, err = tm.Find(ctx, "tok-a")
	require.NoError(t, err)
}

func TestUpdateMe_EmailTaken(t *testing.T) {
	ctx := context.Background()
	m := &userRepoMock{
		updateFn: func(ctx context.Context, id int64, f userrepo.UpdateFields) (*model.User, error) {
			return nil, &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := newSvc(m, newTokenRepoMock())

	email := "taken@example.com"
	_, err := svc.UpdateMe(ctx, 7, model.UpdateMeReq{Email: &email})
	require.Equal(t, ErrEmailTaken, Code(err))
}
