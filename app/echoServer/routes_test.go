package echoServer

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	authctrl "librental/app/echoServer/controller/auth"
	bookctrl "librental/app/echoServer/controller/book"
	borrowctrl "librental/app/echoServer/controller/borrowing"
	paymentctrl "librental/app/echoServer/controller/payment"
	"librental/app/echoServer/validation"
	"librental/model"
	authsvc "librental/service/auth"
	booksvc "librental/service/book"
	borrowsvc "librental/service/borrowing"
	paymentsvc "librental/service/payment"
	"librental/service/policy"
	jwtutil "librental/util/jwt"
)

const testSecret = "test-secret"

type bookSvcStub struct{}

func (bookSvcStub) Create(ctx context.Context, in booksvc.CreateInput) (*model.Book, error) {
	return &model.Book{ID: 1, Title: in.Title, Author: in.Author, Cover: in.Cover, Inventory: in.Inventory, DailyFee: in.DailyFee}, nil
}
func (bookSvcStub) List(ctx context.Context) ([]model.Book, error) {
	return []model.Book{{ID: 1, Title: "Clean Code"}}, nil
}
func (bookSvcStub) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return &model.Book{ID: id}, nil
}
func (bookSvcStub) Update(ctx context.Context, id int64, in booksvc.UpdateInput) (*model.Book, error) {
	return &model.Book{ID: id}, nil
}
func (bookSvcStub) Delete(ctx context.Context, id int64) error { return nil }

type borrowSvcStub struct{}

func (borrowSvcStub) Create(ctx context.Context, caller policy.Caller, bookID int64, expected time.Time) (*borrowsvc.Row, error) {
	return &borrowsvc.Row{}, nil
}
func (borrowSvcStub) List(ctx context.Context, caller policy.Caller, q borrowsvc.Query) ([]borrowsvc.Row, error) {
	return nil, nil
}
func (borrowSvcStub) Get(ctx context.Context, caller policy.Caller, id int64) (*borrowsvc.Row, error) {
	return &borrowsvc.Row{}, nil
}
func (borrowSvcStub) Return(ctx context.Context, caller policy.Caller, id int64) (*borrowsvc.Row, error) {
	return &borrowsvc.Row{}, nil
}

type paymentSvcStub struct{}

func (paymentSvcStub) List(ctx context.Context, caller policy.Caller) ([]paymentsvc.Row, error) {
	return nil, nil
}
func (paymentSvcStub) Get(ctx context.Context, caller policy.Caller, id int64) (*paymentsvc.Row, error) {
	return &paymentsvc.Row{}, nil
}

type authSvcStub struct{}

func (authSvcStub) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	return &model.User{ID: 1, Email: req.Email}, nil
}
func (authSvcStub) Login(ctx context.Context, req model.LoginReq) (*model.User, *authsvc.TokenPair, error) {
	return &model.User{ID: 1}, &authsvc.TokenPair{Access: "a", Refresh: "r"}, nil
}
func (authSvcStub) Refresh(ctx context.Context, refreshToken string) (*authsvc.TokenPair, error) {
	return &authsvc.TokenPair{Access: "a", Refresh: "r"}, nil
}
func (authSvcStub) Me(ctx context.Context, userID int64) (*model.User, error) {
	return &model.User{ID: userID}, nil
}
func (authSvcStub) UpdateMe(ctx context.Context, userID int64, req model.UpdateMeReq) (*model.User, error) {
	return &model.User{ID: userID}, nil
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := slog.Default()
	v := validator.New()

	e := echo.New()
	e.Validator = validation.New()
	Register(e, C{
		Auth:      &authctrl.Controller{Svc: authSvcStub{}, V: v, Log: log},
		Book:      &bookctrl.Controller{Svc: bookSvcStub{}, V: v, Log: log},
		Borrowing: &borrowctrl.Controller{Svc: borrowSvcStub{}, V: v, Log: log},
		Payment:   &paymentctrl.Controller{Svc: paymentSvcStub{}, Log: log},
		JWTSecret: testSecret,
	})
	return e
}

func bearer(t *testing.T, userID int64, isStaff bool) string {
	t.Helper()
	tok, err := jwtutil.Issue(testSecret, userID, "u@example.com", isStaff, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const bookBody = `{"title":"Clean Code","author":"Robert C. Martin","cover":"HARD","inventory":3,"daily_fee":1.5}`

func TestBooks_AnonymousCanRead(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/v1/books", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/v1/books/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBooks_AnonymousMutationUnauthorized(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/v1/books", "", bookBody)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/books/1", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBadBearerTokenUnauthorized(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/v1/borrowings", "Bearer not.a.jwt", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Signed with the wrong key.
	tok, err := jwtutil.Issue("other-secret", 1, "u@example.com", false, time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/borrowings", "Bearer "+tok, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err = jwtutil.Issue(testSecret, 1, "u@example.com", false, -time.Minute)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/v1/borrowings", "Bearer "+tok, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBooks_NonStaffMutationForbidden(t *testing.T) {
	e := newTestServer(t)
	auth := bearer(t, 1, false)

	rec := do(e, http.MethodPost, "/v1/books", auth, bookBody)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPatch, "/v1/books/1", auth, `{"title":"x"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/books/1", auth, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBooks_StaffMutations(t *testing.T) {
	e := newTestServer(t)
	auth := bearer(t, 2, true)

	rec := do(e, http.MethodPost, "/v1/books", auth, bookBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPatch, "/v1/books/1", auth, `{"title":"Refactoring"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodDelete, "/v1/books/1", auth, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBorrowings_RequireAuth(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/v1/borrowings", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/borrowings", "", `{"book_id":1,"expected_return_date":"2099-01-01"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/borrowings/1/return", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBorrowings_Authenticated(t *testing.T) {
	e := newTestServer(t)
	auth := bearer(t, 1, false)

	rec := do(e, http.MethodPost, "/v1/borrowings", auth, `{"book_id":1,"expected_return_date":"2099-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/v1/borrowings", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPost, "/v1/borrowings/1/return", auth, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPayments_RequireAuth(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/v1/payments", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/v1/payments/1", bearer(t, 1, false), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUsers_RegisterAndMe(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/v1/users/register",
		"", `{"first_name":"New","last_name":"User","email":"new@example.com","password":"strongpass"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/v1/users/me", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/v1/users/me", bearer(t, 1, false), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestToken_Flow(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/v1/token", "", `{"email":"u@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "access")
	require.Contains(t, rec.Body.String(), "refresh")

	rec = do(e, http.MethodPost, "/v1/token/refresh", "", `{"refresh":"r"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}
