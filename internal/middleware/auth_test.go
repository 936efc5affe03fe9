package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vlasenko/contacts_api/internal/cache"
	"github.com/vlasenko/contacts_api/internal/models"
	"github.com/vlasenko/contacts_api/internal/repository"
	"github.com/vlasenko/contacts_api/internal/service"
	"github.com/vlasenko/contacts_api/internal/tokens"
)

type noopSender struct{}

func (noopSender) SendVerification(context.Context, string, string) error { return nil }
func (noopSender) SendPasswordReset(context.Context, string, string) error { return nil }

func newTestAuth(t *testing.T) *service.AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Contact{}))

	return &service.AuthService{
		Users:  &repository.UserRepo{DB: db},
		Cache:  cache.NewMemoryCache(cache.DefaultTTL),
		Issuer: tokens.NewIssuer(tokens.NewCodec([]byte("test-secret"))),
		Mail:   noopSender{},
	}
}

func TestRequireAuth(t *testing.T) {
	auth := newTestAuth(t)
	ctx := context.Background()

	user := &models.User{Username: "Roy", Email: "roy@example.com", PasswordHash: "h", Confirmed: true}
	require.NoError(t, auth.Users.Create(ctx, user))

	e := echo.New()
	handler := RequireAuth(auth)(func(c echo.Context) error {
		current, ok := CurrentUser(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, current)
	})

	runWith := func(authorization string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		if authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, authorization)
		}
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	access, err := auth.Issuer.Access(user.Email)
	require.NoError(t, err)
	refresh, err := auth.Issuer.Refresh(user.Email)
	require.NoError(t, err)

	rec, err := runWith("Bearer " + access)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	for name, header := range map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"refresh scope":  "Bearer " + refresh,
		"garbage":        "Bearer not.a.token",
	} {
		_, err := runWith(header)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok, "case %q: expected HTTPError", name)
		require.Equal(t, http.StatusUnauthorized, he.Code, "case %q", name)
	}
}
