package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardemumma/kardemumma/internal/models"
	"github.com/kardemumma/kardemumma/internal/store"
)

func newTestAuth(ttl time.Duration) *Auth {
	return &Auth{
		secret:     []byte("test-secret"),
		cookieName: "kdm_token",
		ttl:        ttl,
	}
}

func TestAuth_IssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuth(time.Hour)
	admin := &models.Admin{ID: 7, Name: "Alice", Email: "alice@example.test"}

	token, err := auth.Issue(ctx, admin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("token from cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)
		r.AddCookie(&http.Cookie{Name: auth.CookieName(), Value: token})

		got, err := auth.Authenticate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "alice@example.test", got.Email)
	})

	t.Run("token from bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		got, err := auth.Authenticate(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)

		_, err := auth.Authenticate(ctx, r)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)
		r.Header.Set("Authorization", "Bearer not.a.token")

		_, err := auth.Authenticate(ctx, r)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := newTestAuth(time.Hour)
		other.secret = []byte("different-secret")
		foreign, err := other.Issue(ctx, admin)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)
		r.Header.Set("Authorization", "Bearer "+foreign)

		_, err = auth.Authenticate(ctx, r)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := newTestAuth(-time.Minute)
		expired, err := shortLived.Issue(ctx, admin)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/api/features", nil)
		r.Header.Set("Authorization", "Bearer "+expired)

		_, err = shortLived.Authenticate(ctx, r)
		assert.ErrorIs(t, err, ErrAuthRequired)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, checkPassword(hash, "hunter2"))
	assert.False(t, checkPassword(hash, "hunter3"))
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	newLoginService := func(admin *models.Admin, lookupErr error) (*Service, *MockStore) {
		ms := new(MockStore)
		if lookupErr != nil {
			ms.On("GetAdminByEmail", "alice@example.test").Return(nil, lookupErr).Once()
		} else {
			ms.On("GetAdminByEmail", "alice@example.test").Return(admin, nil).Once()
		}
		svc := newTestService(ms)
		svc.Auth = newTestAuth(time.Hour)
		return svc, ms
	}

	t.Run("valid credentials issue a token", func(t *testing.T) {
		admin := &models.Admin{ID: 7, Name: "Alice", Email: "alice@example.test", PasswordHash: hash, IsActive: true}
		svc, ms := newLoginService(admin, nil)

		got, token, err := svc.Login(ctx, "alice@example.test", "hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64(7), got.ID)
		assert.NotNil(t, got.LastLoginAt)
		ms.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		admin := &models.Admin{ID: 7, Email: "alice@example.test", PasswordHash: hash, IsActive: true}
		svc, _ := newLoginService(admin, nil)

		_, _, err := svc.Login(ctx, "alice@example.test", "hunter3")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive admin", func(t *testing.T) {
		admin := &models.Admin{ID: 7, Email: "alice@example.test", PasswordHash: hash, IsActive: false}
		svc, _ := newLoginService(admin, nil)

		_, _, err := svc.Login(ctx, "alice@example.test", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newLoginService(nil, store.ErrNotFound)

		_, _, err := svc.Login(ctx, "alice@example.test", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
