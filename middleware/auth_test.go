package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ensaj-backend/models"
	"ensaj-backend/testutils"
	"ensaj-backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthSecret = "test-secret"

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	store := testutils.NewStore()
	handler := Auth(testAuthSecret, store.Revoker())(http.HandlerFunc(okHandler))

	token, claims, err := utils.GenerateToken("user1", "test@example.com", testAuthSecret, time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"token manquant", "", http.StatusUnauthorized},
		{"format invalide", "InvalidFormat", http.StatusUnauthorized},
		{"token invalide", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"token valide", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}

	t.Run("claims disponibles dans le contexte", func(t *testing.T) {
		h := Auth(testAuthSecret, store.Revoker())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := GetUserFromContext(r.Context())
			require.NotNil(t, c)
			assert.Equal(t, "user1", c.UserID)
			assert.Equal(t, "test@example.com", c.Email)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		h.ServeHTTP(httptest.NewRecorder(), req)
	})

	t.Run("token révoqué", func(t *testing.T) {
		require.NoError(t, store.Revoker().Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	store := testutils.NewStore()
	admin := &models.User{Email: "admin@ensaj.ma", Role: models.RoleAdmin}
	user := &models.User{Email: "user@ensaj.ma", Role: models.RoleUser}
	require.NoError(t, store.Users().Create(ctx, admin))
	require.NoError(t, store.Users().Create(ctx, user))

	handler := RequireAdmin(store.Users())(http.HandlerFunc(okHandler))

	serve := func(claims *utils.Claims) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if claims != nil {
			req = req.WithContext(WithClaims(req.Context(), claims))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusOK, serve(&utils.Claims{UserID: admin.ID.Hex()}))
	assert.Equal(t, http.StatusForbidden, serve(&utils.Claims{UserID: user.ID.Hex()}))
	assert.Equal(t, http.StatusUnauthorized, serve(&utils.Claims{UserID: "pas-un-id"}))
}

func TestGuest(t *testing.T) {
	handler := Guest(testAuthSecret)(http.HandlerFunc(okHandler))
	token, _, err := utils.GenerateToken("user1", "test@example.com", testAuthSecret, time.Hour, time.Now())
	require.NoError(t, err)
	expired, _, err := utils.GenerateToken("user1", "test@example.com", testAuthSecret, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"sans token", "", http.StatusOK},
		{"déjà connecté", "Bearer " + token, http.StatusForbidden},
		{"token expiré", "Bearer " + expired, http.StatusOK},
		{"format invalide", "Token " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
