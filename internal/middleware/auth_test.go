package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"p24-gateway/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireServiceToken(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	var seenService string
	handler := RequireServiceToken(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenService = ServiceFrom(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("Valid Token", func(t *testing.T) {
		token, err := auth.IssueServiceToken(secret, "storefront", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/p24/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "storefront", seenService)
	})

	t.Run("Missing Token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/p24/checkout", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
	})

	t.Run("Foreign Token", func(t *testing.T) {
		token, err := auth.IssueServiceToken([]byte("another-secret-another-secret-xx"), "storefront", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/p24/checkout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestServiceFrom_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, ServiceFrom(req.Context()))
}
