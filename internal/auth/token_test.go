package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optibridge/service/internal/middleware"
)

func TestIssueTokenAcceptedByMiddleware(t *testing.T) {
	token, err := IssueToken("s3cret", "desktop", time.Hour, time.Now())
	require.NoError(t, err)

	var subject string
	h := middleware.RequireAuth("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = middleware.Subject(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "desktop", subject)
}

func TestIssueTokenExpired(t *testing.T) {
	token, err := IssueToken("s3cret", "desktop", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	h := middleware.RequireAuth("s3cret")(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "desktop", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrEmptySecret)
}
