package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatherly-go/internal/auth"
)

const testSecret = "test-admin-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := auth.ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestExtractTokenMissingHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := auth.ExtractTokenFromRequest(r)
	assert.Error(t, err)
}

func TestExtractTokenBadFormat(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic abc123")

	_, err := auth.ExtractTokenFromRequest(r)
	assert.Error(t, err)
}

func TestVerifyAdminToken(t *testing.T) {
	signed := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ops@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	subject, err := auth.VerifyAdminToken(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", subject)
}

func TestVerifyAdminTokenWrongSecret(t *testing.T) {
	signed := signToken(t, "other-secret", jwt.MapClaims{"sub": "ops"})

	_, err := auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyAdminTokenExpired(t *testing.T) {
	signed := signToken(t, testSecret, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}

func TestVerifyAdminTokenMissingSubject(t *testing.T) {
	signed := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := auth.VerifyAdminToken(signed, testSecret)
	assert.Error(t, err)
}

func TestAdminMiddleware(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = auth.AdminSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.AdminMiddleware(testSecret)(next)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/attempts", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{
		"sub": "ops@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@example.com", gotSubject)
}

func TestAdminMiddlewareRejectsMissingToken(t *testing.T) {
	handler := auth.AdminMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/attempts", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddlewareRejectsForgedToken(t *testing.T) {
	handler := auth.AdminMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/admin/attempts", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", jwt.MapClaims{"sub": "ops"}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
