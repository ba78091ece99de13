package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "github.com/dmpolyakov/racingclub/middleware"
)

func signed(t *testing.T, key []byte, username string) string {
	t.Helper()
	claims := &mw.Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func authRequest(t *testing.T, key []byte, token string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw.JWT(key)(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("username").(string))
	})
	return handler(c)
}

func TestJWTSetsUsername(t *testing.T) {
	key := []byte("test-secret")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", signed(t, key, "anna"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw.JWT(key)(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("username").(string))
	})
	require.NoError(t, handler(c))
	assert.Equal(t, "anna", rec.Body.String())
}

func TestJWTMissingHeader(t *testing.T) {
	err := authRequest(t, []byte("test-secret"), "")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestJWTWrongSigningKey(t *testing.T) {
	token := signed(t, []byte("other-secret"), "anna")

	err := authRequest(t, []byte("test-secret"), token)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
	assert.Equal(t, "invalid token signature", he.Message)
}

func TestJWTGarbageToken(t *testing.T) {
	err := authRequest(t, []byte("test-secret"), "not-a-token")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
