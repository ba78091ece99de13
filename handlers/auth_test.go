package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmpolyakov/racingclub/models"
	"github.com/dmpolyakov/racingclub/profiles"
)

func TestSignupCreatesUserAndProfile(t *testing.T) {
	h, bdb := setup(t)

	c, rec := request(t, http.MethodPost, "/api/signup", `{
		"username": "anna",
		"password": "longenough",
		"email": "anna@example.com",
		"firstName": "Anna",
		"lastName": "Karenina",
		"phone": "8 (916) 123-45-67"
	}`)
	require.NoError(t, h.Signup(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["token"])

	profile, err := profiles.Find(context.Background(), bdb, "anna")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, profile.Role)
	require.NotNil(t, profile.Phone)
	assert.Equal(t, "+79161234567", *profile.Phone)

	// Password must be stored hashed, never plain.
	user := &models.User{}
	require.NoError(t, bdb.NewSelect().Model(user).Where("username = ?", "anna").Scan(context.Background()))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("longenough")))
}

func TestSignupRejectsBadPhone(t *testing.T) {
	h, _ := setup(t)

	c, _ := request(t, http.MethodPost, "/api/signup", `{
		"username": "anna",
		"password": "longenough",
		"email": "anna@example.com",
		"firstName": "Anna",
		"lastName": "Karenina",
		"phone": "12345"
	}`)
	err := h.Signup(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestSignupRejectsShortPassword(t *testing.T) {
	h, _ := setup(t)

	c, _ := request(t, http.MethodPost, "/api/signup", `{
		"username": "anna",
		"password": "short",
		"email": "anna@example.com",
		"firstName": "Anna",
		"lastName": "Karenina"
	}`)
	err := h.Signup(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestSignupDuplicateUsername(t *testing.T) {
	h, _ := setup(t)

	body := `{
		"username": "anna",
		"password": "longenough",
		"email": "anna@example.com",
		"firstName": "Anna",
		"lastName": "Karenina"
	}`
	c, _ := request(t, http.MethodPost, "/api/signup", body)
	require.NoError(t, h.Signup(c))

	c, _ = request(t, http.MethodPost, "/api/signup", body)
	err := h.Signup(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httpCode(t, err))
	assert.Equal(t, "username already taken", httpMessage(t, err))
}

func TestSigninHappyPath(t *testing.T) {
	h, bdb := setup(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Username: "anna", Password: string(hash), Email: "anna@example.com"}
	_, err = bdb.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)

	c, rec := request(t, http.MethodPost, "/api/signin", `{"username": "anna", "password": "longenough"}`)
	require.NoError(t, h.Signin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.NotEmpty(t, body["token"])
}

func TestSigninWrongPassword(t *testing.T) {
	h, bdb := setup(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{Username: "anna", Password: string(hash), Email: "anna@example.com"}
	_, err = bdb.NewInsert().Model(user).Exec(context.Background())
	require.NoError(t, err)

	c, _ := request(t, http.MethodPost, "/api/signin", `{"username": "anna", "password": "wrongwrong"}`)
	err = h.Signin(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestSigninUnknownUser(t *testing.T) {
	h, _ := setup(t)

	c, _ := request(t, http.MethodPost, "/api/signin", `{"username": "ghost", "password": "whatever1"}`)
	err := h.Signin(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httpCode(t, err))
}
