package service

import (
	"testing"

	"github.com/kiyo9w/Imacall-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupAndLogin(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, testJWT())

	user, token, err := svc.Signup(&models.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	loggedIn, loginToken, err := svc.Login(&models.LoginRequest{
		Email:    "ada@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.False(t, loggedIn.LastLogin.IsZero())
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, testJWT())

	req := &models.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"}

	_, _, err := svc.Signup(req)
	require.NoError(t, err)

	_, _, err = svc.Signup(req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, testJWT())

	_, _, err := svc.Signup(&models.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)

	_, _, err = svc.Login(&models.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, testJWT())

	_, _, err := svc.Login(&models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserByID(t *testing.T) {
	db := testDB(t)
	svc := NewUserService(db, testJWT())

	created, _, err := svc.Signup(&models.SignupRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)

	found, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", found.Email)
}
