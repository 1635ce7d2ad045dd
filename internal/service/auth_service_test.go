package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HappyHacker143/taskflow/internal/apperror"
	"github.com/HappyHacker143/taskflow/internal/models"
	"github.com/HappyHacker143/taskflow/internal/testutil"
)

func TestLoginAndAuthenticate(t *testing.T) {
	svc, database := newTestService(t)
	user := testutil.CreateUser(t, database, "login")

	result, err := svc.Login(ctx, LoginInput{Username: " login ", Password: testutil.Password})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, fixedNow.Add(time.Hour), result.ExpiresAt)
	assert.Equal(t, user.ID, result.User.ID)
	require.NotNil(t, result.User.LastLogin)

	authenticated, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	require.NoError(t, svc.Logout(ctx, result.Token))
	_, err = svc.Authenticate(ctx, result.Token)
	assert.Equal(t, apperror.CodeUnauthorized, apperror.GetCode(err))
}

func TestLoginRejectsBadCredentialsAndInactiveAccounts(t *testing.T) {
	svc, database := newTestService(t)
	testutil.CreateUser(t, database, "active")
	testutil.CreateUser(t, database, "sleeper", testutil.Inactive())

	cases := []LoginInput{
		{Username: "active", Password: "wrong"},
		{Username: "missing", Password: testutil.Password},
		{Username: "sleeper", Password: testutil.Password},
		{},
	}
	for _, input := range cases {
		_, err := svc.Login(ctx, input)
		require.Error(t, err, input.Username)
		assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err), input.Username)
		assert.Equal(t, invalidCredentialsMessage, err.Error(), input.Username)
	}

	var sessions int64
	require.NoError(t, database.Model(&models.Session{}).Count(&sessions).Error)
	assert.Zero(t, sessions)
}

func TestAuthenticateRemovesExpiredSession(t *testing.T) {
	svc, database := newTestService(t)
	user := testutil.CreateUser(t, database, "expired")

	session := models.Session{
		Token:     "8c1f6f0e-0000-4000-8000-000000000001",
		UserID:    user.ID,
		CreatedAt: fixedNow.Add(-2 * time.Hour),
		ExpiresAt: fixedNow.Add(-time.Minute),
	}
	require.NoError(t, database.Omit("User").Create(&session).Error)

	_, err := svc.Authenticate(ctx, session.Token)
	assert.Equal(t, apperror.CodeUnauthorized, apperror.GetCode(err))

	var count int64
	require.NoError(t, database.Model(&models.Session{}).Where("token = ?", session.Token).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Authenticate(ctx, "")
	assert.Equal(t, apperror.CodeUnauthorized, apperror.GetCode(err))
}
