package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(users *userRepoMock, tokens *tokenRepoMock) *AuthService {
	return NewAuthService(zap.NewNop(), users, tokens, &issuerMock{}, bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	users := &userRepoMock{}
	svc := newAuth(users, &tokenRepoMock{})

	user, err := svc.Register(context.Background(), "  diego ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "diego", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))

	_, err = svc.Register(context.Background(), "diego", "another1")
	assert.True(t, errors.Is(err, derr.ErrUsernameTaken))
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "short username", username: "ab", password: "secret1"},
		{name: "long username", username: strings.Repeat("u", 51), password: "secret1"},
		{name: "short password", username: "diego", password: "12345"},
		{name: "long password", username: "diego", password: strings.Repeat("p", 101)},
		{name: "password over bcrypt limit", username: "diego", password: strings.Repeat("p", 80)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users := &userRepoMock{}
			svc := newAuth(users, &tokenRepoMock{})

			_, err := svc.Register(context.Background(), tc.username, tc.password)
			if !errors.Is(err, derr.ErrInvalidAccount) {
				t.Fatalf("expected ErrInvalidAccount, got %v", err)
			}
			if users.createCalls != 0 {
				t.Fatalf("expected repo not to be called")
			}
		})
	}
}

func TestLoginAuthenticateLogout(t *testing.T) {
	users := &userRepoMock{}
	tokens := &tokenRepoMock{}
	svc := newAuth(users, tokens)
	ctx := context.Background()

	_, err := svc.Register(ctx, "diego", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "diego", "wrong-password")
	assert.True(t, errors.Is(err, derr.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody", "secret1")
	assert.True(t, errors.Is(err, derr.ErrInvalidCredentials))

	res, err := svc.Login(ctx, "diego", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 1, tokens.saveCalls)

	session, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "diego", session.Username)

	require.NoError(t, svc.Logout(ctx, session))
	_, err = svc.Authenticate(ctx, res.Token)
	assert.True(t, errors.Is(err, derr.ErrTokenRevoked))
}

func TestLogin_SessionStoreFailureIsTolerated(t *testing.T) {
	users := &userRepoMock{}
	tokens := &tokenRepoMock{saveErr: errors.New("redis down")}
	svc := newAuth(users, tokens)

	_, err := svc.Register(context.Background(), "diego", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "diego", "secret1")
	assert.NoError(t, err)
}

func TestAuthenticate_RevocationCheckFailsClosed(t *testing.T) {
	users := &userRepoMock{}
	tokens := &tokenRepoMock{}
	svc := newAuth(users, tokens)

	_, err := svc.Register(context.Background(), "diego", "secret1")
	require.NoError(t, err)
	res, err := svc.Login(context.Background(), "diego", "secret1")
	require.NoError(t, err)

	tokens.revokedErr = errors.New("redis down")
	_, err = svc.Authenticate(context.Background(), res.Token)
	assert.Error(t, err)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc := newAuth(&userRepoMock{}, &tokenRepoMock{})

	_, err := svc.Authenticate(context.Background(), "garbage")
	assert.True(t, errors.Is(err, derr.ErrUnauthorized))
}
