package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
	"github.com/ozzus/fulbito/internal/domain/ports"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxPasswordLen = 100
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

type LoginResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"-"`
}

type AuthService struct {
	log        *zap.Logger
	users      ports.UserRepository
	tokens     ports.TokenRepository
	issuer     ports.TokenIssuer
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(log *zap.Logger, users ports.UserRepository, tokens ports.TokenRepository, issuer ports.TokenIssuer, bcryptCost int) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		log:        log,
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// Register creates a regular user. Admins are promoted in the database.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.User, error) {
	const op = "service.Register"

	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return models.User{}, fmt.Errorf("%s: %w: username must be 3-50 characters", op, derr.ErrInvalidAccount)
	}
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return models.User{}, fmt.Errorf("%s: %w: password must be 6-100 characters", op, derr.ErrInvalidAccount)
	}
	if len(password) > maxPasswordBytes {
		return models.User{}, fmt.Errorf("%s: %w: password must be at most 72 bytes", op, derr.ErrInvalidAccount)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: hash password: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", zap.String("op", op), zap.String("username", user.Username))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	const op = "service.Login"

	logger := s.log.With(zap.String("op", op), zap.String("username", username))

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, derr.ErrUserNotFound) {
			return LoginResult{}, fmt.Errorf("%s: %w", op, derr.ErrInvalidCredentials)
		}
		return LoginResult{}, fmt.Errorf("%s: get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Info("login rejected")
		return LoginResult{}, fmt.Errorf("%s: %w", op, derr.ErrInvalidCredentials)
	}

	token, session, err := s.issuer.Issue(user, s.now())
	if err != nil {
		return LoginResult{}, fmt.Errorf("%s: issue token: %w", op, err)
	}

	if err := s.tokens.SaveSession(ctx, session); err != nil {
		logger.Warn("session store write failed", zap.Error(err))
	}

	logger.Info("user logged in", zap.String("role", string(user.Role)))
	return LoginResult{Token: token, Session: session}, nil
}

// Authenticate verifies the token signature and that it was not logged out.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Session, error) {
	const op = "service.Authenticate"

	session, err := s.issuer.Parse(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return models.Session{}, fmt.Errorf("%s: check revocation: %w", op, err)
	}
	if revoked {
		return models.Session{}, fmt.Errorf("%s: %w", op, derr.ErrTokenRevoked)
	}

	return session, nil
}

func (s *AuthService) Logout(ctx context.Context, session models.Session) error {
	const op = "service.Logout"

	if err := s.tokens.RevokeSession(ctx, session); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged out", zap.String("op", op), zap.String("username", session.Username))
	return nil
}
