package auth

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v4"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
)

type SessionClaims struct {
	TokenID   string `json:"tid,omitempty"`
	UserID    string `json:"uid,omitempty"`
	Username  string `json:"usn,omitempty"`
	Role      string `json:"rol,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

func (c *SessionClaims) Valid() error {
	if c.ExpiresAt <= time.Now().UTC().Unix() {
		vErr := new(jwt.ValidationError)
		vErr.Inner = errors.New("token is expired")
		vErr.Errors |= jwt.ValidationErrorExpired
		return vErr
	}
	return nil
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(user models.User, now time.Time) (string, models.Session, error) {
	const op = "auth.Issue"

	tokenID, err := uuid.NewV4()
	if err != nil {
		return "", models.Session{}, fmt.Errorf("%s: generate token id: %w", op, err)
	}

	expiresAt := now.Add(i.ttl).UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		TokenID:   tokenID.String(),
		UserID:    string(user.ID),
		Username:  user.Username,
		Role:      string(user.Role),
		ExpiresAt: expiresAt.Unix(),
		IssuedAt:  now.UTC().Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", models.Session{}, fmt.Errorf("%s: sign token: %w", op, err)
	}

	return signed, models.Session{
		TokenID:   tokenID.String(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Unix(expiresAt.Unix(), 0).UTC(),
	}, nil
}

func (i *Issuer) Parse(tokenString string) (models.Session, error) {
	jwtToken, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if s, ok := token.Method.(*jwt.SigningMethodHMAC); !ok || s.Hash != crypto.SHA256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", derr.ErrUnauthorized, err)
	}

	claims, ok := jwtToken.Claims.(*SessionClaims)
	if !ok || !jwtToken.Valid || claims.TokenID == "" || claims.UserID == "" {
		return models.Session{}, derr.ErrUnauthorized
	}

	return models.Session{
		TokenID:   claims.TokenID,
		UserID:    models.UserID(claims.UserID),
		Username:  claims.Username,
		Role:      models.Role(claims.Role),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}
