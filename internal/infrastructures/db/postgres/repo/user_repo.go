package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	derr "github.com/ozzus/fulbito/internal/domain/errors"
	"github.com/ozzus/fulbito/internal/domain/models"
)

func (r *Repository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, role, created_at
	`

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}

	created, err := scanUser(r.db.QueryRow(ctx, query, newID(), user.Username, user.PasswordHash, string(role)))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return models.User{}, derr.ErrUsernameTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
		SELECT id, username, password_hash, role, created_at
		FROM users
		WHERE username = $1
	`

	u, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, derr.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		u    models.User
		id   string
		role string
	)
	if err := row.Scan(&id, &u.Username, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.ID = models.UserID(id)
	u.Role = models.Role(role)
	return u, nil
}
