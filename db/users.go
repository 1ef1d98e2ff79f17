package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cityguard/common"
	"cityguard/models"
)

// CreateUser stores a new account. The email must already be normalised.
func CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	id, err := insert(ctx, "INSERT INTO users (email, password_hash) VALUES (?, ?)", email, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("user %s already exists: %w", email, common.ErrConflict)
		}
		return 0, fmt.Errorf("db.CreateUser: %w", err)
	}
	return id, nil
}

func FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := DB.QueryRowContext(ctx, rebind("SELECT id, email, password_hash, created_at FROM users WHERE email = ?"), email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db.FindUserByEmail: %w", err)
	}
	return user, nil
}
