package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cityguard/common"
	"cityguard/models"
)

func CreateAPISession(ctx context.Context, s models.APISession) error {
	_, err := DB.ExecContext(ctx, rebind("INSERT INTO api_sessions (token_id, user_id, expires_at) VALUES (?, ?, ?)"),
		s.TokenID, s.UserID, s.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("db.CreateAPISession: %w", err)
	}
	return nil
}

// GetAPISession returns the session for tokenID, or common.ErrNotFound when
// it was revoked or has expired.
func GetAPISession(ctx context.Context, tokenID string) (*models.APISession, error) {
	s := &models.APISession{TokenID: tokenID}
	err := DB.QueryRowContext(ctx, rebind("SELECT user_id, created_at, expires_at FROM api_sessions WHERE token_id = ?"), tokenID).
		Scan(&s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db.GetAPISession: %w", err)
	}
	if !time.Now().Before(s.ExpiresAt) {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func DeleteAPISession(ctx context.Context, tokenID string) error {
	if _, err := DB.ExecContext(ctx, rebind("DELETE FROM api_sessions WHERE token_id = ?"), tokenID); err != nil {
		return fmt.Errorf("db.DeleteAPISession: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := DB.ExecContext(ctx, rebind("DELETE FROM api_sessions WHERE expires_at < ?"), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("db.DeleteExpiredSessions: %w", err)
	}
	return result.RowsAffected()
}
