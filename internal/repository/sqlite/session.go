package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkarim/marketplace/internal/apperror"
)

// CreateSession generates a fresh opaque token (UUIDv4) and records the
// mapping. expires_at stays NULL unless a TTL was configured.
func (db *DB) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	var expiresAt any
	if db.sessionTTL > 0 {
		expiresAt = time.Now().Add(db.sessionTTL)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, expiresAt)
	if err != nil {
		return "", fmt.Errorf("sqlite: creating session: %w", err)
	}
	return token, nil
}

// ResolveSession returns the owning user id. Expired rows are deleted on
// sight and reported as unknown.
func (db *DB) ResolveSession(ctx context.Context, token string) (string, error) {
	var userID string
	var expiresAt sql.NullTime
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM sessions WHERE token = ?`,
		token,
	).Scan(&userID, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFoundMsg("session not found")
		}
		return "", fmt.Errorf("sqlite: resolving session: %w", err)
	}

	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		if _, err := db.conn.ExecContext(ctx,
			`DELETE FROM sessions WHERE token = ?`, token); err != nil {
			return "", fmt.Errorf("sqlite: deleting expired session: %w", err)
		}
		return "", apperror.NotFoundMsg("session expired")
	}
	return userID, nil
}

// DeleteSession removes the mapping; idempotent.
func (db *DB) DeleteSession(ctx context.Context, token string) (bool, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
