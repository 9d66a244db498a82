package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"budget-tracker/internal/models"
)

// CreateSession creates a new session for a user.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO sessions (token, user_id, expires_at, last_activity) VALUES (?, ?, ?, ?)",
			token, userID, expiresAt.Unix(), time.Now().Unix(),
		)
		if isForeignKeyViolation(err) {
			return ErrUnknownUser
		}
		return err
	})
}

// SessionInfo is a live session together with its owner.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the associated user.
func (db *DB) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo checks if a session token is valid and returns session details.
// Unknown and expired tokens yield ErrNotFound.
func (db *DB) ValidateSessionWithInfo(ctx context.Context, token string) (*SessionInfo, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.password_hash, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ? AND s.expires_at > ?
	`, token, time.Now().Unix())

	var (
		u            models.User
		lastActivity int64
		expiresAt    int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: time.Unix(lastActivity, 0),
		ExpiresAt:    time.Unix(expiresAt, 0),
	}, nil
}

// RenewSession marks the session as active now and moves its expiry to newExpiresAt.
func (db *DB) RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return execAffecting(ctx, tx,
			"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
			time.Now().Unix(), newExpiresAt.Unix(), token,
		)
	})
}

// DeleteSession removes a session by token. Unknown tokens yield ErrNotFound.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return execAffecting(ctx, tx, "DELETE FROM sessions WHERE token = ?", token)
	})
}

// CleanExpiredSessions removes all expired sessions and returns how many were removed.
func (db *DB) CleanExpiredSessions(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
