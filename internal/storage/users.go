package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget-tracker/internal/models"
)

const selectUser = "SELECT id, username, password_hash, created_at FROM users"

// CreateUser creates a new user with the given username and password hash.
// A taken username yields ErrDuplicateUsername.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (username, password_hash) VALUES (?, ?)",
			username, passwordHash,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateUsername
			}
			return fmt.Errorf("insert user: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	return db.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx, selectUser+" WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(db.conn.QueryRowContext(ctx, selectUser+" WHERE username = ?", username))
}

// UpdateUser applies patch to the user with the given ID.
func (db *DB) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx, selectUser+" WHERE id = ?", id))
		if err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}
		if patch.Username != nil {
			u.Username = *patch.Username
		}
		if patch.PasswordHash != nil {
			u.PasswordHash = *patch.PasswordHash
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE users SET username = ?, password_hash = ? WHERE id = ?",
			u.Username, u.PasswordHash, id,
		)
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
}

// DeleteUser removes a user. Their expenses are kept with a NULL user_id and their
// sessions are removed.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return execAffecting(ctx, tx, "DELETE FROM users WHERE id = ?", id)
	})
}

// UserCount returns the number of users in the database.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
