package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budget-tracker/internal/models"
)

const selectExpense = "SELECT id, title, description, amount, date, category, user_id FROM expenses"

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateExpense validates and inserts e, setting e.ID. A zero date defaults to today.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.Date.IsZero() {
		e.Date = models.Today()
	}
	if err := e.Validate(); err != nil {
		return err
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO expenses (title, description, amount, date, category, user_id) VALUES (?, ?, ?, ?, ?, ?)",
			e.Title, e.Description, e.Amount, e.DateString(), string(e.Category), e.UserID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return ErrUnknownUser
			}
			return fmt.Errorf("insert expense: %w", err)
		}
		e.ID, err = result.LastInsertId()
		return err
	})
}

// GetExpense retrieves a single expense by ID.
func (db *DB) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	return scanExpense(db.conn.QueryRowContext(ctx, selectExpense+" WHERE id = ?", id))
}

// UpdateExpense applies patch to the expense with the given ID and returns the stored result.
// The merged record is validated before anything is written, so a rejected patch leaves the
// row untouched.
func (db *DB) UpdateExpense(ctx context.Context, id int64, patch models.ExpensePatch) (*models.Expense, error) {
	var updated models.Expense
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanExpense(tx.QueryRowContext(ctx, selectExpense+" WHERE id = ?", id))
		if err != nil {
			return err
		}

		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE expenses SET title = ?, description = ?, amount = ?, date = ?, category = ? WHERE id = ?",
			updated.Title, updated.Description, updated.Amount, updated.DateString(), string(updated.Category), id,
		)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteExpense removes an expense permanently.
func (db *DB) DeleteExpense(ctx context.Context, id int64) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return execAffecting(ctx, tx, "DELETE FROM expenses WHERE id = ?", id)
	})
}

// ListExpensesByUser returns a user's expenses, newest first.
func (db *DB) ListExpensesByUser(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectExpense+" WHERE user_id = ? ORDER BY date DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}

	return expenses, rows.Err()
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		e           models.Expense
		description sql.NullString
		userID      sql.NullInt64
		date        string
		category    string
	)
	if err := row.Scan(&e.ID, &e.Title, &description, &e.Amount, &date, &category, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	d, err := models.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("expense %d: stored date %q: %w", e.ID, date, err)
	}
	e.Date = d
	e.Category = models.Category(category)
	if description.Valid {
		e.Description = &description.String
	}
	if userID.Valid {
		e.UserID = &userID.Int64
	}
	return &e, nil
}
