package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of an expense date.
const DateLayout = "2006-01-02"

// Category is the spending category of an expense.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
)

// Categories lists every accepted category.
var Categories = []Category{CategoryFood, CategoryEducation, CategoryEntertainment}

// Valid reports whether c belongs to the closed category set. Matching is case-sensitive.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense represents a financial expense record.
type Expense struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"-"`
	Category    Category  `json:"category"`
	UserID      *int64    `json:"user_id"`
}

// DateString returns the expense date in DateLayout.
func (e *Expense) DateString() string {
	return e.Date.Format(DateLayout)
}

// Validate checks the fields that storage cannot enforce on its own.
func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if e.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if !e.Category.Valid() {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("must be one of %v", Categories)}
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	return nil
}

// ExpensePatch holds the fields of a partial expense update. Nil fields are left untouched.
// ClearDescription resets the description to null and wins over Description.
type ExpensePatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Amount           *float64
	Category         *Category
	Date             *time.Time
}

// Apply returns a copy of e with the patch applied. e itself is not modified.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = *p.Title
	}
	switch {
	case p.ClearDescription:
		e.Description = nil
	case p.Description != nil:
		desc := *p.Description
		e.Description = &desc
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	return e
}

// Today returns the current calendar day at midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}
	return d, nil
}

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}
