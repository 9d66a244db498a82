package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{"Food", true},
		{"Education", true},
		{"Entertainment", true},
		{"Shopping", false},
		{"food", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.Valid())
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{Title: "Lunch", Amount: 12.5, Category: CategoryFood, Date: Today()}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(e *Expense)
		field  string
	}{
		{"blank title", func(e *Expense) { e.Title = "   " }, "title"},
		{"negative amount", func(e *Expense) { e.Amount = -1 }, "amount"},
		{"unknown category", func(e *Expense) { e.Category = "Shopping" }, "category"},
		{"missing date", func(e *Expense) { e.Date = time.Time{} }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestExpensePatchApply(t *testing.T) {
	desc := "team lunch"
	original := Expense{ID: 1, Title: "Lunch", Description: &desc, Amount: 12.5, Category: CategoryFood, Date: Today()}

	amount := 20.0
	patched := ExpensePatch{Amount: &amount}.Apply(original)

	assert.Equal(t, 20.0, patched.Amount)
	assert.Equal(t, "Lunch", patched.Title)
	assert.Equal(t, "team lunch", *patched.Description)
	assert.Equal(t, CategoryFood, patched.Category)
	assert.Equal(t, 12.5, original.Amount, "original must not be modified")
}

func TestExpensePatchClearDescription(t *testing.T) {
	desc := "team lunch"
	original := Expense{Title: "Lunch", Description: &desc}

	other := "ignored"
	patched := ExpensePatch{Description: &other, ClearDescription: true}.Apply(original)
	assert.Nil(t, patched.Description)
	require.NotNil(t, original.Description)
	assert.Equal(t, "team lunch", *original.Description)
}

func TestTodayIsUTCMidnight(t *testing.T) {
	before := time.Now().UTC()
	today := Today()
	after := time.Now().UTC()

	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour()+today.Minute()+today.Second()+today.Nanosecond())
	assert.Contains(t,
		[]string{before.Format(DateLayout), after.Format(DateLayout)},
		today.Format(DateLayout),
		"Today must follow the UTC calendar, not the local one")
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", d.Format(DateLayout))

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}
