package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookLoanPeriodDays(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		want  int
	}{
		{name: "zero stock", stock: 0, want: 6},
		{name: "scarce stock", stock: 5, want: 6},
		{name: "just below boundary", stock: 9, want: 6},
		{name: "boundary", stock: 10, want: 10},
		{name: "plentiful stock", stock: 42, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{Stock: tt.stock}
			assert.Equal(t, tt.want, b.LoanPeriodDays())
		})
	}
}

func TestBookDueDate(t *testing.T) {
	borrowedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	scarce := &Book{Stock: 5}
	assert.Equal(t, borrowedAt.AddDate(0, 0, 6), scarce.DueDate(borrowedAt))

	plentiful := &Book{Stock: 10}
	assert.Equal(t, borrowedAt.AddDate(0, 0, 10), plentiful.DueDate(borrowedAt))
}

func TestBookSlug(t *testing.T) {
	b := &Book{Title: "the pragmatic programmer"}
	assert.Equal(t, "the-pragmatic-programmer", b.Slug())
}

func TestStudentLevelIsValid(t *testing.T) {
	for _, l := range []StudentLevel{Level100, Level200, Level300, Level400, Level500} {
		assert.True(t, l.IsValid())
	}
	assert.False(t, StudentLevel(150).IsValid())
	assert.False(t, StudentLevel(0).IsValid())
}

func TestLoanRemainingDays(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	l := &Loan{DueAt: now.AddDate(0, 0, 6)}
	assert.Equal(t, 6, l.RemainingDays(now))

	overdue := &Loan{DueAt: now.AddDate(0, 0, -2)}
	assert.Equal(t, 0, overdue.RemainingDays(now))
}
