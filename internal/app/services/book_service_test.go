package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi/libman/internal/app/models"
)

func TestPartitionLoans(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	loans := []*models.Loan{
		{
			ID:         3,
			BookID:     101,
			StudentID:  2,
			BorrowedAt: now.AddDate(0, 0, -1),
			DueAt:      now.AddDate(0, 0, 5),
			Book:       &models.Book{ID: 101, Title: "algorithms"},
			Student:    &models.Student{ID: 2, MatricNumber: "eng002"},
		},
		{
			ID:         1,
			BookID:     101,
			StudentID:  1,
			Returned:   true,
			BorrowedAt: now.AddDate(0, 0, -20),
			DueAt:      now.AddDate(0, 0, -10),
			Book:       &models.Book{ID: 101, Title: "algorithms"},
			Student:    &models.Student{ID: 1, MatricNumber: "eng001"},
		},
		{
			ID:         2,
			BookID:     101,
			StudentID:  1,
			BorrowedAt: now.AddDate(0, 0, -8),
			DueAt:      now.AddDate(0, 0, -2),
			Book:       &models.Book{ID: 101, Title: "algorithms"},
			Student:    &models.Student{ID: 1, MatricNumber: "eng001"},
		},
	}

	borrowed, returned := partitionLoans(loans, now)

	require.Len(t, borrowed, 2)
	require.Len(t, returned, 1)

	// Input order (newest first) is preserved within each partition.
	assert.Equal(t, int64(3), borrowed[0].ID)
	assert.Equal(t, int64(2), borrowed[1].ID)
	assert.Equal(t, int64(1), returned[0].ID)

	assert.Equal(t, "algorithms", borrowed[0].BookTitle)
	assert.Equal(t, "eng002", borrowed[0].MatricNumber)
	assert.Equal(t, "eng001", returned[0].MatricNumber)

	assert.Equal(t, 5, borrowed[0].RemainingDays)
	assert.Equal(t, 0, borrowed[1].RemainingDays)
	assert.False(t, borrowed[0].Returned)
	assert.True(t, returned[0].Returned)
}
