package staging

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chidi/libman/internal/pkg/borrowform"
)

func newTestStager(t *testing.T) (*Stager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStager(client, 15*time.Minute), mr
}

func sampleSelection() StagedSelection {
	return StagedSelection{
		Selections: []borrowform.Selection{
			{BookID: "101", MatricNumbers: []string{"eng001", "eng002"}},
			{BookID: "205", MatricNumbers: []string{"sci009"}},
		},
		StagedBy: 3,
		StagedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStageAndConsumeRoundTrip(t *testing.T) {
	stager, _ := newTestStager(t)
	ctx := context.Background()

	token, err := stager.Stage(ctx, sampleSelection())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	staged, err := stager.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sampleSelection(), *staged)
}

func TestConsumeIsOneShot(t *testing.T) {
	stager, _ := newTestStager(t)
	ctx := context.Background()

	token, err := stager.Stage(ctx, sampleSelection())
	require.NoError(t, err)

	_, err = stager.Consume(ctx, token)
	require.NoError(t, err)

	// A double-submitted confirmation finds nothing to apply.
	_, err = stager.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrNoStagedSelection)
}

func TestConsumeUnknownToken(t *testing.T) {
	stager, _ := newTestStager(t)

	_, err := stager.Consume(context.Background(), "never-staged")
	assert.ErrorIs(t, err, ErrNoStagedSelection)
}

func TestStagedSelectionExpires(t *testing.T) {
	stager, mr := newTestStager(t)
	ctx := context.Background()

	token, err := stager.Stage(ctx, sampleSelection())
	require.NoError(t, err)

	mr.FastForward(16 * time.Minute)

	_, err = stager.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrNoStagedSelection)
}

func TestPeekDoesNotConsume(t *testing.T) {
	stager, _ := newTestStager(t)
	ctx := context.Background()

	token, err := stager.Stage(ctx, sampleSelection())
	require.NoError(t, err)

	peeked, err := stager.Peek(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sampleSelection(), *peeked)

	// Still consumable afterwards.
	_, err = stager.Consume(ctx, token)
	require.NoError(t, err)
}

func TestTokensAreIndependent(t *testing.T) {
	stager, _ := newTestStager(t)
	ctx := context.Background()

	first := sampleSelection()
	second := StagedSelection{
		Selections: []borrowform.Selection{{BookID: "7", MatricNumbers: []string{"art100"}}},
		StagedBy:   9,
		StagedAt:   time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
	}

	t1, err := stager.Stage(ctx, first)
	require.NoError(t, err)
	t2, err := stager.Stage(ctx, second)
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	got2, err := stager.Consume(ctx, t2)
	require.NoError(t, err)
	assert.Equal(t, second, *got2)

	got1, err := stager.Consume(ctx, t1)
	require.NoError(t, err)
	assert.Equal(t, first, *got1)
}
