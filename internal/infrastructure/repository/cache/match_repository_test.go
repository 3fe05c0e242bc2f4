package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-live/internal/platform/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	match.Repository
	lists int
	gets  int
}

func (c *countingRepo) List(ctx context.Context, filter match.ListFilter) ([]match.Record, error) {
	c.lists++
	return c.Repository.List(ctx, filter)
}

func (c *countingRepo) GetByID(ctx context.Context, recordID string) (match.Record, bool, error) {
	c.gets++
	return c.Repository.GetByID(ctx, recordID)
}

func TestMatchRepository_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{Repository: memory.NewMatchRepository(nil, &id.SequenceGenerator{Prefix: "r"})}
	repo := NewMatchRepository(inner, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := repo.List(ctx, match.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
	}
	assert.Equal(t, 1, inner.lists)

	_, ok, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Create(ctx, match.Record{HomeTeam: "A"})
	require.NoError(t, err)

	items, err := repo.List(ctx, match.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, inner.lists)

	got, ok, err := repo.GetByID(ctx, "r-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "A", got.HomeTeam)
	assert.Equal(t, 2, inner.gets)

	_, err = repo.ReplacePartition(ctx, match.PartitionSync, nil)
	require.NoError(t, err)
	_, _, _ = repo.GetByID(ctx, "r-1")
	assert.Equal(t, 3, inner.gets)
}
