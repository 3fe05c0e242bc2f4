package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *MatchRepository {
	t.Helper()
	repo, err := NewMatchRepository(t.TempDir(), &id.SequenceGenerator{Prefix: "rec"})
	require.NoError(t, err)
	repo.now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	return repo
}

func TestMatchRepository_MissingFileIsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	all, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	_, ok, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchRepository_CRUDPersistsToDisk(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created, err := repo.Create(ctx, match.Record{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		Status:    match.StatusLive,
		StreamURL: "https://cdn.example.org/embed/1",
		Partition: match.PartitionManual,
		MatchTime: time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", created.ID)

	raw, err := os.ReadFile(filepath.Join(filepath.Dir(repo.Path()), FileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"_id": "rec-1"`)
	assert.Contains(t, string(raw), `"source": "manual"`)

	reopened, err := NewMatchRepository(filepath.Dir(repo.Path()), nil)
	require.NoError(t, err)
	got, ok, err := reopened.GetByID(ctx, "rec-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Arsenal", got.HomeTeam)
	assert.True(t, got.MatchTime.Equal(created.MatchTime))

	created.HomeScore = 3
	updated, ok, err := repo.Update(ctx, created)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, updated.HomeScore)

	_, ok, err = repo.Update(ctx, match.Record{ID: "ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := repo.Delete(ctx, "rec-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, "rec-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMatchRepository_ReplacePartitionKeepsManual(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.WriteAll(ctx, []match.Record{
		{ID: "manual-1", HomeTeam: "Curated", Partition: match.PartitionManual},
		{ID: "sync-old", HomeTeam: "Stale", Partition: match.PartitionSync},
		{ID: "legacy", HomeTeam: "Untagged"},
	}))

	n, err := repo.ReplacePartition(ctx, match.PartitionSync, []match.Record{
		{HomeTeam: "Inter", AwayTeam: "Milan", Status: match.StatusLive},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	ids := []string{all[0].ID, all[1].ID, all[2].ID}
	assert.Equal(t, []string{"manual-1", "legacy", "rec-1"}, ids)
	assert.Equal(t, "Curated", all[0].HomeTeam)
	assert.Equal(t, match.PartitionSync, all[2].Partition)
}

func TestMatchRepository_ListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.WriteAll(ctx, []match.Record{
		{ID: "a", Status: match.StatusLive, MatchTime: base},
		{ID: "b", Status: match.StatusFinished, MatchTime: base.Add(time.Hour)},
		{ID: "c", Status: match.StatusLive, MatchTime: base.Add(2 * time.Hour)},
	}))

	live, err := repo.List(ctx, match.ListFilter{Status: match.StatusLive})
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, "c", live[0].ID)
	assert.Equal(t, "a", live[1].ID)

	all, err := repo.List(ctx, match.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMatchRepository_CorruptFile(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o644))

	_, err := repo.ReadAll(context.Background())
	require.Error(t, err)
}

func TestNewMatchRepository_RequiresDir(t *testing.T) {
	_, err := NewMatchRepository("", nil)
	require.Error(t, err)
}
