package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-live/internal/platform/id"
	matchmock "github.com/riskibarqy/football-live/internal/mocks/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func manualRecord() match.Record {
	return match.Record{
		ID:        "manual-1",
		HomeTeam:  "Persija",
		AwayTeam:  "Persib",
		Status:    match.StatusLive,
		StreamURL: "https://player.example.net/embed/manual",
		Partition: match.PartitionManual,
	}
}

func newSyncFixture(t *testing.T, sources []ListingSource, resolver EmbedResolver, feed FallbackFeed) (*SyncService, *memory.MatchRepository) {
	t.Helper()

	stale := match.Record{ID: "old-sync", HomeTeam: "Old", AwayTeam: "Game", Partition: match.PartitionSync}
	legacy := match.Record{ID: "legacy", HomeTeam: "No", AwayTeam: "Tag"}
	repo := memory.NewMatchRepository([]match.Record{manualRecord(), stale, legacy}, &id.SequenceGenerator{Prefix: "rec"})

	agg := NewAggregator(sources, resolver, AggregatorConfig{}, nil)
	return NewSyncService(agg, repo, feed, nil, SyncConfig{}, nil), repo
}

func TestSyncService_RunSync_ReplacesOnlySyncPartition(t *testing.T) {
	t.Parallel()

	src := &stubSource{id: match.SourceStreameast, items: []match.Summary{
		live(match.SourceStreameast, "https://streameast.gl/soccer/1", "Arsenal vs Chelsea", "Arsenal", "Chelsea"),
		live(match.SourceStreameast, "https://streameast.gl/soccer/2", "Roma vs Lazio", "Roma", "Lazio"),
		live(match.SourceStreameast, "https://streameast.gl/soccer/3", "Roma vs Lazio", "Roma", "Lazio"),
	}}
	resolver := &stubResolver{embeds: map[string]string{
		"https://streameast.gl/soccer/1": "https://gooz.aapmains.net/new-stream-embed/1",
		"https://streameast.gl/soccer/3": "https://gooz.aapmains.net/new-stream-embed/1",
	}}
	svc, repo := newSyncFixture(t, []ListingSource{src}, resolver, nil)

	result := svc.RunSync(context.Background())
	assert.Empty(t, result.Error)
	assert.Equal(t, 1, result.SyncedCount)
	assert.Equal(t, 3, result.LiveCount)
	assert.Equal(t, 1, result.UnresolvedCount)
	assert.False(t, result.Fallback)

	all, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)

	byID := map[string]match.Record{}
	for _, r := range all {
		byID[r.ID] = r
	}
	assert.Contains(t, byID, "manual-1")
	assert.Contains(t, byID, "legacy")
	assert.NotContains(t, byID, "old-sync")

	fresh := byID["rec-1"]
	assert.Equal(t, match.PartitionSync, fresh.Partition)
	assert.Equal(t, match.StatusLive, fresh.Status)
	assert.Equal(t, "https://gooz.aapmains.net/new-stream-embed/1", fresh.StreamURL)
	assert.Equal(t, "https://streameast.gl/soccer/1", fresh.SourceDetailURL)
	assert.Contains(t, fresh.HomeLogo, "name=A")
	assert.Equal(t, 0, fresh.HomeScore)
}

func TestSyncService_RunSync_AllSourcesFailedWithoutFallback(t *testing.T) {
	t.Parallel()

	src := &stubSource{id: match.SourceStreameast, err: errSourceDown}
	svc, repo := newSyncFixture(t, []ListingSource{src}, nil, &stubFeed{})

	result := svc.RunSync(context.Background())
	assert.Equal(t, 0, result.SyncedCount)
	assert.Contains(t, result.Error, "all listing sources failed")

	all, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3, "failed run must not touch the store")
}

func TestSyncService_RunSync_FallsBackToFeed(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{configured: true, records: []match.Record{{
		HomeTeam:  "Ajax",
		AwayTeam:  "PSV",
		Status:    match.StatusLive,
		StreamURL: "https://feed.example.com/embed/ajax-psv",
		Partition: match.PartitionSync,
	}}}
	src := &stubSource{id: match.SourceStreameast, err: errSourceDown}
	svc, repo := newSyncFixture(t, []ListingSource{src}, nil, feed)

	result := svc.RunSync(context.Background())
	assert.Empty(t, result.Error)
	assert.True(t, result.Fallback)
	assert.Equal(t, 1, result.SyncedCount)

	records, err := repo.List(context.Background(), match.ListFilter{})
	require.NoError(t, err)
	teams := []string{}
	for _, r := range records {
		teams = append(teams, r.HomeTeam)
	}
	assert.ElementsMatch(t, []string{"Persija", "No", "Ajax"}, teams)
}

func TestSyncService_RunSync_FallbackFailureKeepsOriginalError(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{configured: true, err: errors.New("feed unreachable")}
	src := &stubSource{id: match.SourceStreameast, err: errSourceDown}
	svc, _ := newSyncFixture(t, []ListingSource{src}, nil, feed)

	result := svc.RunSync(context.Background())
	assert.Equal(t, 0, result.SyncedCount)
	assert.Contains(t, result.Error, "all listing sources failed")
	assert.False(t, result.Fallback)
}

func TestSyncService_RunSync_CancelledDuringResolutionKeepsStoredRecords(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &stubSource{id: match.SourceStreameast, items: []match.Summary{
		live(match.SourceStreameast, "https://streameast.gl/soccer/1", "Arsenal vs Chelsea", "Arsenal", "Chelsea"),
		live(match.SourceStreameast, "https://streameast.gl/soccer/2", "Roma vs Lazio", "Roma", "Lazio"),
	}}
	resolver := &stubResolver{
		embeds: map[string]string{
			"https://streameast.gl/soccer/1": "https://gooz.aapmains.net/new-stream-embed/1",
			"https://streameast.gl/soccer/2": "https://gooz.aapmains.net/new-stream-embed/2",
		},
		onResolve: func(detailURL string) {
			if detailURL == "https://streameast.gl/soccer/2" {
				cancel()
			}
		},
	}
	feed := &stubFeed{configured: true, records: []match.Record{{HomeTeam: "Ajax", AwayTeam: "PSV", Partition: match.PartitionSync}}}
	svc, repo := newSyncFixture(t, []ListingSource{src}, resolver, feed)

	result := svc.RunSync(ctx)
	assert.Equal(t, 0, result.SyncedCount)
	assert.False(t, result.Fallback)
	assert.Contains(t, result.Error, context.Canceled.Error())

	all, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"manual-1", "old-sync", "legacy"}, ids)
}

func TestSyncService_RunSync_ReplaceErrorIsReported(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	repo.On("ReplacePartition", mock.Anything, match.PartitionSync, mock.Anything).
		Return(0, errors.New("disk full")).
		Once()

	src := &stubSource{id: match.SourceLivekora, direct: true}
	svc := NewSyncService(NewAggregator([]ListingSource{src}, nil, AggregatorConfig{}, nil), repo, nil, nil, SyncConfig{}, nil)

	result := svc.RunSync(context.Background())
	assert.Equal(t, 0, result.SyncedCount)
	assert.Contains(t, result.Error, "disk full")
}

func TestSyncService_RunSync_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	repo := matchmock.NewRepository(t)
	repo.On("ReplacePartition", mock.Anything, match.PartitionSync, mock.Anything).
		Run(func(mock.Arguments) { panic("corrupt state") }).
		Once()

	src := &stubSource{id: match.SourceLivekora, direct: true}
	svc := NewSyncService(NewAggregator([]ListingSource{src}, nil, AggregatorConfig{}, nil), repo, nil, nil, SyncConfig{}, nil)

	var result SyncResult
	require.NotPanics(t, func() { result = svc.RunSync(context.Background()) })
	assert.Equal(t, 0, result.SyncedCount)
	assert.Contains(t, result.Error, "corrupt state")
}

func TestSyncService_TryRunSync_SkipsWhileRunning(t *testing.T) {
	t.Parallel()

	svc, _ := newSyncFixture(t, nil, nil, nil)
	svc.mu.Lock()
	result := svc.TryRunSync(context.Background())
	svc.mu.Unlock()

	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.SyncedCount)

	result = svc.TryRunSync(context.Background())
	assert.False(t, result.Skipped)
	assert.Empty(t, result.Error)
}

func TestSyncService_RunSyncJob_EnqueuesNextRun(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	repo := memory.NewMatchRepository(nil, nil)
	agg := NewAggregator(nil, nil, AggregatorConfig{}, nil)
	svc := NewSyncService(agg, repo, nil, queue, SyncConfig{Interval: 2 * time.Minute}, nil)
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 19, 3, 17, 0, time.UTC) }

	svc.RunSyncJob(context.Background())
	require.NoError(t, svc.Bootstrap(context.Background()))

	require.Len(t, queue.jobs, 2)
	assert.Equal(t, 2*time.Minute, queue.jobs[0].Delay)
	assert.Equal(t, "sync-live-20260301T190400Z", queue.jobs[0].ID)
	assert.Equal(t, time.Date(2026, time.March, 1, 19, 5, 17, 0, time.UTC), queue.jobs[0].ScheduledFor)
	assert.Equal(t, 2*time.Minute, queue.jobs[0].Interval)
	assert.Equal(t, time.Duration(0), queue.jobs[1].Delay)
	assert.Equal(t, "sync-live-20260301T190200Z", queue.jobs[1].ID)
}

func TestSyncService_BootstrapRequiresInterval(t *testing.T) {
	t.Parallel()

	svc, _ := newSyncFixture(t, nil, nil, nil)
	require.ErrorIs(t, svc.Bootstrap(context.Background()), ErrInvalidInput)
}

func TestSyncDispatchID_BucketsByInterval(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.February, 25, 4, 25, 42, 0, time.FixedZone("WIB", 7*3600))

	assert.Equal(t, "sync-live-20260224T212500Z", SyncDispatchID(at, 5*time.Minute))
	assert.Equal(t, SyncDispatchID(at, 5*time.Minute), SyncDispatchID(at.Add(2*time.Minute), 5*time.Minute))
	assert.Equal(t, "sync-live-20260224T212500Z", SyncDispatchID(at, 0))
}
