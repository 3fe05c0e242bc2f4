package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SyncJobPath          = "/v1/internal/jobs/sync"
	syncDispatchIDPrefix = "sync-live-"
	logoSize             = 48
	syncLockedMsg        = "sync already running"
)

type SyncConfig struct {
	// Interval is the requeue delay for job-triggered runs. Zero disables
	// requeueing.
	Interval time.Duration
}

type SyncResult struct {
	SyncedCount     int            `json:"syncedCount"`
	Error           string         `json:"error,omitempty"`
	LiveCount       int            `json:"liveCount"`
	UnresolvedCount int            `json:"unresolvedCount"`
	Fallback        bool           `json:"fallback,omitempty"`
	Skipped         bool           `json:"skipped,omitempty"`
	Sources         []SourceReport `json:"sources,omitempty"`
	StartedAt       time.Time      `json:"startedAt"`
	Duration        string         `json:"duration"`
}

type SyncService struct {
	aggregator *Aggregator
	repo       match.Repository
	feed       FallbackFeed
	queue      JobQueue
	cfg        SyncConfig
	logger     *logging.Logger
	now        func() time.Time

	mu sync.Mutex
}

func NewSyncService(
	aggregator *Aggregator,
	repo match.Repository,
	feed FallbackFeed,
	queue JobQueue,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SyncService{
		aggregator: aggregator,
		repo:       repo,
		feed:       feed,
		queue:      queue,
		cfg:        cfg,
		logger:     logger.Named("sync"),
		now:        time.Now,
	}
}

// RunSync replaces the sync partition with the currently live events. It
// never returns an error; failures are reported in SyncResult.Error.
func (s *SyncService) RunSync(ctx context.Context) SyncResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run(ctx)
}

// TryRunSync is RunSync for scheduled ticks: it returns a skipped result
// instead of waiting when another run holds the lock.
func (s *SyncService) TryRunSync(ctx context.Context) SyncResult {
	if !s.mu.TryLock() {
		s.logger.InfoContext(ctx, "sync tick skipped, previous run still in progress")
		return SyncResult{Skipped: true, Error: syncLockedMsg, StartedAt: s.now().UTC()}
	}
	defer s.mu.Unlock()

	return s.run(ctx)
}

// RunSyncJob runs a queue-triggered sync and schedules the next one.
func (s *SyncService) RunSyncJob(ctx context.Context) SyncResult {
	result := s.RunSync(ctx)
	if err := s.enqueueNext(ctx, s.cfg.Interval); err != nil {
		s.logger.WarnContext(ctx, "enqueue next sync failed", "error", err)
	}
	return result
}

// Bootstrap enqueues the first queue-triggered sync.
func (s *SyncService) Bootstrap(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		return fmt.Errorf("%w: sync interval is not configured", ErrInvalidInput)
	}
	return s.enqueueNext(ctx, 0)
}

func (s *SyncService) run(ctx context.Context) (result SyncResult) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RunSync")
	defer span.End()

	started := s.now().UTC()
	result.StartedAt = started
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "sync panicked", "panic", fmt.Sprint(r))
			result.SyncedCount = 0
			result.Error = fmt.Sprintf("sync panicked: %v", r)
		}
		result.Duration = s.now().Sub(started).String()
		span.SetAttributes(
			attribute.Int("sync.synced_count", result.SyncedCount),
			attribute.Bool("sync.fallback", result.Fallback),
		)
	}()

	synced, err := s.syncFromSources(ctx, &result)
	if err == nil {
		result.SyncedCount = synced
		s.logger.InfoContext(ctx, "sync finished",
			"synced", synced,
			"live", result.LiveCount,
			"unresolved", result.UnresolvedCount,
		)
		return result
	}

	s.logger.WarnContext(ctx, "sync from sources failed", "error", err)
	if s.feed == nil || !s.feed.Configured() || ctx.Err() != nil {
		result.Error = err.Error()
		return result
	}

	synced, fallbackErr := s.syncFromFeed(ctx)
	if fallbackErr != nil {
		s.logger.WarnContext(ctx, "sync fallback feed failed", "error", fallbackErr)
		result.Error = err.Error()
		return result
	}

	result.Fallback = true
	result.SyncedCount = synced
	s.logger.InfoContext(ctx, "sync finished from fallback feed", "synced", synced)
	return result
}

func (s *SyncService) syncFromSources(ctx context.Context, result *SyncResult) (int, error) {
	aggregated, err := s.aggregator.FetchLiveWithEmbed(ctx)
	result.Sources = aggregated.Sources
	if err != nil {
		return 0, err
	}

	result.LiveCount = len(aggregated.Matches)
	records := make([]match.Record, 0, len(aggregated.Matches))
	seen := make(map[string]struct{}, len(aggregated.Matches))
	for _, item := range aggregated.Matches {
		if !item.Watchable() {
			result.UnresolvedCount++
			continue
		}
		if _, dup := seen[item.EmbedURL]; dup {
			continue
		}
		seen[item.EmbedURL] = struct{}{}
		records = append(records, RecordFromMatch(item, s.now().UTC()))
	}

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("sync cancelled: %w", err)
	}
	synced, err := s.repo.ReplacePartition(ctx, match.PartitionSync, records)
	if err != nil {
		return 0, fmt.Errorf("replace sync records: %w", err)
	}
	return synced, nil
}

func (s *SyncService) syncFromFeed(ctx context.Context) (int, error) {
	records, err := s.feed.FetchMatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch fallback feed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("sync cancelled: %w", err)
	}

	synced, err := s.repo.ReplacePartition(ctx, match.PartitionSync, records)
	if err != nil {
		return 0, fmt.Errorf("replace sync records from feed: %w", err)
	}
	return synced, nil
}

func (s *SyncService) enqueueNext(ctx context.Context, delay time.Duration) error {
	if s.cfg.Interval <= 0 {
		return nil
	}

	at := s.now().UTC().Add(delay)
	dispatch := SyncDispatch{
		ID:           SyncDispatchID(at, s.cfg.Interval),
		Delay:        delay,
		ScheduledFor: at,
		Interval:     s.cfg.Interval,
	}
	if err := s.queue.EnqueueSync(ctx, dispatch); err != nil {
		return fmt.Errorf("enqueue sync dispatch %s: %w", dispatch.ID, err)
	}
	return nil
}

// RecordFromMatch maps a live event with an accepted embed onto a sync
// record.
func RecordFromMatch(item match.WithEmbed, now time.Time) match.Record {
	matchTime := item.StartTime
	if matchTime.IsZero() {
		matchTime = now
	}

	return match.Record{
		HomeTeam:        item.HomeTeam,
		AwayTeam:        item.AwayTeam,
		HomeLogo:        match.AvatarLogo(item.HomeTeam, logoSize),
		AwayLogo:        match.AvatarLogo(item.AwayTeam, logoSize),
		Status:          match.StatusLive,
		StreamURL:       strings.TrimSpace(item.EmbedURL),
		SourceDetailURL: item.URL,
		MatchTime:       matchTime,
		HomeScore:       scoreOrZero(item.HomeScore),
		AwayScore:       scoreOrZero(item.AwayScore),
		Partition:       match.PartitionSync,
	}
}

func scoreOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// SyncDispatchID names the interval bucket that at falls into, e.g.
// sync-live-20260301T190400Z for a 2m interval.
func SyncDispatchID(at time.Time, interval time.Duration) string {
	if interval <= 0 {
		interval = time.Minute
	}
	return syncDispatchIDPrefix + at.UTC().Truncate(interval).Format("20060102T150405Z")
}
