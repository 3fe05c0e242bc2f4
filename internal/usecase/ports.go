package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
)

// ListingSource is one listing site adapter.
type ListingSource interface {
	ID() match.SourceID
	DirectEmbed() bool
	Fetch(ctx context.Context) ([]match.Summary, error)
}

// EmbedResolver runs the resolver strategies for one detail page and names
// the strategy that succeeded.
type EmbedResolver interface {
	ResolveNamed(ctx context.Context, detailURL string) (embedURL, strategy string, ok bool)
}

// DetailInspector reads teams and a static embed from one detail page.
type DetailInspector interface {
	Inspect(ctx context.Context, detailURL string) (match.DetailPage, error)
}

// FallbackFeed supplies pre-resolved sync records when every source failed.
type FallbackFeed interface {
	Configured() bool
	FetchMatches(ctx context.Context) ([]match.Record, error)
}

// SyncDispatch is one queued run of the sync job. ID stays the same for
// every dispatch scheduled into the same interval bucket, so the queue can
// drop duplicates.
type SyncDispatch struct {
	ID           string
	Delay        time.Duration
	ScheduledFor time.Time
	Interval     time.Duration
}

// JobQueue schedules a later call of SyncJobPath.
type JobQueue interface {
	EnqueueSync(ctx context.Context, dispatch SyncDispatch) error
}

type noopJobQueue struct{}

func (noopJobQueue) EnqueueSync(context.Context, SyncDispatch) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}
