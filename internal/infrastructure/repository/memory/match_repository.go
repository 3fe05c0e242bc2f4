package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/id"
)

// MatchRepository keeps records in process memory. It backs tests and runs
// without a data directory.
type MatchRepository struct {
	mu      sync.RWMutex
	records []match.Record
	ids     id.Generator
	now     func() time.Time
}

func NewMatchRepository(seed []match.Record, ids id.Generator) *MatchRepository {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &MatchRepository{
		records: append([]match.Record(nil), seed...),
		ids:     ids,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MatchRepository) List(_ context.Context, filter match.ListFilter) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return match.ApplyFilter(r.records, filter), nil
}

func (r *MatchRepository) GetByID(_ context.Context, recordID string) (match.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := match.FindIn(r.records, recordID)
	return item, ok, nil
}

func (r *MatchRepository) Create(_ context.Context, record match.Record) (match.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, created, err := match.CreateIn(r.records, record, r.ids.NewID, r.now())
	if err != nil {
		return match.Record{}, err
	}
	r.records = records
	return created, nil
}

func (r *MatchRepository) Update(_ context.Context, record match.Record) (match.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated, ok := match.UpdateIn(r.records, record, r.now())
	return updated, ok, nil
}

func (r *MatchRepository) Delete(_ context.Context, recordID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, ok := match.DeleteFrom(r.records, recordID)
	r.records = records
	return ok, nil
}

func (r *MatchRepository) ReadAll(_ context.Context) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]match.Record(nil), r.records...), nil
}

func (r *MatchRepository) WriteAll(_ context.Context, records []match.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append([]match.Record(nil), records...)
	return nil
}

func (r *MatchRepository) ReplacePartition(_ context.Context, partition match.Partition, records []match.Record) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, n, err := match.ReplacePartitionIn(r.records, partition, records, r.ids.NewID, r.now())
	if err != nil {
		return 0, err
	}
	r.records = out
	return n, nil
}
