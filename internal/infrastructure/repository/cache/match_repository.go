package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	basecache "github.com/riskibarqy/football-live/internal/platform/cache"
)

const matchKeyPrefix = "match:"

// MatchRepository reads List and GetByID through a TTL cache. Any write
// drops every cached match entry.
type MatchRepository struct {
	next  match.Repository
	lists *basecache.Store[[]match.Record]
	items *basecache.Store[cachedMatchByID]
}

type cachedMatchByID struct {
	value  match.Record
	exists bool
}

func NewMatchRepository(next match.Repository, ttl time.Duration) *MatchRepository {
	return &MatchRepository{
		next:  next,
		lists: basecache.NewStore[[]match.Record](ttl),
		items: basecache.NewStore[cachedMatchByID](ttl),
	}
}

func (r *MatchRepository) List(ctx context.Context, filter match.ListFilter) ([]match.Record, error) {
	key := matchKeyPrefix + "list:" + string(filter.Status)
	items, err := r.lists.GetOrLoad(ctx, key, func(ctx context.Context) ([]match.Record, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]match.Record(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]match.Record(nil), items...), nil
}

func (r *MatchRepository) GetByID(ctx context.Context, recordID string) (match.Record, bool, error) {
	key := matchKeyPrefix + "id:" + recordID
	cached, err := r.items.GetOrLoad(ctx, key, func(ctx context.Context) (cachedMatchByID, error) {
		item, exists, err := r.next.GetByID(ctx, recordID)
		if err != nil {
			return cachedMatchByID{}, err
		}
		return cachedMatchByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Record{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) Create(ctx context.Context, record match.Record) (match.Record, error) {
	defer r.invalidate(ctx)
	return r.next.Create(ctx, record)
}

func (r *MatchRepository) Update(ctx context.Context, record match.Record) (match.Record, bool, error) {
	defer r.invalidate(ctx)
	return r.next.Update(ctx, record)
}

func (r *MatchRepository) Delete(ctx context.Context, recordID string) (bool, error) {
	defer r.invalidate(ctx)
	return r.next.Delete(ctx, recordID)
}

func (r *MatchRepository) ReadAll(ctx context.Context) ([]match.Record, error) {
	return r.next.ReadAll(ctx)
}

func (r *MatchRepository) WriteAll(ctx context.Context, records []match.Record) error {
	defer r.invalidate(ctx)
	return r.next.WriteAll(ctx, records)
}

func (r *MatchRepository) ReplacePartition(ctx context.Context, partition match.Partition, records []match.Record) (int, error) {
	defer r.invalidate(ctx)
	return r.next.ReplacePartition(ctx, partition, records)
}

func (r *MatchRepository) invalidate(ctx context.Context) {
	r.lists.DeletePrefix(ctx, matchKeyPrefix)
	r.items.DeletePrefix(ctx, matchKeyPrefix)
}
