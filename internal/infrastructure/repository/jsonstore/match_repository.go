package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/id"
	"github.com/valyala/bytebufferpool"
)

const FileName = "matches.json"

// MatchRepository stores every record in a single JSON array on disk. Writes
// go to a temp file in the same directory and are renamed into place.
type MatchRepository struct {
	mu   sync.RWMutex
	path string
	ids  id.Generator
	now  func() time.Time
}

func NewMatchRepository(dataDir string, ids id.Generator) (*MatchRepository, error) {
	if dataDir == "" {
		return nil, crerr.New("data dir is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create data dir %s", dataDir)
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &MatchRepository{
		path: filepath.Join(dataDir, FileName),
		ids:  ids,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *MatchRepository) Path() string {
	return r.path
}

func (r *MatchRepository) List(_ context.Context, filter match.ListFilter) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}
	return match.ApplyFilter(records, filter), nil
}

func (r *MatchRepository) GetByID(_ context.Context, recordID string) (match.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.load()
	if err != nil {
		return match.Record{}, false, err
	}
	item, ok := match.FindIn(records, recordID)
	return item, ok, nil
}

func (r *MatchRepository) Create(_ context.Context, record match.Record) (match.Record, error) {
	var created match.Record
	err := r.mutate(func(records []match.Record) ([]match.Record, error) {
		out, item, err := match.CreateIn(records, record, r.ids.NewID, r.now())
		created = item
		return out, err
	})
	if err != nil {
		return match.Record{}, err
	}
	return created, nil
}

func (r *MatchRepository) Update(_ context.Context, record match.Record) (match.Record, bool, error) {
	var (
		updated match.Record
		found   bool
	)
	err := r.mutate(func(records []match.Record) ([]match.Record, error) {
		updated, found = match.UpdateIn(records, record, r.now())
		if !found {
			return nil, errUnchanged
		}
		return records, nil
	})
	if err != nil {
		return match.Record{}, false, err
	}
	return updated, found, nil
}

func (r *MatchRepository) Delete(_ context.Context, recordID string) (bool, error) {
	var found bool
	err := r.mutate(func(records []match.Record) ([]match.Record, error) {
		var out []match.Record
		out, found = match.DeleteFrom(records, recordID)
		if !found {
			return nil, errUnchanged
		}
		return out, nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *MatchRepository) ReadAll(_ context.Context) ([]match.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.load()
}

func (r *MatchRepository) WriteAll(_ context.Context, records []match.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(records)
}

func (r *MatchRepository) ReplacePartition(_ context.Context, partition match.Partition, records []match.Record) (int, error) {
	var inserted int
	err := r.mutate(func(existing []match.Record) ([]match.Record, error) {
		out, n, err := match.ReplacePartitionIn(existing, partition, records, r.ids.NewID, r.now())
		inserted = n
		return out, err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// errUnchanged lets a mutation skip the write without reporting a failure.
var errUnchanged = crerr.New("jsonstore: unchanged")

func (r *MatchRepository) mutate(fn func([]match.Record) ([]match.Record, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	out, err := fn(records)
	if crerr.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.save(out)
}

// load must be called with r.mu held. A missing or empty file is an empty
// collection.
func (r *MatchRepository) load() ([]match.Record, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []match.Record{}, nil
	}
	if err != nil {
		return nil, crerr.Wrapf(err, "read %s", r.path)
	}
	if len(data) == 0 {
		return []match.Record{}, nil
	}

	var records []match.Record
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, crerr.Wrapf(err, "decode %s", r.path)
	}
	if records == nil {
		records = []match.Record{}
	}
	return records, nil
}

// save must be called with r.mu held for writing.
func (r *MatchRepository) save(records []match.Record) error {
	if records == nil {
		records = []match.Record{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return crerr.Wrap(err, "encode records")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".matches-*.json")
	if err != nil {
		return crerr.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "sync %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return crerr.Wrapf(err, "replace %s", r.path)
	}
	return nil
}
