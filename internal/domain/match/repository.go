package match

import (
	"context"
	"sort"
)

type ListFilter struct {
	Status Status
}

// Repository is the record store boundary. WriteAll and ReplacePartition
// replace data wholesale; neither merges by id.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, bool, error)
	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, record Record) (Record, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	ReadAll(ctx context.Context) ([]Record, error)
	WriteAll(ctx context.Context, records []Record) error
	ReplacePartition(ctx context.Context, partition Partition, records []Record) (int, error)
}

// ApplyFilter returns the records matching filter, newest MatchTime first.
func ApplyFilter(records []Record, filter ListFilter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchTime.After(out[j].MatchTime)
	})
	return out
}

// KeepOutsidePartition drops every record tagged with partition.
func KeepOutsidePartition(records []Record, partition Partition) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Partition == partition {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
