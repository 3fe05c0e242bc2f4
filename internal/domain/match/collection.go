package match

import (
	"fmt"
	"strings"
	"time"
)

// The helpers below implement Repository semantics over a plain slice so that
// every store applies the same rules. Callers own locking and persistence.

// IDFunc returns a new opaque record id.
type IDFunc func() (string, error)

func stamp(record Record, newID IDFunc, now time.Time) (Record, error) {
	if strings.TrimSpace(record.ID) == "" {
		id, err := newID()
		if err != nil {
			return Record{}, fmt.Errorf("generate record id: %w", err)
		}
		record.ID = id
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return record, nil
}

func CreateIn(records []Record, record Record, newID IDFunc, now time.Time) ([]Record, Record, error) {
	created, err := stamp(record, newID, now)
	if err != nil {
		return records, Record{}, err
	}
	if _, exists := indexOf(records, created.ID); exists {
		return records, Record{}, fmt.Errorf("record %s already exists", created.ID)
	}
	return append(records, created), created, nil
}

// UpdateIn replaces the record with the same id in place, keeping CreatedAt.
func UpdateIn(records []Record, record Record, now time.Time) (Record, bool) {
	idx, ok := indexOf(records, record.ID)
	if !ok {
		return Record{}, false
	}
	record.CreatedAt = records[idx].CreatedAt
	record.UpdatedAt = now
	records[idx] = record
	return record, true
}

func DeleteFrom(records []Record, id string) ([]Record, bool) {
	idx, ok := indexOf(records, id)
	if !ok {
		return records, false
	}
	return append(records[:idx:idx], records[idx+1:]...), true
}

func FindIn(records []Record, id string) (Record, bool) {
	idx, ok := indexOf(records, id)
	if !ok {
		return Record{}, false
	}
	return records[idx], true
}

// ReplacePartitionIn drops every record tagged with partition and appends
// fresh, each with a new id and timestamps. Records of other partitions,
// untagged ones included, are kept as they are.
func ReplacePartitionIn(records []Record, partition Partition, fresh []Record, newID IDFunc, now time.Time) ([]Record, int, error) {
	if partition == "" {
		return records, 0, fmt.Errorf("partition is required")
	}

	out := KeepOutsidePartition(records, partition)
	for _, record := range fresh {
		record.ID = ""
		record.Partition = partition
		stamped, err := stamp(record, newID, now)
		if err != nil {
			return records, 0, err
		}
		out = append(out, stamped)
	}
	return out, len(fresh), nil
}

func indexOf(records []Record, id string) (int, bool) {
	for i := range records {
		if records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
