package match

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Partition separates pipeline-owned records from operator-curated ones.
type Partition string

const (
	PartitionSync   Partition = "sync"
	PartitionManual Partition = "manual"
)

// Record is a persisted match as served to the front end.
type Record struct {
	ID              string    `json:"_id"`
	HomeTeam        string    `json:"homeTeam"`
	AwayTeam        string    `json:"awayTeam"`
	HomeLogo        string    `json:"homeLogo"`
	AwayLogo        string    `json:"awayLogo"`
	Status          Status    `json:"status"`
	StreamURL       string    `json:"streamUrl"`
	SourceDetailURL string    `json:"sourceDetailUrl,omitempty"`
	MatchTime       time.Time `json:"matchTime"`
	HomeScore       int       `json:"homeScore"`
	AwayScore       int       `json:"awayScore"`
	Partition       Partition `json:"source,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// OwnedBySync reports whether a sync run may delete the record. Untagged
// records predate partitioning and are treated as manual.
func (r Record) OwnedBySync() bool {
	return r.Partition == PartitionSync
}

const avatarBaseURL = "https://ui-avatars.com/api/"

// AvatarLogo builds a placeholder logo from the first letter of a team name.
func AvatarLogo(team string, size int) string {
	initial := "?"
	if trimmed := strings.TrimSpace(team); trimmed != "" {
		initial = string([]rune(trimmed)[:1])
	}
	q := url.Values{}
	q.Set("name", initial)
	if size <= 0 {
		size = 48
	}
	q.Set("size", strconv.Itoa(size))
	q.Set("background", "1a1a1a")
	q.Set("color", "888")
	return avatarBaseURL + "?" + q.Encode()
}
