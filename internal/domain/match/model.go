package match

import (
	"strings"
	"time"
)

// SourceID identifies one listing site.
type SourceID string

const (
	SourceStreameast  SourceID = "streameast"
	SourceXStreameast SourceID = "xstreameast"
	SourceLivekora    SourceID = "livekora"
)

func (s SourceID) Valid() bool {
	switch s {
	case SourceStreameast, SourceXStreameast, SourceLivekora:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusLive     Status = "LIVE"
	StatusUpcoming Status = "UPCOMING"
	StatusFinished Status = "FINISHED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusLive, StatusUpcoming, StatusFinished:
		return true
	default:
		return false
	}
}

// NormalizeStatus maps loosely formatted feed values onto Status.
func NormalizeStatus(value string) Status {
	v := strings.ToUpper(strings.TrimSpace(value))
	switch {
	case Status(v).Valid():
		return Status(v)
	case v == "FT" || v == "ENDED" || strings.Contains(v, "FINISH"):
		return StatusFinished
	case strings.Contains(v, "LIVE"):
		return StatusLive
	default:
		return StatusUpcoming
	}
}

// Summary is one event as listed by one source during one aggregation run.
type Summary struct {
	Source    SourceID
	URL       string
	Title     string
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Status    Status
	StartTime time.Time
}

func (s Summary) IsLive() bool {
	return s.Status == StatusLive
}

// WithEmbed pairs a summary with its resolved embed URL. EmbedURL is empty
// when neither resolver produced an acceptable candidate.
type WithEmbed struct {
	Summary
	EmbedURL string
}

func (m WithEmbed) Watchable() bool {
	return strings.TrimSpace(m.EmbedURL) != ""
}

// DetailPage is what a single detail page yields when inspected directly.
type DetailPage struct {
	URL      string
	HomeTeam string
	AwayTeam string
	EmbedURL string
}
