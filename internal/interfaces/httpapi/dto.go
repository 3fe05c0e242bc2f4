package httpapi

import (
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
)

type matchRequest struct {
	HomeTeam  string     `json:"homeTeam" validate:"required,max=120"`
	AwayTeam  string     `json:"awayTeam" validate:"required,max=120"`
	HomeLogo  string     `json:"homeLogo" validate:"omitempty,http_url"`
	AwayLogo  string     `json:"awayLogo" validate:"omitempty,http_url"`
	Status    string     `json:"status" validate:"omitempty,oneof=LIVE UPCOMING FINISHED"`
	StreamURL string     `json:"streamUrl" validate:"required,http_url"`
	MatchTime *time.Time `json:"matchTime"`
	HomeScore int        `json:"homeScore" validate:"gte=0"`
	AwayScore int        `json:"awayScore" validate:"gte=0"`
}

type createFromLinkRequest struct {
	DetailURL string     `json:"detailUrl" validate:"required,http_url"`
	Status    string     `json:"status" validate:"omitempty,oneof=LIVE UPCOMING FINISHED"`
	MatchTime *time.Time `json:"matchTime"`
}

// syncJobRequest is the body QStash forwards for a scheduled sync run.
type syncJobRequest struct {
	DispatchID   string     `json:"dispatch_id"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Interval     string     `json:"interval"`
}

type matchDTO struct {
	ID              string    `json:"_id"`
	HomeTeam        string    `json:"homeTeam"`
	AwayTeam        string    `json:"awayTeam"`
	HomeLogo        string    `json:"homeLogo"`
	AwayLogo        string    `json:"awayLogo"`
	Status          string    `json:"status"`
	StreamURL       string    `json:"streamUrl"`
	SourceDetailURL string    `json:"sourceDetailUrl,omitempty"`
	MatchTime       time.Time `json:"matchTime"`
	HomeScore       int       `json:"homeScore"`
	AwayScore       int       `json:"awayScore"`
	Source          string    `json:"source,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type summaryDTO struct {
	ID        string    `json:"id,omitempty"`
	Source    string    `json:"source"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	HomeScore *int      `json:"homeScore,omitempty"`
	AwayScore *int      `json:"awayScore,omitempty"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"startTime"`
}

type syncResponse struct {
	SyncedCount int    `json:"syncedCount"`
	Error       string `json:"error,omitempty"`
}

func toMatchDTO(r match.Record) matchDTO {
	return matchDTO{
		ID:              r.ID,
		HomeTeam:        r.HomeTeam,
		AwayTeam:        r.AwayTeam,
		HomeLogo:        r.HomeLogo,
		AwayLogo:        r.AwayLogo,
		Status:          string(r.Status),
		StreamURL:       r.StreamURL,
		SourceDetailURL: r.SourceDetailURL,
		MatchTime:       r.MatchTime,
		HomeScore:       r.HomeScore,
		AwayScore:       r.AwayScore,
		Source:          string(r.Partition),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toMatchDTOs(records []match.Record) []matchDTO {
	out := make([]matchDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toMatchDTO(r))
	}
	return out
}

func toSummaryDTO(s match.Summary, encodedID string) summaryDTO {
	return summaryDTO{
		ID:        encodedID,
		Source:    string(s.Source),
		URL:       s.URL,
		Title:     s.Title,
		HomeTeam:  s.HomeTeam,
		AwayTeam:  s.AwayTeam,
		HomeScore: s.HomeScore,
		AwayScore: s.AwayScore,
		Status:    string(s.Status),
		StartTime: s.StartTime,
	}
}
