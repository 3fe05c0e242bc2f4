package match

import (
	"encoding/base64"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

type encodedID struct {
	Source    SourceID `json:"s"`
	URL       string   `json:"u"`
	Title     string   `json:"t"`
	StartTime string   `json:"st"`
	Status    Status   `json:"sts"`
}

// EncodeID packs the identifying fields of a summary into a URL-safe token so
// a listed event can be reopened without persisting it.
func EncodeID(s Summary) (string, error) {
	raw, err := sonic.Marshal(encodedID{
		Source:    s.Source,
		URL:       s.URL,
		Title:     s.Title,
		StartTime: s.StartTime.UTC().Format(time.RFC3339),
		Status:    s.Status,
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeID(token string) (Summary, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(token), "="))
	if err != nil {
		return Summary{}, false
	}

	var v encodedID
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return Summary{}, false
	}
	if !v.Source.Valid() || strings.TrimSpace(v.URL) == "" {
		return Summary{}, false
	}

	started, err := time.Parse(time.RFC3339, v.StartTime)
	if err != nil {
		started = time.Time{}
	}
	status := v.Status
	if !status.Valid() {
		status = StatusUpcoming
	}

	line := ParseLine(v.Title)
	return Summary{
		Source:    v.Source,
		URL:       v.URL,
		Title:     v.Title,
		HomeTeam:  line.HomeTeam,
		AwayTeam:  line.AwayTeam,
		Status:    status,
		StartTime: started,
	}, true
}
