package syncfeed

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxFeedBytes = 6 << 20

var errFeedEmpty = crerr.New("sync feed returned no matches")

type ClientConfig struct {
	HTTPClient *http.Client
	URLs       []string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Client reads pre-resolved matches from one or more JSON feeds. It is the
// fallback used when every listing source failed.
type Client struct {
	httpClient *http.Client
	urls       []string
	logger     *logging.Logger
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	urls := make([]string, 0, len(cfg.URLs))
	for _, u := range cfg.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	return &Client{
		httpClient: httpClient,
		urls:       urls,
		logger:     logger.Named("syncfeed"),
		now:        time.Now,
	}
}

func (c *Client) Configured() bool {
	return c != nil && len(c.urls) > 0
}

// FetchMatches returns sync-partition records for every feed item that carries
// a stream URL. A failing feed is skipped as long as another one answers.
func (c *Client) FetchMatches(ctx context.Context) ([]match.Record, error) {
	if !c.Configured() {
		return nil, crerr.New("sync feed url is not configured")
	}

	var (
		out     []match.Record
		lastErr error
	)
	for _, feedURL := range c.urls {
		items, err := c.fetch(ctx, feedURL)
		if err != nil {
			lastErr = err
			c.logger.WarnContext(ctx, "sync feed request failed", "url", feedURL, "error", err)
			continue
		}
		for _, item := range items {
			if strings.TrimSpace(item.StreamURL) == "" {
				continue
			}
			out = append(out, c.normalize(item))
		}
	}

	if len(out) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errFeedEmpty
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, feedURL string) ([]feedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "build sync feed request %s", feedURL)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch sync feed %s", feedURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, crerr.Wrapf(err, "read sync feed %s", feedURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, crerr.Newf("sync feed %s: status %d", feedURL, resp.StatusCode)
	}
	return decodeItems(body)
}

// decodeItems accepts either a bare array or an object with a "matches" array.
func decodeItems(body []byte) ([]feedItem, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []feedItem
		if err := sonic.UnmarshalString(trimmed, &items); err != nil {
			return nil, crerr.Wrap(err, "decode sync feed array")
		}
		return items, nil
	}

	var envelope struct {
		Matches []feedItem `json:"matches"`
	}
	if err := sonic.UnmarshalString(trimmed, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode sync feed object")
	}
	if envelope.Matches == nil {
		return nil, crerr.New("invalid sync feed format: expected array or {matches: [...]}")
	}
	return envelope.Matches, nil
}

type feedItem struct {
	HomeTeam  string   `json:"homeTeam"`
	AwayTeam  string   `json:"awayTeam"`
	HomeLogo  string   `json:"homeLogo"`
	AwayLogo  string   `json:"awayLogo"`
	StreamURL string   `json:"streamUrl"`
	MatchTime feedTime `json:"matchTime"`
	Status    string   `json:"status"`
	HomeScore *int     `json:"homeScore"`
	AwayScore *int     `json:"awayScore"`
}

func (c *Client) normalize(item feedItem) match.Record {
	home := strings.TrimSpace(item.HomeTeam)
	if home == "" {
		home = "Home"
	}
	away := strings.TrimSpace(item.AwayTeam)
	if away == "" {
		away = "Away"
	}
	homeLogo := strings.TrimSpace(item.HomeLogo)
	if homeLogo == "" {
		homeLogo = match.AvatarLogo(home, 48)
	}
	awayLogo := strings.TrimSpace(item.AwayLogo)
	if awayLogo == "" {
		awayLogo = match.AvatarLogo(away, 48)
	}
	matchTime := item.MatchTime.Time
	if matchTime.IsZero() {
		matchTime = c.now().UTC()
	}

	record := match.Record{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeLogo:  homeLogo,
		AwayLogo:  awayLogo,
		Status:    match.NormalizeStatus(item.Status),
		StreamURL: strings.TrimSpace(item.StreamURL),
		MatchTime: matchTime,
		Partition: match.PartitionSync,
	}
	if item.HomeScore != nil {
		record.HomeScore = *item.HomeScore
	}
	if item.AwayScore != nil {
		record.AwayScore = *item.AwayScore
	}
	return record
}

// feedTime accepts RFC 3339 strings or unix milliseconds. Anything else
// decodes to the zero time.
type feedTime struct {
	time.Time
}

func (t *feedTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}
	unquoted, err := strconv.Unquote(raw)
	if err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, unquoted); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return nil
}
