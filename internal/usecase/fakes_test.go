package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
)

type stubSource struct {
	id     match.SourceID
	direct bool
	items  []match.Summary
	err    error
	panics bool
}

func (s *stubSource) ID() match.SourceID { return s.id }
func (s *stubSource) DirectEmbed() bool  { return s.direct }

func (s *stubSource) Fetch(_ context.Context) ([]match.Summary, error) {
	if s.panics {
		panic("listing markup changed")
	}
	return s.items, s.err
}

type stubResolver struct {
	mu     sync.Mutex
	embeds map[string]string
	calls  []string
	hits   atomic.Int32
	// onResolve runs before the lookup, e.g. to cancel the caller's context.
	onResolve func(detailURL string)
}

func (r *stubResolver) ResolveNamed(ctx context.Context, detailURL string) (string, string, bool) {
	r.hits.Add(1)
	r.mu.Lock()
	r.calls = append(r.calls, detailURL)
	r.mu.Unlock()

	if r.onResolve != nil {
		r.onResolve(detailURL)
	}
	if ctx.Err() != nil {
		return "", "", false
	}

	embedURL, ok := r.embeds[detailURL]
	if !ok {
		return "", "", false
	}
	return embedURL, "static", true
}

type stubFeed struct {
	configured bool
	records    []match.Record
	err        error
}

func (f *stubFeed) Configured() bool { return f.configured }

func (f *stubFeed) FetchMatches(_ context.Context) ([]match.Record, error) {
	return f.records, f.err
}

type recordingQueue struct {
	jobs []SyncDispatch
	err  error
}

func (q *recordingQueue) EnqueueSync(_ context.Context, dispatch SyncDispatch) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, dispatch)
	return nil
}

type stubInspector struct {
	page match.DetailPage
	err  error
}

func (i stubInspector) Inspect(_ context.Context, detailURL string) (match.DetailPage, error) {
	if i.err != nil {
		return match.DetailPage{}, i.err
	}
	page := i.page
	page.URL = detailURL
	return page, nil
}

type stubEmbedResolver struct {
	name   string
	embeds map[string]string
}

func (r stubEmbedResolver) Name() string { return r.name }

func (r stubEmbedResolver) Resolve(_ context.Context, detailURL string) (string, bool) {
	embedURL, ok := r.embeds[detailURL]
	return embedURL, ok
}

var errSourceDown = errors.New("source down")

func live(source match.SourceID, url, title, home, away string) match.Summary {
	return match.Summary{
		Source:    source,
		URL:       url,
		Title:     title,
		HomeTeam:  home,
		AwayTeam:  away,
		Status:    match.StatusLive,
		StartTime: time.Date(2026, time.March, 1, 19, 0, 0, 0, time.UTC),
	}
}
