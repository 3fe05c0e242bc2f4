package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages map[string]string
	err   error
	calls []string
}

func (s *stubFetcher) Get(_ context.Context, rawURL string) (string, error) {
	s.calls = append(s.calls, rawURL)
	if s.err != nil {
		return "", s.err
	}
	return s.pages[rawURL], nil
}

func siteByID(t *testing.T, id match.SourceID) Site {
	t.Helper()
	sites, err := DefaultSites()
	require.NoError(t, err)
	for _, s := range sites {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("site %s not in default table", id)
	return Site{}
}

func newTestAdapter(t *testing.T, id match.SourceID, html string) (*Adapter, *stubFetcher) {
	t.Helper()
	site := siteByID(t, id)
	fetcher := &stubFetcher{pages: map[string]string{site.ListURL: html}}
	adapter, err := NewAdapter(site, fetcher, nil)
	require.NoError(t, err)
	adapter.now = func() time.Time { return time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC) }
	return adapter, fetcher
}

func TestDefaultSites_Order(t *testing.T) {
	sites, err := DefaultSites()
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, match.SourceStreameast, sites[0].ID)
	assert.Equal(t, match.SourceXStreameast, sites[1].ID)
	assert.Equal(t, match.SourceLivekora, sites[2].ID)
	assert.True(t, sites[2].DirectEmbed)
}

func TestParseSites_RejectsBadEntries(t *testing.T) {
	_, err := ParseSites([]byte("sources:\n  - id: unknown\n    listURL: https://a.example\n    selector: a\n"))
	require.Error(t, err)

	_, err = ParseSites([]byte("sources:\n  - id: livekora\n    listURL: https://a.example\n    selector: a\n    hrefPattern: '('\n"))
	require.Error(t, err)

	_, err = ParseSites([]byte("sources:\n  - id: livekora\n    listURL: https://a.example\n    selector: a\n  - id: livekora\n    listURL: https://b.example\n    selector: a\n"))
	require.Error(t, err)
}

func TestStreameastAdapter(t *testing.T) {
	html := `<html><body>
		<a href="/soccer/101">Arsenal vs Chelsea 2-1 LIVE</a>
		<a href="/soccer/101">Arsenal vs Chelsea 2-1 LIVE</a>
		<a href="/soccer/schedule">Schedule</a>
		<a href="https://streameast.gl/soccer/202/">Inter v Milan</a>
		<a href="/soccer/303">ab</a>
		<a href="/nba/404">Lakers vs Celtics LIVE</a>
	</body></html>`
	adapter, fetcher := newTestAdapter(t, match.SourceStreameast, html)

	got, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"https://streameast.gl/soccer"}, fetcher.calls)

	first := got[0]
	assert.Equal(t, match.SourceStreameast, first.Source)
	assert.Equal(t, "https://streameast.gl/soccer/101", first.URL)
	assert.Equal(t, "Arsenal vs Chelsea", first.Title)
	assert.Equal(t, match.StatusLive, first.Status)
	require.NotNil(t, first.HomeScore)
	assert.Equal(t, 2, *first.HomeScore)
	assert.Equal(t, time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC), first.StartTime)

	assert.Equal(t, "https://streameast.gl/soccer/202/", got[1].URL)
	assert.Equal(t, match.StatusUpcoming, got[1].Status)
	assert.False(t, adapter.DirectEmbed())
}

func TestXStreameastAdapter_ContainerHeadingAndLiveMarker(t *testing.T) {
	html := `<html><body>
		<article>
			<h2>Watch Stream</h2>
			<h3>Real Madrid vs Barcelona</h3>
			<span class="badge">Live</span>
			<a href="/match/el-clasico">Watch</a>
		</article>
		<li>
			<h3>Cup</h3>
			<a href="https://xstreameast.com/match/ajax-psv">Ajax vs PSV</a>
		</li>
	</body></html>`
	adapter, _ := newTestAdapter(t, match.SourceXStreameast, html)

	got, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "https://xstreameast.com/match/el-clasico", got[0].URL)
	assert.Equal(t, "Real Madrid vs Barcelona", got[0].Title)
	assert.Equal(t, "Real Madrid", got[0].HomeTeam)
	assert.Equal(t, "Barcelona", got[0].AwayTeam)
	assert.Equal(t, match.StatusLive, got[0].Status)

	assert.Equal(t, "Ajax vs PSV", got[1].Title)
	assert.Equal(t, match.StatusUpcoming, got[1].Status)
}

func TestLivekoraAdapter_ExternalScoredLinksOnly(t *testing.T) {
	html := `<html><body>
		<a href="https://www.livekora.vip/page/2">Page 2 - 3</a>
		<a href="https://player.example.net/embed/77">Al Ahly vs Zamalek 1-0 LIVE</a>
		<a href="https://player.example.net/embed/78">Coming soon</a>
		<a href="/relative/1">Team 1-0</a>
		<a href="https://player.example.net/embed/79">19:00 Wydad vs Raja</a>
	</body></html>`
	adapter, _ := newTestAdapter(t, match.SourceLivekora, html)

	got, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://player.example.net/embed/77", got[0].URL)
	assert.Equal(t, "Al Ahly vs Zamalek 1-0 LIVE", got[0].Title)
	assert.Equal(t, "Al Ahly", got[0].HomeTeam)
	assert.Equal(t, "Zamalek", got[0].AwayTeam)
	assert.Equal(t, "https://player.example.net/embed/79", got[1].URL)
	assert.True(t, adapter.DirectEmbed())
}

func TestAdapter_FetchError(t *testing.T) {
	site := siteByID(t, match.SourceStreameast)
	adapter, err := NewAdapter(site, &stubFetcher{err: errors.New("connection reset")}, nil)
	require.NoError(t, err)

	_, err = adapter.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRegistry(t *testing.T) {
	reg, err := NewRegistry(&stubFetcher{}, nil)
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, match.SourceStreameast, all[0].ID())

	a, ok := reg.Get(match.SourceLivekora)
	require.True(t, ok)
	assert.Equal(t, "https://www.livekora.vip/", a.ListURL())

	_, ok = reg.Get("espn")
	assert.False(t, ok)
}
