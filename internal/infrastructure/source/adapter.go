package source

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

// Fetcher downloads a listing page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// Adapter scrapes one listing site according to its Site entry.
type Adapter struct {
	site    Site
	base    *url.URL
	hrefRe  *regexp.Regexp
	textRe  *regexp.Regexp
	fetcher Fetcher
	logger  *logging.Logger
	now     func() time.Time
}

func NewAdapter(site Site, fetcher Fetcher, logger *logging.Logger) (*Adapter, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, crerr.Newf("source %q: fetcher is required", site.ID)
	}
	if logger == nil {
		logger = logging.Default()
	}

	base, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "source %q: parse base url", site.ID)
	}

	a := &Adapter{
		site:    site,
		base:    base,
		fetcher: fetcher,
		logger:  logger.With("source", string(site.ID)),
		now:     time.Now,
	}
	if site.HrefPattern != "" {
		a.hrefRe = regexp.MustCompile(site.HrefPattern)
	}
	if site.TextPattern != "" {
		a.textRe = regexp.MustCompile(site.TextPattern)
	}
	return a, nil
}

func (a *Adapter) ID() match.SourceID {
	return a.site.ID
}

// DirectEmbed reports whether listing links are already playable embeds.
func (a *Adapter) DirectEmbed() bool {
	return a.site.DirectEmbed
}

func (a *Adapter) ListURL() string {
	return a.site.ListURL
}

// Fetch downloads the listing page and returns its events in document order.
func (a *Adapter) Fetch(ctx context.Context) ([]match.Summary, error) {
	html, err := a.fetcher.Get(ctx, a.site.ListURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s listing", a.site.ID)
	}
	out, err := a.Parse(html)
	if err != nil {
		return nil, err
	}
	a.logger.DebugContext(ctx, "listing parsed", "count", len(out))
	return out, nil
}

// Parse extracts summaries from an already downloaded listing page.
func (a *Adapter) Parse(html string) ([]match.Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s listing", a.site.ID)
	}

	observedAt := a.now().UTC()
	seen := make(map[string]struct{})
	var out []match.Summary

	doc.Find(a.site.Selector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link, ok := a.resolveLink(href)
		if !ok {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}

		text := strings.TrimSpace(sel.Text())
		if text == "" || utf8.RuneCountInString(text) < a.site.MinTextLength {
			return
		}
		if a.textRe != nil && !a.textRe.MatchString(text) {
			return
		}

		summary := a.summarize(sel, link, text)
		summary.StartTime = observedAt
		seen[link] = struct{}{}
		out = append(out, summary)
	})

	return out, nil
}

func (a *Adapter) resolveLink(href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	u := a.base.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, excluded := range a.site.ExcludeHosts {
		if strings.Contains(host, strings.ToLower(excluded)) {
			return "", false
		}
	}
	if a.hrefRe != nil && !a.hrefRe.MatchString(u.Path) {
		return "", false
	}
	return u.String(), true
}

func (a *Adapter) summarize(sel *goquery.Selection, link, text string) match.Summary {
	title := text
	var container *goquery.Selection
	if a.site.TitleFrom == TitleFromContainerHeading {
		container = sel.Closest(a.site.ContainerSelector)
		if heading := a.containerHeading(container); heading != "" {
			title = heading
		}
	}

	line := match.ParseLine(title)
	status := line.Status
	if a.corroboratesLive(container, text) {
		status = match.StatusLive
	}

	if a.site.TitleFrom == TitleFromTeams {
		title = line.HomeTeam + " vs " + line.AwayTeam
	}

	return match.Summary{
		Source:    a.site.ID,
		URL:       link,
		Title:     title,
		HomeTeam:  line.HomeTeam,
		AwayTeam:  line.AwayTeam,
		HomeScore: line.HomeScore,
		AwayScore: line.AwayScore,
		Status:    status,
	}
}

// containerHeading returns the last qualifying heading inside container.
func (a *Adapter) containerHeading(container *goquery.Selection) string {
	if container == nil || container.Length() == 0 {
		return ""
	}
	var title string
	container.Find(a.site.HeadingSelector).Each(func(_ int, h *goquery.Selection) {
		t := strings.TrimSpace(h.Text())
		if utf8.RuneCountInString(t) <= 3 {
			return
		}
		lower := strings.ToLower(t)
		for _, skip := range a.site.HeadingSkip {
			if strings.Contains(lower, strings.ToLower(skip)) {
				return
			}
		}
		title = t
	})
	return title
}

func (a *Adapter) corroboratesLive(container *goquery.Selection, anchorText string) bool {
	if len(a.site.LiveMarkers) == 0 {
		return false
	}
	haystack := strings.ToUpper(anchorText)
	if container != nil && container.Length() > 0 {
		haystack += " " + strings.ToUpper(container.Text())
	}
	for _, marker := range a.site.LiveMarkers {
		if strings.Contains(haystack, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}
