package resolver

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
)

// Inspect fetches a detail page and extracts both the teams and the static
// embed. Unlike Resolve it reports fetch errors.
func (s *Static) Inspect(ctx context.Context, detailURL string) (match.DetailPage, error) {
	html, err := s.fetcher.Get(ctx, detailURL)
	if err != nil {
		return match.DetailPage{}, crerr.Wrapf(err, "inspect detail page %s", detailURL)
	}
	return ParseDetailPage(html, detailURL)
}

// ParseDetailPage infers the teams from the <title>, og:title, first <h1> or
// URL slug, in that order, and runs the static candidate scan.
func ParseDetailPage(html, detailURL string) (match.DetailPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return match.DetailPage{}, crerr.Wrap(err, "parse detail page")
	}

	page := match.DetailPage{URL: detailURL, HomeTeam: "Home", AwayTeam: "Away"}

	titles := []string{
		doc.Find("title").First().Text(),
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find("h1").First().Text(),
	}
	found := false
	for _, title := range titles {
		if home, away, ok := match.TeamsFromTitle(title); ok {
			page.HomeTeam, page.AwayTeam = home, away
			found = true
			break
		}
	}
	if !found {
		if home, away, ok := match.TeamsFromSlug(detailURL); ok {
			page.HomeTeam, page.AwayTeam = home, away
		}
	}

	if embedURL, ok := pickFirstAcceptable(collectCandidates(doc, html, detailURL), detailURL); ok {
		page.EmbedURL = embedURL
	}
	return page, nil
}
