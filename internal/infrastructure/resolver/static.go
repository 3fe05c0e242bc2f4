package resolver

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/football-live/internal/domain/embed"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

const StrategyStatic = "static"

const (
	mediaSelector  = "iframe[src], a[href], source[src], video[src], embed[src], object[data]"
	dataSelector   = "[data-src], [data-url], [data-embed], [data-stream]"
	anchorSelector = "a[href*='stream'], a[href*='watch'], a[href*='live'], a[href*='embed']"
)

var dataAttributes = []string{"data-src", "data-url", "data-embed", "data-stream"}

// Fetcher downloads a detail page.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// Static resolves embeds from the server-rendered HTML of a detail page.
type Static struct {
	fetcher Fetcher
	logger  *logging.Logger
}

func NewStatic(fetcher Fetcher, logger *logging.Logger) *Static {
	if logger == nil {
		logger = logging.Default()
	}
	return &Static{
		fetcher: fetcher,
		logger:  logger.Named("resolver.static"),
	}
}

func (s *Static) Name() string {
	return StrategyStatic
}

func (s *Static) Resolve(ctx context.Context, detailURL string) (string, bool) {
	html, err := s.fetcher.Get(ctx, detailURL)
	if err != nil {
		s.logger.DebugContext(ctx, "detail page fetch failed", "url", detailURL, "error", err)
		return "", false
	}
	return ParseStaticHTML(html, detailURL)
}

// ParseStaticHTML returns the first acceptable candidate in tier order.
func ParseStaticHTML(html, detailURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	return pickFirstAcceptable(collectCandidates(doc, html, detailURL), detailURL)
}

func pickFirstAcceptable(candidates []embed.Candidate, detailURL string) (string, bool) {
	byTier := make(map[embed.Tier][]string, len(embed.TierOrder))
	for _, c := range candidates {
		byTier[c.Tier] = append(byTier[c.Tier], c.URL)
	}
	for _, tier := range embed.TierOrder {
		for _, u := range byTier[tier] {
			if embed.IsAcceptable(u, detailURL) {
				return u, true
			}
		}
	}
	return "", false
}

func collectCandidates(doc *goquery.Document, html, detailURL string) []embed.Candidate {
	var out []embed.Candidate
	add := func(tier embed.Tier, raw string, keep func(string) bool) {
		full, ok := embed.Absolute(raw, detailURL)
		if !ok || embed.IsInvalid(full) {
			return
		}
		if keep != nil && !keep(full) {
			return
		}
		out = append(out, embed.Candidate{URL: full, Tier: tier})
	}

	doc.Find("iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		add(embed.TierPrimaryProvider, src, isPrimaryProvider)
		add(embed.TierIframe, src, func(full string) bool {
			return !isPrimaryProvider(full) && !embed.IsSamePage(full, detailURL)
		})
	})

	doc.Find(mediaSelector).Each(func(_ int, sel *goquery.Selection) {
		add(embed.TierStreamElement, mediaURL(sel), embed.IsStreamLike)
	})

	for _, raw := range embed.ScanStreamHosts(html) {
		add(embed.TierRawHost, raw, nil)
	}

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, raw := range embed.ScanScriptURLs(sel.Text()) {
			add(embed.TierScript, raw, embed.IsStreamLike)
		}
	})

	doc.Find(dataSelector).Each(func(_ int, sel *goquery.Selection) {
		for _, attr := range dataAttributes {
			if v, ok := sel.Attr(attr); ok {
				add(embed.TierDataAttr, v, embed.IsStreamLike)
				return
			}
		}
	})

	doc.Find(anchorSelector).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		add(embed.TierAnchor, href, nil)
	})

	return out
}

func mediaURL(sel *goquery.Selection) string {
	var attr string
	switch goquery.NodeName(sel) {
	case "a":
		attr = "href"
	case "object":
		attr = "data"
	default:
		attr = "src"
	}
	v, _ := sel.Attr(attr)
	return v
}

func isPrimaryProvider(full string) bool {
	return strings.Contains(full, embed.PrimaryProviderMarker)
}
