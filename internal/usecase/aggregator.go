package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/football-live/internal/domain/embed"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

var nonSoccerKeywords = []string{
	"nba",
	"nfl",
	"nhl",
	"mlb",
	"ufc",
	"mma",
	"boxing",
	"basketball",
	"formula 1",
	"f1 ",
	"nascar",
	"wwe",
}

const maxSampleTitles = 5

type AggregatorConfig struct {
	// ResolveInterval is the minimum gap between two detail-page visits.
	ResolveInterval time.Duration
}

type SourceReport struct {
	ID           match.SourceID `json:"id"`
	OK           bool           `json:"ok"`
	Error        string         `json:"error,omitempty"`
	ListingCount int            `json:"listingCount"`
	LiveCount    int            `json:"liveCount"`
	SampleTitles []string       `json:"sampleTitles,omitempty"`
}

type AggregateResult struct {
	Matches      []match.WithEmbed
	Sources      []SourceReport
	BlockedCount int
}

// Aggregator merges all listing sources into live soccer events with their
// resolved embed URLs.
type Aggregator struct {
	sources  []ListingSource
	resolver EmbedResolver
	limiter  *rate.Limiter
	logger   *logging.Logger
}

func NewAggregator(sources []ListingSource, resolver EmbedResolver, cfg AggregatorConfig, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Default()
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.ResolveInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.ResolveInterval), 1)
	}
	return &Aggregator{
		sources:  sources,
		resolver: resolver,
		limiter:  limiter,
		logger:   logger.Named("aggregator"),
	}
}

// FetchLiveWithEmbed returns live soccer events in source order, then listing
// order. ErrAllSourcesFailed is returned only when every source failed.
func (a *Aggregator) FetchLiveWithEmbed(ctx context.Context) (AggregateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Aggregator.FetchLiveWithEmbed")
	defer span.End()

	listings, reports := fetchSources(ctx, a.sources, a.logger)
	result := AggregateResult{Sources: reports}

	failed := 0
	var errs []string
	for _, report := range reports {
		if !report.OK {
			failed++
			errs = append(errs, string(report.ID)+": "+report.Error)
		}
	}
	if len(reports) > 0 && failed == len(reports) {
		return result, fmt.Errorf("%w: %s", ErrAllSourcesFailed, strings.Join(errs, "; "))
	}

	directEmbed := make(map[match.SourceID]bool, len(a.sources))
	for _, src := range a.sources {
		directEmbed[src.ID()] = src.DirectEmbed()
	}

	for _, listing := range listings {
		for _, summary := range listing {
			if !IsSoccer(summary) {
				result.BlockedCount++
				continue
			}
			if !summary.IsLive() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("resolve embeds: %w", err)
			}
			embedURL := a.resolveEmbed(ctx, summary, directEmbed[summary.Source])
			result.Matches = append(result.Matches, match.WithEmbed{Summary: summary, EmbedURL: embedURL})
		}
	}
	// A resolver cut short by cancellation reports "no embed"; the partial
	// result must not look complete.
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("resolve embeds: %w", err)
	}

	span.SetAttributes(
		attribute.Int("aggregate.live_count", len(result.Matches)),
		attribute.Int("aggregate.failed_sources", failed),
	)
	return result, nil
}

// resolveEmbed never fails; an empty string means no acceptable embed.
func (a *Aggregator) resolveEmbed(ctx context.Context, summary match.Summary, direct bool) string {
	if direct {
		if embed.IsInvalid(summary.URL) || !embed.IsAcceptable(summary.URL, "") {
			return ""
		}
		return strings.TrimSpace(summary.URL)
	}
	if a.resolver == nil {
		return ""
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return ""
	}
	embedURL, strategy, ok := a.resolver.ResolveNamed(ctx, summary.URL)
	if !ok {
		a.logger.DebugContext(ctx, "no embed for event", "source", string(summary.Source), "url", summary.URL)
		return ""
	}

	embedURL = strings.TrimSpace(embedURL)
	if !embed.IsAcceptable(embedURL, summary.URL) {
		return ""
	}
	a.logger.DebugContext(ctx, "event resolved", "source", string(summary.Source), "url", summary.URL, "strategy", strategy)
	return embedURL
}

// IsSoccer rejects events whose title or team names carry a non-soccer
// keyword.
func IsSoccer(s match.Summary) bool {
	text := strings.ToLower(s.Title + " " + s.HomeTeam + " " + s.AwayTeam)
	for _, keyword := range nonSoccerKeywords {
		if strings.Contains(text, keyword) {
			return false
		}
	}
	return true
}

// fetchSources runs every source concurrently. A failing or panicking source
// contributes an empty listing and a failed report.
func fetchSources(ctx context.Context, sources []ListingSource, logger *logging.Logger) ([][]match.Summary, []SourceReport) {
	listings := make([][]match.Summary, len(sources))
	reports := make([]SourceReport, len(sources))
	if len(sources) == 0 {
		return listings, reports
	}

	p := pool.New().WithMaxGoroutines(len(sources))
	for i, src := range sources {
		p.Go(func() {
			items, err := fetchOne(ctx, src)
			report := SourceReport{ID: src.ID()}
			if err != nil {
				logger.WarnContext(ctx, "listing source failed", "source", string(src.ID()), "error", err)
				report.Error = err.Error()
				reports[i] = report
				return
			}

			report.OK = true
			report.ListingCount = len(items)
			for _, item := range items {
				if item.IsLive() {
					report.LiveCount++
				}
				if len(report.SampleTitles) < maxSampleTitles {
					report.SampleTitles = append(report.SampleTitles, item.Title)
				}
			}
			listings[i] = items
			reports[i] = report
		})
	}
	p.Wait()

	return listings, reports
}

func fetchOne(ctx context.Context, src ListingSource) (items []match.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source panicked: %v", r)
		}
	}()
	return src.Fetch(ctx)
}
