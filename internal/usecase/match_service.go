package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/football-live/internal/domain/embed"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

const (
	defaultCheckEmbedsLimit   = 5
	defaultCheckEmbedsWorkers = 4
	maxCheckEmbedsLimit       = 50
)

type MatchServiceConfig struct {
	CheckEmbedsWorkers int
}

type MatchInput struct {
	HomeTeam  string
	AwayTeam  string
	HomeLogo  string
	AwayLogo  string
	Status    match.Status
	StreamURL string
	MatchTime time.Time
	HomeScore int
	AwayScore int
}

type CreateFromLinkInput struct {
	DetailURL string
	Status    match.Status
	MatchTime time.Time
}

type EmbedCheck struct {
	ID        string `json:"_id"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	DetailURL string `json:"detailUrl"`
	GotEmbed  bool   `json:"gotEmbed"`
	EmbedURL  string `json:"embedUrl,omitempty"`
}

type EmbedCheckReport struct {
	Checked int          `json:"checked"`
	Found   int          `json:"found"`
	Missing int          `json:"missing"`
	Results []EmbedCheck `json:"results"`
}

type MatchService struct {
	repo      match.Repository
	inspector DetailInspector
	static    embed.Resolver
	browser   embed.Resolver
	cfg       MatchServiceConfig
	logger    *logging.Logger
	now       func() time.Time
}

func NewMatchService(
	repo match.Repository,
	inspector DetailInspector,
	static embed.Resolver,
	browser embed.Resolver,
	cfg MatchServiceConfig,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.CheckEmbedsWorkers <= 0 {
		cfg.CheckEmbedsWorkers = defaultCheckEmbedsWorkers
	}

	return &MatchService{
		repo:      repo,
		inspector: inspector,
		static:    static,
		browser:   browser,
		cfg:       cfg,
		logger:    logger.Named("matches"),
		now:       time.Now,
	}
}

func (s *MatchService) List(ctx context.Context, status string) ([]match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	filter := match.ListFilter{}
	if status = strings.TrimSpace(status); status != "" {
		filter.Status = match.Status(strings.ToUpper(status))
		if !filter.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return records, nil
}

func (s *MatchService) Get(ctx context.Context, id string) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return match.Record{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	record, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return match.Record{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Record{}, fmt.Errorf("%w: match=%s", ErrNotFound, id)
	}
	return record, nil
}

// Create stores an operator-curated record. Sync runs never touch it.
func (s *MatchService) Create(ctx context.Context, input MatchInput) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	record, err := s.recordFromInput(input)
	if err != nil {
		return match.Record{}, err
	}
	record.Partition = match.PartitionManual

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return match.Record{}, fmt.Errorf("create match: %w", err)
	}
	return created, nil
}

// Update replaces a record's fields. The partition tag is kept.
func (s *MatchService) Update(ctx context.Context, id string, input MatchInput) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	current, err := s.Get(ctx, id)
	if err != nil {
		return match.Record{}, err
	}

	record, err := s.recordFromInput(input)
	if err != nil {
		return match.Record{}, err
	}
	record.ID = current.ID
	record.Partition = current.Partition
	record.SourceDetailURL = current.SourceDetailURL

	updated, exists, err := s.repo.Update(ctx, record)
	if err != nil {
		return match.Record{}, fmt.Errorf("update match: %w", err)
	}
	if !exists {
		return match.Record{}, fmt.Errorf("%w: match=%s", ErrNotFound, current.ID)
	}
	return updated, nil
}

func (s *MatchService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: match=%s", ErrNotFound, id)
	}
	return nil
}

// CreateFromLink builds a manual record from a single detail page, falling
// back to the browser resolver when the static scan finds no embed.
func (s *MatchService) CreateFromLink(ctx context.Context, input CreateFromLinkInput) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CreateFromLink")
	defer span.End()

	detailURL := strings.TrimSpace(input.DetailURL)
	if detailURL == "" {
		return match.Record{}, fmt.Errorf("%w: detail url is required", ErrInvalidInput)
	}

	page, err := s.inspector.Inspect(ctx, detailURL)
	if err != nil {
		return match.Record{}, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	embedURL := page.EmbedURL
	if embedURL == "" && s.browser != nil {
		if found, ok := s.browser.Resolve(ctx, detailURL); ok {
			embedURL = found
		}
	}
	if embedURL == "" || !embed.IsAcceptable(embedURL, detailURL) {
		return match.Record{}, fmt.Errorf("%w: stream link not found", ErrInvalidInput)
	}

	status := input.Status
	if !status.Valid() {
		status = match.StatusLive
	}
	matchTime := input.MatchTime
	if matchTime.IsZero() {
		matchTime = s.now().UTC()
	}

	record := match.Record{
		HomeTeam:        page.HomeTeam,
		AwayTeam:        page.AwayTeam,
		HomeLogo:        match.AvatarLogo(page.HomeTeam, logoSize),
		AwayLogo:        match.AvatarLogo(page.AwayTeam, logoSize),
		Status:          status,
		StreamURL:       embedURL,
		SourceDetailURL: detailURL,
		MatchTime:       matchTime,
		Partition:       match.PartitionManual,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return match.Record{}, fmt.Errorf("create match from link: %w", err)
	}
	s.logger.InfoContext(ctx, "match created from link", "id", created.ID, "url", detailURL)
	return created, nil
}

// CheckEmbeds re-runs the static resolver for up to limit stored live
// records that remember their detail page.
func (s *MatchService) CheckEmbeds(ctx context.Context, limit int) (EmbedCheckReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.CheckEmbeds")
	defer span.End()

	if limit <= 0 {
		limit = defaultCheckEmbedsLimit
	}
	if limit > maxCheckEmbedsLimit {
		limit = maxCheckEmbedsLimit
	}

	records, err := s.repo.List(ctx, match.ListFilter{Status: match.StatusLive})
	if err != nil {
		return EmbedCheckReport{}, fmt.Errorf("list live matches: %w", err)
	}

	targets := make([]match.Record, 0, limit)
	for _, record := range records {
		if strings.TrimSpace(record.SourceDetailURL) == "" {
			continue
		}
		targets = append(targets, record)
		if len(targets) == limit {
			break
		}
	}

	results := make([]EmbedCheck, len(targets))
	if len(targets) > 0 {
		pool, err := ants.NewPool(min(s.cfg.CheckEmbedsWorkers, len(targets)))
		if err != nil {
			return EmbedCheckReport{}, fmt.Errorf("create check pool: %w", err)
		}
		defer pool.Release()

		var wg sync.WaitGroup
		for i, record := range targets {
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				results[i] = s.checkOne(ctx, record)
			})
			if submitErr != nil {
				wg.Done()
				results[i] = EmbedCheck{
					ID:        record.ID,
					HomeTeam:  record.HomeTeam,
					AwayTeam:  record.AwayTeam,
					DetailURL: record.SourceDetailURL,
				}
			}
		}
		wg.Wait()
	}

	report := EmbedCheckReport{Checked: len(results), Results: results}
	for _, result := range results {
		if result.GotEmbed {
			report.Found++
		} else {
			report.Missing++
		}
	}
	return report, nil
}

func (s *MatchService) checkOne(ctx context.Context, record match.Record) EmbedCheck {
	check := EmbedCheck{
		ID:        record.ID,
		HomeTeam:  record.HomeTeam,
		AwayTeam:  record.AwayTeam,
		DetailURL: record.SourceDetailURL,
	}
	if s.static == nil {
		return check
	}
	if embedURL, ok := s.static.Resolve(ctx, record.SourceDetailURL); ok {
		check.GotEmbed = true
		check.EmbedURL = embedURL
	}
	return check
}

func (s *MatchService) recordFromInput(input MatchInput) (match.Record, error) {
	home := strings.TrimSpace(input.HomeTeam)
	away := strings.TrimSpace(input.AwayTeam)
	if home == "" || away == "" {
		return match.Record{}, fmt.Errorf("%w: home and away team are required", ErrInvalidInput)
	}
	streamURL := strings.TrimSpace(input.StreamURL)
	if streamURL == "" {
		return match.Record{}, fmt.Errorf("%w: stream url is required", ErrInvalidInput)
	}

	status := input.Status
	if status == "" {
		status = match.StatusUpcoming
	}
	if !status.Valid() {
		return match.Record{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	matchTime := input.MatchTime
	if matchTime.IsZero() {
		matchTime = s.now().UTC()
	}
	homeLogo := strings.TrimSpace(input.HomeLogo)
	if homeLogo == "" {
		homeLogo = match.AvatarLogo(home, logoSize)
	}
	awayLogo := strings.TrimSpace(input.AwayLogo)
	if awayLogo == "" {
		awayLogo = match.AvatarLogo(away, logoSize)
	}

	return match.Record{
		HomeTeam:  home,
		AwayTeam:  away,
		HomeLogo:  homeLogo,
		AwayLogo:  awayLogo,
		Status:    status,
		StreamURL: streamURL,
		MatchTime: matchTime,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
	}, nil
}
