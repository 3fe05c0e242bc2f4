package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type SourceService struct {
	sources []ListingSource
	logger  *logging.Logger
}

func NewSourceService(sources []ListingSource, logger *logging.Logger) *SourceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SourceService{
		sources: sources,
		logger:  logger.Named("sources"),
	}
}

// List fetches the current listing of one source.
func (s *SourceService) List(ctx context.Context, sourceID string) ([]match.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SourceService.List", attribute.String("source.id", sourceID))
	defer span.End()

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source id is required", ErrInvalidInput)
	}

	for _, src := range s.sources {
		if string(src.ID()) != sourceID {
			continue
		}
		items, err := src.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: source=%s: %v", ErrDependencyUnavailable, sourceID, err)
		}
		return items, nil
	}

	return nil, fmt.Errorf("%w: source=%s", ErrNotFound, sourceID)
}

// Diagnose fetches every source once and reports what each returned.
func (s *SourceService) Diagnose(ctx context.Context) []SourceReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.SourceService.Diagnose")
	defer span.End()

	_, reports := fetchSources(ctx, s.sources, s.logger)
	return reports
}
