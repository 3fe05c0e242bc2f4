package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-live/internal/platform/cache"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgInvalidDetailURL = "detail url must be an absolute http(s) url"
	msgNoEmbedFound     = "no embeddable stream found"
)

type ResolveResult struct {
	OK       bool   `json:"ok"`
	EmbedURL string `json:"embedUrl,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Message  string `json:"message,omitempty"`
}

type ResolveService struct {
	resolver  EmbedResolver
	results   *cache.Store[ResolveResult]
	validator *validator.Validate
	logger    *logging.Logger
}

// NewResolveService caches successful resolutions for ttl. A zero ttl keeps
// them for the life of the process.
func NewResolveService(resolver EmbedResolver, ttl time.Duration, logger *logging.Logger) *ResolveService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResolveService{
		resolver:  resolver,
		results:   cache.NewStore[ResolveResult](ttl),
		validator: validator.New(),
		logger:    logger.Named("resolve"),
	}
}

// Resolve never returns an error; failure is described by Message.
func (s *ResolveService) Resolve(ctx context.Context, detailURL string) ResolveResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolveService.Resolve", attribute.String("resolve.detail_url", detailURL))
	defer span.End()

	detailURL = strings.TrimSpace(detailURL)
	if err := s.validator.VarCtx(ctx, detailURL, "required,http_url"); err != nil {
		return ResolveResult{Message: msgInvalidDetailURL}
	}

	result, err := s.results.GetOrLoad(ctx, "resolve:"+detailURL, func(ctx context.Context) (ResolveResult, error) {
		embedURL, strategy, ok := s.resolver.ResolveNamed(ctx, detailURL)
		if !ok {
			return ResolveResult{}, fmt.Errorf("%w: %s", ErrNoEmbedFound, detailURL)
		}
		return ResolveResult{OK: true, EmbedURL: embedURL, Strategy: strategy}, nil
	})
	if err != nil {
		if !errors.Is(err, ErrNoEmbedFound) {
			s.logger.WarnContext(ctx, "resolve failed", "url", detailURL, "error", err)
		}
		return ResolveResult{Message: msgNoEmbedFound}
	}

	return result
}
