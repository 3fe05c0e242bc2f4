package app

import (
	"fmt"
	"net/http"
	"os"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/external/jobqueue"
	"github.com/riskibarqy/football-live/external/syncfeed"
	"github.com/riskibarqy/football-live/external/webfetch"
	"github.com/riskibarqy/football-live/internal/config"
	"github.com/riskibarqy/football-live/internal/infrastructure/resolver"
	"github.com/riskibarqy/football-live/internal/infrastructure/source"
	"github.com/riskibarqy/football-live/internal/interfaces/httpapi"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/riskibarqy/football-live/internal/platform/resilience"
	"github.com/riskibarqy/football-live/internal/usecase"
)

// Services is the wired usecase layer shared by the API server and the
// sync CLI.
type Services struct {
	Sync    *usecase.SyncService
	Resolve *usecase.ResolveService
	Sources *usecase.SourceService
	Matches *usecase.MatchService
}

func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repo, err := newMatchRepository(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := webfetch.NewClient(webfetch.ClientConfig{
		Timeout:      cfg.FetchTimeout,
		MaxRetries:   cfg.FetchMaxRetries,
		RetryBackoff: cfg.FetchRetryBackoff,
		UserAgent:    cfg.FetchUserAgent,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FetchCircuitEnabled,
			FailureThreshold: cfg.FetchCircuitFailureCount,
			OpenTimeout:      cfg.FetchCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FetchCircuitHalfOpenMaxReq,
		},
	})

	sites, err := loadSites(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}
	registry, err := source.NewRegistry(fetcher, logger, sites...)
	if err != nil {
		return nil, crerr.Wrap(err, "build source registry")
	}
	adapters := registry.All()
	listingSources := make([]usecase.ListingSource, 0, len(adapters))
	for _, adapter := range adapters {
		listingSources = append(listingSources, adapter)
	}

	static := resolver.NewStatic(fetcher, logger)
	browser := resolver.NewBrowser(resolver.BrowserConfig{
		Enabled:    cfg.BrowserEnabled,
		NavTimeout: cfg.BrowserNavTimeout,
		Settle:     cfg.BrowserSettle,
		ExecPath:   cfg.BrowserExecPath,
		Logger:     logger,
	})
	chain := resolver.NewChain(logger, static, browser)

	feed := syncfeed.NewClient(syncfeed.ClientConfig{
		URLs:    cfg.SyncSourceURLs,
		Timeout: cfg.SyncFeedTimeout,
		Logger:  logger,
	})

	aggregator := usecase.NewAggregator(listingSources, chain, usecase.AggregatorConfig{
		ResolveInterval: cfg.ResolveRateInterval,
	}, logger)

	return &Services{
		Sync: usecase.NewSyncService(aggregator, repo, feed, newJobQueue(cfg, logger), usecase.SyncConfig{
			Interval: cfg.SyncInterval,
		}, logger),
		Resolve: usecase.NewResolveService(chain, cfg.ResolveCacheTTL, logger),
		Sources: usecase.NewSourceService(listingSources, logger),
		Matches: usecase.NewMatchService(repo, static, static, browser, usecase.MatchServiceConfig{
			CheckEmbedsWorkers: cfg.CheckEmbedsWorkers,
		}, logger),
	}, nil
}

func NewHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services cannot be nil")
	}

	handler := httpapi.NewHandler(services.Sync, services.Resolve, services.Sources, services.Matches, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func newJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue()
	}
	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger)
}

// loadSites returns nil when path is empty so the registry falls back to
// the built-in site table.
func loadSites(path string) ([]source.Site, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, crerr.Wrapf(err, "read sources file %s", path)
	}
	sites, err := source.ParseSites(data)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse sources file %s", path)
	}
	return sites, nil
}
