package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/football-live/internal/platform/logging"
)

// Config stores runtime configuration for the service and the sync CLI.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	SwaggerEnabled     bool
	LogLevel           logging.Level
	LogConsole         bool
	InternalJobToken   string

	DataDir      string
	CacheEnabled bool
	CacheTTL     time.Duration
	SourcesFile  string

	FetchTimeout               time.Duration
	FetchMaxRetries            int
	FetchRetryBackoff          time.Duration
	FetchUserAgent             string
	FetchCircuitEnabled        bool
	FetchCircuitFailureCount   int
	FetchCircuitOpenTimeout    time.Duration
	FetchCircuitHalfOpenMaxReq int

	BrowserEnabled    bool
	BrowserNavTimeout time.Duration
	BrowserSettle     time.Duration
	BrowserExecPath   string

	ResolveRateInterval time.Duration
	ResolveCacheTTL     time.Duration
	SyncInterval        time.Duration
	SyncSourceURLs      []string
	SyncFeedTimeout     time.Duration
	CheckEmbedsWorkers  int

	QStashEnabled               bool
	QStashBaseURL               string
	QStashToken                 string
	QStashTargetBaseURL         string
	QStashRetries               int
	QStashCircuitEnabled        bool
	QStashCircuitFailureCount   int
	QStashCircuitOpenTimeout    time.Duration
	QStashCircuitHalfOpenMaxReq int

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:              appEnv,
		ServiceName:         getEnv("APP_SERVICE_NAME", "football-live-api"),
		ServiceVersion:      getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:            getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:            parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		InternalJobToken:    strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		DataDir:             strings.TrimSpace(getEnv("DATA_DIR", "data")),
		SourcesFile:         strings.TrimSpace(getEnv("SOURCES_FILE", "")),
		FetchUserAgent:      strings.TrimSpace(getEnv("FETCH_USER_AGENT", "")),
		BrowserExecPath:     strings.TrimSpace(getEnv("BROWSER_EXEC_PATH", "")),
		SyncSourceURLs:      splitCSV(getEnv("SYNC_SOURCE_URL", "")),
		QStashBaseURL:       strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		QStashToken:         strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL: strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
		BetterStackToken:    strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackMinLevel: parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error")),
		PyroscopeAuthToken:  strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	if cfg.SwaggerEnabled, err = strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault)); err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	if cfg.LogConsole, err = strconv.ParseBool(getEnv("APP_LOG_CONSOLE", "false")); err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_CONSOLE: %w", err)
	}
	if cfg.ReadTimeout, err = parsePositiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	// Resolving through the browser can take close to a minute.
	if cfg.WriteTimeout, err = parsePositiveDuration("APP_WRITE_TIMEOUT", "90s"); err != nil {
		return Config{}, err
	}

	if cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = parsePositiveDuration("CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}

	if err := loadFetch(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadBrowser(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadSync(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadQStash(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFetch(cfg *Config) error {
	var err error
	if cfg.FetchTimeout, err = parsePositiveDuration("FETCH_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.FetchMaxRetries, err = getEnvAsInt("FETCH_MAX_RETRIES", 1); err != nil {
		return fmt.Errorf("parse FETCH_MAX_RETRIES: %w", err)
	}
	if cfg.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be >= 0")
	}
	if cfg.FetchRetryBackoff, err = parsePositiveDuration("FETCH_RETRY_BACKOFF", "1s"); err != nil {
		return err
	}
	if cfg.FetchCircuitEnabled, err = strconv.ParseBool(getEnv("FETCH_CIRCUIT_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse FETCH_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.FetchCircuitFailureCount, err = getEnvAsInt("FETCH_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse FETCH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.FetchCircuitFailureCount < 1 {
		return fmt.Errorf("FETCH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.FetchCircuitOpenTimeout, err = parsePositiveDuration("FETCH_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.FetchCircuitHalfOpenMaxReq, err = getEnvAsInt("FETCH_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return fmt.Errorf("parse FETCH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.FetchCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("FETCH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	return nil
}

func loadBrowser(cfg *Config) error {
	var err error
	if cfg.BrowserEnabled, err = strconv.ParseBool(getEnv("BROWSER_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse BROWSER_ENABLED: %w", err)
	}
	if cfg.BrowserNavTimeout, err = parsePositiveDuration("BROWSER_NAV_TIMEOUT", "25s"); err != nil {
		return err
	}
	if cfg.BrowserSettle, err = parsePositiveDuration("BROWSER_SETTLE", "6s"); err != nil {
		return err
	}
	return nil
}

func loadSync(cfg *Config) error {
	var err error
	if cfg.ResolveRateInterval, err = time.ParseDuration(getEnv("RESOLVE_RATE_INTERVAL", "0s")); err != nil {
		return fmt.Errorf("parse RESOLVE_RATE_INTERVAL: %w", err)
	}
	if cfg.ResolveRateInterval < 0 {
		return fmt.Errorf("RESOLVE_RATE_INTERVAL must be >= 0")
	}
	if cfg.ResolveCacheTTL, err = parsePositiveDuration("RESOLVE_CACHE_TTL", "5m"); err != nil {
		return err
	}
	if cfg.SyncInterval, err = time.ParseDuration(getEnv("SYNC_INTERVAL", "0s")); err != nil {
		return fmt.Errorf("parse SYNC_INTERVAL: %w", err)
	}
	if cfg.SyncInterval < 0 {
		return fmt.Errorf("SYNC_INTERVAL must be >= 0")
	}
	if cfg.SyncFeedTimeout, err = parsePositiveDuration("SYNC_FEED_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.CheckEmbedsWorkers, err = getEnvAsInt("CHECK_EMBEDS_WORKERS", 4); err != nil {
		return fmt.Errorf("parse CHECK_EMBEDS_WORKERS: %w", err)
	}
	if cfg.CheckEmbedsWorkers < 1 {
		return fmt.Errorf("CHECK_EMBEDS_WORKERS must be >= 1")
	}
	return nil
}

func loadQStash(cfg *Config) error {
	var err error
	if cfg.QStashEnabled, err = strconv.ParseBool(getEnv("QSTASH_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse QSTASH_ENABLED: %w", err)
	}
	if cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3); err != nil {
		return fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	if cfg.QStashCircuitEnabled, err = strconv.ParseBool(getEnv("QSTASH_CIRCUIT_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse QSTASH_CIRCUIT_ENABLED: %w", err)
	}
	if cfg.QStashCircuitFailureCount, err = getEnvAsInt("QSTASH_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return fmt.Errorf("parse QSTASH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.QStashCircuitFailureCount < 1 {
		return fmt.Errorf("QSTASH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if cfg.QStashCircuitOpenTimeout, err = parsePositiveDuration("QSTASH_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.QStashCircuitHalfOpenMaxReq, err = getEnvAsInt("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return fmt.Errorf("parse QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.QStashCircuitHalfOpenMaxReq < 1 {
		return fmt.Errorf("QSTASH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	if !cfg.QStashEnabled {
		return nil
	}
	if cfg.QStashToken == "" {
		return fmt.Errorf("QSTASH_TOKEN is required when QSTASH_ENABLED=true")
	}
	if cfg.QStashTargetBaseURL == "" {
		return fmt.Errorf("QSTASH_TARGET_BASE_URL is required when QSTASH_ENABLED=true")
	}
	if cfg.InternalJobToken == "" {
		return fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
	}
	if cfg.SyncInterval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be > 0 when QSTASH_ENABLED=true")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	if cfg.BetterStackEnabled, err = strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	cfg.BetterStackEndpoint = strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if cfg.BetterStackEnabled && cfg.BetterStackEndpoint == "" {
		return fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	if cfg.BetterStackTimeout, err = parsePositiveDuration("BETTERSTACK_TIMEOUT", "3s"); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	return nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
