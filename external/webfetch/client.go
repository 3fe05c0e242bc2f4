package webfetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/riskibarqy/football-live/internal/platform/resilience"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	acceptHTML       = "text/html,application/xhtml+xml"
	maxBodyBytes     = 6 << 20
	maxRedirects     = 5
)

var (
	errFetchTransient = crerr.New("webfetch transient failure")
	fetchTracer       = otel.Tracer("football-live/external/webfetch")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client performs browser-identity GETs for listing and detail pages.
type Client struct {
	http       *fasthttp.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	userAgent  string
	logger     *logging.Logger
	breakers   *resilience.HostBreakers
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                     userAgent,
			NoDefaultUserAgentHeader: true,
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			MaxResponseBodySize:      maxBodyBytes,
			MaxIdleConnDuration:      30 * time.Second,
		},
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
		userAgent:  userAgent,
		logger:     logger.Named("webfetch"),
		breakers:   resilience.NewHostBreakers(cfg.CircuitBreaker),
	}
}

// Get returns the decoded body of rawURL. Transient failures (transport
// errors, 408, 429 and 5xx) are retried with linear backoff.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", crerr.Newf("fetch %q: url must be absolute http(s)", rawURL)
	}

	ctx, span := startSpan(ctx, "webfetch.Client.Get")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", u.String()))

	var body string
	err = c.breakers.Execute(u.Host, func() error {
		var fetchErr error
		body, fetchErr = c.getWithRetry(ctx, u.String())
		return fetchErr
	}, isTransient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "webfetch circuit open", "host", u.Host)
		}
		return "", err
	}
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, target string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		body, err := c.do(target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransient(err) {
			return "", err
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.DebugContext(ctx, "webfetch request failed", "url", target, "error", lastErr)
	return "", lastErr
}

func (c *Client) do(target string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, acceptHTML)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip, deflate, br")
	req.Header.Set(fasthttp.HeaderCacheControl, "no-cache")
	req.Header.Set(fasthttp.HeaderPragma, "no-cache")

	if err := c.http.DoRedirects(req, resp, maxRedirects); err != nil {
		if crerr.Is(err, fasthttp.ErrBodyTooLarge) || crerr.Is(err, fasthttp.ErrTooManyRedirects) {
			return "", crerr.Wrapf(err, "fetch %s", target)
		}
		return "", crerr.Mark(crerr.Wrapf(err, "fetch %s", target), errFetchTransient)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		statusErr := &StatusError{URL: target, StatusCode: status}
		if isRetryableStatus(status) {
			return "", crerr.Mark(statusErr, errFetchTransient)
		}
		return "", statusErr
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return "", crerr.Wrapf(err, "decode body of %s", target)
	}
	return string(body), nil
}

func isTransient(err error) bool {
	return crerr.Is(err, errFetchTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return fetchTracer.Start(ctx, name)
}
