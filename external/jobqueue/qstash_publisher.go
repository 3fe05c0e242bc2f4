package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/riskibarqy/football-live/internal/platform/resilience"
	"github.com/riskibarqy/football-live/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxLoggedBody = 4096

var (
	errQStashTransient = crerr.New("qstash transient failure")
	qstashTracer       = otel.Tracer("football-live/external/jobqueue")
)

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher schedules sync runs through Upstash QStash, which calls
// TargetBaseURL+usecase.SyncJobPath once the dispatch delay has passed.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

// syncJobBody is forwarded verbatim to the sync job endpoint.
type syncJobBody struct {
	DispatchID   string    `json:"dispatch_id"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Interval     string    `json:"interval,omitempty"`
}

type upstashHeader struct {
	name  string
	value string
	// secret headers are masked in the curl preview
	secret bool
}

type publishRequest struct {
	publishURL string
	targetURL  string
	body       []byte
	headers    []upstashHeader
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &QStashPublisher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:          strings.TrimSpace(cfg.BaseURL),
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    strings.TrimSpace(cfg.TargetBaseURL),
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("jobqueue.qstash"),
	}
	if breakerCfg := cfg.CircuitBreaker.Normalize(); breakerCfg.Enabled {
		p.breaker = resilience.NewCircuitBreakerFromConfig(breakerCfg)
	}
	return p
}

// EnqueueSync publishes one sync dispatch. QStash drops a second publish with
// the same dispatch id, so a bootstrap racing a requeue yields one run.
func (p *QStashPublisher) EnqueueSync(ctx context.Context, dispatch usecase.SyncDispatch) (err error) {
	ctx, span := qstashTracer.Start(ctx, "jobqueue.QStash.EnqueueSync")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := p.buildPublish(dispatch)
	if err != nil {
		return err
	}
	span.SetAttributes(
		attribute.String("qstash.target_url", req.targetURL),
		attribute.String("qstash.dispatch_id", dispatch.ID),
		attribute.String("qstash.delay", delaySeconds(dispatch.Delay)),
	)

	if p.breaker == nil {
		return p.send(ctx, req, dispatch)
	}
	err = p.breaker.Execute(func() error {
		return p.send(ctx, req, dispatch)
	}, isQStashCircuitFailure)
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected dispatch", "dispatch_id", dispatch.ID, "state", p.breaker.State())
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}
	return err
}

func (p *QStashPublisher) buildPublish(dispatch usecase.SyncDispatch) (publishRequest, error) {
	if strings.TrimSpace(dispatch.ID) == "" {
		return publishRequest{}, crerr.New("sync dispatch id is required")
	}
	baseURL, err := validateHTTPBaseURL(p.baseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.targetBaseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	body := syncJobBody{DispatchID: dispatch.ID, ScheduledFor: dispatch.ScheduledFor.UTC()}
	if dispatch.Interval > 0 {
		body.Interval = dispatch.Interval.String()
	}
	raw, err := sonic.Marshal(body)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "marshal sync dispatch")
	}

	targetURL := targetBaseURL + usecase.SyncJobPath
	headers := []upstashHeader{
		{name: "Authorization", value: "Bearer " + p.token, secret: true},
		{name: "Content-Type", value: "application/json"},
		{name: "Upstash-Method", value: http.MethodPost},
		{name: "Upstash-Deduplication-Id", value: dispatch.ID},
	}
	if p.retries > 0 {
		headers = append(headers, upstashHeader{name: "Upstash-Retries", value: strconv.Itoa(p.retries)})
	}
	if dispatch.Delay > 0 {
		headers = append(headers, upstashHeader{name: "Upstash-Delay", value: delaySeconds(dispatch.Delay)})
	}
	if p.internalJobToken != "" {
		headers = append(headers, upstashHeader{name: "Upstash-Forward-X-Internal-Job-Token", value: p.internalJobToken, secret: true})
	}

	return publishRequest{
		publishURL: baseURL + "/v2/publish/" + targetURL,
		targetURL:  targetURL,
		body:       raw,
		headers:    headers,
	}, nil
}

func (p *QStashPublisher) send(ctx context.Context, pr publishRequest, dispatch usecase.SyncDispatch) error {
	p.logger.DebugContext(ctx, "qstash publish request", "dispatch_id", dispatch.ID, "curl_preview", pr.curlPreview())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pr.publishURL, bytes.NewReader(pr.body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for _, h := range pr.headers {
		req.Header.Set(h.name, h.value)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish sync dispatch %s to %s: %v", errQStashTransient, dispatch.ID, pr.targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
		statusErr := fmt.Errorf("publish sync dispatch %s status=%d body=%s", dispatch.ID, resp.StatusCode, strings.TrimSpace(string(raw)))
		if isQStashRetryableStatus(resp.StatusCode) {
			return fmt.Errorf("%w: %v", errQStashTransient, statusErr)
		}
		return statusErr
	}

	p.logger.InfoContext(ctx, "sync dispatch published",
		"dispatch_id", dispatch.ID,
		"delay", delaySeconds(dispatch.Delay),
		"scheduled_for", dispatch.ScheduledFor.UTC().Format(time.RFC3339),
	)
	return nil
}

// delaySeconds formats a delay the way the Upstash-Delay header expects.
func delaySeconds(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

// curlPreview renders the publish call for debug logs with secrets masked.
func (pr publishRequest) curlPreview() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(pr.publishURL))
	for _, h := range pr.headers {
		value := h.value
		if h.secret {
			value = "***"
			if strings.HasPrefix(h.value, "Bearer ") {
				value = "Bearer ***"
			}
		}
		_, _ = buf.WriteString(" -H ")
		_, _ = buf.WriteString(shellQuote(h.name + ": " + value))
	}

	body := string(pr.body)
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody] + "...(truncated)"
	}
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func isQStashCircuitFailure(err error) bool {
	return crerr.Is(err, errQStashTransient)
}

func isQStashRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
