package resolver

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/riskibarqy/football-live/internal/domain/embed"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

const StrategyBrowser = "browser"

const (
	defaultNavTimeout = 25 * time.Second
	defaultSettle     = 6 * time.Second
	clickWait         = 3 * time.Second
	clickTimeout      = 2 * time.Second
	iframePolls       = 16
	iframePollEvery   = 500 * time.Millisecond

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	watchLinkSelector = `a[href*="stream"], a[href*="watch"], a[href*="embed"], [data-stream]`

	clickWatchButtonJS = `(() => {
  const els = Array.from(document.querySelectorAll('a, button')).slice(0, 20);
  for (const el of els) {
    const text = (el.innerText || '').toLowerCase();
    if (text.includes('watch') || text.includes('play stream') || text.includes('go to stream') || text.trim() === 'play') {
      el.click();
      return true;
    }
  }
  return false;
})()`

	iframeSourcesJS = `Array.from(document.querySelectorAll('iframe'))
  .map((el) => el.src)
  .filter((s) => s && s.trim() && !s.startsWith('javascript:') && s !== 'about:blank')`

	outerHTMLJS = `document.documentElement.outerHTML`

	// at most two open connections for 500ms
	lifecycleNetworkIdle = "networkAlmostIdle"
)

// Only one headless browser runs per process.
var browserMu sync.Mutex

type BrowserConfig struct {
	Enabled    bool
	NavTimeout time.Duration
	Settle     time.Duration
	ExecPath   string
	Logger     *logging.Logger
}

// Browser renders the detail page in headless Chrome and watches both the DOM
// and network traffic for stream URLs.
type Browser struct {
	enabled    bool
	navTimeout time.Duration
	settle     time.Duration
	execPath   string
	logger     *logging.Logger
}

func NewBrowser(cfg BrowserConfig) *Browser {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	navTimeout := cfg.NavTimeout
	if navTimeout <= 0 {
		navTimeout = defaultNavTimeout
	}
	settle := cfg.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	return &Browser{
		enabled:    cfg.Enabled,
		navTimeout: navTimeout,
		settle:     settle,
		execPath:   strings.TrimSpace(cfg.ExecPath),
		logger:     logger.Named("resolver.browser"),
	}
}

func (b *Browser) Name() string {
	return StrategyBrowser
}

func (b *Browser) Enabled() bool {
	return b != nil && b.enabled
}

func (b *Browser) Resolve(ctx context.Context, detailURL string) (string, bool) {
	if !b.Enabled() {
		return "", false
	}

	capture, err := b.capture(ctx, detailURL)
	if err != nil {
		b.logger.WarnContext(ctx, "browser resolve failed", "url", detailURL, "error", err)
		return "", false
	}
	return capture.pick(detailURL)
}

// browserCapture holds everything one rendering pass observed.
type browserCapture struct {
	network []string
	iframes []string
	html    string
}

// pick merges network, iframe and raw-HTML candidates in that order and
// returns the first acceptable one.
func (c browserCapture) pick(detailURL string) (string, bool) {
	seen := make(map[string]struct{})
	groups := [][]string{c.network, c.iframes, embed.ScanStreamHosts(c.html)}
	for _, group := range groups {
		for _, raw := range group {
			full, ok := embed.Absolute(raw, detailURL)
			if !ok {
				continue
			}
			if _, dup := seen[full]; dup {
				continue
			}
			seen[full] = struct{}{}
			if embed.IsAcceptable(full, detailURL) {
				return full, true
			}
		}
	}
	return "", false
}

func (b *Browser) budget() time.Duration {
	return b.navTimeout + b.settle + 2*clickWait + 2*clickTimeout + iframePolls*iframePollEvery + 10*time.Second
}

func (b *Browser) capture(ctx context.Context, detailURL string) (browserCapture, error) {
	browserMu.Lock()
	defer browserMu.Unlock()

	userDataDir, err := os.MkdirTemp("", "football-live-chrome-")
	if err != nil {
		return browserCapture{}, fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(userDataDir)

	ctx, cancel := context.WithTimeout(ctx, b.budget())
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(userDataDir),
		chromedp.UserAgent(browserUserAgent),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...any) {
		b.logger.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancelBrowser()

	var (
		mu      sync.Mutex
		capture browserCapture
	)
	record := func(u string) {
		if !embed.IsStreamLikeRequest(u) {
			return
		}
		mu.Lock()
		capture.network = append(capture.network, u)
		mu.Unlock()
	}
	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(browserCtx, func(ev any) {
		switch e := ev.(type) {
		case *page.EventLifecycleEvent:
			if e.Name == lifecycleNetworkIdle {
				select {
				case idle <- struct{}{}:
				default:
				}
			}
		case *network.EventRequestWillBeSent:
			if e.Request != nil {
				record(e.Request.URL)
			}
		case *network.EventResponseReceived:
			if e.Response != nil {
				record(e.Response.URL)
			}
		}
	})

	// The first Run starts the browser; it must not carry the navigation
	// deadline or the browser dies with it.
	if err := chromedp.Run(browserCtx, network.Enable(), page.SetLifecycleEventsEnabled(true)); err != nil {
		return browserCapture{}, fmt.Errorf("start browser: %w", err)
	}
	// Drop the idle signal of the initial blank page.
	select {
	case <-idle:
	default:
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, b.navTimeout)
	err = chromedp.Run(navCtx,
		chromedp.Navigate(detailURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err == nil && !waitNetworkIdle(navCtx, idle) {
		err = fmt.Errorf("wait for network idle: %w", navCtx.Err())
	}
	cancelNav()
	if err != nil {
		return browserCapture{}, fmt.Errorf("navigate %s: %w", detailURL, err)
	}
	if err := chromedp.Run(browserCtx, chromedp.Sleep(b.settle)); err != nil {
		return browserCapture{}, fmt.Errorf("settle: %w", err)
	}

	b.interact(browserCtx)

	for i := 0; i < iframePolls; i++ {
		var srcs []string
		if err := chromedp.Run(browserCtx,
			chromedp.Sleep(iframePollEvery),
			chromedp.Evaluate(iframeSourcesJS, &srcs),
		); err != nil {
			return browserCapture{}, fmt.Errorf("poll iframes: %w", err)
		}
		capture.iframes = srcs
		if len(srcs) > 0 {
			break
		}
	}

	if err := chromedp.Run(browserCtx, chromedp.Evaluate(outerHTMLJS, &capture.html)); err != nil {
		return browserCapture{}, fmt.Errorf("read rendered html: %w", err)
	}

	mu.Lock()
	out := browserCapture{
		network: append([]string(nil), capture.network...),
		iframes: capture.iframes,
		html:    capture.html,
	}
	mu.Unlock()
	return out, nil
}

// waitNetworkIdle reports whether the page went network-idle before ctx
// ended.
func waitNetworkIdle(ctx context.Context, idle <-chan struct{}) bool {
	select {
	case <-idle:
		return true
	case <-ctx.Done():
		return false
	}
}

// interact clicks the likeliest "watch" control. Failures are ignored.
func (b *Browser) interact(ctx context.Context) {
	clickCtx, cancel := context.WithTimeout(ctx, clickTimeout)
	err := chromedp.Run(clickCtx, chromedp.Click(watchLinkSelector, chromedp.ByQuery))
	cancel()
	if err == nil {
		_ = chromedp.Run(ctx, chromedp.Sleep(clickWait))
	}

	var clicked bool
	clickCtx, cancel = context.WithTimeout(ctx, clickTimeout)
	err = chromedp.Run(clickCtx, chromedp.Evaluate(clickWatchButtonJS, &clicked))
	cancel()
	if err == nil && clicked {
		_ = chromedp.Run(ctx, chromedp.Sleep(clickWait))
	}
}
