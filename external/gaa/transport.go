package gaa

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

var (
	errNetworkBusy = crerr.New("network did not go idle")
)

// DefaultUserAgents is the pool one browser session picks its user agent from.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

const (
	consentWait     = 3 * time.Second
	overlayWait     = 5 * time.Second
	idlePollEvery   = 250 * time.Millisecond
	idleQuietPeriod = 500 * time.Millisecond
)

type BrowserConfig struct {
	Headless    bool
	StepTimeout time.Duration
	UserAgents  []string
	UserDataDir string
	Selectors   Selectors
	Logger      *logging.Logger
}

// BrowserOpener starts one headless Chrome per crawl.
type BrowserOpener struct {
	cfg    BrowserConfig
	logger *logging.Logger
}

func NewBrowserOpener(cfg BrowserConfig) *BrowserOpener {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 30 * time.Second
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultUserAgents
	}
	if strings.TrimSpace(cfg.Selectors.Item) == "" {
		cfg.Selectors = DefaultSelectors()
	}
	return &BrowserOpener{cfg: cfg, logger: logger}
}

func (o *BrowserOpener) Open(ctx context.Context) (usecase.SourceTransport, error) {
	userAgent := o.cfg.UserAgents[rand.IntN(len(o.cfg.UserAgents))]

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if o.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(o.cfg.UserDataDir))
	}

	// The browser outlives the request that opened it; Close tears it down.
	parent := context.WithoutCancel(ctx)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		o.logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
	}))

	t := &BrowserTransport{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		cfg:      o.cfg,
		logger:   o.logger,
		inflight: make(map[network.RequestID]struct{}),
	}
	chromedp.ListenTarget(browserCtx, t.onNetworkEvent)

	// The first Run starts Chrome and must not carry a timeout, or the
	// browser dies with it.
	if err := chromedp.Run(browserCtx); err != nil {
		t.cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	if err := t.run(ctx, o.cfg.StepTimeout, network.Enable()); err != nil {
		t.cancel()
		return nil, fmt.Errorf("enable network events: %w", err)
	}
	o.logger.DebugContext(ctx, "browser session opened", "user_agent", userAgent, "headless", o.cfg.Headless)
	return t, nil
}

// BrowserTransport drives one chromedp tab. It is not safe for concurrent use.
type BrowserTransport struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	cfg        BrowserConfig
	logger     *logging.Logger

	mu           sync.Mutex
	inflight     map[network.RequestID]struct{}
	lastActivity time.Time
	closeOnce    sync.Once
}

func (t *BrowserTransport) onNetworkEvent(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.lastActivity = time.Now()
}

// run executes actions with a step timeout, cancelled early when ctx is.
func (t *BrowserTransport) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(t.browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (t *BrowserTransport) Navigate(ctx context.Context, url string) error {
	if err := t.run(ctx, t.cfg.StepTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (t *BrowserTransport) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := t.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (t *BrowserTransport) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	if err := t.run(ctx, timeout, chromedp.WaitNotPresent(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait gone %s: %w", selector, err)
	}
	return nil
}

// DismissConsent accepts the cookie banner when it shows up and strips any
// overlay left behind.
func (t *BrowserTransport) DismissConsent(ctx context.Context) error {
	sel := t.cfg.Selectors
	err := t.run(ctx, consentWait,
		chromedp.WaitVisible(sel.ConsentAccept, chromedp.ByQuery),
		chromedp.Click(sel.ConsentAccept, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			t.logger.DebugContext(ctx, "no consent banner shown")
			return nil
		}
		return fmt.Errorf("accept consent banner: %w", err)
	}

	if sel.ConsentOverlay != "" {
		if err := t.run(ctx, overlayWait, chromedp.WaitNotVisible(sel.ConsentOverlay, chromedp.ByQuery)); err != nil {
			t.logger.DebugContext(ctx, "consent overlay still visible", "error", err)
		}
	}
	return t.removeOverlays(ctx)
}

func (t *BrowserTransport) removeOverlays(ctx context.Context) error {
	if len(t.cfg.Selectors.Overlays) == 0 {
		return nil
	}
	selectors, err := sonic.MarshalString(strings.Join(t.cfg.Selectors.Overlays, ", "))
	if err != nil {
		return fmt.Errorf("encode overlay selectors: %w", err)
	}
	script := fmt.Sprintf(`document.querySelectorAll(%s).forEach(el => el.remove()); document.body.style.overflow = "auto"; true`, selectors)

	var done bool
	if err := t.run(ctx, t.cfg.StepTimeout, chromedp.Evaluate(script, &done)); err != nil {
		return fmt.Errorf("remove overlays: %w", err)
	}
	return nil
}

func (t *BrowserTransport) Snapshot(ctx context.Context) (*crawl.PageSnapshot, error) {
	var (
		html     string
		location string
	)
	if err := t.run(ctx, t.cfg.StepTimeout,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	); err != nil {
		return nil, fmt.Errorf("capture listing: %w", err)
	}
	return BuildSnapshot(html, location, time.Now(), t.cfg.Selectors)
}

func (t *BrowserTransport) HasMore(ctx context.Context) (bool, error) {
	selector, err := sonic.MarshalString(t.cfg.Selectors.LoadMore)
	if err != nil {
		return false, fmt.Errorf("encode load-more selector: %w", err)
	}
	script := fmt.Sprintf(`(() => { const b = document.querySelector(%s); return b !== null && b.offsetParent !== null; })()`, selector)

	var visible bool
	if err := t.run(ctx, t.cfg.StepTimeout, chromedp.Evaluate(script, &visible)); err != nil {
		return false, fmt.Errorf("probe load-more: %w", err)
	}
	return visible, nil
}

func (t *BrowserTransport) LoadMore(ctx context.Context) error {
	selector, err := sonic.MarshalString(t.cfg.Selectors.LoadMore)
	if err != nil {
		return fmt.Errorf("encode load-more selector: %w", err)
	}
	script := fmt.Sprintf(`(() => { const b = document.querySelector(%s); if (b instanceof HTMLElement) { b.click(); return true; } return false; })()`, selector)

	var clicked bool
	if err := t.run(ctx, t.cfg.StepTimeout, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click load-more: %w", err)
	}
	if !clicked {
		return crawl.ErrNoAffordance
	}
	return nil
}

// WaitIdle blocks until no request has been in flight for a short quiet
// period, or fails once timeout elapses.
func (t *BrowserTransport) WaitIdle(ctx context.Context, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(idlePollEvery)
	defer ticker.Stop()

	for {
		if t.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w after %s", errNetworkBusy, timeout)
		case <-ticker.C:
		}
	}
}

func (t *BrowserTransport) idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && time.Since(t.lastActivity) >= idleQuietPeriod
}

func (t *BrowserTransport) Close() error {
	t.closeOnce.Do(t.cancel)
	return nil
}
