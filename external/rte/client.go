package rte

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/resilience"
)

const (
	titleSelector = "span[title]"
	postSelector  = ".tracker-post-body, .live-update, .match-update"
	maxBodyBytes  = 8 << 20
)

var (
	DefaultSectionURLs = []string{
		"https://www.rte.ie/sport/football/",
		"https://www.rte.ie/sport/hurling/",
	}

	liveTitleKeywords = []string{"live", "recap", "updates", "minute", "score"}

	errUnexpectedStatus = crerr.New("rte unexpected status")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads RTE sport section pages and their live-blog articles.
type Client struct {
	http      *retryablehttp.Client
	guard     *resilience.Guard
	userAgent string
	logger    *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	retryClient := retryablehttp.NewClient()
	if cfg.HTTPClient != nil {
		retryClient.HTTPClient = cfg.HTTPClient
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = max(cfg.MaxRetries, 0)
	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.Logger = logger.Component("rte_client")

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	if cfg.CircuitBreaker.OnStateChange == nil {
		cfg.CircuitBreaker.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("rte circuit state changed", "from", from, "to", to)
		}
	}

	return &Client{
		http:      retryClient,
		guard:     resilience.NewGuard(cfg.CircuitBreaker),
		userAgent: userAgent,
		logger:    logger,
	}
}

// ListArticles returns absolute URLs of the live-blog articles linked from a
// section page, in page order without duplicates.
func (c *Client) ListArticles(ctx context.Context, sectionURL string) ([]string, error) {
	doc, base, err := c.fetchDocument(ctx, sectionURL)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	seen := make(map[string]struct{})
	doc.Find(titleSelector).Each(func(_ int, title *goquery.Selection) {
		text, _ := title.Attr("title")
		if !IsLiveTitle(text) {
			return
		}
		href, ok := title.Closest("a").Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			c.logger.DebugContext(ctx, "skip malformed article link", "href", href, "error", err)
			return
		}
		article := base.ResolveReference(ref).String()
		if _, dup := seen[article]; dup {
			return
		}
		seen[article] = struct{}{}
		out = append(out, article)
	})
	return out, nil
}

// ListPosts returns the text of every live post in an article.
func (c *Client) ListPosts(ctx context.Context, articleURL string) ([]string, error) {
	doc, _, err := c.fetchDocument(ctx, articleURL)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0)
	doc.Find(postSelector).Each(func(_ int, post *goquery.Selection) {
		if text := strings.Join(strings.Fields(post.Text()), " "); text != "" {
			out = append(out, text)
		}
	})
	return out, nil
}

// IsLiveTitle reports whether an article title looks like a live blog.
func IsLiveTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range liveTitleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, *url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Host == "" {
		return nil, nil, fmt.Errorf("invalid page url %q", pageURL)
	}

	var doc *goquery.Document
	err = c.guard.Do(func() error {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		req.Header.Set("Accept-Language", "en-IE,en;q=0.9")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("get %s: %w", base, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return crerr.Wrapf(errUnexpectedStatus, "get %s: status %d", base, resp.StatusCode)
		}

		doc, err = goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("parse %s: %w", base, err)
		}
		return nil
	}, isCallerCancel)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			var openErr *resilience.OpenError
			retryAfter := time.Duration(0)
			if errors.As(err, &openErr) {
				retryAfter = openErr.RetryAfter
			}
			c.logger.WarnContext(ctx, "rte circuit breaker rejected request", "url", base.String(), "state", c.guard.State(), "retry_after", retryAfter)
		}
		return nil, nil, err
	}
	return doc, base, nil
}

func isCallerCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
