package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// ErrRobotsDisallowed marks a URL the site's robots.txt forbids. It is a
// policy exclusion, not a fetch failure, and is never retried.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// FetchConfig controls CollyFetcher behavior.
type FetchConfig struct {
	UserAgent string
	// Delay is the minimum spacing enforced before every outbound
	// request, including the first. This is a site-wide politeness
	// contract, not a per-host token bucket.
	Delay   time.Duration
	Retries int
	Timeout time.Duration
}

// CollyFetcher implements Fetcher using a cloned Colly collector per
// attempt. Retries reuse the same politeness delay between attempts.
type CollyFetcher struct {
	baseCollector *colly.Collector
	pacer         *pacer
	cfg           FetchConfig
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg FetchConfig, logger *zap.Logger) *CollyFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	// Colly ignores robots.txt by default; this crawler must not.
	base.IgnoreRobotsTxt = false
	base.SetRequestTimeout(cfg.Timeout)
	base.WithTransport(newHTTPTransport(cfg.Timeout))

	return &CollyFetcher{
		baseCollector: base,
		pacer:         &pacer{delay: cfg.Delay},
		cfg:           cfg,
		logger:        logger,
	}
}

// Fetch retrieves rawURL, retrying up to Retries additional times on
// transport failures and non-2xx statuses. After exhausting attempts it
// returns a *FetchError carrying the failure reason.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (FetchResponse, error) {
	attempts := f.cfg.Retries + 1
	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := f.pacer.Wait(ctx); err != nil {
			return FetchResponse{}, err
		}
		requestsTotal.Inc()
		resp, status, err := f.fetchOnce(rawURL)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, colly.ErrRobotsTxtBlocked) {
			return FetchResponse{}, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
		lastErr = err
		lastStatus = status
		if attempt < attempts {
			retriesTotal.Inc()
			f.logger.Warn("fetch attempt failed",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Int("status", status),
				zap.Error(err),
			)
			// Linear backoff between retries, on top of the pacer gate.
			if err := sleepCtx(ctx, f.cfg.Delay*time.Duration(attempt)); err != nil {
				return FetchResponse{}, err
			}
		}
	}

	requestErrorsTotal.Inc()
	return FetchResponse{}, &FetchError{
		URL:        rawURL,
		Reason:     classifyFetchError(lastErr, lastStatus),
		StatusCode: lastStatus,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

// Probe issues a HEAD request under the same politeness gate and robots
// restrictions, and reports whether the resource answered 200.
func (f *CollyFetcher) Probe(ctx context.Context, rawURL string) (bool, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return false, err
	}
	requestsTotal.Inc()

	collector := f.baseCollector.Clone()
	var status int
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	err := collector.Request(http.MethodHead, rawURL, nil, nil, nil)
	collector.Wait()
	if errors.Is(err, colly.ErrRobotsTxtBlocked) {
		return false, nil
	}
	if err != nil && status == 0 {
		return false, err
	}
	return status == http.StatusOK, nil
}

func (f *CollyFetcher) fetchOnce(rawURL string) (FetchResponse, int, error) {
	collector := f.baseCollector.Clone()
	start := time.Now()

	var (
		once   sync.Once
		result FetchResponse
		status int
		ferr   error
	)
	capture := func(resp FetchResponse, code int, err error) {
		once.Do(func() {
			result = resp
			status = code
			ferr = err
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		capture(FetchResponse{
			URL:         rawURL,
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        append([]byte(nil), r.Body...),
			Duration:    time.Since(start),
		}, r.StatusCode, nil)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		code := 0
		if r != nil {
			code = r.StatusCode
		}
		capture(FetchResponse{}, code, err)
	})

	visitErr := collector.Visit(rawURL)
	collector.Wait()

	// Visit surfaces HTTP errors synchronously; the OnError hook has
	// already captured the status code by then.
	if ferr != nil {
		return FetchResponse{}, status, ferr
	}
	if visitErr != nil {
		return FetchResponse{}, status, visitErr
	}
	if result.StatusCode == 0 {
		return FetchResponse{}, 0, errors.New("colly fetch produced no result")
	}
	return result, result.StatusCode, nil
}

// classifyFetchError maps the last attempt's failure to a FetchReason.
func classifyFetchError(err error, status int) FetchReason {
	if status > 0 {
		return ReasonHTTPStatus
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonConnectionFailed
}

// pacer enforces the minimum spacing between outbound requests.
type pacer struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

// Wait blocks until a request may be sent, or the context finishes.
func (p *pacer) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	var wait time.Duration
	if p.last.IsZero() {
		wait = p.delay
	} else {
		wait = time.Until(p.last.Add(p.delay))
	}
	p.last = time.Now().Add(wait)
	p.mu.Unlock()

	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newHTTPTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          16,
		IdleConnTimeout:       30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}
