// Package fetcher opens camera CSV sources: local files, stdin and HTTP(S)
// URLs. HTTP downloads are rate limited and retried on transient failures.
package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Stdin is the source name that reads standard input.
const Stdin = "-"

// Options configures remote downloads.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
	Limiter *rate.Limiter
	Client  *http.Client
}

func (o Options) withDefaults() Options {
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "camera-coverage/1.0"
	}
	if o.Limiter == nil {
		o.Limiter = rate.NewLimiter(5, 5)
	}
	if o.Client == nil {
		o.Client = &http.Client{Timeout: o.Timeout}
	}
	return o
}

// IsRemote reports whether src is an HTTP(S) URL.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Open returns a reader for src. The caller closes it.
func Open(ctx context.Context, src string, opts Options) (io.ReadCloser, error) {
	switch {
	case src == "":
		return nil, eris.New("fetcher: empty source")
	case src == Stdin:
		return io.NopCloser(os.Stdin), nil
	case IsRemote(src):
		return Download(ctx, src, opts)
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", src)
	}
	return f, nil
}

// Download fetches rawURL and returns the response body. Network errors,
// 429 and 5xx responses are retried; other non-200 statuses fail at once.
func Download(ctx context.Context, rawURL string, opts Options) (io.ReadCloser, error) {
	opts = opts.withDefaults()
	log := zap.L().With(zap.String("url", rawURL))

	var lastErr error
	for attempt := range opts.MaxRetries {
		if attempt > 0 {
			if err := sleep(ctx, backoff(opts.Backoff, attempt-1)); err != nil {
				return nil, eris.Wrap(err, "fetcher: download cancelled")
			}
		}
		if err := opts.Limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create request")
		}
		req.Header.Set("User-Agent", opts.UserAgent)
		req.Header.Set("Accept", "text/csv, */*")

		resp, err := opts.Client.Do(req)
		if err != nil {
			lastErr = err
			log.Warn("fetcher: request failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL)
			log.Warn("fetcher: server error, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
		default:
			_ = resp.Body.Close()
			return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
		}
	}

	return nil, eris.Wrapf(lastErr, "fetcher: %d attempts exhausted", opts.MaxRetries)
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	d = min(d, 30*time.Second)
	if half := int64(d) / 2; half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
