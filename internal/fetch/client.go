// Package fetch wraps outbound HTTP GETs with a per-attempt timeout,
// retry-with-exponential-backoff for transient failures, and rate-limit
// awareness (Retry-After). The upstream prices API throttles aggressively
// around the daily publication window, so every request in the repo goes
// through this client.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single attempt; past it the request is
	// aborted and counted as a timeout.
	DefaultTimeout = 8 * time.Second
	// DefaultMaxRetries is the number of additional attempts after the
	// first one fails with a retryable kind.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the first backoff delay; it doubles per retry.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps the doubling.
	DefaultMaxDelay = 8 * time.Second
)

// Result is the outcome of one Do call: either the first success or the
// last observed failure after retries were exhausted.
type Result struct {
	OK      bool
	Status  int
	Header  http.Header
	Body    []byte
	Elapsed time.Duration
	Kind    Kind
	URL     string
}

// Err returns a typed error for failed results, nil otherwise.
func (r *Result) Err() error {
	if r.OK {
		return nil
	}
	return &Error{Kind: r.Kind, Status: r.Status, URL: r.URL}
}

// DecodeJSON unmarshals the body. A decode failure marks the result as
// malformed-response.
func (r *Result) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.Kind = KindMalformed
		return err
	}
	return nil
}

// Config holds client tuning; zero values fall back to the defaults above.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	// RatePerSecond throttles outbound requests across all callers sharing
	// the client. 0 disables throttling.
	RatePerSecond float64
	Burst         int
}

// Client issues GET requests with backoff. Attempts within one Do call are
// strictly sequential; there is never more than one request in flight.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	log        *logrus.Entry

	// OnRetry is invoked before each backoff sleep. Telemetry only; must
	// not block.
	OnRetry func(attempt int, wait time.Duration, last *Result)

	// sleep is a seam for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a client from cfg, applying defaults for zero fields.
func NewClient(cfg Config, log *logrus.Entry) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		limiter:    limiter,
		log:        log.WithField("component", "fetch"),
		sleep:      sleepCtx,
	}
}

// Do GETs url, retrying rate-limited, timeout and network failures with
// exponential backoff (base doubling, capped). A Retry-After header on a
// 429 overrides the computed delay for that attempt. Non-retryable
// failures and retry exhaustion both return the last observed result.
func (c *Client) Do(ctx context.Context, url string) *Result {
	delay := c.cfg.BaseDelay

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return &Result{Status: 0, Kind: KindNetwork, URL: url, Header: http.Header{}}
			}
		}

		res := c.attempt(ctx, url)
		if res.OK || !res.Kind.Retryable() || attempt >= c.cfg.MaxRetries {
			return res
		}

		// Retry-After overrides the computed backoff for this attempt
		// without consuming a doubling step.
		wait := delay
		usedBackoff := true
		if res.Kind == KindRateLimited {
			if ra := retryAfter(res.Header); ra > 0 {
				wait = ra
				usedBackoff = false
			}
		}

		c.log.WithFields(logrus.Fields{
			"url":     url,
			"status":  res.Status,
			"kind":    res.Kind,
			"attempt": attempt + 1,
			"max":     c.cfg.MaxRetries,
			"wait":    wait.String(),
		}).Warn("retrying request")
		if c.OnRetry != nil {
			c.OnRetry(attempt+1, wait, res)
		}

		if err := c.sleep(ctx, wait); err != nil {
			// Caller gave up while we were backing off.
			return res
		}
		if usedBackoff {
			delay *= 2
			if delay > c.cfg.MaxDelay {
				delay = c.cfg.MaxDelay
			}
		}
	}
}

func (c *Client) attempt(ctx context.Context, url string) *Result {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return &Result{Status: 0, Kind: KindNetwork, URL: url, Header: http.Header{}}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		kind := KindNetwork
		status := 0
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			kind = KindTimeout
			status = 408
		}
		return &Result{Status: status, Kind: kind, Elapsed: elapsed, URL: url, Header: http.Header{}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed = time.Since(start)
	if err != nil {
		return &Result{Status: 0, Kind: KindNetwork, Elapsed: elapsed, URL: url, Header: resp.Header}
	}

	res := &Result{
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:  resp.StatusCode,
		Header:  resp.Header,
		Body:    body,
		Elapsed: elapsed,
		URL:     url,
	}
	if !res.OK {
		res.Kind = KindForStatus(resp.StatusCode)
	}
	return res
}

// retryAfter parses a Retry-After header given in seconds. HTTP-date form
// is rare on this upstream and ignored.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
