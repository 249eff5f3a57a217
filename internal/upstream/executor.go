package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"drinkaware/internal/providers"
	"drinkaware/internal/structures"
)

var retryAfterPattern = regexp.MustCompile(`Try again in (\d+) seconds`)

// Executor issues authenticated requests against the Drinkaware API and
// owns the rate-limit handling. One executor serves one account; the
// throttled flag is sticky so a cycle that hit a 429 paces the rest of
// its requests.
type Executor struct {
	client    *http.Client
	baseURL   string
	token     func() string
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	maxRetry  int
	throttled atomic.Bool

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewExecutor builds an executor for one account. token is called per
// request so a refresh mid-cycle takes effect immediately.
func NewExecutor(conf *structures.APIConfig, token func() string, logger providers.Logger, metrics providers.MetricsProviderInterface) *Executor {
	return &Executor{
		client:   &http.Client{Timeout: conf.RequestTimeout},
		baseURL:  strings.TrimRight(conf.BaseURL, "/"),
		token:    token,
		logger:   logger,
		metrics:  metrics,
		maxRetry: conf.MaxRateLimitRetries,
		sleep:    time.Sleep,
	}
}

// Throttled reports whether this executor has hit a rate limit since it
// was created. Callers use it to insert pacing delays between requests.
func (e *Executor) Throttled() bool {
	return e.throttled.Load()
}

// Get issues an authenticated GET and returns the raw JSON body.
func (e *Executor) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	return e.Call(ctx, http.MethodGet, path, params, nil)
}

// Call issues one authenticated request, retransmitting on 429 until
// the retry cap runs out. body, when non-nil, is JSON encoded.
func (e *Executor) Call(ctx context.Context, method, path string, params url.Values, body any) (json.RawMessage, error) {
	reqURL := e.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		start := time.Now()
		raw, status, err := e.do(ctx, method, reqURL, payload)
		e.metrics.ObserveUpstreamDuration(path, time.Since(start))
		e.metrics.IncUpstreamRequests(path, status)
		if err != nil {
			return nil, err
		}

		switch {
		case status == http.StatusUnauthorized:
			return nil, ErrAuthExpired
		case status == http.StatusTooManyRequests:
			e.throttled.Store(true)
			e.metrics.IncRateLimitHits()
			if e.maxRetry > 0 && attempt >= e.maxRetry {
				return nil, fmt.Errorf("%w after %d retries: %s", ErrRateLimited, attempt, string(raw))
			}
			delay := retryDelay(raw)
			e.logger.Warnf(providers.GetLogTypeByRequestType(method), "rate limited on %s, retrying in %s", path, delay)
			e.sleep(delay)
			continue
		case status < 200 || status > 299:
			return nil, &RequestError{Status: status, Body: string(raw)}
		}

		if len(raw) == 0 {
			return nil, nil
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrMalformedResponse)
		}
		return raw, nil
	}
}

func (e *Executor) do(ctx context.Context, method, reqURL string, payload []byte) (json.RawMessage, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+e.token())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, fmt.Errorf("%s %s: %w", method, reqURL, ErrTimeout)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, 0, fmt.Errorf("%s %s: %w", method, reqURL, ErrTimeout)
		}
		return nil, 0, err
	}
	return raw, resp.StatusCode, nil
}

// retryDelay extracts the advertised wait from a 429 body, defaulting
// to one second when the body does not carry one.
func retryDelay(body []byte) time.Duration {
	if m := retryAfterPattern.FindSubmatch(body); m != nil {
		if secs := cast.ToInt(string(m[1])); secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Second
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
