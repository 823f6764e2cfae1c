// internal/adapters/ticketmaster/client.go
package ticketmaster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/rs/zerolog/log"

	"tour_map/internal/adapters/observability"
	"tour_map/internal/domain"
)

// DefaultBase is the Discovery API root.
const DefaultBase = "https://app.ticketmaster.com/discovery/v2"

const (
	service  = "ticketmaster"
	endpoint = "events.json"
	maxBody  = 8 << 20
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker[[]byte]
}

// New builds a client for base (no trailing slash needed). rps caps the
// outbound request rate; the Discovery API allows 5 per second.
func New(base string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		rl: rate.NewLimiter(rate.Limit(rps), rps),
		cb: newBreaker(service),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	observability.SetBreakerState(name, 0)
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// Client errors (bad filters, 401) say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var ue *domain.UpstreamError
			if errors.As(err, &ue) {
				return !ue.Temporary()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			observability.SetBreakerState(name, float64(to))
		},
	})
}

// Search runs GET <base>/events.json with q. The request is bound to ctx, so
// an abandoned inbound request stops the outbound one too.
func (c *Client) Search(ctx context.Context, q domain.UpstreamQuery) ([]byte, error) {
	// Local queueing is not an upstream failure; keep it outside the breaker.
	if err := c.rl.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.get(ctx, c.base+"/"+endpoint+"?"+q.Values().Encode())
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return body, err
}

// get performs one GET. Failures are not retried here; callers decide.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tour-map/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.UpstreamError{Message: redact(err.Error()), Err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &domain.UpstreamError{Status: resp.StatusCode, Message: "read body: " + err.Error(), Err: err}
		}
		// a truncated body is not valid JSON; never pass it on
		if len(b) > maxBody {
			return nil, &domain.UpstreamError{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("response too large (over %d bytes)", maxBody),
			}
		}
		return b, nil
	}

	// read a small error body for diagnostics
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return nil, &domain.UpstreamError{
		Status:     resp.StatusCode,
		Message:    msg,
		RetryAfter: retryAfter(resp),
	}
}

// redact strips the query string from transport error messages, which embed
// the full URL including the credential.
func redact(msg string) string {
	i := strings.Index(msg, "?")
	if i < 0 {
		return msg
	}
	j := strings.IndexAny(msg[i:], "\": ")
	if j < 0 {
		return msg[:i]
	}
	return msg[:i] + msg[i+j:]
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	// seconds form
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	// HTTP-date form
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
