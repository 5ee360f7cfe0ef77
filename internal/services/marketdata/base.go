package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"AraDetector/internal/service/metrics"
	"AraDetector/internal/service/ratelimit"
	"AraDetector/pkg/config"
	xhttp "AraDetector/pkg/http"
	"AraDetector/pkg/logger"
)

// httpBase centralizes request building, rate limiting, circuit breaking and retries.
type httpBase struct {
	baseURL  string
	host     string
	client   *xhttp.Client
	limiter  *ratelimit.Limiter
	breakers map[string]*gobreaker.CircuitBreaker
	retries  int
	backoff  time.Duration
	log      *logger.Logger
}

func newHTTPBase(cfg *config.Config, limiter *ratelimit.Limiter, l *logger.Logger, sources []string) (*httpBase, error) {
	md := cfg.MarketData
	u, err := url.Parse(md.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid marketdata base_url %q", md.BaseURL)
	}
	if l == nil {
		l = logger.Nop()
	}
	b := &httpBase{
		baseURL:  strings.TrimRight(md.BaseURL, "/"),
		host:     u.Host,
		client:   xhttp.NewClient(xhttp.WithTimeout(md.Timeout), xhttp.WithBearerToken(md.Token)),
		limiter:  limiter,
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(sources)),
		retries:  md.Retries,
		backoff:  md.Backoff,
		log:      l,
	}
	for _, src := range sources {
		b.breakers[src] = gobreaker.NewCircuitBreaker(b.breakerSettings(src, cfg))
	}
	return b, nil
}

func (b *httpBase) breakerSettings(source string, cfg *config.Config) gobreaker.Settings {
	bc := cfg.MarketData.Breaker
	threshold := bc.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.Settings{
		Name:        "marketdata." + source,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Client errors mean the request was wrong, not that the upstream is unhealthy.
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			b.log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	}
}

// getJSON fetches path under the base URL through the source's breaker and decodes into dest.
func (b *httpBase) getJSON(ctx context.Context, source, path string, query map[string][]string, dest interface{}) error {
	start := time.Now()
	err := b.getWithRetry(ctx, source, path, query, dest)
	metrics.MarketDataLatency.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MarketDataErrors.WithLabelValues(source).Inc()
		return fmt.Errorf("get %s: %w", source, err)
	}
	return nil
}

func (b *httpBase) getWithRetry(ctx context.Context, source, path string, query map[string][]string, dest interface{}) error {
	var err error
	for attempt := 0; attempt <= b.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * b.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = b.get(ctx, source, path, query, dest)
		if err == nil || !isTransient(err) {
			return err
		}
		b.log.Debug("marketdata retry",
			logger.String("source", source),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
	}
	return err
}

func (b *httpBase) get(ctx context.Context, source, path string, query map[string][]string, dest interface{}) error {
	if err := b.limiter.Wait(ctx, b.host); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	call := func() (interface{}, error) {
		return nil, b.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method:      xhttp.MethodGet,
			URL:         b.baseURL + path,
			QueryParams: query,
		}, dest)
	}
	cb, ok := b.breakers[source]
	if !ok {
		_, err := call()
		return err
	}
	_, err := cb.Execute(call)
	return err
}

// isTransient reports whether err is worth retrying: 5xx and 429 responses or transport failures.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

func expand(path, code string) string {
	return strings.ReplaceAll(path, "{code}", url.PathEscape(code))
}
