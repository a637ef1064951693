package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// ErrRetriesExhausted is returned when every allowed attempt was rate limited.
var ErrRetriesExhausted = errors.New("rate limit retries exhausted")

// Config holds the pacing and retry parameters.
type Config struct {
	MinInterval time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultConfig returns the standard parameters: 2s pacing, 5 retries and a
// 60s base backoff.
func DefaultConfig() Config {
	return Config{
		MinInterval: 2 * time.Second,
		MaxRetries:  5,
		BaseBackoff: 60 * time.Second,
	}
}

// Schedule returns the wait before each retry, in order.
func (c Config) Schedule() []time.Duration {
	b := c.newBackOff()
	out := make([]time.Duration, 0, c.MaxRetries)
	for i := 0; i < c.MaxRetries; i++ {
		out = append(out, b.NextBackOff())
	}
	return out
}

func (c Config) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Option configures a Caller.
type Option func(*Caller)

// WithSleeper overrides how waits are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Caller) {
		c.sleeper = sleeper
	}
}

// WithClock overrides the time source used for pacing.
func WithClock(now func() time.Time) Option {
	return func(c *Caller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for retry notices.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Caller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Caller paces and retries calls. It is safe for concurrent use.
type Caller struct {
	cfg     Config
	limiter *rate.Limiter
	sleeper func(time.Duration)
	now     func() time.Time
	logger  *slog.Logger
}

// New constructs a Caller.
func New(cfg Config, opts ...Option) *Caller {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Caller{
		cfg:    cfg,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	c.limiter = rate.NewLimiter(limit, 1)
	return c
}

// Config returns the parameters the Caller was built with.
func (c *Caller) Config() Config {
	return c.cfg
}

// Do runs fn, pacing every attempt and retrying rate-limit failures.
// Pacing is measured from the moment the previous successful call returned;
// rate-limited attempts do not count. label identifies the call in log output.
func (c *Caller) Do(ctx context.Context, label string, fn func(context.Context) error) error {
	b := c.cfg.newBackOff()
	for attempt := 0; ; attempt++ {
		if err := c.pace(ctx); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			c.markSuccess()
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}
		if attempt >= c.cfg.MaxRetries {
			c.logger.Warn("rate limit retries exhausted",
				"call", label,
				"attempts", attempt+1,
			)
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt+1, err)
		}

		delay := b.NextBackOff()
		c.logger.Info("rate limited, backing off",
			"call", label,
			"attempt", attempt+1,
			"delay", delay,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// pace waits until MinInterval has passed since the last success. The token
// is only consumed by markSuccess, so the reservation here is a peek.
func (c *Caller) pace(ctx context.Context) error {
	now := c.now()
	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("rate limiter cannot grant a token")
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return c.sleep(ctx, delay)
}

func (c *Caller) markSuccess() {
	c.limiter.ReserveN(c.now(), 1)
}

func (c *Caller) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type rateLimited interface {
	RateLimited() bool
}

// IsRateLimited reports whether err carries a rate-limit signal.
func IsRateLimited(err error) bool {
	var rl rateLimited
	return errors.As(err, &rl) && rl.RateLimited()
}
