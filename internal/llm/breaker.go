package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/incluia/assessment-adapter/internal/domain"
	"github.com/incluia/assessment-adapter/internal/observability"
)

// BreakerConfig configures the circuit breaker placed in front of a model.
type BreakerConfig struct {
	Enabled bool
	// MinRequests is the number of calls in a window before the failure
	// ratio is considered.
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
}

// DefaultBreakerConfig returns the breaker settings used when none are
// configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:      true,
		MinRequests:  5,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
		HalfOpenMax:  1,
	}
}

func (c BreakerConfig) normalize() BreakerConfig {
	d := DefaultBreakerConfig()
	if c.MinRequests == 0 {
		c.MinRequests = d.MinRequests
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = d.FailureRatio
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = d.OpenTimeout
	}
	if c.HalfOpenMax == 0 {
		c.HalfOpenMax = d.HalfOpenMax
	}
	return c
}

// newBreaker builds a breaker that counts only overload failures. Rejected
// requests and cancellations leave it closed.
func newBreaker[T any](name string, cfg BreakerConfig, logger *observability.Logger) *gobreaker.CircuitBreaker[T] {
	cfg = cfg.normalize()
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenMax,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// breakerError maps the breaker's own rejections onto ModelUnavailableError.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ModelUnavailableError("model temporarily disabled after repeated failures: "+retryLaterHint, err)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case domain.IsType(err, domain.ErrorTypeModelUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

// GuardedGenerator wraps a text model with a circuit breaker and records a
// metric per call.
type GuardedGenerator struct {
	next    domain.Generator
	breaker *gobreaker.CircuitBreaker[string]
	enabled bool
	metrics *observability.Metrics
}

// NewGuardedGenerator wraps next. metrics and logger may be nil.
func NewGuardedGenerator(next domain.Generator, cfg BreakerConfig, logger *observability.Logger, metrics *observability.Metrics) *GuardedGenerator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &GuardedGenerator{
		next:    next,
		breaker: newBreaker[string]("text-model", cfg, logger),
		enabled: cfg.Enabled,
		metrics: metrics,
	}
}

func (g *GuardedGenerator) Generate(ctx context.Context, parts []domain.ContentPart, model string) (string, error) {
	return g.run(func() (string, error) {
		return g.next.Generate(ctx, parts, model)
	})
}

// GenerateStream streams through the wrapped model when it supports it and
// falls back to a single chunk otherwise.
func (g *GuardedGenerator) GenerateStream(ctx context.Context, parts []domain.ContentPart, model string, chunkCh chan<- string) (string, error) {
	streamer, ok := g.next.(domain.StreamingGenerator)
	if !ok {
		reply, err := g.Generate(ctx, parts, model)
		if err == nil && chunkCh != nil && reply != "" {
			select {
			case chunkCh <- reply:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return reply, err
	}
	return g.run(func() (string, error) {
		return streamer.GenerateStream(ctx, parts, model, chunkCh)
	})
}

func (g *GuardedGenerator) run(call func() (string, error)) (string, error) {
	var (
		reply string
		err   error
	)
	if g.enabled {
		reply, err = g.breaker.Execute(call)
	} else {
		reply, err = call()
	}
	g.metrics.RecordModelCall("text", outcome(err))
	return reply, breakerError(err)
}

// State exposes the breaker state for health reporting.
func (g *GuardedGenerator) State() gobreaker.State {
	return g.breaker.State()
}

// GuardedImageGenerator is the image model counterpart of GuardedGenerator.
type GuardedImageGenerator struct {
	next    domain.ImageGenerator
	breaker *gobreaker.CircuitBreaker[*domain.GeneratedImage]
	enabled bool
	metrics *observability.Metrics
}

func NewGuardedImageGenerator(next domain.ImageGenerator, cfg BreakerConfig, logger *observability.Logger, metrics *observability.Metrics) *GuardedImageGenerator {
	if logger == nil {
		logger = observability.Nop()
	}
	return &GuardedImageGenerator{
		next:    next,
		breaker: newBreaker[*domain.GeneratedImage]("image-model", cfg, logger),
		enabled: cfg.Enabled,
		metrics: metrics,
	}
}

func (g *GuardedImageGenerator) GenerateImage(ctx context.Context, prompt string, model string) (*domain.GeneratedImage, error) {
	call := func() (*domain.GeneratedImage, error) {
		return g.next.GenerateImage(ctx, prompt, model)
	}
	var (
		img *domain.GeneratedImage
		err error
	)
	if g.enabled {
		img, err = g.breaker.Execute(call)
	} else {
		img, err = call()
	}
	g.metrics.RecordModelCall("image", outcome(err))
	return img, breakerError(err)
}

func (g *GuardedImageGenerator) State() gobreaker.State {
	return g.breaker.State()
}
