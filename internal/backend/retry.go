package backend

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/choosedb/internal/config"
	"github.com/abhisek/choosedb/internal/questionnaire"
)

// RetryClient is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryClient struct {
	inner  Client
	config config.RetryConfig
	logger *zap.Logger
}

// WithRetry wraps a Client with retry logic.
func WithRetry(c Client, cfg config.RetryConfig, logger *zap.Logger) Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryClient{inner: c, config: cfg, logger: logger.Named("retry")}
}

func (r *RetryClient) Questions(ctx context.Context) ([]questionnaire.Question, error) {
	return retry(ctx, r, "questions", func() ([]questionnaire.Question, error) {
		return r.inner.Questions(ctx)
	})
}

func (r *RetryClient) Recommend(ctx context.Context, req questionnaire.Request) (*questionnaire.RecommendationResponse, error) {
	return retry(ctx, r, "recommend", func() (*questionnaire.RecommendationResponse, error) {
		return r.inner.Recommend(ctx, req)
	})
}

func retry[T any](ctx context.Context, r *RetryClient, op string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := range r.config.MaxAttempts {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		r.logger.Warn("retrying backend call",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}

	return zero, lastErr
}

// backoff computes the wait duration for the given attempt.
func (r *RetryClient) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
