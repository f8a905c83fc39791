package llm

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dimslaev/spaider/pkg/utils"
)

// RetryOptions bounds how hard a backend is retried.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// Timeout bounds each individual attempt; zero means no per-attempt bound.
	Timeout time.Duration
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
}

// DefaultRetryOptions allows two retries of two minutes each.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:      2,
		Timeout:         120 * time.Second,
		InitialInterval: 500 * time.Millisecond,
	}
}

type retryBackend struct {
	next   Backend
	opts   RetryOptions
	logger *utils.Logger
}

// WithRetry wraps b so transport failures are retried with exponential
// backoff. Every failure it returns is a *TransportError.
func WithRetry(b Backend, opts RetryOptions, logger *utils.Logger) Backend {
	if logger == nil {
		logger = utils.Discard()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &retryBackend{next: b, opts: opts, logger: logger}
}

func (r *retryBackend) Send(ctx context.Context, req Request) (string, error) {
	attempts := 0
	var reply string

	op := func() error {
		attempts++
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.opts.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		}
		defer cancel()

		out, err := r.next.Send(attemptCtx, req)
		if err == nil {
			reply = out
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		r.logger.Logf("backend attempt %d failed, retrying: %v", attempts, err)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	if r.opts.InitialInterval > 0 {
		policy.InitialInterval = r.opts.InitialInterval
	}
	policy.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.opts.MaxRetries)), ctx))
	if err != nil {
		return "", &TransportError{Attempts: attempts, Err: err}
	}
	return reply, nil
}

// isRetryable reports whether err is a transport failure worth another try:
// network errors, attempt timeouts and 408/409/429/5xx answers.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusConflict, http.StatusTooManyRequests:
			return true
		}
		return statusErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
