package llm

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) RetryOptions {
	return RetryOptions{MaxRetries: maxRetries, Timeout: time.Second, InitialInterval: time.Millisecond}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		failures     []error
		maxRetries   int
		wantAttempts int32
		wantErr      bool
	}{
		{"succeeds first time", nil, 2, 1, false},
		{"recovers from 503", []error{&StatusError{StatusCode: http.StatusServiceUnavailable}}, 2, 2, false},
		{"recovers from 429 twice", []error{&StatusError{StatusCode: 429}, &StatusError{StatusCode: 429}}, 2, 3, false},
		{"exhausts retries", []error{&StatusError{StatusCode: 502}, &StatusError{StatusCode: 502}, &StatusError{StatusCode: 502}}, 2, 3, true},
		{"does not retry 400", []error{&StatusError{StatusCode: http.StatusBadRequest}}, 2, 1, true},
		{"does not retry 401", []error{&StatusError{StatusCode: http.StatusUnauthorized}}, 2, 1, true},
		{"zero retries", []error{&StatusError{StatusCode: 500}}, 0, 1, true},
		{"does not retry plain errors", []error{errors.New("no choices")}, 2, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			inner := funcBackend(func(context.Context, Request) (string, error) {
				n := int(calls.Add(1))
				if n <= len(tt.failures) {
					return "", tt.failures[n-1]
				}
				return "ok", nil
			})

			out, err := WithRetry(inner, fastRetry(tt.maxRetries), nil).Send(context.Background(), Request{})
			assert.Equal(t, tt.wantAttempts, calls.Load())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "ok", out)
				return
			}
			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, int(tt.wantAttempts), te.Attempts)
		})
	}
}

func TestWithRetry_AttemptTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	inner := funcBackend(func(ctx context.Context, _ Request) (string, error) {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "late but fine", nil
	})

	opts := RetryOptions{MaxRetries: 1, Timeout: 20 * time.Millisecond, InitialInterval: time.Millisecond}
	out, err := WithRetry(inner, opts, nil).Send(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "late but fine", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWithRetry_StopsOnCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	inner := funcBackend(func(context.Context, Request) (string, error) {
		calls.Add(1)
		cancel()
		return "", &StatusError{StatusCode: 503}
	})

	_, err := WithRetry(inner, fastRetry(5), nil).Send(ctx, Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}
