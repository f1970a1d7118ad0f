package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0.1,
	}
}

func TestWithBackoff(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		failWith     error
		attempts     int
		wantAttempts int
		wantErr      bool
	}{
		{name: "first try", failures: 0, attempts: 3, wantAttempts: 1},
		{name: "after retries", failures: 2, failWith: &HTTPError{StatusCode: 503}, attempts: 3, wantAttempts: 3},
		{name: "exhausted", failures: 5, failWith: &HTTPError{StatusCode: 500}, attempts: 3, wantAttempts: 3, wantErr: true},
		{name: "non retryable", failures: 5, failWith: &HTTPError{StatusCode: 400}, attempts: 3, wantAttempts: 1, wantErr: true},
		{name: "not found", failures: 5, failWith: &HTTPError{StatusCode: 404}, attempts: 3, wantAttempts: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithBackoff(context.Background(), fastConfig(tt.attempts), func() error {
				calls++
				if calls <= tt.failures {
					return tt.failWith
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error=%v, got %v", tt.wantErr, err)
			}
			if calls != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, calls)
			}
		})
	}
}

func TestWithBackoffIf_RetriesNotFound(t *testing.T) {
	calls := 0
	err := WithBackoffIf(context.Background(), fastConfig(3), IsRetryableOrNotFound, func() error {
		calls++
		if calls == 1 {
			return &HTTPError{StatusCode: http.StatusNotFound, Message: "not yet published"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestWithBackoff_ExhaustedWrapsLastError(t *testing.T) {
	last := &HTTPError{StatusCode: 502, Message: "bad gateway"}
	err := WithBackoff(context.Background(), fastConfig(2), func() error { return last })

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 502 {
		t.Errorf("expected wrapped HTTPError 502, got %v", err)
	}
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(5)
	cfg.InitialDelay = time.Second

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WithBackoff(ctx, cfg, func() error {
			calls++
			return &HTTPError{StatusCode: 500}
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not stop on cancel")
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt before cancel, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"plain", errors.New("bad zip"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestAddJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		got := addJitter(base, 0.5)
		if got < base || got > base+base/2 {
			t.Fatalf("jitter out of range: %v", got)
		}
	}
	if got := addJitter(base, 0); got != base {
		t.Errorf("expected no jitter, got %v", got)
	}
}

func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{StatusCode: 503, Message: "Service Unavailable"}
	if err.Error() != "HTTP 503: Service Unavailable" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
