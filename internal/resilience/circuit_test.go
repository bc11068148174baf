package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sells-group/research-engine/internal/model"
)

func transientErr() error {
	return NewProviderError("p", model.ErrorKindServerUnavailable, 503, errors.New("unavailable"))
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, func(_ context.Context) error { return transientErr() })
	}

	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	err := cb.Execute(ctx, func(_ context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_TerminalErrorsDoNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	ctx := context.Background()

	authErr := NewProviderError("p", model.ErrorKindAuth, 401, errors.New("bad key"))
	for i := 0; i < 5; i++ {
		_ = cb.Execute(ctx, func(_ context.Context) error { return authErr })
	}

	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after auth errors, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     30 * time.Second,
	}).WithNow(func() time.Time { return now })
	ctx := context.Background()

	_ = cb.Execute(ctx, func(_ context.Context) error { return transientErr() })
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	// Advance past the reset timeout; a successful probe closes the circuit.
	now = now.Add(31 * time.Second)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}

	val, err := ExecuteVal(ctx, cb, func(_ context.Context) (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != "ok" {
		t.Errorf("expected ok, got %q", val)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after probe success, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     time.Second,
	}).WithNow(func() time.Time { return now })
	ctx := context.Background()

	_ = cb.Execute(ctx, func(_ context.Context) error { return transientErr() })
	now = now.Add(2 * time.Second)

	_ = cb.Execute(ctx, func(_ context.Context) error { return transientErr() })
	if cb.State() != CircuitOpen {
		t.Errorf("expected reopened, got %s", cb.State())
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(from, to CircuitState) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return transientErr() })
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("unexpected transitions: %v", transitions)
	}
}
