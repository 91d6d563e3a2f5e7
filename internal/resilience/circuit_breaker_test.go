package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func openBreaker(t *testing.T, reset time.Duration, opts ...BreakerOption) *CircuitBreaker {
	t.Helper()
	cb := NewCircuitBreaker("test", 3, reset, opts...)
	for i := 0; i < 3; i++ {
		cb.RecordResult(false)
	}
	if cb.GetState() != StateOpen {
		t.Fatal("Expected circuit to be Open")
	}
	return cb
}

func TestCircuitBreaker_StateClosed(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Second)

	if cb.GetState() != StateClosed {
		t.Errorf("Expected initial state to be Closed, got %s", cb.GetState())
	}
	if _, _, ok := cb.allowRequest(); !ok {
		t.Error("Expected to allow request in Closed state")
	}
}

func TestCircuitBreaker_OpenAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Second)

	cb.RecordResult(false)
	cb.RecordResult(false)
	if cb.GetState() != StateClosed {
		t.Error("Expected state to still be Closed after 2 failures")
	}

	cb.RecordResult(false)
	if cb.GetState() != StateOpen {
		t.Error("Expected state to be Open after 3 failures")
	}
	if _, _, ok := cb.allowRequest(); ok {
		t.Error("Expected to not allow request in Open state")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Second)

	cb.RecordResult(false)
	cb.RecordResult(false)
	cb.RecordResult(true)
	cb.RecordResult(false)
	cb.RecordResult(false)

	if cb.GetState() != StateClosed {
		t.Error("Expected non-consecutive failures to keep the circuit Closed")
	}
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	cb := openBreaker(t, 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	if _, _, ok := cb.allowRequest(); !ok {
		t.Error("Expected to allow request after timeout (HalfOpen)")
	}
	if state, _, _, _ := cb.GetStats(); state != StateHalfOpen {
		t.Errorf("Expected state to be HalfOpen, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb := openBreaker(t, 50*time.Millisecond, WithHalfOpenMax(2))
	time.Sleep(80 * time.Millisecond)

	allowed := 0
	for i := 0; i < 5; i++ {
		if _, _, ok := cb.allowRequest(); ok {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("Expected 2 probes in HalfOpen, got %d", allowed)
	}
}

func TestCircuitBreaker_CloseAfterSuccess(t *testing.T) {
	cb := openBreaker(t, 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return nil }); err != nil {
			t.Fatalf("Expected probe %d to pass, got %v", i, err)
		}
	}
	if cb.GetState() != StateClosed {
		t.Errorf("Expected state to be Closed after successes in HalfOpen, got %s", cb.GetState())
	}
}

func TestCircuitBreaker_OpenAfterFailureInHalfOpen(t *testing.T) {
	cb := openBreaker(t, 50*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	_ = cb.Call(func() error { return errors.New("still down") })

	if cb.GetState() != StateOpen {
		t.Error("Expected state to be Open after failure in HalfOpen")
	}
}

func TestCircuitBreaker_Call(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Second)

	if err := cb.Call(func() error { return nil }); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	testErr := errors.New("test error")
	if err := cb.Call(func() error { return testErr }); !errors.Is(err, testErr) {
		t.Errorf("Expected the call's own error, got %v", err)
	}
}

func TestCircuitBreaker_CallOpen(t *testing.T) {
	cb := NewCircuitBreaker("test", 1, time.Second)
	cb.RecordResult(false)

	called := false
	err := cb.Call(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Error("Expected fn not to run while Open")
	}
}

func TestCircuitBreaker_Hooks(t *testing.T) {
	var mu sync.Mutex
	var transitions []string
	failures := 0

	cb := NewCircuitBreaker("deepgram", 2, 50*time.Millisecond,
		WithHalfOpenMax(1),
		WithStateChangeHook(func(name string, from, to CircuitState) {
			mu.Lock()
			transitions = append(transitions, from.String()+"->"+to.String())
			mu.Unlock()
		}),
		WithFailureHook(func(name string) {
			if name != "deepgram" {
				t.Errorf("Expected hook name deepgram, got %q", name)
			}
			failures++
		}),
	)

	cb.RecordResult(false)
	cb.RecordResult(false)
	time.Sleep(80 * time.Millisecond)
	_ = cb.Call(func() error { return nil })
	cb.Reset()

	expected := []string{"closed->open", "open->half-open", "half-open->closed"}
	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != len(expected) {
		t.Fatalf("Expected transitions %v, got %v", expected, transitions)
	}
	for i := range expected {
		if transitions[i] != expected[i] {
			t.Errorf("Expected transition %q, got %q", expected[i], transitions[i])
		}
	}
	if failures != 2 {
		t.Errorf("Expected 2 failure callbacks, got %d", failures)
	}
}

func TestCircuitBreaker_GetStats(t *testing.T) {
	cb := NewCircuitBreaker("test", 3, time.Second)

	cb.RecordResult(true)
	cb.RecordResult(true)
	cb.RecordResult(false)

	state, requestCount, failureCount, failureRate := cb.GetStats()

	if state != StateClosed {
		t.Errorf("Expected state Closed, got %s", state)
	}
	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}
	if failureCount != 1 {
		t.Errorf("Expected 1 failure, got %d", failureCount)
	}
	if failureRate < 33.0 || failureRate > 34.0 {
		t.Errorf("Expected failure rate around 33.33%%, got %.2f%%", failureRate)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := openBreaker(t, time.Second)

	cb.Reset()

	if cb.GetState() != StateClosed {
		t.Error("Expected state to be Closed after reset")
	}
	if err := cb.Call(func() error { return nil }); err != nil {
		t.Errorf("Expected calls to pass after reset, got %v", err)
	}
}

func TestCircuitState_String(t *testing.T) {
	if StateHalfOpen.String() != "half-open" || CircuitState(9).String() != "unknown" {
		t.Error("Unexpected state names")
	}
}
