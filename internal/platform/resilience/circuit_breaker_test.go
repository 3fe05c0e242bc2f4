package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b := NewCircuitBreaker(2, 5*time.Second, 1)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_ExecuteIgnoresNonFailures(t *testing.T) {
	b := NewCircuitBreaker(1, time.Minute, 1)
	errNotFound := errors.New("status 404")
	errTransient := errors.New("status 503")
	isTransient := func(err error) bool { return errors.Is(err, errTransient) }

	if err := b.Execute(func() error { return errNotFound }, isTransient); !errors.Is(err, errNotFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("non-transient error must not trip breaker, got %s", state)
	}

	_ = b.Execute(func() error { return errTransient }, isTransient)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after transient failure, got %s", state)
	}

	called := false
	err := b.Execute(func() error { called = true; return nil }, isTransient)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected fast failure while open, err=%v called=%v", err, called)
	}
}

func TestHostBreakers_IsolatesHosts(t *testing.T) {
	h := NewHostBreakers(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})
	boom := errors.New("boom")

	_ = h.Execute("streameast.gl", func() error { return boom }, nil)
	if err := h.Execute("www.livekora.vip", func() error { return nil }, nil); err != nil {
		t.Fatalf("other host must stay closed, got %v", err)
	}
	if err := h.Execute("STREAMEAST.GL", func() error { return nil }, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected host lookup to be case-insensitive and open, got %v", err)
	}

	states := h.States()
	if states["streameast.gl"] != CircuitStateOpen || states["www.livekora.vip"] != CircuitStateClosed {
		t.Fatalf("unexpected states: %+v", states)
	}
}

func TestHostBreakers_DisabledRunsDirectly(t *testing.T) {
	h := NewHostBreakers(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if err := h.Execute("a.example", func() error { return boom }, nil); !errors.Is(err, boom) {
			t.Fatalf("expected raw error with breakers disabled, got %v", err)
		}
	}
}

func TestCircuitBreakerConfig_Normalize(t *testing.T) {
	got := CircuitBreakerConfig{Enabled: true, FailureThreshold: -1}.Normalize()
	want := CircuitBreakerConfig{Enabled: true, FailureThreshold: 5, OpenTimeout: 30 * time.Second, HalfOpenMaxReq: 1}
	if got != want {
		t.Fatalf("Normalize()=%+v want=%+v", got, want)
	}

	custom := CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Second, HalfOpenMaxReq: 3}
	if custom.Normalize() != custom {
		t.Fatalf("expected explicit values to be kept: %+v", custom.Normalize())
	}
}
