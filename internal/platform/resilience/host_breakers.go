package resilience

import (
	"strings"
	"sync"
	"time"
)

// HostBreakers keeps one CircuitBreaker per upstream host so that a single
// misbehaving site cannot trip requests to the others.
type HostBreakers struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	breakers map[string]*CircuitBreaker
	now      func() time.Time
}

func NewHostBreakers(cfg CircuitBreakerConfig) *HostBreakers {
	return &HostBreakers{
		cfg:      cfg.Normalize(),
		breakers: make(map[string]*CircuitBreaker),
	}
}

func (h *HostBreakers) Enabled() bool {
	return h != nil && h.cfg.Enabled
}

// Execute runs fn directly when breakers are disabled.
func (h *HostBreakers) Execute(host string, fn func() error, isFailure func(error) bool) error {
	if !h.Enabled() {
		return fn()
	}
	return h.For(host).Execute(fn, isFailure)
}

func (h *HostBreakers) For(host string) *CircuitBreaker {
	key := strings.ToLower(strings.TrimSpace(host))

	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.breakers[key]; ok {
		return b
	}
	b := NewCircuitBreakerFromConfig(h.cfg)
	if h.now != nil {
		b.now = h.now
	}
	h.breakers[key] = b
	return b
}

func (h *HostBreakers) States() map[string]CircuitState {
	h.mu.Lock()
	hosts := make(map[string]*CircuitBreaker, len(h.breakers))
	for host, b := range h.breakers {
		hosts[host] = b
	}
	h.mu.Unlock()

	out := make(map[string]CircuitState, len(hosts))
	for host, b := range hosts {
		out[host] = b.State()
	}
	return out
}
