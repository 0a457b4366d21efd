package gate

import (
	"errors"
	"sync"
	"time"
)

var ErrReasonRequired = errors.New("gate: arm reason required")

// Clock supplies the current time. Injected so TTL expiry is testable.
type Clock func() time.Time

// Status is a point-in-time snapshot of the gate.
type Status struct {
	Armed     bool          `json:"armed"`
	Reason    string        `json:"reason,omitempty"`
	ArmedAt   time.Time     `json:"armed_at,omitzero"`
	Remaining time.Duration `json:"remaining"`
}

// Gate is the process-wide authorization window for dangerous tools.
// Arming opens a TTL-bounded window; expiry is evaluated lazily on
// query, and a query that observes expiry clears the stored state.
type Gate struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	armed   bool
	armedAt time.Time
	reason  string
}

// New returns a disarmed gate. A nil clock uses time.Now.
func New(ttl time.Duration, now Clock) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{ttl: ttl, now: now}
}

// Arm opens the authorization window. Re-arming resets the window.
func (g *Gate) Arm(reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.armedAt = g.now()
	g.reason = reason
	return nil
}

// Disarm unconditionally closes the window. Idempotent.
func (g *Gate) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
}

// Armed reports whether the window is open. Observing an expired
// window clears it.
func (g *Gate) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return false
	}
	if g.now().Sub(g.armedAt) > g.ttl {
		g.clearLocked()
		return false
	}
	return true
}

// Remaining reports the time left in the window, zero when disarmed.
// It does not sweep expired state; only Armed does.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return 0
	}
	left := g.ttl - g.now().Sub(g.armedAt)
	if left < 0 {
		return 0
	}
	return left
}

// TTL returns the configured window duration.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Snapshot returns the current status without sweeping expired state.
func (g *Gate) Snapshot() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := Status{Armed: g.armed, Reason: g.reason, ArmedAt: g.armedAt}
	if g.armed {
		left := g.ttl - g.now().Sub(g.armedAt)
		if left < 0 {
			return Status{}
		}
		st.Remaining = left
	}
	return st
}

func (g *Gate) clearLocked() {
	g.armed = false
	g.armedAt = time.Time{}
	g.reason = ""
}
