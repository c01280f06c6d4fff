package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrOpen = errors.New("circuit breaker is open")

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Breaker stops calls to a dependency after repeated outages and lets a
// limited number of probes through once the open timeout has elapsed.
type Breaker struct {
	mu    sync.Mutex
	cfg   BreakerConfig
	clock clockwork.Clock

	state     State
	failures  int
	openedAt  time.Time
	inFlight  int
	successes int
}

func NewBreaker(cfg BreakerConfig, clock clockwork.Clock) *Breaker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Breaker{
		cfg:   cfg.normalize(),
		clock: clock,
		state: StateClosed,
	}
}

// Do runs fn unless the breaker is open. Errors for which trips returns true
// count as outages; every other result, including a nil error, counts as a
// healthy call.
func (b *Breaker) Do(fn func() error, trips func(error) bool) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn()
	if err != nil && trips(err) {
		b.onFailure()
	} else {
		b.onSuccess()
	}
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.clock.Since(b.openedAt) >= b.cfg.OpenTimeout {
		return StateHalfOpen
	}
	return b.state
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.clock.Since(b.openedAt) < b.cfg.OpenTimeout {
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.inFlight = 0
		b.successes = 0
	}
	if b.state == StateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenProbes {
			return ErrOpen
		}
		b.inFlight++
	}
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.release()
		b.successes++
		if b.successes >= b.cfg.HalfOpenProbes && b.inFlight == 0 {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case StateHalfOpen:
		b.release()
		b.trip()
	case StateOpen:
		b.openedAt = b.clock.Now()
	}
}

func (b *Breaker) release() {
	if b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.clock.Now()
	b.inFlight = 0
	b.successes = 0
}
