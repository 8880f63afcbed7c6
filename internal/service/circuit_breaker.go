package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

// circuitBreaker opens after max consecutive failures. Once cooldown has
// passed it lets a single trial call through: success closes it again, failure
// restarts the cooldown.
type circuitBreaker struct {
	name     string
	max      int
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	consecutive int
	openedAt    time.Time
	trial       bool
}

func newCircuitBreaker(name string, max int, cooldown time.Duration) *circuitBreaker {
	if max <= 0 {
		max = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &circuitBreaker{name: name, max: max, cooldown: cooldown, now: time.Now}
}

func (b *circuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consecutive < b.max {
		return nil
	}
	if b.trial || b.now().Sub(b.openedAt) < b.cooldown {
		return fmt.Errorf("%w: %s: %d consecutive errors", ErrCircuitOpen, b.name, b.consecutive)
	}
	b.trial = true
	return nil
}

// record must follow every allowed call.
func (b *circuitBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false
	switch {
	case err == nil:
		b.consecutive = 0
	case errors.Is(err, context.Canceled):
		// caller gave up, says nothing about the provider
	default:
		b.consecutive++
		if b.consecutive >= b.max {
			b.openedAt = b.now()
		}
	}
}

func (b *circuitBreaker) reset() {
	b.mu.Lock()
	b.consecutive = 0
	b.trial = false
	b.mu.Unlock()
}

func (b *circuitBreaker) status() (consecutiveErrors int, isOpen bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consecutive, b.consecutive >= b.max
}
