// Package force models a player's Force pool, the currency spent to pay costs.
package force

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientForce is returned when a pool cannot cover a payment.
var ErrInsufficientForce = errors.New("insufficient force")

// Pool holds a non-negative amount of Force.
type Pool struct {
	mu     sync.RWMutex
	amount int
}

// NewPool creates a pool holding the given amount. Negative amounts start at zero.
func NewPool(initial int) *Pool {
	if initial < 0 {
		initial = 0
	}
	return &Pool{amount: initial}
}

// Amount returns the Force currently available.
func (p *Pool) Amount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.amount
}

// Add increases the pool. Non-positive amounts are ignored.
func (p *Pool) Add(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.amount += amount
}

// CanUse reports whether the pool covers the amount.
func (p *Pool) CanUse(amount int) bool {
	if amount < 0 {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return amount <= p.amount
}

// Use removes the amount from the pool. The pool is unchanged on error.
func (p *Pool) Use(amount int) error {
	if amount < 0 {
		return fmt.Errorf("cannot use negative force %d", amount)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if amount > p.amount {
		return fmt.Errorf("need %d, have %d: %w", amount, p.amount, ErrInsufficientForce)
	}
	p.amount -= amount
	return nil
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	return NewPool(p.Amount())
}
