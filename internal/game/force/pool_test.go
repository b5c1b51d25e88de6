package force

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPool_AddAndUse(t *testing.T) {
	pool := NewPool(2)

	pool.Add(3)
	assert.Equal(t, 5, pool.Amount())

	require.NoError(t, pool.Use(4))
	assert.Equal(t, 1, pool.Amount())

	err := pool.Use(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientForce))
	assert.Equal(t, 1, pool.Amount(), "failed use must not change the pool")
}

func TestPool_RejectsNegatives(t *testing.T) {
	pool := NewPool(-4)
	assert.Equal(t, 0, pool.Amount())

	pool.Add(-2)
	assert.Equal(t, 0, pool.Amount())

	assert.Error(t, pool.Use(-1))
	assert.False(t, pool.CanUse(-1))
}

func TestPool_Clone(t *testing.T) {
	pool := NewPool(3)
	clone := pool.Clone()
	require.NoError(t, clone.Use(3))
	assert.Equal(t, 3, pool.Amount())
	assert.Equal(t, 0, clone.Amount())
}

func TestPool_NeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pool := NewPool(rapid.IntRange(-5, 20).Draw(rt, "initial"))
		steps := rapid.IntRange(0, 50).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(-5, 10).Draw(rt, "amount")
			before := pool.Amount()
			if rapid.Bool().Draw(rt, "add") {
				pool.Add(amount)
			} else {
				canUse := pool.CanUse(amount)
				err := pool.Use(amount)
				if canUse != (err == nil) {
					rt.Fatalf("CanUse(%d)=%v disagrees with Use error %v", amount, canUse, err)
				}
				if err != nil && pool.Amount() != before {
					rt.Fatalf("failed use changed pool from %d to %d", before, pool.Amount())
				}
			}
			if pool.Amount() < 0 {
				rt.Fatalf("pool went negative: %d", pool.Amount())
			}
		}
	})
}

func TestCost(t *testing.T) {
	assert.Equal(t, 2, Cost(2))
	assert.Equal(t, 3, Cost(2, 1))
	assert.Equal(t, 0, Cost(2, -5))
	assert.Equal(t, 1, Cost(2, 1, -2))
}
