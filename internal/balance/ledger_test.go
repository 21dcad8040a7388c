package balance_test

import (
	"testing"

	"github.com/k-obata-3/leave-connect-api/internal/balance"
	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"

	"github.com/stretchr/testify/assert"
)

func TestConsumedDays(t *testing.T) {
	assert.Equal(t, 1.0, balance.ConsumedDays(8))
	assert.Equal(t, 0.5, balance.ConsumedDays(4))
	assert.Equal(t, 0.25, balance.ConsumedDays(2))
	assert.Equal(t, 0.125, balance.ConsumedDays(1))
	assert.Equal(t, 0.75, balance.ConsumedDays(6))
}

func TestLeaveBalance_Debit(t *testing.T) {
	t.Run("moves remaining into consumed", func(t *testing.T) {
		b := balance.LeaveBalance{AutoCalcRemainingDays: 10, TotalConsumedDays: 2}
		err := b.Debit(1.0)
		assert.NoError(t, err)
		assert.Equal(t, 9.0, b.AutoCalcRemainingDays)
		assert.Equal(t, 3.0, b.TotalConsumedDays)
	})

	t.Run("fails without mutating when balance is short", func(t *testing.T) {
		b := balance.LeaveBalance{AutoCalcRemainingDays: 0.25, TotalConsumedDays: 5}
		err := b.Debit(0.5)
		assert.ErrorIs(t, err, balanceerrors.ErrBalanceExceeded)
		assert.Equal(t, 0.25, b.AutoCalcRemainingDays)
		assert.Equal(t, 5.0, b.TotalConsumedDays)
	})

	t.Run("exact remainder is allowed", func(t *testing.T) {
		b := balance.LeaveBalance{AutoCalcRemainingDays: 0.5}
		assert.NoError(t, b.Debit(0.5))
		assert.Equal(t, 0.0, b.AutoCalcRemainingDays)
	})
}

func TestLeaveBalance_Credit(t *testing.T) {
	t.Run("exactly reverses a debit", func(t *testing.T) {
		b := balance.LeaveBalance{AutoCalcRemainingDays: 10, TotalConsumedDays: 2}
		before := b

		assert.NoError(t, b.Debit(1.0))
		b.Credit(1.0)

		assert.Equal(t, before.AutoCalcRemainingDays, b.AutoCalcRemainingDays)
		assert.Equal(t, before.TotalConsumedDays, b.TotalConsumedDays)
	})
}

func TestLeaveBalance_RemainingDays(t *testing.T) {
	b := balance.LeaveBalance{
		TotalGrantedDays:   20,
		TotalCarryoverDays: 5,
		TotalConsumedDays:  7.5,
	}
	assert.Equal(t, 17.5, b.RemainingDays())
}
