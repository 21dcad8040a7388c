package balance

import (
	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"
)

// ConsumedDays converts an application's declared time units into the
// fractional-day amount the ledger moves. This is the single conversion used
// by both the completion debit and the cancellation credit; an 8-unit day is
// one full day, a 4-unit half day is 0.5, anything else counts as eighths.
func ConsumedDays(totalTime int) float64 {
	switch totalTime {
	case 8:
		return 1.0
	case 4:
		return 0.5
	default:
		return 0.125 * float64(totalTime)
	}
}

// RemainingDays is the derived balance; it is never stored.
func (b *LeaveBalance) RemainingDays() float64 {
	return b.TotalGrantedDays + b.TotalCarryoverDays - b.TotalConsumedDays
}

// Debit applies the completion protocol. It fails without mutating when the
// auto-calculated remainder cannot cover the amount; the caller rolls the
// whole transaction back.
func (b *LeaveBalance) Debit(days float64) error {
	if b.AutoCalcRemainingDays < days {
		return balanceerrors.ErrBalanceExceeded
	}
	b.AutoCalcRemainingDays -= days
	b.TotalConsumedDays += days
	return nil
}

// Credit reverses a prior Debit of the same amount.
func (b *LeaveBalance) Credit(days float64) {
	b.AutoCalcRemainingDays += days
	b.TotalConsumedDays -= days
}
