package balance

import "time"

// LeaveBalance is one user's leave-day accounting record. All figures are in
// fractional days; hour-level grants enter as eighths of a day.
type LeaveBalance struct {
	ID     int64 `gorm:"primaryKey;autoIncrement"`
	UserID int64 `gorm:"column:user_id;not null;uniqueIndex:idx_leave_balances_user"`

	WorkingDays           float64 `gorm:"column:working_days;not null;default:0"`
	TotalGrantedDays      float64 `gorm:"column:total_granted_days;not null;default:0"`
	TotalConsumedDays     float64 `gorm:"column:total_consumed_days;not null;default:0"`
	TotalCarryoverDays    float64 `gorm:"column:total_carryover_days;not null;default:0"`
	AutoCalcRemainingDays float64 `gorm:"column:auto_calc_remaining_days;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}
