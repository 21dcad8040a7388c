package balance

type BalanceResponse struct {
	UserID                int64   `json:"user_id"`
	WorkingDays           float64 `json:"working_days"`
	TotalGrantedDays      float64 `json:"total_granted_days"`
	TotalConsumedDays     float64 `json:"total_consumed_days"`
	TotalCarryoverDays    float64 `json:"total_carryover_days"`
	AutoCalcRemainingDays float64 `json:"auto_calc_remaining_days"`
	RemainingDays         float64 `json:"remaining_days"`
}
