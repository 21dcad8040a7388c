package workflow

import (
	"time"

	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"
)

// workdayHours is the nominal workday including the lunch break. A request
// whose duration rounds up past this can never be taken within one day.
const workdayHours = 9

// ValidateClassification checks the declared classification against the
// requested start/end pair. Every rule failure maps to its own user-facing
// message, and the caller must reject the whole submission on any of them.
func ValidateClassification(c Classification, start, end time.Time) error {
	if !c.Valid() {
		return workflowerrors.ErrInvalidClassification
	}
	if !start.Before(end) {
		return workflowerrors.ErrInvalidTimeOrder
	}

	hours := roundedUpHours(start, end)
	if hours > workdayHours {
		return workflowerrors.ErrExceedsWorkday
	}

	isAllDay := hours == workdayHours
	isHalfDayAM := start.Hour() < 12 &&
		(start.Hour()+4 == end.Hour() || start.Hour()+5 == end.Hour())
	isHalfDayPM := start.Hour() >= 12 && end.Hour()-4 == start.Hour()

	switch {
	case c != ClassificationAllDay && isAllDay:
		return workflowerrors.ErrAllDayShapeDeclaredOther
	case c == ClassificationAllDay && !isAllDay:
		return workflowerrors.ErrAllDayConditionNotMet
	case c == ClassificationHalfDayAM && !isHalfDayAM:
		return workflowerrors.ErrHalfDayAMConditionNotMet
	case c == ClassificationHalfDayPM && !isHalfDayPM:
		return workflowerrors.ErrHalfDayPMConditionNotMet
	}
	return nil
}

func roundedUpHours(start, end time.Time) int {
	d := end.Sub(start)
	hours := int(d / time.Hour)
	if d%time.Hour != 0 {
		hours++
	}
	return hours
}
