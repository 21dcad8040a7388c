package workflow_test

import (
	"testing"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/workflow"
	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 10, hour, min, 0, 0, time.UTC)
}

func TestValidateClassification(t *testing.T) {
	t.Run("start must be before end", func(t *testing.T) {
		err := workflow.ValidateClassification(workflow.ClassificationTimeRange, at(10, 0), at(10, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTimeOrder)

		err = workflow.ValidateClassification(workflow.ClassificationTimeRange, at(11, 0), at(10, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidTimeOrder)
	})

	t.Run("rounded-up duration over nine hours always fails", func(t *testing.T) {
		for _, c := range []workflow.Classification{
			workflow.ClassificationAllDay,
			workflow.ClassificationHalfDayAM,
			workflow.ClassificationHalfDayPM,
			workflow.ClassificationTimeRange,
		} {
			err := workflow.ValidateClassification(c, at(8, 0), at(17, 30))
			assert.ErrorIs(t, err, workflowerrors.ErrExceedsWorkday, c.String())

			err = workflow.ValidateClassification(c, at(8, 0), at(19, 0))
			assert.ErrorIs(t, err, workflowerrors.ErrExceedsWorkday, c.String())
		}
	})

	t.Run("exactly nine hours validates only as all day", func(t *testing.T) {
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationAllDay, at(9, 0), at(18, 0)))

		for _, c := range []workflow.Classification{
			workflow.ClassificationHalfDayAM,
			workflow.ClassificationHalfDayPM,
			workflow.ClassificationTimeRange,
		} {
			err := workflow.ValidateClassification(c, at(9, 0), at(18, 0))
			assert.ErrorIs(t, err, workflowerrors.ErrAllDayShapeDeclaredOther, c.String())
		}
	})

	t.Run("all day declared without nine hours fails", func(t *testing.T) {
		err := workflow.ValidateClassification(workflow.ClassificationAllDay, at(9, 0), at(13, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrAllDayConditionNotMet)
	})

	t.Run("half day am", func(t *testing.T) {
		// 4h starting before noon.
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationHalfDayAM, at(9, 0), at(13, 0)))
		// 5h window is also allowed for the AM half.
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationHalfDayAM, at(8, 0), at(13, 0)))

		err := workflow.ValidateClassification(workflow.ClassificationHalfDayAM, at(9, 0), at(15, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrHalfDayAMConditionNotMet)

		// Starting at/after noon can never be an AM half day.
		err = workflow.ValidateClassification(workflow.ClassificationHalfDayAM, at(13, 0), at(17, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrHalfDayAMConditionNotMet)
	})

	t.Run("half day pm", func(t *testing.T) {
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationHalfDayPM, at(13, 0), at(17, 0)))

		err := workflow.ValidateClassification(workflow.ClassificationHalfDayPM, at(9, 0), at(13, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrHalfDayPMConditionNotMet)

		err = workflow.ValidateClassification(workflow.ClassificationHalfDayPM, at(13, 0), at(18, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrHalfDayPMConditionNotMet)
	})

	t.Run("time range only needs the ceiling", func(t *testing.T) {
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationTimeRange, at(10, 0), at(12, 0)))
		assert.NoError(t, workflow.ValidateClassification(workflow.ClassificationTimeRange, at(15, 0), at(15, 30)))
	})

	t.Run("unknown classification", func(t *testing.T) {
		err := workflow.ValidateClassification(workflow.Classification(99), at(10, 0), at(12, 0))
		assert.ErrorIs(t, err, workflowerrors.ErrInvalidClassification)
	})
}
