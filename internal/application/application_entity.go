package application

import (
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/workflow"
)

// Application is one leave request row. Its workflow state lives entirely in
// the attached tasks; the row itself only carries what was requested.
type Application struct {
	ID                int64                   `gorm:"primaryKey;autoIncrement"`
	ApplicationUserID int64                   `gorm:"column:application_user_id;not null;index:idx_applications_user"`
	Type              workflow.LeaveType      `gorm:"column:type;not null"`
	Classification    workflow.Classification `gorm:"column:classification;not null"`
	ApplicationDate   time.Time               `gorm:"column:application_date;not null"`
	StartDate         time.Time               `gorm:"column:start_date;not null;index:idx_applications_start"`
	EndDate           time.Time               `gorm:"column:end_date;not null"`
	TotalTime         int                     `gorm:"column:total_time;not null"`
	ApprovalGroupID   int64                   `gorm:"column:approval_group_id;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"foreignKey:ApplicationID"`
}

func (Application) TableName() string {
	return "applications"
}

// Task is the persisted form of one workflow task.
type Task struct {
	ID              int64               `gorm:"primaryKey;autoIncrement"`
	ApplicationID   int64               `gorm:"column:application_id;not null;index:idx_tasks_application"`
	OperationUserID int64               `gorm:"column:operation_user_id;not null;index:idx_tasks_operator"`
	Type            workflow.TaskKind   `gorm:"column:type;not null"`
	Action          workflow.Action     `gorm:"column:action;not null"`
	Status          workflow.TaskStatus `gorm:"column:status;not null"`
	Comment         string              `gorm:"column:comment"`
	OperationDate   time.Time           `gorm:"column:operation_date;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Application *Application `gorm:"foreignKey:ApplicationID"`
}

func (Task) TableName() string {
	return "tasks"
}

// Snapshot converts the row into the persistence-free form the workflow
// planners operate on.
func (t Task) Snapshot() workflow.Task {
	return workflow.Task{
		ID:            t.ID,
		ApplicationID: t.ApplicationID,
		OperatorID:    t.OperationUserID,
		Kind:          t.Type,
		Action:        t.Action,
		Status:        t.Status,
		Comment:       t.Comment,
		OperationDate: t.OperationDate,
	}
}

// Snapshots converts a loaded task set for the planners.
func Snapshots(tasks []Task) []workflow.Task {
	out := make([]workflow.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Snapshot()
	}
	return out
}

// FromSnapshot builds the row form of a planner-produced task.
func FromSnapshot(t workflow.Task) Task {
	return Task{
		ID:              t.ID,
		ApplicationID:   t.ApplicationID,
		OperationUserID: t.OperatorID,
		Type:            t.Kind,
		Action:          t.Action,
		Status:          t.Status,
		Comment:         t.Comment,
		OperationDate:   t.OperationDate,
	}
}
