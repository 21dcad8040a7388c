package workflow

import "time"

// Task is a persistence-free snapshot of one workflow task. The planner
// functions in this package operate on these snapshots only; translating the
// resulting changes into row writes is the service layer's concern.
type Task struct {
	ID            int64
	ApplicationID int64
	OperatorID    int64
	Kind          TaskKind
	Action        Action
	Status        TaskStatus
	Comment       string
	OperationDate time.Time
}

// ChangeOp tells the adapter whether a change is a new row or an update to
// an existing one.
type ChangeOp int

const (
	OpCreate ChangeOp = iota
	OpUpdate
)

// Change is one task diff produced by a planner.
type Change struct {
	Op   ChangeOp
	Task Task
}

// CanDelete reports whether the application may be physically deleted: only
// while no approval task has ever reached APPROVED or COMPLETE.
func CanDelete(tasks []Task) bool {
	for _, t := range tasks {
		if t.Action == ActionApproved || t.Action == ActionComplete {
			return false
		}
	}
	return true
}
