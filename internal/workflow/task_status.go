package workflow

// TaskStatus is the per-round lifecycle state of a task. CLOSED and HISTORY
// are terminal for the round; NON_ACTIVE is terminal for the task itself and
// is never shown as actionable.
type TaskStatus int

const (
	StatusNonActive TaskStatus = 0
	StatusActive    TaskStatus = 1
	StatusHistory   TaskStatus = 2
	StatusClosed    TaskStatus = 3
)

var taskStatusNames = map[TaskStatus]string{
	StatusNonActive: "NON_ACTIVE",
	StatusActive:    "ACTIVE",
	StatusHistory:   "HISTORY",
	StatusClosed:    "CLOSED",
}

var taskStatusLabels = map[TaskStatus]string{
	StatusNonActive: "無効",
	StatusActive:    "進行中",
	StatusHistory:   "履歴",
	StatusClosed:    "処理済",
}

func (s TaskStatus) Valid() bool {
	_, ok := taskStatusNames[s]
	return ok
}

func (s TaskStatus) String() string {
	if v, ok := taskStatusNames[s]; ok {
		return v
	}
	return "UNKNOWN"
}

func (s TaskStatus) Label() string {
	return taskStatusLabels[s]
}

// Terminal reports whether no transition may leave this status within the
// current round.
func (s TaskStatus) Terminal() bool {
	return s == StatusClosed || s == StatusHistory || s == StatusNonActive
}
