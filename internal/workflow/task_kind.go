package workflow

// TaskKind distinguishes the applicant's own record from an approver's
// decision record.
type TaskKind int

const (
	KindApplication TaskKind = 0
	KindApproval    TaskKind = 1
)

var taskKindNames = map[TaskKind]string{
	KindApplication: "APPLICATION",
	KindApproval:    "APPROVAL",
}

var taskKindLabels = map[TaskKind]string{
	KindApplication: "申請タスク",
	KindApproval:    "承認タスク",
}

func (k TaskKind) Valid() bool {
	_, ok := taskKindNames[k]
	return ok
}

func (k TaskKind) String() string {
	if v, ok := taskKindNames[k]; ok {
		return v
	}
	return "UNKNOWN"
}

func (k TaskKind) Label() string {
	return taskKindLabels[k]
}
