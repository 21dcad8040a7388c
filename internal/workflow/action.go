package workflow

// Action is the workflow meaning recorded on a task. The numeric values are
// the wire ids existing clients already store, which is why SYSTEM_CANCELLED
// keeps its legacy id 9.
type Action int

const (
	ActionDraft           Action = 0
	ActionPending         Action = 1
	ActionApproved        Action = 2
	ActionComplete        Action = 3
	ActionRejected        Action = 4
	ActionCancelled       Action = 5
	ActionSystemCancelled Action = 9
)

var actionNames = map[Action]string{
	ActionDraft:           "DRAFT",
	ActionPending:         "PENDING",
	ActionApproved:        "APPROVED",
	ActionComplete:        "COMPLETE",
	ActionRejected:        "REJECTED",
	ActionCancelled:       "CANCELLED",
	ActionSystemCancelled: "SYSTEM_CANCELLED",
}

var actionLabels = map[Action]string{
	ActionDraft:           "下書き",
	ActionPending:         "承認待ち",
	ActionApproved:        "承認",
	ActionComplete:        "完了",
	ActionRejected:        "却下",
	ActionCancelled:       "取消",
	ActionSystemCancelled: "システム取消",
}

func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "UNKNOWN"
}

// Label returns the user-facing display string.
func (a Action) Label() string {
	return actionLabels[a]
}
