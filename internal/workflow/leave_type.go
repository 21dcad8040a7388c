package workflow

// LeaveType is the category of the leave request.
type LeaveType int

const (
	LeavePaid   LeaveType = 0
	LeaveUnpaid LeaveType = 1
)

var leaveTypeNames = map[LeaveType]string{
	LeavePaid:   "PAID",
	LeaveUnpaid: "UNPAID",
}

var leaveTypeLabels = map[LeaveType]string{
	LeavePaid:   "年次有給休暇申請",
	LeaveUnpaid: "休暇申請",
}

func (t LeaveType) Valid() bool {
	_, ok := leaveTypeNames[t]
	return ok
}

func (t LeaveType) String() string {
	if v, ok := leaveTypeNames[t]; ok {
		return v
	}
	return "UNKNOWN"
}

func (t LeaveType) Label() string {
	return leaveTypeLabels[t]
}
