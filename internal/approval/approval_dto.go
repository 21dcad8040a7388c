package approval

type DecideRequest struct {
	ApplicationID int64  `json:"applicationId" binding:"required"`
	TaskID        int64  `json:"taskId" binding:"required"`
	Action        int    `json:"action"`
	Comment       string `json:"comment"`
}

// ApprovalTaskItem is one row of an approver's task list: the task joined to
// the application it decides on.
type ApprovalTaskItem struct {
	ID                  int64  `json:"id"`
	ApplicationID       int64  `json:"applicationId"`
	Type                int    `json:"type"`
	SType               string `json:"sType"`
	Classification      int    `json:"classification"`
	SClassification     string `json:"sClassification"`
	SApplicationDate    string `json:"sApplicationDate"`
	SStartDate          string `json:"sStartDate"`
	SStartTime          string `json:"sStartTime"`
	SEndDate            string `json:"sEndDate"`
	SEndTime            string `json:"sEndTime"`
	Action              int    `json:"action"`
	SAction             string `json:"sAction"`
	Comment             string `json:"comment"`
	ApplicationUserName string `json:"applicationUserName"`
}

// ListTasksQuery filters an approver's task list.
type ListTasksQuery struct {
	Action          *int
	ApplicantUserID *int64
	Page            int
	Limit           int
}
