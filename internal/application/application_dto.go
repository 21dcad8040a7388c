package application

// SubmitApplicationRequest covers both the first submission and an edit of
// an existing request (ID set). Dates arrive the way the clients send them:
// a day string plus start/end clock times.
type SubmitApplicationRequest struct {
	ID              *int64 `json:"id"`
	Type            int    `json:"type"`
	Classification  int    `json:"classification"`
	StartEndDate    string `json:"startEndDate" binding:"required"`
	StartTime       string `json:"startTime" binding:"required"`
	EndTime         string `json:"endTime" binding:"required"`
	TotalTime       int    `json:"totalTime" binding:"required,min=1"`
	Comment         string `json:"comment"`
	Action          int    `json:"action"`
	ApprovalGroupID int64  `json:"approvalGroupId"`
}

type SubmitApplicationResponse struct {
	ID int64 `json:"id"`
}

type CancelApplicationRequest struct {
	ApplicationID int64  `json:"applicationId" binding:"required"`
	Comment       string `json:"comment"`
}

// TaskResponse is one timeline entry of an application's detail view.
type TaskResponse struct {
	ID            int64   `json:"id"`
	Type          int     `json:"type"`
	Action        int     `json:"action"`
	SAction       string  `json:"sAction"`
	Status        int     `json:"status"`
	SStatus       string  `json:"sStatus"`
	Comment       string  `json:"comment"`
	UserName      *string `json:"userName"`
	OperationDate *string `json:"operationDate"`
}

type ApplicationDetailResponse struct {
	ID                  int64          `json:"id"`
	ApplicationUserID   int64          `json:"applicationUserId"`
	ApplicationUserName string         `json:"applicationUserName"`
	Type                int            `json:"type"`
	SType               string         `json:"sType"`
	Classification      int            `json:"classification"`
	SClassification     string         `json:"sClassification"`
	SApplicationDate    string         `json:"sApplicationDate"`
	SStartDate          string         `json:"sStartDate"`
	SStartTime          string         `json:"sStartTime"`
	SEndDate            string         `json:"sEndDate"`
	SEndTime            string         `json:"sEndTime"`
	TotalTime           int            `json:"totalTime"`
	ApprovalGroupID     int64          `json:"approvalGroupId"`
	Action              *int           `json:"action"`
	SAction             *string        `json:"sAction"`
	Comment             string         `json:"comment"`
	ApprovalTasks       []TaskResponse `json:"approvalTasks"`
}

type ApplicationListItem struct {
	ID                int64  `json:"id"`
	ApplicationUserID int64  `json:"applicationUserId"`
	Type              int    `json:"type"`
	SType             string `json:"sType"`
	Classification    int    `json:"classification"`
	SClassification   string `json:"sClassification"`
	SApplicationDate  string `json:"sApplicationDate"`
	SStartDate        string `json:"sStartDate"`
	SStartTime        string `json:"sStartTime"`
	SEndDate          string `json:"sEndDate"`
	SEndTime          string `json:"sEndTime"`
	Action            int    `json:"action"`
	SAction           string `json:"sAction"`
	ApprovalGroupID   int64  `json:"approvalGroupId"`
	Comment           string `json:"comment"`
}

// ListApplicationsQuery carries the list filters. UserID is honored for
// admins only; everyone else sees their own applications.
type ListApplicationsQuery struct {
	UserID     *int64
	Action     *int
	Year       *int
	AdminView  bool
	Page       int
	Limit      int
}

type MonthlyApplicationItem struct {
	ID                int64  `json:"id"`
	ApplicationUserID int64  `json:"applicationUserId"`
	SType             string `json:"sType"`
	SClassification   string `json:"sClassification"`
	SStartDate        string `json:"sStartDate"`
	SStartTime        string `json:"sStartTime"`
	SEndDate          string `json:"sEndDate"`
	SEndTime          string `json:"sEndTime"`
	Action            int    `json:"action"`
	SAction           string `json:"sAction"`
}
