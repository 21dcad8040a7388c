package approvalgroup

type SaveApprovalGroupRequest struct {
	ID        *int64  `json:"id"`
	GroupName string  `json:"groupName" binding:"required,max=50"`
	Approvers []int64 `json:"approvers" binding:"max=5"`
}

type ApproverResponse struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

type ApprovalGroupResponse struct {
	GroupID   int64              `json:"groupId"`
	GroupName string             `json:"groupName"`
	Approvers []ApproverResponse `json:"approvers"`
}
