package events

import "time"

const ApplicationWorkflowTopic = "leave.application.workflow.v1"

const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationApproved  = "application.approved"
	EventApplicationCompleted = "application.completed"
	EventApplicationRejected  = "application.rejected"
	EventApplicationCancelled = "application.cancelled"
	EventApplicationDeleted   = "application.deleted"
)

// ApplicationWorkflowEvent is emitted whenever a workflow mutation changes
// which approvers have an actionable task. ApproverIDs lists the approvers
// whose queue changed: submissions add a pending task for each of them, the
// other events remove one.
type ApplicationWorkflowEvent struct {
	EventType     string    `json:"event_type"`
	ApplicationID int64     `json:"application_id"`
	ApplicantID   int64     `json:"applicant_id"`
	CompanyID     int64     `json:"company_id"`
	ApproverIDs   []int64   `json:"approver_ids"`
	OccurredAt    time.Time `json:"occurred_at"`
}
