package workflow

import (
	"time"

	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"
)

// SubmitInput describes one submit or edit of an application by its owner.
type SubmitInput struct {
	ApplicationID int64
	ApplicantID   int64
	// Action is DRAFT for saving without routing, PENDING for submitting to
	// the approval group.
	Action      Action
	Comment     string
	ApproverIDs []int64
	Now         time.Time
}

// PlanSubmit computes the task diffs for a submit or edit. current must hold
// every task of the application that is not NON_ACTIVE.
//
// The live application task is updated in place unless it carries a REJECTED
// action; in that case it is retired to HISTORY together with the previous
// round's approval tasks and a fresh round is fanned out.
func PlanSubmit(current []Task, in SubmitInput) []Change {
	var changes []Change

	var live *Task
	for i := range current {
		t := current[i]
		if t.Kind == KindApplication && t.OperatorID == in.ApplicantID &&
			t.Status == StatusActive && t.Action != ActionRejected {
			live = &current[i]
			break
		}
	}

	if live != nil {
		updated := *live
		updated.Action = in.Action
		updated.Comment = in.Comment
		updated.OperationDate = in.Now
		changes = append(changes, Change{Op: OpUpdate, Task: updated})
	} else {
		changes = append(changes, Change{Op: OpCreate, Task: Task{
			ApplicationID: in.ApplicationID,
			OperatorID:    in.ApplicantID,
			Kind:          KindApplication,
			Action:        in.Action,
			Status:        StatusActive,
			Comment:       in.Comment,
			OperationDate: in.Now,
		}})
	}

	if in.Action != ActionPending {
		return changes
	}

	// Retire the rejected application task from the previous round.
	for i := range current {
		t := current[i]
		if t.Kind == KindApplication && t.Status == StatusActive && t.Action == ActionRejected {
			retired := t
			retired.Status = StatusHistory
			changes = append(changes, Change{Op: OpUpdate, Task: retired})
		}
	}

	// Retire the previous round's approval tasks.
	for i := range current {
		t := current[i]
		if t.Kind == KindApproval && t.Status == StatusActive {
			retired := t
			retired.Status = StatusHistory
			changes = append(changes, Change{Op: OpUpdate, Task: retired})
		}
	}

	// Fan out one approval task per approver. A submitter listed in their own
	// group does not approve their own request.
	for _, approverID := range in.ApproverIDs {
		if approverID == in.ApplicantID {
			continue
		}
		changes = append(changes, Change{Op: OpCreate, Task: Task{
			ApplicationID: in.ApplicationID,
			OperatorID:    approverID,
			Kind:          KindApproval,
			Action:        ActionPending,
			Status:        StatusActive,
			OperationDate: in.Now,
		}})
	}

	return changes
}

// DecisionInput describes one approver's approve or reject on a task.
type DecisionInput struct {
	TaskID  int64
	Action  Action
	Comment string
	Now     time.Time
}

// DecisionPlan is the outcome of an approval decision. Completed is set when
// the decision was the final approval, in which case the caller must run the
// completion protocol (balance debit) in the same transaction.
type DecisionPlan struct {
	Changes   []Change
	Completed bool
}

// PlanDecision computes the task diffs for an approve or reject. active must
// hold every ACTIVE task of the application; once a round is closed the
// decision task is no longer in that set and the retried call fails with a
// not-found error instead of debiting the balance twice.
func PlanDecision(active []Task, in DecisionInput) (DecisionPlan, error) {
	if in.Action != ActionApproved && in.Action != ActionRejected {
		return DecisionPlan{}, workflowerrors.ErrInvalidDecisionAction
	}

	var appTask, decisionTask *Task
	var siblings []Task
	for i := range active {
		t := active[i]
		switch {
		case t.Kind == KindApplication:
			appTask = &active[i]
		case t.ID == in.TaskID:
			decisionTask = &active[i]
		default:
			siblings = append(siblings, t)
		}
	}
	if appTask == nil || decisionTask == nil {
		return DecisionPlan{}, workflowerrors.ErrTaskNotFound
	}
	// A partially approved round keeps decided tasks active until every peer
	// has answered; those tasks cannot be decided again.
	if decisionTask.Action != ActionPending {
		return DecisionPlan{}, workflowerrors.ErrTaskNotActionable
	}

	plan := DecisionPlan{}
	decided := *decisionTask
	decided.Action = in.Action
	decided.Comment = in.Comment
	decided.OperationDate = in.Now

	if in.Action == ActionApproved {
		allApproved := true
		for _, s := range siblings {
			if s.Action != ActionApproved {
				allApproved = false
				break
			}
		}
		if !allApproved {
			// Partial approval: the task stays visible until every peer has
			// also approved.
			plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: decided})
			return plan, nil
		}

		plan.Completed = true
		completed := *appTask
		completed.Action = ActionComplete
		completed.Status = StatusClosed
		plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: completed})

		decided.Status = StatusClosed
		plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: decided})

		for _, s := range siblings {
			closed := s
			closed.Status = StatusClosed
			plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: closed})
		}
		return plan, nil
	}

	// Reject: the application task goes back to the applicant and every
	// still-pending peer approval is withdrawn.
	plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: decided})

	rejected := *appTask
	rejected.Action = ActionRejected
	plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: rejected})

	for _, s := range siblings {
		if s.Action == ActionPending {
			withdrawn := s
			withdrawn.Action = ActionSystemCancelled
			withdrawn.Status = StatusNonActive
			plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: withdrawn})
		}
	}
	return plan, nil
}

// CancelInput describes a cancellation by the applicant (or an admin acting
// for them).
type CancelInput struct {
	ApplicationID int64
	CancellerID   int64
	Comment       string
	Now           time.Time
}

// CancelPlan is the outcome of a cancellation. ReverseBalance is set when the
// application had already completed, in which case the prior debit must be
// credited back in the same transaction before the tasks are written.
type CancelPlan struct {
	Changes        []Change
	ReverseBalance bool
}

// PlanCancel computes the task diffs for a cancellation. tasks must hold the
// application's ACTIVE and CLOSED tasks. The application task's current
// action is the idempotency guard: a second cancel fails instead of crediting
// the balance twice.
func PlanCancel(tasks []Task, in CancelInput) (CancelPlan, error) {
	var appTask *Task
	for i := range tasks {
		if tasks[i].Kind == KindApplication &&
			(tasks[i].Status == StatusActive || tasks[i].Status == StatusClosed) {
			appTask = &tasks[i]
			break
		}
	}
	if appTask == nil {
		return CancelPlan{}, workflowerrors.ErrTaskNotFound
	}
	if appTask.Action == ActionCancelled {
		return CancelPlan{}, workflowerrors.ErrAlreadyCancelled
	}

	plan := CancelPlan{ReverseBalance: appTask.Action == ActionComplete}

	cancelled := *appTask
	cancelled.Action = ActionCancelled
	cancelled.Status = StatusClosed
	plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: cancelled})

	for _, t := range tasks {
		if t.ID == appTask.ID || t.Status != StatusActive {
			continue
		}
		changed := t
		if t.Action == ActionPending {
			changed.Action = ActionSystemCancelled
			changed.Status = StatusNonActive
		} else {
			changed.Status = StatusClosed
		}
		plan.Changes = append(plan.Changes, Change{Op: OpUpdate, Task: changed})
	}

	// Audit record of who cancelled and why.
	plan.Changes = append(plan.Changes, Change{Op: OpCreate, Task: Task{
		ApplicationID: in.ApplicationID,
		OperatorID:    in.CancellerID,
		Kind:          KindApproval,
		Action:        ActionCancelled,
		Status:        StatusClosed,
		Comment:       in.Comment,
		OperationDate: in.Now,
	}})

	return plan, nil
}
