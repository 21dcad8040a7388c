package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	approvalerrors "github.com/k-obata-3/leave-connect-api/internal/approval/errors"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"
	"github.com/k-obata-3/leave-connect-api/internal/events"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/shared/contextutil"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"
	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dayLayout   = "2006/01/02"
	clockLayout = "15:04"
)

// UserDirectory supplies applicant display names for the task list.
type UserDirectory interface {
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	// Decide records one approver's approve or reject. The final approval
	// runs the completion protocol, debiting the applicant's balance inside
	// the same transaction that closes the round.
	Decide(ctx context.Context, id identity.Identity, req DecideRequest) error
	ListTasks(ctx context.Context, id identity.Identity, q ListTasksQuery) ([]ApprovalTaskItem, int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	balances balance.Repository
	users    UserDirectory
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, balances balance.Repository, users UserDirectory, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		users:    users,
		outbox:   outbox,
		logger:   l,
	}
}

func (s *service) Decide(ctx context.Context, id identity.Identity, req DecideRequest) error {
	s.logger.Debug("decision requested",
		zap.Int64("application_id", req.ApplicationID),
		zap.Int64("task_id", req.TaskID),
		zap.Int64("user_id", id.UserID),
		zap.Int("action", req.Action),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decision begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app, err := qtx.FindApplication(ctx, req.ApplicationID, id.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approvalerrors.ErrApprovalTaskNotFound
		}
		s.logger.Error("decision application load failed", zap.Int64("application_id", req.ApplicationID), zap.Error(err))
		return err
	}

	active, err := qtx.FindActiveTasksForUpdate(ctx, app.ID)
	if err != nil {
		s.logger.Error("decision task load failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	// The task must be the caller's own approval task of this round.
	mine := false
	for _, t := range active {
		if t.ID == req.TaskID && t.Type == workflow.KindApproval && t.OperationUserID == id.UserID {
			mine = true
			break
		}
	}
	if !mine {
		return workflowerrors.ErrTaskNotFound
	}

	plan, err := workflow.PlanDecision(application.Snapshots(active), workflow.DecisionInput{
		TaskID:  req.TaskID,
		Action:  workflow.Action(req.Action),
		Comment: req.Comment,
		Now:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("decision rejected",
			zap.Int64("application_id", app.ID),
			zap.Int64("task_id", req.TaskID),
			zap.Error(err),
		)
		return err
	}

	if plan.Completed {
		qb := s.balances.WithTx(tx)
		b, err := qb.FindByUserIDForUpdate(ctx, app.ApplicationUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return balanceerrors.ErrBalanceNotFound
			}
			s.logger.Error("completion balance load failed", zap.Int64("user_id", app.ApplicationUserID), zap.Error(err))
			return err
		}
		if err := b.Debit(balance.ConsumedDays(app.TotalTime)); err != nil {
			s.logger.Warn("completion exceeds balance",
				zap.Int64("application_id", app.ID),
				zap.Int64("user_id", app.ApplicationUserID),
			)
			return err
		}
		if err := qb.Update(ctx, b); err != nil {
			s.logger.Error("completion balance update failed", zap.Int64("user_id", app.ApplicationUserID), zap.Error(err))
			return err
		}
	}

	for _, ch := range plan.Changes {
		row := application.FromSnapshot(ch.Task)
		switch ch.Op {
		case workflow.OpCreate:
			err = qtx.CreateTask(ctx, &row)
		case workflow.OpUpdate:
			err = qtx.UpdateTask(ctx, &row)
		}
		if err != nil {
			s.logger.Error("decision task write failed", zap.Int64("application_id", app.ID), zap.Error(err))
			return err
		}
	}

	if err := s.enqueueEvent(ctx, tx, id, app, plan, req.TaskID); err != nil {
		s.logger.Error("decision outbox persist failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decision commit failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	s.logger.Info("decision recorded",
		zap.Int64("application_id", app.ID),
		zap.Int64("task_id", req.TaskID),
		zap.Int64("user_id", id.UserID),
		zap.Bool("completed", plan.Completed),
	)
	return nil
}

func (s *service) ListTasks(ctx context.Context, id identity.Identity, q ListTasksQuery) ([]ApprovalTaskItem, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	rows, total, err := s.repo.ListApproverTasks(ctx, id.CompanyID, id.UserID, q)
	if err != nil {
		s.logger.Error("task list failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return nil, 0, err
	}

	applicantIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		if row.Application != nil {
			applicantIDs = append(applicantIDs, row.Application.ApplicationUserID)
		}
	}
	names := map[int64]string{}
	if len(applicantIDs) > 0 {
		names, err = s.users.FindNamesByIDs(ctx, applicantIDs)
		if err != nil {
			s.logger.Error("task list name load failed", zap.Error(err))
			return nil, 0, err
		}
	}

	items := make([]ApprovalTaskItem, 0, len(rows))
	for _, row := range rows {
		if row.Application == nil {
			continue
		}
		app := row.Application
		items = append(items, ApprovalTaskItem{
			ID:                  row.ID,
			ApplicationID:       app.ID,
			Type:                int(app.Type),
			SType:               app.Type.Label(),
			Classification:      int(app.Classification),
			SClassification:     app.Classification.Label(),
			SApplicationDate:    app.ApplicationDate.Format(dayLayout),
			SStartDate:          app.StartDate.Format(dayLayout),
			SStartTime:          app.StartDate.Format(clockLayout),
			SEndDate:            app.EndDate.Format(dayLayout),
			SEndTime:            app.EndDate.Format(clockLayout),
			Action:              int(row.Action),
			SAction:             row.Action.Label(),
			Comment:             row.Comment,
			ApplicationUserName: names[app.ApplicationUserID],
		})
	}
	return items, total, nil
}

// enqueueEvent records which approvers' queues this decision changed: the
// decider always, plus every pending sibling a reject withdrew.
func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, id identity.Identity, app *application.Application, plan workflow.DecisionPlan, taskID int64) error {
	if s.outbox == nil {
		return nil
	}

	eventType := events.EventApplicationApproved
	approverIDs := []int64{id.UserID}
	switch {
	case plan.Completed:
		eventType = events.EventApplicationCompleted
	case decisionWasReject(plan, taskID):
		eventType = events.EventApplicationRejected
		for _, ch := range plan.Changes {
			if ch.Task.Kind == workflow.KindApproval && ch.Task.Action == workflow.ActionSystemCancelled {
				approverIDs = append(approverIDs, ch.Task.OperatorID)
			}
		}
	}

	payload, err := json.Marshal(events.ApplicationWorkflowEvent{
		EventType:     eventType,
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicationUserID,
		CompanyID:     id.CompanyID,
		ApproverIDs:   approverIDs,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "application",
		AggregateID:   strconv.FormatInt(app.ID, 10),
		EventType:     eventType,
		Topic:         events.ApplicationWorkflowTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func decisionWasReject(plan workflow.DecisionPlan, taskID int64) bool {
	for _, ch := range plan.Changes {
		if ch.Task.ID == taskID {
			return ch.Task.Action == workflow.ActionRejected
		}
	}
	return false
}
