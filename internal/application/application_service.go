package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	"github.com/k-obata-3/leave-connect-api/internal/events"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/shared/contextutil"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dayLayout      = "2006/01/02"
	clockLayout    = "15:04"
	dateTimeLayout = "2006/01/02 15:04"
)

// GroupResolver resolves an approval group into its ordered approver ids.
type GroupResolver interface {
	Resolve(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error)
}

// UserDirectory supplies display names for the task timeline.
type UserDirectory interface {
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

//go:generate mockgen -source=application_service.go -destination=mock/application_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, id identity.Identity, req SubmitApplicationRequest) (SubmitApplicationResponse, error)
	Cancel(ctx context.Context, id identity.Identity, req CancelApplicationRequest) error
	Delete(ctx context.Context, id identity.Identity, applicationID int64) error
	GetDetail(ctx context.Context, id identity.Identity, applicationID int64) (ApplicationDetailResponse, error)
	List(ctx context.Context, id identity.Identity, q ListApplicationsQuery) ([]ApplicationListItem, int64, error)
	ListByMonth(ctx context.Context, id identity.Identity, start, end time.Time) ([]MonthlyApplicationItem, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	groups   GroupResolver
	balances balance.Repository
	users    UserDirectory
	outbox   kafka.OutboxRepository
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, groups GroupResolver, balances balance.Repository, users UserDirectory, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("application.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("application.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		groups:   groups,
		balances: balances,
		users:    users,
		outbox:   outbox,
		logger:   l,
	}
}

// Submit covers draft saves, first submissions and edits. The whole
// operation runs in one transaction: the application row, the task diffs and
// the outbox row either all land or none do.
func (s *service) Submit(ctx context.Context, id identity.Identity, req SubmitApplicationRequest) (SubmitApplicationResponse, error) {
	s.logger.Debug("submit requested",
		zap.Int64("user_id", id.UserID),
		zap.Int("action", req.Action),
		zap.String("date", req.StartEndDate),
	)

	action := workflow.Action(req.Action)
	if action != workflow.ActionDraft && action != workflow.ActionPending {
		return SubmitApplicationResponse{}, applicationerrors.ErrInvalidSubmitAction
	}

	leaveType := workflow.LeaveType(req.Type)
	if !leaveType.Valid() {
		return SubmitApplicationResponse{}, applicationerrors.ErrInvalidSubmitAction
	}

	start, err := parseDateTime(req.StartEndDate, req.StartTime)
	if err != nil {
		return SubmitApplicationResponse{}, applicationerrors.ErrInvalidDateTime
	}
	end, err := parseDateTime(req.StartEndDate, req.EndTime)
	if err != nil {
		return SubmitApplicationResponse{}, applicationerrors.ErrInvalidDateTime
	}

	classification := workflow.Classification(req.Classification)
	if err := workflow.ValidateClassification(classification, start, end); err != nil {
		s.logger.Warn("submit validation failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return SubmitApplicationResponse{}, err
	}

	var approverIDs []int64
	if action == workflow.ActionPending {
		approverIDs, err = s.groups.Resolve(ctx, id, req.ApprovalGroupID)
		if err != nil {
			s.logger.Warn("approval group resolution failed",
				zap.Int64("group_id", req.ApprovalGroupID), zap.Error(err))
			return SubmitApplicationResponse{}, err
		}
	}

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit begin tx failed", zap.Error(err))
		return SubmitApplicationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Same-day duplicate guard runs on the tx connection so a racing pair of
	// submissions at least serializes against the rows this tx touches.
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := time.Date(start.Year(), start.Month(), start.Day(), 23, 59, 59, 0, time.UTC)
	existing, err := qtx.FindSameDayApplication(ctx, id.UserID, classification, dayStart, dayEnd)
	if err == nil {
		if req.ID == nil || existing.ID != *req.ID {
			return SubmitApplicationResponse{}, applicationerrors.ErrDuplicateApplication
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("duplicate check failed", zap.Error(err))
		return SubmitApplicationResponse{}, err
	}

	var app *Application
	if req.ID != nil {
		app, err = qtx.FindByID(ctx, *req.ID, id.CompanyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return SubmitApplicationResponse{}, applicationerrors.ErrApplicationNotFound
			}
			s.logger.Error("submit load failed", zap.Int64("application_id", *req.ID), zap.Error(err))
			return SubmitApplicationResponse{}, err
		}
		if app.ApplicationUserID != id.UserID {
			// Reported as not-found: editing is owner-only.
			return SubmitApplicationResponse{}, applicationerrors.ErrApplicationNotFound
		}
		app.Type = leaveType
		app.Classification = classification
		app.StartDate = start
		app.EndDate = end
		app.TotalTime = req.TotalTime
		app.ApprovalGroupID = req.ApprovalGroupID
		if err := qtx.Update(ctx, app); err != nil {
			s.logger.Error("submit update failed", zap.Int64("application_id", app.ID), zap.Error(err))
			return SubmitApplicationResponse{}, err
		}
	} else {
		app = &Application{
			ApplicationUserID: id.UserID,
			Type:              leaveType,
			Classification:    classification,
			ApplicationDate:   now,
			StartDate:         start,
			EndDate:           end,
			TotalTime:         req.TotalTime,
			ApprovalGroupID:   req.ApprovalGroupID,
		}
		if err := qtx.Create(ctx, app); err != nil {
			s.logger.Error("submit create failed", zap.Error(err))
			return SubmitApplicationResponse{}, err
		}
	}

	current, err := qtx.FindTasksForUpdate(ctx, app.ID,
		[]workflow.TaskStatus{workflow.StatusActive, workflow.StatusHistory, workflow.StatusClosed})
	if err != nil {
		s.logger.Error("submit task load failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return SubmitApplicationResponse{}, err
	}

	changes := workflow.PlanSubmit(Snapshots(current), workflow.SubmitInput{
		ApplicationID: app.ID,
		ApplicantID:   id.UserID,
		Action:        action,
		Comment:       req.Comment,
		ApproverIDs:   approverIDs,
		Now:           now,
	})
	if err := s.applyChanges(ctx, qtx, changes); err != nil {
		s.logger.Error("submit task write failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return SubmitApplicationResponse{}, err
	}

	if action == workflow.ActionPending {
		fanned := fannedOutApprovers(changes)
		if err := s.enqueueEvent(ctx, tx, events.EventApplicationSubmitted, app, id.CompanyID, fanned); err != nil {
			s.logger.Error("submit outbox persist failed", zap.Int64("application_id", app.ID), zap.Error(err))
			return SubmitApplicationResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit commit failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return SubmitApplicationResponse{}, err
	}

	s.logger.Info("application submitted",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", id.UserID),
		zap.String("action", action.String()),
	)
	return SubmitApplicationResponse{ID: app.ID}, nil
}

// Cancel closes the round and, when the application had already completed,
// credits the prior debit back inside the same transaction. The application
// task's current action makes a retried cancel fail instead of crediting
// twice.
func (s *service) Cancel(ctx context.Context, id identity.Identity, req CancelApplicationRequest) error {
	s.logger.Debug("cancel requested",
		zap.Int64("application_id", req.ApplicationID),
		zap.Int64("user_id", id.UserID),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("cancel begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app, err := qtx.FindByID(ctx, req.ApplicationID, id.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return applicationerrors.ErrApplicationNotFound
		}
		s.logger.Error("cancel load failed", zap.Int64("application_id", req.ApplicationID), zap.Error(err))
		return err
	}
	if !id.IsAdmin && app.ApplicationUserID != id.UserID {
		return applicationerrors.ErrApplicationNotFound
	}

	tasks, err := qtx.FindTasksForUpdate(ctx, app.ID,
		[]workflow.TaskStatus{workflow.StatusActive, workflow.StatusClosed})
	if err != nil {
		s.logger.Error("cancel task load failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	plan, err := workflow.PlanCancel(Snapshots(tasks), workflow.CancelInput{
		ApplicationID: app.ID,
		CancellerID:   id.UserID,
		Comment:       req.Comment,
		Now:           time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("cancel rejected", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	if plan.ReverseBalance {
		qb := s.balances.WithTx(tx)
		b, err := qb.FindByUserIDForUpdate(ctx, app.ApplicationUserID)
		if err != nil {
			s.logger.Error("cancel balance load failed", zap.Int64("user_id", app.ApplicationUserID), zap.Error(err))
			return err
		}
		b.Credit(balance.ConsumedDays(app.TotalTime))
		if err := qb.Update(ctx, b); err != nil {
			s.logger.Error("cancel balance update failed", zap.Int64("user_id", app.ApplicationUserID), zap.Error(err))
			return err
		}
	}

	if err := s.applyChanges(ctx, qtx, plan.Changes); err != nil {
		s.logger.Error("cancel task write failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	withdrawn := withdrawnApprovers(plan.Changes)
	if err := s.enqueueEvent(ctx, tx, events.EventApplicationCancelled, app, id.CompanyID, withdrawn); err != nil {
		s.logger.Error("cancel outbox persist failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("cancel commit failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	s.logger.Info("application cancelled",
		zap.Int64("application_id", app.ID),
		zap.Int64("user_id", id.UserID),
		zap.Bool("balance_reversed", plan.ReverseBalance),
	)
	return nil
}

// Delete physically removes a request and its tasks. Permitted only to the
// owner and only while no approval has ever been granted.
func (s *service) Delete(ctx context.Context, id identity.Identity, applicationID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	app, err := qtx.FindByID(ctx, applicationID, id.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return applicationerrors.ErrApplicationNotFound
		}
		s.logger.Error("delete load failed", zap.Int64("application_id", applicationID), zap.Error(err))
		return err
	}
	if app.ApplicationUserID != id.UserID {
		return applicationerrors.ErrApplicationNotFound
	}

	tasks, err := qtx.FindTasksForUpdate(ctx, app.ID, []workflow.TaskStatus{
		workflow.StatusNonActive, workflow.StatusActive, workflow.StatusHistory, workflow.StatusClosed,
	})
	if err != nil {
		s.logger.Error("delete task load failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}
	if !workflow.CanDelete(Snapshots(tasks)) {
		return applicationerrors.ErrNotDeletable
	}

	if err := qtx.DeleteWithTasks(ctx, app.ID, id.UserID); err != nil {
		s.logger.Error("delete failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	// A submitted request already put a pending task in front of each
	// approver. Withdraw those before the rows vanish so the pending
	// counters come back down.
	withdrawn := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		if t.Type == workflow.KindApproval && t.Status == workflow.StatusActive && t.Action == workflow.ActionPending {
			withdrawn = append(withdrawn, t.OperationUserID)
		}
	}
	if len(withdrawn) > 0 {
		if err := s.enqueueEvent(ctx, tx, events.EventApplicationDeleted, app, id.CompanyID, withdrawn); err != nil {
			s.logger.Error("delete outbox persist failed", zap.Int64("application_id", app.ID), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete commit failed", zap.Int64("application_id", app.ID), zap.Error(err))
		return err
	}

	s.logger.Info("application deleted", zap.Int64("application_id", app.ID), zap.Int64("user_id", id.UserID))
	return nil
}

// GetDetail renders one application with its task timeline. Only the admin,
// the applicant and holders of an approval task may read it; everyone else
// gets the same not-found as a missing id.
func (s *service) GetDetail(ctx context.Context, id identity.Identity, applicationID int64) (ApplicationDetailResponse, error) {
	app, err := s.repo.FindByID(ctx, applicationID, id.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ApplicationDetailResponse{}, applicationerrors.ErrApplicationNotFound
		}
		s.logger.Error("detail load failed", zap.Int64("application_id", applicationID), zap.Error(err))
		return ApplicationDetailResponse{}, err
	}

	tasks := sortTimeline(app.Tasks)

	holder := false
	for _, t := range tasks {
		if t.Type == workflow.KindApproval && t.OperationUserID == id.UserID {
			holder = true
			break
		}
	}
	if !id.IsAdmin && !holder && app.ApplicationUserID != id.UserID {
		return ApplicationDetailResponse{}, applicationerrors.ErrApplicationNotFound
	}

	operatorIDs := make([]int64, 0, len(tasks)+1)
	operatorIDs = append(operatorIDs, app.ApplicationUserID)
	for _, t := range tasks {
		operatorIDs = append(operatorIDs, t.OperationUserID)
	}
	names, err := s.users.FindNamesByIDs(ctx, operatorIDs)
	if err != nil {
		s.logger.Error("detail name load failed", zap.Error(err))
		return ApplicationDetailResponse{}, err
	}

	resp := ApplicationDetailResponse{
		ID:                  app.ID,
		ApplicationUserID:   app.ApplicationUserID,
		ApplicationUserName: names[app.ApplicationUserID],
		Type:                int(app.Type),
		SType:               app.Type.Label(),
		Classification:      int(app.Classification),
		SClassification:     app.Classification.Label(),
		SApplicationDate:    app.ApplicationDate.Format(dayLayout),
		SStartDate:          app.StartDate.Format(dayLayout),
		SStartTime:          app.StartDate.Format(clockLayout),
		SEndDate:            app.EndDate.Format(dayLayout),
		SEndTime:            app.EndDate.Format(clockLayout),
		TotalTime:           app.TotalTime,
		ApprovalGroupID:     app.ApprovalGroupID,
	}

	var appTask *Task
	for i := range tasks {
		t := tasks[i]
		if t.Type == workflow.KindApplication &&
			(t.Status == workflow.StatusActive || t.Status == workflow.StatusClosed) {
			appTask = &tasks[i]
			break
		}
	}
	if appTask != nil {
		action := int(appTask.Action)
		label := appTask.Action.Label()
		resp.Action = &action
		resp.SAction = &label
		resp.Comment = appTask.Comment
	}

	timeline := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		if appTask != nil && t.ID == appTask.ID {
			continue
		}
		timeline = append(timeline, mapTaskResponse(t, names))
	}
	resp.ApprovalTasks = timeline

	return resp, nil
}

// List returns application tasks (one row per request round). Admins viewing
// the management screen may filter on any user; everyone else is pinned to
// their own.
func (s *service) List(ctx context.Context, id identity.Identity, q ListApplicationsQuery) ([]ApplicationListItem, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	if !id.IsAdmin || !q.AdminView {
		q.UserID = &id.UserID
	}

	rows, total, err := s.repo.ListApplicationTasks(ctx, id.CompanyID, q)
	if err != nil {
		s.logger.Error("list failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return nil, 0, err
	}

	items := make([]ApplicationListItem, 0, len(rows))
	for _, row := range rows {
		if row.Application == nil {
			continue
		}
		app := row.Application
		items = append(items, ApplicationListItem{
			ID:                app.ID,
			ApplicationUserID: row.OperationUserID,
			Type:              int(app.Type),
			SType:             app.Type.Label(),
			Classification:    int(app.Classification),
			SClassification:   app.Classification.Label(),
			SApplicationDate:  app.ApplicationDate.Format(dayLayout),
			SStartDate:        app.StartDate.Format(dayLayout),
			SStartTime:        app.StartDate.Format(clockLayout),
			SEndDate:          app.EndDate.Format(dayLayout),
			SEndTime:          app.EndDate.Format(clockLayout),
			Action:            int(row.Action),
			SAction:           row.Action.Label(),
			ApprovalGroupID:   app.ApprovalGroupID,
			Comment:           row.Comment,
		})
	}
	return items, total, nil
}

// ListByMonth feeds the calendar view with the caller's own requests.
func (s *service) ListByMonth(ctx context.Context, id identity.Identity, start, end time.Time) ([]MonthlyApplicationItem, error) {
	apps, err := s.repo.ListByMonth(ctx, id.UserID, start, end)
	if err != nil {
		s.logger.Error("monthly list failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return nil, err
	}

	items := make([]MonthlyApplicationItem, 0, len(apps))
	for _, app := range apps {
		item := MonthlyApplicationItem{
			ID:                app.ID,
			ApplicationUserID: app.ApplicationUserID,
			SType:             app.Type.Label(),
			SClassification:   app.Classification.Label(),
			SStartDate:        app.StartDate.Format("2006-01-02"),
			SStartTime:        app.StartDate.Format(clockLayout),
			SEndDate:          app.EndDate.Format("2006-01-02"),
			SEndTime:          app.EndDate.Format(clockLayout),
		}
		if len(app.Tasks) > 0 {
			item.Action = int(app.Tasks[0].Action)
			item.SAction = app.Tasks[0].Action.Label()
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *service) applyChanges(ctx context.Context, qtx Repository, changes []workflow.Change) error {
	for _, ch := range changes {
		row := FromSnapshot(ch.Task)
		switch ch.Op {
		case workflow.OpCreate:
			if err := qtx.CreateTask(ctx, &row); err != nil {
				return err
			}
		case workflow.OpUpdate:
			if err := qtx.UpdateTask(ctx, &row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) enqueueEvent(ctx context.Context, tx *sql.Tx, eventType string, app *Application, companyID int64, approverIDs []int64) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.ApplicationWorkflowEvent{
		EventType:     eventType,
		ApplicationID: app.ID,
		ApplicantID:   app.ApplicationUserID,
		CompanyID:     companyID,
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

// fannedOutApprovers collects the approvers a submit assigned a fresh
// pending task to.
func fannedOutApprovers(changes []workflow.Change) []int64 {
	var ids []int64
	for _, ch := range changes {
		if ch.Op == workflow.OpCreate && ch.Task.Kind == workflow.KindApproval &&
			ch.Task.Action == workflow.ActionPending {
			ids = append(ids, ch.Task.OperatorID)
		}
	}
	return ids
}

// withdrawnApprovers collects the approvers whose pending task a cancel or
// reject withdrew.
func withdrawnApprovers(changes []workflow.Change) []int64 {
	var ids []int64
	for _, ch := range changes {
		if ch.Op == workflow.OpUpdate && ch.Task.Kind == workflow.KindApproval &&
			ch.Task.Action == workflow.ActionSystemCancelled {
			ids = append(ids, ch.Task.OperatorID)
		}
	}
	return ids
}

// sortTimeline orders by operation date, task id breaking ties.
func sortTimeline(tasks []Task) []Task {
	sorted := make([]Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].OperationDate.Equal(sorted[j].OperationDate) {
			return sorted[i].OperationDate.Before(sorted[j].OperationDate)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func mapTaskResponse(t Task, names map[int64]string) TaskResponse {
	resp := TaskResponse{
		ID:      t.ID,
		Type:    int(t.Type),
		Action:  int(t.Action),
		Status:  int(t.Status),
		SStatus: t.Status.Label(),
		Comment: t.Comment,
	}

	if t.Type == workflow.KindApproval {
		resp.SAction = t.Action.Label()
	} else {
		resp.SAction = "申請"
	}

	if name, ok := names[t.OperationUserID]; ok {
		resp.UserName = &name
	}

	// Pending tasks have no operation to date yet.
	if t.Action != workflow.ActionPending {
		formatted := t.OperationDate.Format(dateTimeLayout)
		resp.OperationDate = &formatted
	}

	return resp
}

func parseDateTime(day, clock string) (time.Time, error) {
	day = strings.ReplaceAll(day, "-", "/")
	return time.ParseInLocation(dateTimeLayout, day+" "+clock, time.UTC)
}
