package approval_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	"github.com/k-obata-3/leave-connect-api/internal/approval"
	approvalerrors "github.com/k-obata-3/leave-connect-api/internal/approval/errors"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"
	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeApprovalRepository struct {
	findApplicationFn          func(ctx context.Context, id, companyID int64) (*application.Application, error)
	findActiveTasksForUpdateFn func(ctx context.Context, applicationID int64) ([]application.Task, error)
	createTaskFn               func(ctx context.Context, task *application.Task) error
	updateTaskFn               func(ctx context.Context, task *application.Task) error
	listApproverTasksFn        func(ctx context.Context, companyID, approverID int64, q approval.ListTasksQuery) ([]application.Task, int64, error)
}

func (f *fakeApprovalRepository) WithTx(tx *sql.Tx) approval.Repository { return f }

func (f *fakeApprovalRepository) FindApplication(ctx context.Context, id, companyID int64) (*application.Application, error) {
	if f.findApplicationFn != nil {
		return f.findApplicationFn(ctx, id, companyID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApprovalRepository) FindActiveTasksForUpdate(ctx context.Context, applicationID int64) ([]application.Task, error) {
	if f.findActiveTasksForUpdateFn != nil {
		return f.findActiveTasksForUpdateFn(ctx, applicationID)
	}
	return nil, nil
}

func (f *fakeApprovalRepository) CreateTask(ctx context.Context, task *application.Task) error {
	if f.createTaskFn != nil {
		return f.createTaskFn(ctx, task)
	}
	return nil
}

func (f *fakeApprovalRepository) UpdateTask(ctx context.Context, task *application.Task) error {
	if f.updateTaskFn != nil {
		return f.updateTaskFn(ctx, task)
	}
	return nil
}

func (f *fakeApprovalRepository) ListApproverTasks(ctx context.Context, companyID, approverID int64, q approval.ListTasksQuery) ([]application.Task, int64, error) {
	if f.listApproverTasksFn != nil {
		return f.listApproverTasksFn(ctx, companyID, approverID, q)
	}
	return nil, 0, nil
}

type fakeBalanceRepository struct {
	balance     *balance.LeaveBalance
	findErr     error
	updateCalls int
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) FindByUserID(ctx context.Context, userID int64) (*balance.LeaveBalance, error) {
	return f.FindByUserIDForUpdate(ctx, userID)
}

func (f *fakeBalanceRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*balance.LeaveBalance, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.balance, nil
}

func (f *fakeBalanceRepository) Update(ctx context.Context, b *balance.LeaveBalance) error {
	f.updateCalls++
	return nil
}

type fakeUserDirectory struct {
	names map[int64]string
}

func (f *fakeUserDirectory) FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if f.names == nil {
		return map[int64]string{}, nil
	}
	return f.names, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type approvalServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	repo     *fakeApprovalRepository
	balances *fakeBalanceRepository
	outbox   *fakeOutboxRepository
	service  approval.Service
}

func setupApprovalServiceTest(t *testing.T) *approvalServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeApprovalRepository{}
	balances := &fakeBalanceRepository{}
	outbox := &fakeOutboxRepository{}
	svc := approval.NewService(db, repo, balances, &fakeUserDirectory{}, outbox)

	return &approvalServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     repo,
		balances: balances,
		outbox:   outbox,
		service:  svc,
	}
}

// threeApproverRound is a PENDING application routed to approvers 21, 22 and
// 23, with approvals already granted per the approvedBy set.
func threeApproverRound(approvedBy ...int64) []application.Task {
	granted := make(map[int64]bool, len(approvedBy))
	for _, id := range approvedBy {
		granted[id] = true
	}
	tasks := []application.Task{
		{ID: 1, ApplicationID: 50, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionPending, Status: workflow.StatusActive},
	}
	for i, approverID := range []int64{21, 22, 23} {
		action := workflow.ActionPending
		if granted[approverID] {
			action = workflow.ActionApproved
		}
		tasks = append(tasks, application.Task{
			ID: int64(i + 2), ApplicationID: 50, OperationUserID: approverID,
			Type: workflow.KindApproval, Action: action, Status: workflow.StatusActive,
		})
	}
	return tasks
}

func TestApprovalService_Decide(t *testing.T) {
	ctx := context.Background()

	app := func() *application.Application {
		return &application.Application{ID: 50, ApplicationUserID: 10, TotalTime: 8}
	}

	t.Run("partial approval leaves the round open and the balance untouched", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(), nil
		}

		var updated []application.Task
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated = append(updated, *task)
			return nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 21, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 2, Action: int(workflow.ActionApproved), Comment: "承認します",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, deps.balances.updateCalls)

		// Only the decider's own task changes; it stays ACTIVE so the
		// applicant can watch progress.
		assert.Len(t, updated, 1)
		assert.Equal(t, int64(2), updated[0].ID)
		assert.Equal(t, workflow.ActionApproved, updated[0].Action)
		assert.Equal(t, workflow.StatusActive, updated[0].Status)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "application.approved", deps.outbox.created[0].EventType)
	})

	t.Run("approving the same task twice is rejected", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(21), nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 21, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 2, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, workflowerrors.ErrTaskNotActionable)
		assert.Equal(t, 0, deps.balances.updateCalls)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("final approval completes the round and debits exactly once", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(21, 22), nil
		}
		deps.balances.balance = &balance.LeaveBalance{
			UserID:                10,
			TotalGrantedDays:      10,
			AutoCalcRemainingDays: 10,
		}

		var updated []application.Task
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated = append(updated, *task)
			return nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 23, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 4, Action: int(workflow.ActionApproved),
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, deps.balances.updateCalls)
		assert.Equal(t, 9.0, deps.balances.balance.AutoCalcRemainingDays)
		assert.Equal(t, 1.0, deps.balances.balance.TotalConsumedDays)

		// The whole round closes: application task COMPLETE, every approval
		// task CLOSED.
		byID := map[int64]application.Task{}
		for _, task := range updated {
			byID[task.ID] = task
		}
		assert.Equal(t, workflow.ActionComplete, byID[1].Action)
		assert.Equal(t, workflow.StatusClosed, byID[1].Status)
		for _, id := range []int64{2, 3, 4} {
			assert.Equal(t, workflow.StatusClosed, byID[id].Status)
		}

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "application.completed", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("retried final approval fails once the round is closed", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		// After completion nothing remains ACTIVE, so the lock returns an
		// empty set.
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return nil, nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 23, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 4, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, workflowerrors.ErrTaskNotFound)
		assert.Equal(t, 0, deps.balances.updateCalls)
	})

	t.Run("reject returns the application and withdraws pending peers", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(), nil
		}

		var updated []application.Task
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updated = append(updated, *task)
			return nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 22, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 3, Action: int(workflow.ActionRejected), Comment: "日程を再調整してください",
		})

		assert.NoError(t, err)
		assert.Equal(t, 0, deps.balances.updateCalls)

		byID := map[int64]application.Task{}
		for _, task := range updated {
			byID[task.ID] = task
		}
		// Application task goes back to the applicant, still ACTIVE.
		assert.Equal(t, workflow.ActionRejected, byID[1].Action)
		assert.Equal(t, workflow.StatusActive, byID[1].Status)
		assert.Equal(t, workflow.ActionRejected, byID[3].Action)
		// Still-pending peers are withdrawn.
		for _, id := range []int64{2, 4} {
			assert.Equal(t, workflow.ActionSystemCancelled, byID[id].Action)
			assert.Equal(t, workflow.StatusNonActive, byID[id].Status)
		}

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "application.rejected", deps.outbox.created[0].EventType)
	})

	t.Run("completion that would overdraw the balance rolls back", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(21, 22), nil
		}
		deps.balances.balance = &balance.LeaveBalance{
			UserID:                10,
			AutoCalcRemainingDays: 0.5,
		}

		updates := 0
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updates++
			return nil
		}

		err := deps.service.Decide(ctx, identity.Identity{UserID: 23, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 4, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceExceeded)
		assert.Equal(t, 0, updates)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("applicant without a balance row cannot be completed", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(21, 22), nil
		}
		deps.balances.findErr = gorm.ErrRecordNotFound

		err := deps.service.Decide(ctx, identity.Identity{UserID: 23, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 4, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, balanceerrors.ErrBalanceNotFound)
	})

	t.Run("deciding on someone else's task is rejected", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findApplicationFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}
		deps.repo.findActiveTasksForUpdateFn = func(ctx context.Context, applicationID int64) ([]application.Task, error) {
			return threeApproverRound(), nil
		}

		// Task 2 belongs to approver 21.
		err := deps.service.Decide(ctx, identity.Identity{UserID: 22, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 50, TaskID: 2, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, workflowerrors.ErrTaskNotFound)
	})

	t.Run("unknown application is reported as a missing task", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		err := deps.service.Decide(ctx, identity.Identity{UserID: 21, CompanyID: 1}, approval.DecideRequest{
			ApplicationID: 99, TaskID: 2, Action: int(workflow.ActionApproved),
		})

		assert.ErrorIs(t, err, approvalerrors.ErrApprovalTaskNotFound)
	})
}

func TestApprovalService_ListTasks(t *testing.T) {
	ctx := context.Background()

	t.Run("rows carry the applicant's name", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
		deps.repo.listApproverTasksFn = func(ctx context.Context, companyID, approverID int64, q approval.ListTasksQuery) ([]application.Task, int64, error) {
			assert.Equal(t, int64(1), companyID)
			assert.Equal(t, int64(21), approverID)
			return []application.Task{{
				ID: 2, ApplicationID: 50, OperationUserID: 21,
				Type: workflow.KindApproval, Action: workflow.ActionPending, Status: workflow.StatusActive,
				Application: &application.Application{
					ID: 50, ApplicationUserID: 10,
					Type:           workflow.LeavePaid,
					Classification: workflow.ClassificationAllDay,
					StartDate:      start,
					EndDate:        start.Add(9 * time.Hour),
					TotalTime:      8,
				},
			}}, 1, nil
		}

		svc := approval.NewService(deps.db, deps.repo, deps.balances, &fakeUserDirectory{
			names: map[int64]string{10: "山田 太郎"},
		}, deps.outbox)

		items, total, err := svc.ListTasks(ctx, identity.Identity{UserID: 21, CompanyID: 1}, approval.ListTasksQuery{})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, items, 1)
		assert.Equal(t, int64(50), items[0].ApplicationID)
		assert.Equal(t, "山田 太郎", items[0].ApplicationUserName)
	})

	t.Run("paging is normalized", func(t *testing.T) {
		deps := setupApprovalServiceTest(t)

		deps.repo.listApproverTasksFn = func(ctx context.Context, companyID, approverID int64, q approval.ListTasksQuery) ([]application.Task, int64, error) {
			assert.Equal(t, 1, q.Page)
			assert.Equal(t, 20, q.Limit)
			return nil, 0, nil
		}

		_, _, err := deps.service.ListTasks(ctx, identity.Identity{UserID: 21, CompanyID: 1}, approval.ListTasksQuery{Page: -1, Limit: 500})

		assert.NoError(t, err)
	})
}
