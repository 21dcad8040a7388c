package application_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	applicationerrors "github.com/k-obata-3/leave-connect-api/internal/application/errors"
	"github.com/k-obata-3/leave-connect-api/internal/balance"
	"github.com/k-obata-3/leave-connect-api/internal/events"
	"github.com/k-obata-3/leave-connect-api/internal/identity"
	"github.com/k-obata-3/leave-connect-api/internal/messaging/kafka"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"
	workflowerrors "github.com/k-obata-3/leave-connect-api/internal/workflow/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeApplicationRepository struct {
	findByIDFn               func(ctx context.Context, id, companyID int64) (*application.Application, error)
	findSameDayApplicationFn func(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*application.Application, error)
	createFn                 func(ctx context.Context, app *application.Application) error
	updateFn                 func(ctx context.Context, app *application.Application) error
	deleteWithTasksFn        func(ctx context.Context, id, ownerID int64) error
	createTaskFn             func(ctx context.Context, task *application.Task) error
	updateTaskFn             func(ctx context.Context, task *application.Task) error
	findTasksFn              func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error)
	findTasksForUpdateFn     func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error)
	listApplicationTasksFn   func(ctx context.Context, companyID int64, q application.ListApplicationsQuery) ([]application.Task, int64, error)
	listByMonthFn            func(ctx context.Context, userID int64, start, end time.Time) ([]application.Application, error)
}

func (f *fakeApplicationRepository) WithTx(tx *sql.Tx) application.Repository { return f }

func (f *fakeApplicationRepository) FindByID(ctx context.Context, id, companyID int64) (*application.Application, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id, companyID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApplicationRepository) FindSameDayApplication(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*application.Application, error) {
	if f.findSameDayApplicationFn != nil {
		return f.findSameDayApplicationFn(ctx, userID, classification, dayStart, dayEnd)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	if f.createFn != nil {
		return f.createFn(ctx, app)
	}
	app.ID = 100
	return nil
}

func (f *fakeApplicationRepository) Update(ctx context.Context, app *application.Application) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, app)
	}
	return nil
}

func (f *fakeApplicationRepository) DeleteWithTasks(ctx context.Context, id, ownerID int64) error {
	if f.deleteWithTasksFn != nil {
		return f.deleteWithTasksFn(ctx, id, ownerID)
	}
	return nil
}

func (f *fakeApplicationRepository) CreateTask(ctx context.Context, task *application.Task) error {
	if f.createTaskFn != nil {
		return f.createTaskFn(ctx, task)
	}
	return nil
}

func (f *fakeApplicationRepository) UpdateTask(ctx context.Context, task *application.Task) error {
	if f.updateTaskFn != nil {
		return f.updateTaskFn(ctx, task)
	}
	return nil
}

func (f *fakeApplicationRepository) FindTasks(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
	if f.findTasksFn != nil {
		return f.findTasksFn(ctx, applicationID, statuses)
	}
	return nil, nil
}

func (f *fakeApplicationRepository) FindTasksForUpdate(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
	if f.findTasksForUpdateFn != nil {
		return f.findTasksForUpdateFn(ctx, applicationID, statuses)
	}
	return nil, nil
}

func (f *fakeApplicationRepository) ListApplicationTasks(ctx context.Context, companyID int64, q application.ListApplicationsQuery) ([]application.Task, int64, error) {
	if f.listApplicationTasksFn != nil {
		return f.listApplicationTasksFn(ctx, companyID, q)
	}
	return nil, 0, nil
}

func (f *fakeApplicationRepository) ListByMonth(ctx context.Context, userID int64, start, end time.Time) ([]application.Application, error) {
	if f.listByMonthFn != nil {
		return f.listByMonthFn(ctx, userID, start, end)
	}
	return nil, nil
}

type fakeGroupResolver struct {
	resolveFn func(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error)
}

func (f *fakeGroupResolver) Resolve(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, id, groupID)
	}
	return []int64{21, 22, 23}, nil
}

type fakeBalanceRepository struct {
	balance *balance.LeaveBalance
	findErr error
	updated *balance.LeaveBalance
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
	f.updated = b
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

type applicationServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	repo     *fakeApplicationRepository
	groups   *fakeGroupResolver
	balances *fakeBalanceRepository
	outbox   *fakeOutboxRepository
	service  application.Service
}

func setupApplicationServiceTest(t *testing.T) *applicationServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeApplicationRepository{}
	groups := &fakeGroupResolver{}
	balances := &fakeBalanceRepository{}
	outbox := &fakeOutboxRepository{}
	svc := application.NewService(db, repo, groups, balances, &fakeUserDirectory{}, outbox)

	return &applicationServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		repo:     repo,
		groups:   groups,
		balances: balances,
		outbox:   outbox,
		service:  svc,
	}
}

func pendingSubmitRequest() application.SubmitApplicationRequest {
	return application.SubmitApplicationRequest{
		Type:            int(workflow.LeavePaid),
		Classification:  int(workflow.ClassificationAllDay),
		StartEndDate:    "2024/06/10",
		StartTime:       "09:00",
		EndTime:         "18:00",
		TotalTime:       8,
		Comment:         "私用のため",
		Action:          int(workflow.ActionPending),
		ApprovalGroupID: 5,
	}
}

func TestApplicationService_Submit(t *testing.T) {
	ctx := context.Background()
	applicant := identity.Identity{UserID: 10, CompanyID: 1}

	t.Run("pending submission fans out one task per approver and records the event", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var createdTasks []application.Task
		deps.repo.createTaskFn = func(ctx context.Context, task *application.Task) error {
			task.ID = int64(len(createdTasks) + 1)
			createdTasks = append(createdTasks, *task)
			return nil
		}

		resp, err := deps.service.Submit(ctx, applicant, pendingSubmitRequest())

		assert.NoError(t, err)
		assert.Equal(t, int64(100), resp.ID)

		// One application task plus one approval task per approver.
		assert.Len(t, createdTasks, 4)
		assert.Equal(t, workflow.KindApplication, createdTasks[0].Type)
		assert.Equal(t, workflow.ActionPending, createdTasks[0].Action)
		for _, task := range createdTasks[1:] {
			assert.Equal(t, workflow.KindApproval, task.Type)
			assert.Equal(t, workflow.ActionPending, task.Action)
			assert.Equal(t, workflow.StatusActive, task.Status)
		}

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "application.submitted", deps.outbox.created[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("applicant in their own approval group is skipped", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.groups.resolveFn = func(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error) {
			return []int64{10, 21}, nil
		}

		var approvalTasks []application.Task
		deps.repo.createTaskFn = func(ctx context.Context, task *application.Task) error {
			if task.Type == workflow.KindApproval {
				approvalTasks = append(approvalTasks, *task)
			}
			return nil
		}

		_, err := deps.service.Submit(ctx, applicant, pendingSubmitRequest())

		assert.NoError(t, err)
		assert.Len(t, approvalTasks, 1)
		assert.Equal(t, int64(21), approvalTasks[0].OperationUserID)
	})

	t.Run("draft saves create no approval tasks and no event", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		var createdTasks []application.Task
		deps.repo.createTaskFn = func(ctx context.Context, task *application.Task) error {
			createdTasks = append(createdTasks, *task)
			return nil
		}

		req := pendingSubmitRequest()
		req.Action = int(workflow.ActionDraft)
		_, err := deps.service.Submit(ctx, applicant, req)

		assert.NoError(t, err)
		assert.Len(t, createdTasks, 1)
		assert.Equal(t, workflow.ActionDraft, createdTasks[0].Action)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("classification validation failure aborts before any transaction", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)

		req := pendingSubmitRequest()
		req.EndTime = "13:00"
		_, err := deps.service.Submit(ctx, applicant, req)

		assert.ErrorIs(t, err, workflowerrors.ErrAllDayConditionNotMet)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("second submission for the same day and classification is rejected", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		// The guard runs inside the transaction, so the rejection rolls back.
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findSameDayApplicationFn = func(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*application.Application, error) {
			return &application.Application{ID: 77}, nil
		}

		_, err := deps.service.Submit(ctx, applicant, pendingSubmitRequest())

		assert.ErrorIs(t, err, applicationerrors.ErrDuplicateApplication)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("same day conflict with itself is the edit path", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findSameDayApplicationFn = func(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*application.Application, error) {
			return &application.Application{ID: 77}, nil
		}
		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 77, ApplicationUserID: 10}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{{
				ID: 1, ApplicationID: 77, OperationUserID: 10,
				Type: workflow.KindApplication, Action: workflow.ActionDraft, Status: workflow.StatusActive,
			}}, nil
		}

		var updatedTasks []application.Task
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updatedTasks = append(updatedTasks, *task)
			return nil
		}

		editID := int64(77)
		req := pendingSubmitRequest()
		req.ID = &editID
		resp, err := deps.service.Submit(ctx, applicant, req)

		assert.NoError(t, err)
		assert.Equal(t, int64(77), resp.ID)
		// The live application task is updated in place.
		assert.Len(t, updatedTasks, 1)
		assert.Equal(t, int64(1), updatedTasks[0].ID)
		assert.Equal(t, workflow.ActionPending, updatedTasks[0].Action)
	})

	t.Run("editing someone else's application is reported as not found", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 77, ApplicationUserID: 99}, nil
		}

		editID := int64(77)
		req := pendingSubmitRequest()
		req.ID = &editID
		_, err := deps.service.Submit(ctx, applicant, req)

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}

func TestApplicationService_Cancel(t *testing.T) {
	ctx := context.Background()
	applicant := identity.Identity{UserID: 10, CompanyID: 1}

	completedTasks := func() []application.Task {
		return []application.Task{
			{ID: 1, ApplicationID: 50, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionComplete, Status: workflow.StatusClosed},
			{ID: 2, ApplicationID: 50, OperationUserID: 21, Type: workflow.KindApproval, Action: workflow.ActionApproved, Status: workflow.StatusClosed},
		}
	}

	t.Run("cancelling a completed application exactly reverses the debit", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 50, ApplicationUserID: 10, TotalTime: 8}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return completedTasks(), nil
		}
		// Balance as the completion left it: 1.0 day debited.
		deps.balances.balance = &balance.LeaveBalance{
			UserID:                10,
			TotalGrantedDays:      10,
			TotalConsumedDays:     1.0,
			AutoCalcRemainingDays: 9.0,
		}

		err := deps.service.Cancel(ctx, applicant, application.CancelApplicationRequest{ApplicationID: 50, Comment: "予定変更"})

		assert.NoError(t, err)
		assert.NotNil(t, deps.balances.updated)
		assert.Equal(t, 10.0, deps.balances.updated.AutoCalcRemainingDays)
		assert.Equal(t, 0.0, deps.balances.updated.TotalConsumedDays)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "application.cancelled", deps.outbox.created[0].EventType)
	})

	t.Run("cancelling a pending application does not touch the balance", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 50, ApplicationUserID: 10, TotalTime: 8}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{
				{ID: 1, ApplicationID: 50, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionPending, Status: workflow.StatusActive},
				{ID: 2, ApplicationID: 50, OperationUserID: 21, Type: workflow.KindApproval, Action: workflow.ActionPending, Status: workflow.StatusActive},
			}, nil
		}

		var updatedTasks []application.Task
		deps.repo.updateTaskFn = func(ctx context.Context, task *application.Task) error {
			updatedTasks = append(updatedTasks, *task)
			return nil
		}

		err := deps.service.Cancel(ctx, applicant, application.CancelApplicationRequest{ApplicationID: 50})

		assert.NoError(t, err)
		assert.Nil(t, deps.balances.updated)

		// Pending approver task is withdrawn, not closed.
		var withdrawn *application.Task
		for i := range updatedTasks {
			if updatedTasks[i].ID == 2 {
				withdrawn = &updatedTasks[i]
			}
		}
		assert.NotNil(t, withdrawn)
		assert.Equal(t, workflow.ActionSystemCancelled, withdrawn.Action)
		assert.Equal(t, workflow.StatusNonActive, withdrawn.Status)
	})

	t.Run("a second cancel fails instead of crediting twice", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 50, ApplicationUserID: 10, TotalTime: 8}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{
				{ID: 1, ApplicationID: 50, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionCancelled, Status: workflow.StatusClosed},
			}, nil
		}

		err := deps.service.Cancel(ctx, applicant, application.CancelApplicationRequest{ApplicationID: 50})

		assert.ErrorIs(t, err, workflowerrors.ErrAlreadyCancelled)
		assert.Nil(t, deps.balances.updated)
	})

	t.Run("someone else's application is reported as not found", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 50, ApplicationUserID: 99}, nil
		}

		err := deps.service.Cancel(ctx, applicant, application.CancelApplicationRequest{ApplicationID: 50})

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}

func TestApplicationService_Delete(t *testing.T) {
	ctx := context.Background()
	applicant := identity.Identity{UserID: 10, CompanyID: 1}

	t.Run("draft with no granted approvals deletes", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 60, ApplicationUserID: 10}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{
				{ID: 1, Type: workflow.KindApplication, Action: workflow.ActionDraft, Status: workflow.StatusActive},
			}, nil
		}

		deleted := false
		deps.repo.deleteWithTasksFn = func(ctx context.Context, id, ownerID int64) error {
			deleted = true
			assert.Equal(t, int64(60), id)
			assert.Equal(t, int64(10), ownerID)
			return nil
		}

		err := deps.service.Delete(ctx, applicant, 60)

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("deleting a submitted application withdraws the pending approver tasks", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 60, ApplicationUserID: 10}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{
				{ID: 1, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionPending, Status: workflow.StatusActive},
				{ID: 2, OperationUserID: 21, Type: workflow.KindApproval, Action: workflow.ActionPending, Status: workflow.StatusActive},
				{ID: 3, OperationUserID: 22, Type: workflow.KindApproval, Action: workflow.ActionPending, Status: workflow.StatusActive},
			}, nil
		}

		err := deps.service.Delete(ctx, applicant, 60)

		assert.NoError(t, err)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.EventApplicationDeleted, deps.outbox.created[0].EventType)

		var event events.ApplicationWorkflowEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[0].Payload, &event))
		assert.Equal(t, []int64{21, 22}, event.ApproverIDs)
		assert.Equal(t, int64(60), event.ApplicationID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("granted approval blocks deletion", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 60, ApplicationUserID: 10}, nil
		}
		deps.repo.findTasksForUpdateFn = func(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]application.Task, error) {
			return []application.Task{
				{ID: 1, Type: workflow.KindApplication, Action: workflow.ActionPending, Status: workflow.StatusActive},
				{ID: 2, Type: workflow.KindApproval, Action: workflow.ActionApproved, Status: workflow.StatusActive},
			}, nil
		}

		err := deps.service.Delete(ctx, applicant, 60)

		assert.ErrorIs(t, err, applicationerrors.ErrNotDeletable)
	})

	t.Run("delete is owner only even for admins", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		admin := identity.Identity{UserID: 1, CompanyID: 1, IsAdmin: true}
		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return &application.Application{ID: 60, ApplicationUserID: 10}, nil
		}

		err := deps.service.Delete(ctx, admin, 60)

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}

func TestApplicationService_GetDetail(t *testing.T) {
	ctx := context.Background()

	app := func() *application.Application {
		return &application.Application{
			ID:                70,
			ApplicationUserID: 10,
			Type:              workflow.LeavePaid,
			Classification:    workflow.ClassificationAllDay,
			StartDate:         time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
			EndDate:           time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC),
			TotalTime:         8,
			Tasks: []application.Task{
				{ID: 2, OperationUserID: 21, Type: workflow.KindApproval, Action: workflow.ActionPending, Status: workflow.StatusActive,
					OperationDate: time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)},
				{ID: 1, OperationUserID: 10, Type: workflow.KindApplication, Action: workflow.ActionPending, Status: workflow.StatusActive,
					OperationDate: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)},
			},
		}
	}

	t.Run("applicant sees the timeline in operation order", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}

		resp, err := deps.service.GetDetail(ctx, identity.Identity{UserID: 10, CompanyID: 1}, 70)

		assert.NoError(t, err)
		assert.Equal(t, int64(70), resp.ID)
		assert.NotNil(t, resp.Action)
		assert.Equal(t, int(workflow.ActionPending), *resp.Action)
		assert.Len(t, resp.ApprovalTasks, 1)
		assert.Equal(t, int64(2), resp.ApprovalTasks[0].ID)
		// Pending tasks have no operation date yet.
		assert.Nil(t, resp.ApprovalTasks[0].OperationDate)
	})

	t.Run("approval task holder may read", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}

		_, err := deps.service.GetDetail(ctx, identity.Identity{UserID: 21, CompanyID: 1}, 70)

		assert.NoError(t, err)
	})

	t.Run("outsider gets the same not found as a missing id", func(t *testing.T) {
		deps := setupApplicationServiceTest(t)
		deps.repo.findByIDFn = func(ctx context.Context, id, companyID int64) (*application.Application, error) {
			return app(), nil
		}

		_, err := deps.service.GetDetail(ctx, identity.Identity{UserID: 55, CompanyID: 1}, 70)

		assert.ErrorIs(t, err, applicationerrors.ErrApplicationNotFound)
	})
}
