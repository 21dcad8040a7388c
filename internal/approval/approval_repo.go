package approval

import (
	"context"
	"database/sql"

	"github.com/k-obata-3/leave-connect-api/internal/application"
	"github.com/k-obata-3/leave-connect-api/internal/tenant"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindApplication(ctx context.Context, id, companyID int64) (*application.Application, error)
	// FindActiveTasksForUpdate locks the application's ACTIVE task set so
	// two concurrent decisions cannot both observe "all siblings approved".
	FindActiveTasksForUpdate(ctx context.Context, applicationID int64) ([]application.Task, error)
	CreateTask(ctx context.Context, task *application.Task) error
	UpdateTask(ctx context.Context, task *application.Task) error

	ListApproverTasks(ctx context.Context, companyID, approverID int64, q ListTasksQuery) ([]application.Task, int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	db := r.db.Session(&gorm.Session{NewDB: true})
	db.Statement.ConnPool = tx
	return &repository{db: db, tx: tx}
}

func (r *repository) FindApplication(ctx context.Context, id, companyID int64) (*application.Application, error) {
	var app application.Application
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = applications.application_user_id").
		Scopes(tenant.Scope(companyID)).
		First(&app, "applications.id = ?", id).Error
	return &app, err
}

func (r *repository) FindActiveTasksForUpdate(ctx context.Context, applicationID int64) ([]application.Task, error) {
	var tasks []application.Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ? AND status = ?", applicationID, workflow.StatusActive).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) CreateTask(ctx context.Context, task *application.Task) error {
	return r.db.WithContext(ctx).Omit("Application").Create(task).Error
}

func (r *repository) UpdateTask(ctx context.Context, task *application.Task) error {
	return r.db.WithContext(ctx).Omit("Application").Save(task).Error
}

func (r *repository) ListApproverTasks(ctx context.Context, companyID, approverID int64, q ListTasksQuery) ([]application.Task, int64, error) {
	base := r.db.WithContext(ctx).Model(&application.Task{}).
		Joins("JOIN applications ON applications.id = tasks.application_id").
		Joins("JOIN users ON users.id = applications.application_user_id").
		Scopes(tenant.Scope(companyID)).
		Where("tasks.operation_user_id = ?", approverID).
		Where("tasks.type = ?", workflow.KindApproval).
		Where("tasks.status IN ?", []workflow.TaskStatus{
			workflow.StatusActive, workflow.StatusClosed, workflow.StatusHistory,
		})

	if q.Action != nil {
		base = base.Where("tasks.action = ?", *q.Action)
	} else {
		base = base.Where("tasks.action IN ?", []workflow.Action{
			workflow.ActionPending, workflow.ActionApproved, workflow.ActionRejected,
		})
	}
	if q.ApplicantUserID != nil {
		base = base.Where("applications.application_user_id = ?", *q.ApplicantUserID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []application.Task
	err := base.
		Preload("Application").
		Order("tasks.id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&tasks).Error
	return tasks, total, err
}
