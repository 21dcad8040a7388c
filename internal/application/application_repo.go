package application

import (
	"context"
	"database/sql"
	"time"

	"github.com/k-obata-3/leave-connect-api/internal/tenant"
	"github.com/k-obata-3/leave-connect-api/internal/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=application_repo.go -destination=mock/application_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// FindByID loads the application with every task that is not
	// NON_ACTIVE. The company scope runs through the applicant's user row.
	FindByID(ctx context.Context, id, companyID int64) (*Application, error)
	// FindSameDayApplication returns a live application of the same user,
	// day and classification, or gorm.ErrRecordNotFound.
	FindSameDayApplication(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*Application, error)
	Create(ctx context.Context, app *Application) error
	Update(ctx context.Context, app *Application) error
	// DeleteWithTasks removes the application and all its tasks. The owner
	// filter makes the delete a no-op for anyone else.
	DeleteWithTasks(ctx context.Context, id, ownerID int64) error

	CreateTask(ctx context.Context, task *Task) error
	UpdateTask(ctx context.Context, task *Task) error
	FindTasks(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]Task, error)
	// FindTasksForUpdate locks the task rows so concurrent decisions on the
	// same application serialize.
	FindTasksForUpdate(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]Task, error)

	ListApplicationTasks(ctx context.Context, companyID int64, q ListApplicationsQuery) ([]Task, int64, error)
	ListByMonth(ctx context.Context, userID int64, start, end time.Time) ([]Application, error)
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

func (r *repository) FindByID(ctx context.Context, id, companyID int64) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).
		Preload("Tasks", "status <> ?", workflow.StatusNonActive).
		Joins("JOIN users ON users.id = applications.application_user_id").
		Scopes(tenant.Scope(companyID)).
		First(&app, "applications.id = ?", id).Error
	return &app, err
}

func (r *repository) FindSameDayApplication(ctx context.Context, userID int64, classification workflow.Classification, dayStart, dayEnd time.Time) (*Application, error) {
	var app Application
	err := r.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.application_id = applications.id AND tasks.type = ? AND tasks.status IN ?",
			workflow.KindApplication, []workflow.TaskStatus{workflow.StatusActive, workflow.StatusClosed}).
		Where("applications.application_user_id = ?", userID).
		Where("applications.classification = ?", classification).
		Where("applications.start_date BETWEEN ? AND ?", dayStart, dayEnd).
		First(&app).Error
	return &app, err
}

func (r *repository) Create(ctx context.Context, app *Application) error {
	return r.db.WithContext(ctx).Omit("Tasks").Create(app).Error
}

func (r *repository) Update(ctx context.Context, app *Application) error {
	return r.db.WithContext(ctx).Omit("Tasks").Save(app).Error
}

func (r *repository) DeleteWithTasks(ctx context.Context, id, ownerID int64) error {
	if err := r.db.WithContext(ctx).
		Where("application_id = ?", id).
		Delete(&Task{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ? AND application_user_id = ?", id, ownerID).
		Delete(&Application{}).Error
}

func (r *repository) CreateTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Omit("Application").Create(task).Error
}

func (r *repository) UpdateTask(ctx context.Context, task *Task) error {
	return r.db.WithContext(ctx).Omit("Application").Save(task).Error
}

func (r *repository) FindTasks(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND status IN ?", applicationID, statuses).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) FindTasksForUpdate(ctx context.Context, applicationID int64, statuses []workflow.TaskStatus) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ? AND status IN ?", applicationID, statuses).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) ListApplicationTasks(ctx context.Context, companyID int64, q ListApplicationsQuery) ([]Task, int64, error) {
	base := r.db.WithContext(ctx).Model(&Task{}).
		Joins("JOIN applications ON applications.id = tasks.application_id").
		Joins("JOIN users ON users.id = tasks.operation_user_id").
		Scopes(tenant.Scope(companyID)).
		Where("tasks.type = ?", workflow.KindApplication).
		Where("tasks.status IN ?", []workflow.TaskStatus{workflow.StatusActive, workflow.StatusClosed})

	if q.UserID != nil {
		base = base.Where("tasks.operation_user_id = ?", *q.UserID)
	}
	if q.Action != nil {
		base = base.Where("tasks.action = ?", *q.Action)
	} else if q.AdminView {
		// The admin view hides drafts nobody has submitted yet.
		base = base.Where("tasks.action <> ?", workflow.ActionDraft)
	}
	if q.Year != nil {
		yearStart := time.Date(*q.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		yearEnd := time.Date(*q.Year, time.December, 31, 23, 59, 59, 0, time.UTC)
		base = base.Where("applications.start_date BETWEEN ? AND ?", yearStart, yearEnd)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []Task
	err := base.
		Preload("Application").
		Order("tasks.id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *repository) ListByMonth(ctx context.Context, userID int64, start, end time.Time) ([]Application, error) {
	var apps []Application
	err := r.db.WithContext(ctx).
		Preload("Tasks", "type = ? AND status = ? AND action <> ?",
			workflow.KindApplication, workflow.StatusActive, workflow.ActionCancelled).
		Where("application_user_id = ?", userID).
		Where("start_date BETWEEN ? AND ?", start, end).
		Order("start_date ASC").
		Find(&apps).Error
	return apps, err
}
