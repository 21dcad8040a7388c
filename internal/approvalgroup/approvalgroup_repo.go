package approvalgroup

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approvalgroup_repo.go -destination=mock/approvalgroup_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id, companyID int64) (*SystemConfig, error)
	ListByCompany(ctx context.Context, companyID int64) ([]SystemConfig, error)
	Create(ctx context.Context, cfg *SystemConfig) error
	Update(ctx context.Context, cfg *SystemConfig) error
	Delete(ctx context.Context, id, companyID int64) error
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

func (r *repository) FindByID(ctx context.Context, id, companyID int64) (*SystemConfig, error) {
	var cfg SystemConfig
	err := r.db.WithContext(ctx).
		First(&cfg, "id = ? AND company_id = ? AND key = ?", id, companyID, SystemConfigKeyApprovalGroup).Error
	return &cfg, err
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]SystemConfig, error) {
	var cfgs []SystemConfig
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND key = ?", companyID, SystemConfigKeyApprovalGroup).
		Order("id ASC").
		Find(&cfgs).Error
	return cfgs, err
}

func (r *repository) Create(ctx context.Context, cfg *SystemConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) Update(ctx context.Context, cfg *SystemConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *repository) Delete(ctx context.Context, id, companyID int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND key = ?", id, companyID, SystemConfigKeyApprovalGroup).
		Delete(&SystemConfig{}).Error
}
