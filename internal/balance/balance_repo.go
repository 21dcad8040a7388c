package balance

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByUserID(ctx context.Context, userID int64) (*LeaveBalance, error)
	// FindByUserIDForUpdate takes a row lock so concurrent completions on the
	// same user serialize on the balance record.
	FindByUserIDForUpdate(ctx context.Context, userID int64) (*LeaveBalance, error)
	Update(ctx context.Context, b *LeaveBalance) error
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

func (r *repository) FindByUserID(ctx context.Context, userID int64) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		First(&b, "user_id = ?", userID).Error
	return &b, err
}

func (r *repository) FindByUserIDForUpdate(ctx context.Context, userID int64) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "user_id = ?", userID).Error
	return &b, err
}

func (r *repository) Update(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}
