package user

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByIDAndCompany(ctx context.Context, companyID, id int64) (*User, error)
	FindByLoginID(ctx context.Context, loginID string) (*User, error)
	ListByCompany(ctx context.Context, companyID int64) ([]User, error)
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindByLoginID(ctx context.Context, loginID string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "login_id = ?", loginID).Error
	return &u, err
}

func (r *repository) ListByCompany(ctx context.Context, companyID int64) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	var users []User
	err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.FullName()
	}
	return names, nil
}
