package user

import (
	"context"
	"errors"

	"github.com/k-obata-3/leave-connect-api/internal/identity"
	usererrors "github.com/k-obata-3/leave-connect-api/internal/user/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetProfile(ctx context.Context, id identity.Identity) (UserResponse, error)
	ListCompanyUsers(ctx context.Context, id identity.Identity) ([]UserResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetProfile(ctx context.Context, id identity.Identity) (UserResponse, error) {
	u, err := s.repo.FindByIDAndCompany(ctx, id.CompanyID, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		s.logger.Error("get profile failed", zap.Int64("user_id", id.UserID), zap.Error(err))
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

// ListCompanyUsers feeds the approver picker; every authenticated user in
// the company may see the directory.
func (s *service) ListCompanyUsers(ctx context.Context, id identity.Identity) ([]UserResponse, error) {
	users, err := s.repo.ListByCompany(ctx, id.CompanyID)
	if err != nil {
		s.logger.Error("list company users failed", zap.Int64("company_id", id.CompanyID), zap.Error(err))
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		LoginID:   u.LoginID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		IsAdmin:   u.IsAdmin(),
	}
}
