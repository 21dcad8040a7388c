package balance

import (
	"context"
	"errors"

	balanceerrors "github.com/k-obata-3/leave-connect-api/internal/balance/errors"
	"github.com/k-obata-3/leave-connect-api/internal/identity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetByUser(ctx context.Context, id identity.Identity, userID int64) (BalanceResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{repo: repo, logger: l}
}

// GetByUser returns the balance record. Non-admins may only read their own.
func (s *service) GetByUser(ctx context.Context, id identity.Identity, userID int64) (BalanceResponse, error) {
	if !id.IsAdmin && userID != id.UserID {
		// Reported as not-found so callers cannot probe other users.
		return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
	}

	b, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, balanceerrors.ErrBalanceNotFound
		}
		s.logger.Error("get balance failed", zap.Int64("user_id", userID), zap.Error(err))
		return BalanceResponse{}, err
	}

	return mapToResponse(b), nil
}

func mapToResponse(b *LeaveBalance) BalanceResponse {
	return BalanceResponse{
		UserID:                b.UserID,
		WorkingDays:           b.WorkingDays,
		TotalGrantedDays:      b.TotalGrantedDays,
		TotalConsumedDays:     b.TotalConsumedDays,
		TotalCarryoverDays:    b.TotalCarryoverDays,
		AutoCalcRemainingDays: b.AutoCalcRemainingDays,
		RemainingDays:         b.RemainingDays(),
	}
}
