package approvalgroup

import (
	"context"
	"errors"
	"fmt"

	approvalgrouperrors "github.com/k-obata-3/leave-connect-api/internal/approvalgroup/errors"
	"github.com/k-obata-3/leave-connect-api/internal/identity"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// UserDirectory supplies display names for the approver slots.
type UserDirectory interface {
	FindNamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

//go:generate mockgen -source=approvalgroup_service.go -destination=mock/approvalgroup_service_mock.go -package=mock
type Service interface {
	// Resolve returns the ordered approver ids of a group. Empty slots are
	// skipped; a group with no approvers at all is an error because a
	// submitted request could never complete.
	Resolve(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error)
	List(ctx context.Context, id identity.Identity) ([]ApprovalGroupResponse, error)
	Save(ctx context.Context, id identity.Identity, req SaveApprovalGroupRequest) error
	Delete(ctx context.Context, id identity.Identity, groupID int64) error
}

type service struct {
	repo    Repository
	users   UserDirectory
	resolve singleflight.Group
	logger  *zap.Logger
}

func NewService(repo Repository, users UserDirectory, logger ...*zap.Logger) Service {
	l := zap.L().Named("approvalgroup.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approvalgroup.service")
	}
	return &service{repo: repo, users: users, logger: l}
}

func (s *service) Resolve(ctx context.Context, id identity.Identity, groupID int64) ([]int64, error) {
	// Concurrent submissions against the same group share one lookup.
	key := fmt.Sprintf("%d:%d", id.CompanyID, groupID)
	v, err, _ := s.resolve.Do(key, func() (interface{}, error) {
		cfg, err := s.repo.FindByID(ctx, groupID, id.CompanyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, approvalgrouperrors.ErrGroupNotFound
			}
			s.logger.Error("resolve approval group failed", zap.Int64("group_id", groupID), zap.Error(err))
			return nil, err
		}

		value, err := cfg.GroupValue()
		if err != nil {
			s.logger.Error("approval group value is corrupt", zap.Int64("group_id", groupID), zap.Error(err))
			return nil, err
		}

		ids := value.ApproverIDs()
		if len(ids) == 0 {
			return nil, approvalgrouperrors.ErrGroupEmpty
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]int64), nil
}

func (s *service) List(ctx context.Context, id identity.Identity) ([]ApprovalGroupResponse, error) {
	cfgs, err := s.repo.ListByCompany(ctx, id.CompanyID)
	if err != nil {
		s.logger.Error("list approval groups failed", zap.Int64("company_id", id.CompanyID), zap.Error(err))
		return nil, err
	}

	values := make([]GroupValue, len(cfgs))
	var allIDs []int64
	for i, cfg := range cfgs {
		v, err := cfg.GroupValue()
		if err != nil {
			s.logger.Error("approval group value is corrupt", zap.Int64("group_id", cfg.ID), zap.Error(err))
			return nil, err
		}
		values[i] = v
		allIDs = append(allIDs, v.ApproverIDs()...)
	}

	names := map[int64]string{}
	if len(allIDs) > 0 {
		names, err = s.users.FindNamesByIDs(ctx, allIDs)
		if err != nil {
			s.logger.Error("load approver names failed", zap.Error(err))
			return nil, err
		}
	}

	resp := make([]ApprovalGroupResponse, len(cfgs))
	for i, cfg := range cfgs {
		approvers := make([]ApproverResponse, 0, 5)
		for _, approverID := range values[i].ApproverIDs() {
			a := ApproverResponse{ID: approverID}
			// Deleted users keep their slot but lose their name.
			if name, ok := names[approverID]; ok {
				a.Name = &name
			}
			approvers = append(approvers, a)
		}
		resp[i] = ApprovalGroupResponse{
			GroupID:   cfg.ID,
			GroupName: values[i].GroupName,
			Approvers: approvers,
		}
	}
	return resp, nil
}

func (s *service) Save(ctx context.Context, id identity.Identity, req SaveApprovalGroupRequest) error {
	if !id.IsAdmin {
		return approvalgrouperrors.ErrGroupEditForbidden
	}

	value := NewGroupValue(req.GroupName, req.Approvers)

	if req.ID == nil {
		cfg := &SystemConfig{
			CompanyID: id.CompanyID,
			Key:       SystemConfigKeyApprovalGroup,
		}
		if err := cfg.SetGroupValue(value); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, cfg); err != nil {
			s.logger.Error("create approval group failed", zap.Error(err))
			return err
		}
		s.logger.Info("approval group created", zap.Int64("group_id", cfg.ID))
		return nil
	}

	cfg, err := s.repo.FindByID(ctx, *req.ID, id.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approvalgrouperrors.ErrGroupNotFound
		}
		s.logger.Error("load approval group failed", zap.Int64("group_id", *req.ID), zap.Error(err))
		return err
	}
	if err := cfg.SetGroupValue(value); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, cfg); err != nil {
		s.logger.Error("update approval group failed", zap.Int64("group_id", cfg.ID), zap.Error(err))
		return err
	}
	s.resolve.Forget(fmt.Sprintf("%d:%d", id.CompanyID, cfg.ID))
	s.logger.Info("approval group updated", zap.Int64("group_id", cfg.ID))
	return nil
}

func (s *service) Delete(ctx context.Context, id identity.Identity, groupID int64) error {
	if !id.IsAdmin {
		return approvalgrouperrors.ErrGroupEditForbidden
	}

	if _, err := s.repo.FindByID(ctx, groupID, id.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approvalgrouperrors.ErrGroupNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, groupID, id.CompanyID); err != nil {
		s.logger.Error("delete approval group failed", zap.Int64("group_id", groupID), zap.Error(err))
		return err
	}
	s.resolve.Forget(fmt.Sprintf("%d:%d", id.CompanyID, groupID))
	s.logger.Info("approval group deleted", zap.Int64("group_id", groupID))
	return nil
}
