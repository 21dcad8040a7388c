package rbac

import (
	"sync"

	"github.com/k-obata-3/leave-connect-api/internal/domain"

	"github.com/casbin/casbin/v2"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer) Service {
	return &service{
		repo:     repo,
		enforcer: enforcer,
	}
}

func (s *service) LoadCompanyPolicy(companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(companyID)
}

func (s *service) loadCompanyPolicyUnlocked(companyID string) error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.GetUserRoles(companyID)
	if err != nil {
		return err
	}
	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.RoleID, companyID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(companyID)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyUnlocked(req.CompanyID); err != nil {
		return false, err
	}

	return s.enforcer.Enforce(
		req.UserID,
		req.CompanyID,
		req.Resource,
		req.Action,
	)
}
