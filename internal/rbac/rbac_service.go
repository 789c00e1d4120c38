package rbac

import (
	"strings"
	"sync"

	"go-hrms/internal/domain"
	"go-hrms/internal/shared/apperror"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req EnforceRequest) (bool, error)
	Authorize(req EnforceRequest) error
	PermissionsForRole(role string) ([]PermissionResponse, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads the static access table into enforcer.
func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.loadPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) loadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	for _, link := range RoleHierarchy {
		if _, err := s.enforcer.AddGroupingPolicy(link[0], link[1]); err != nil {
			return err
		}
	}

	rows := policyRows()
	if _, err := s.enforcer.AddPolicies(rows); err != nil {
		return err
	}

	s.logger.Info("rbac policy loaded",
		zap.Int("rules", len(rows)),
		zap.Int("role_links", len(RoleHierarchy)),
	)
	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	relations := strings.Join(req.Relations, ",")
	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action, relations)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.String("relations", relations),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

// Authorize is Enforce with a deny mapped to apperror.ErrForbidden.
func (s *service) Authorize(req EnforceRequest) error {
	allowed, err := s.Enforce(req)
	if err != nil {
		return err
	}
	if !allowed {
		return apperror.ErrForbidden
	}
	return nil
}

func (s *service) PermissionsForRole(role string) ([]PermissionResponse, error) {
	if !domain.IsValidRole(role) {
		return []PermissionResponse{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil, err
	}

	resp := make([]PermissionResponse, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		resp = append(resp, PermissionResponse{
			Role:     row[0],
			Resource: row[1],
			Action:   row[2],
			Relation: row[3],
		})
	}
	return resp, nil
}
