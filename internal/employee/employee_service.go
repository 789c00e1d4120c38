package employee

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-hrms/internal/domain"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/contextutil"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// PasswordHasher is satisfied by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service interface {
	GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOption, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (EmployeeResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	UpdateSelf(ctx context.Context, actor domain.Actor, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rbac   rbac.Service
	hasher PasswordHasher
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	rbacService rbac.Service,
	hasher PasswordHasher,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rbac:   rbacService,
		hasher: hasher,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) authorize(actor domain.Actor, action, targetID string) error {
	relations := []string{}
	if actor.ID.String() == targetID {
		relations = append(relations, domain.RelationSelf)
	}
	return s.rbac.Authorize(domain.EnforceRequest{
		Role:      actor.Role,
		Resource:  rbac.ResourceEmployee,
		Action:    action,
		Relations: relations,
	})
}

func (s *service) GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested",
		zap.String("actor_id", actor.ID.String()),
		zap.String("q", filter.Query),
		zap.String("role", filter.Role),
	)
	if err := s.authorize(actor, rbac.ActionList, ""); err != nil {
		s.logger.Warn("get all employees forbidden", zap.String("role", actor.Role))
		return nil, err
	}

	empls, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return ToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOption, error) {
	if resp, ok := s.cachedOptions(ctx); ok {
		return resp, nil
	}

	v, err, _ := s.sf.Do(EmployeeOptionsKey, func() (interface{}, error) {
		empls, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]EmployeeOption, len(empls))
		for i, e := range empls {
			resp[i] = EmployeeOption{ID: e.ID.String(), Name: e.Name, Email: e.Email}
		}
		s.storeOptions(ctx, resp)
		return resp, nil
	})
	if err != nil {
		s.logger.Error("get employee options failed", zap.Error(err))
		return nil, err
	}

	return v.([]EmployeeOption), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get employee by id failed", zap.Error(err))
		}
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionRead, id); err != nil {
		return EmployeeResponse{}, err
	}

	return ToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested",
		zap.String("actor_id", actor.ID.String()),
		zap.String("employee_id", id),
	)
	return s.update(ctx, actor, id, req, rbac.ActionUpdate)
}

func (s *service) UpdateSelf(ctx context.Context, actor domain.Actor, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update own profile requested", zap.String("employee_id", actor.ID.String()))
	if req.touchesPrivileged() {
		s.logger.Warn("update own profile tried to change privileged fields",
			zap.String("employee_id", actor.ID.String()),
		)
		return EmployeeResponse{}, employeeerrors.ErrPrivilegedSelfUpdate
	}
	return s.update(ctx, actor, actor.ID.String(), req, rbac.ActionUpdateSelf)
}

func (s *service) update(ctx context.Context, actor domain.Actor, id string, req UpdateEmployeeRequest, action string) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	current, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := s.authorize(actor, action, id); err != nil {
		s.logger.Warn("update employee forbidden",
			zap.String("actor_id", actor.ID.String()),
			zap.String("employee_id", id),
		)
		return EmployeeResponse{}, err
	}
	if req.touchesPrivileged() {
		if err := s.authorize(actor, rbac.ActionUpdateRole, id); err != nil {
			return EmployeeResponse{}, err
		}
	}

	fields, err := s.changes(ctx, qtx, current, req)
	if err != nil {
		return EmployeeResponse{}, err
	}

	if err := qtx.UpdateFields(ctx, id, fields); err != nil {
		s.logger.Error("update employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	updated, err := qtx.FindByID(ctx, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	InvalidateOptionsCache(ctx, s.rdb, s.logger)

	s.logger.Info("update employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
		zap.Strings("fields", fieldNames(fields)),
	)
	return ToResponse(*updated), nil
}

// changes turns a partial request into column updates, validating email
// uniqueness and hashing a new password.
func (s *service) changes(ctx context.Context, qtx Repository, current *Employee, req UpdateEmployeeRequest) (map[string]any, error) {
	fields := map[string]any{}

	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		if email != current.Email {
			existing, err := qtx.FindByEmail(ctx, email)
			if err == nil && existing.ID != current.ID {
				return nil, employeeerrors.ErrDuplicateEmail
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fields["email"] = email
		}
	}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			s.logger.Error("update employee hash password failed", zap.Error(err))
			return nil, err
		}
		fields["password"] = hashed
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.JoiningDate != nil {
		joined, err := time.Parse("2006-01-02", *req.JoiningDate)
		if err != nil {
			return nil, employeeerrors.ErrInvalidJoiningDate
		}
		fields["joining_date"] = joined
	}
	if req.ContactNumber != nil {
		fields["contact_number"] = *req.ContactNumber
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = *req.ProfilePicture
	}
	if req.LeavesTaken != nil {
		fields["leaves_taken"] = *req.LeavesTaken
	}
	if req.FunTaskPoints != nil {
		fields["fun_task_points"] = *req.FunTaskPoints
	}
	return fields, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("delete employee requested",
		zap.String("request_id", rid),
		zap.String("employee_id", id),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindByID(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionDelete, id); err != nil {
		return err
	}

	deps, err := qtx.CountDependents(ctx, id)
	if err != nil {
		s.logger.Error("delete employee count dependents failed", zap.Error(err))
		return err
	}
	if deps.Total() > 0 {
		s.logger.Warn("delete employee blocked by dependents",
			zap.String("employee_id", id),
			zap.Int64("leaves", deps.Leaves),
			zap.Int64("fun_tasks", deps.FunTasks),
			zap.Int64("projects", deps.ManagedProject),
			zap.Int64("tasks", deps.AssignedTasks),
		)
		return employeeerrors.ErrEmployeeHasDependents
	}

	if err := qtx.DeleteMemberships(ctx, id); err != nil {
		s.logger.Error("delete employee memberships failed", zap.Error(err))
		return err
	}
	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("delete employee commit failed", zap.Error(err))
		return err
	}

	InvalidateOptionsCache(ctx, s.rdb, s.logger)

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             empl.ID.String(),
		Name:           empl.Name,
		Email:          empl.Email,
		Role:           empl.Role,
		Department:     empl.Department,
		Position:       empl.Position,
		JoiningDate:    empl.JoiningDate.Format("2006-01-02"),
		ContactNumber:  empl.ContactNumber,
		ProfilePicture: empl.ProfilePicture,
		LeavesTaken:    empl.LeavesTaken,
		FunTaskPoints:  empl.FunTaskPoints,
		CreatedAt:      empl.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = ToResponse(e)
	}
	return res
}

func fieldNames(fields map[string]any) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	return names
}
