package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/domain"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, caller *domain.Actor, req RegisterRequest) (AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)
	Me(ctx context.Context, actor domain.Actor) (employee.EmployeeResponse, error)
	Authenticate(ctx context.Context, token string) (domain.Actor, error)
}

type service struct {
	db           *sql.DB
	employeeRepo employee.Repository
	outbox       kafka.OutboxRepository
	tokens       *TokenManager
	hasher       *Hasher
	rdb          *redis.Client
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	employeeRepo employee.Repository,
	outboxRepo kafka.OutboxRepository,
	tokens *TokenManager,
	hasher *Hasher,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:           db,
		employeeRepo: employeeRepo,
		outbox:       outboxRepo,
		tokens:       tokens,
		hasher:       hasher,
		rdb:          rdb,
		logger:       l,
	}
}

// Register creates an employee account. The first account in an empty system
// becomes admin; otherwise the requested role is honoured only for an admin
// caller and everyone else is registered as employee.
func (s *service) Register(ctx context.Context, caller *domain.Actor, req RegisterRequest) (AuthResult, error) {
	rid := contextutil.GetRequestID(ctx)
	email := employee.NormalizeEmail(req.Email)
	s.logger.Debug("register employee requested",
		zap.String("request_id", rid),
		zap.String("email", email),
	)

	if _, err := s.employeeRepo.FindByEmail(ctx, email); err == nil {
		s.logger.Warn("register employee duplicate email", zap.String("email", email))
		return AuthResult{}, employeeerrors.ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("register employee email lookup failed", zap.Error(err))
		return AuthResult{}, err
	}

	joiningDate := time.Now().UTC()
	if req.JoiningDate != "" {
		parsed, err := time.Parse("2006-01-02", req.JoiningDate)
		if err != nil {
			return AuthResult{}, employeeerrors.ErrInvalidJoiningDate
		}
		joiningDate = parsed
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("register employee hash password failed", zap.Error(err))
		return AuthResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Error("register employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AuthResult{}, err
	}
	defer tx.Rollback()

	qtx := s.employeeRepo.WithTx(tx)

	existing, err := qtx.Count(ctx)
	if err != nil {
		s.logger.Error("register employee count failed", zap.Error(err))
		return AuthResult{}, err
	}

	empl := &employee.Employee{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Password:       hashed,
		Role:           registrationRole(existing, caller, req.Role),
		Department:     req.Department,
		Position:       req.Position,
		JoiningDate:    joiningDate,
		ContactNumber:  req.ContactNumber,
		ProfilePicture: req.ProfilePicture,
	}
	if empl.ProfilePicture == "" {
		empl.ProfilePicture = employee.DefaultProfilePicture
	}

	if err := qtx.Create(ctx, empl); err != nil {
		s.logger.Error("register employee persist failed", zap.String("request_id", rid), zap.Error(err))
		return AuthResult{}, mapCreateError(err)
	}

	if s.outbox != nil {
		event := events.EmployeeRegisteredEvent{
			EventID:    uuid.NewString(),
			EventType:  events.EmployeeRegisteredType,
			RequestID:  rid,
			EmployeeID: empl.ID.String(),
			Email:      empl.Email,
			Role:       empl.Role,
			OccurredAt: time.Now().UTC(),
		}
		outboxEvent, err := kafka.NewPendingEvent(event.EventID, rid, "employee", empl.ID.String(),
			event.EventType, events.EmployeeLifecycleTopic, event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return AuthResult{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			s.logger.Error("register employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return AuthResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return AuthResult{}, mapCreateError(err)
	}

	employee.InvalidateOptionsCache(ctx, s.rdb, s.logger)

	token, err := s.tokens.Issue(empl.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.logger.Info("register employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("role", empl.Role),
	)
	return AuthResult{Token: token, Employee: employee.ToResponse(*empl)}, nil
}

func registrationRole(existing int64, caller *domain.Actor, requested string) string {
	if existing == 0 {
		return domain.RoleAdmin
	}
	if caller != nil && caller.IsAdmin() && domain.IsValidRole(requested) {
		return requested
	}
	return domain.RoleEmployee
}

func (s *service) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	email := employee.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return AuthResult{}, autherrors.ErrMissingCredentials
	}

	empl, err := s.employeeRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("login employee lookup failed", zap.Error(err))
			return AuthResult{}, err
		}
		s.logger.Warn("login unknown email", zap.String("email", email))
		return AuthResult{}, autherrors.ErrInvalidCredentials
	}

	if !s.hasher.Compare(empl.Password, req.Password) {
		s.logger.Warn("login wrong password", zap.String("employee_id", empl.ID.String()))
		return AuthResult{}, autherrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(empl.ID)
	if err != nil {
		return AuthResult{}, err
	}

	s.logger.Info("login success", zap.String("employee_id", empl.ID.String()))
	return AuthResult{Token: token, Employee: employee.ToResponse(*empl)}, nil
}

func (s *service) Me(ctx context.Context, actor domain.Actor) (employee.EmployeeResponse, error) {
	empl, err := s.employeeRepo.FindByID(ctx, actor.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employee.EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return employee.EmployeeResponse{}, err
	}
	return employee.ToResponse(*empl), nil
}

// Authenticate verifies the token and loads the caller so a deleted employee
// or a changed role takes effect immediately.
func (s *service) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Actor{}, err
	}

	empl, err := s.employeeRepo.FindByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Actor{}, autherrors.ErrNoEmployeeForToken
		}
		s.logger.Error("authenticate employee lookup failed", zap.Error(err))
		return domain.Actor{}, err
	}

	return domain.Actor{ID: empl.ID, Role: empl.Role}, nil
}

func mapCreateError(err error) error {
	if employee.IsDuplicateEmail(err) {
		return employeeerrors.ErrDuplicateEmail
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return apperror.ErrConcurrentUpdate
	}
	return err
}
