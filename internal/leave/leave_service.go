package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-hrms/internal/domain"
	"go-hrms/internal/events"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]LeaveResponse, error)
	GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string, filter ListFilter) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id string, req UpdateStatusRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rbac   rbac.Service
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rbacService rbac.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, rbac: rbacService, logger: l}
}

func (s *service) authorize(actor domain.Actor, action string, ownerID uuid.UUID) error {
	relations := []string{}
	if ownerID != uuid.Nil && actor.ID == ownerID {
		relations = append(relations, domain.RelationOwner)
	}
	return s.rbac.Authorize(domain.EnforceRequest{
		Role:      actor.Role,
		Resource:  rbac.ResourceLeave,
		Action:    action,
		Relations: relations,
	})
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", actor.ID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if err := s.authorize(actor, rbac.ActionCreate, actor.ID); err != nil {
		return LeaveResponse{}, err
	}

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	l := &Leave{
		ID:         uuid.New(),
		EmployeeID: actor.ID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     strings.TrimSpace(req.Reason),
		Status:     StatusPending,
	}

	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	created, err := s.repo.FindByID(ctx, l.ID.String())
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.Int("days", l.Days()),
	)
	return ToResponse(*created), nil
}

func (s *service) GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]LeaveResponse, error) {
	if err := s.authorize(actor, rbac.ActionListAll, uuid.Nil); err != nil {
		return nil, err
	}

	filter.EmployeeID = ""
	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(leaves), nil
}

func (s *service) GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string, filter ListFilter) ([]LeaveResponse, error) {
	ownerID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if err := s.authorize(actor, rbac.ActionList, ownerID); err != nil {
		s.logger.Warn("get employee leaves forbidden",
			zap.String("actor_id", actor.ID.String()),
			zap.String("employee_id", employeeID),
		)
		return nil, err
	}

	filter.EmployeeID = ownerID.String()
	leaves, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get employee leaves failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(leaves), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get leave by id failed", zap.String("leave_id", id), zap.Error(err))
		}
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionRead, l.EmployeeID); err != nil {
		return LeaveResponse{}, err
	}
	return ToResponse(*l), nil
}

// UpdateStatus applies a status change and, on the edge into approved,
// credits the requester's leaves_taken, all in one serializable transaction.
func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id string, req UpdateStatusRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave status requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID.String()),
		zap.String("target_status", req.Status),
	)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Error("update leave status begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionUpdateStatus, l.EmployeeID); err != nil {
		s.logger.Warn("update leave status forbidden",
			zap.String("leave_id", id),
			zap.String("role", actor.Role),
		)
		return LeaveResponse{}, err
	}

	from := l.Status
	if !canTransition(from, req.Status) {
		s.logger.Warn("update leave status invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", from),
			zap.String("to_status", req.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	if err := qtx.UpdateStatus(ctx, id, from, req.Status, actor.ID); err != nil {
		s.logger.Warn("update leave status persist failed",
			zap.String("request_id", rid),
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, mapRepositoryError(err)
	}

	credited := 0
	if req.Status == StatusApproved && from != StatusApproved {
		credited = l.Days()
		if err := qtx.CreditLeaves(ctx, l.EmployeeID, credited); err != nil {
			s.logger.Error("update leave status credit failed",
				zap.String("leave_id", id),
				zap.String("employee_id", l.EmployeeID.String()),
				zap.Error(err),
			)
			return LeaveResponse{}, mapRepositoryError(err)
		}
	}

	if from != req.Status && s.outbox != nil {
		if err := s.publishStatusChanged(ctx, tx, l, actor.ID, from, req.Status, credited); err != nil {
			return LeaveResponse{}, err
		}
	}

	updated, err := qtx.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave status commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update leave status success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("from_status", from),
		zap.String("to_status", req.Status),
		zap.Int("days_credited", credited),
	)
	return ToResponse(*updated), nil
}

func (s *service) publishStatusChanged(ctx context.Context, tx *sql.Tx, l *Leave, approverID uuid.UUID, from, to string, credited int) error {
	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveStatusChangedEvent{
		EventID:      uuid.NewString(),
		EventType:    events.LeaveStatusChangedType,
		RequestID:    rid,
		LeaveID:      l.ID.String(),
		EmployeeID:   l.EmployeeID.String(),
		ApprovedByID: approverID.String(),
		FromStatus:   from,
		ToStatus:     to,
		DaysCredited: credited,
		OccurredAt:   time.Now().UTC(),
	}
	outboxEvent, err := kafka.NewPendingEvent(event.EventID, rid, "leave", l.ID.String(),
		event.EventType, events.LeaveLifecycleTopic, event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		s.logger.Error("update leave status outbox persist failed",
			zap.String("leave_id", l.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionDelete, l.EmployeeID); err != nil {
		s.logger.Warn("delete leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_id", actor.ID.String()),
		)
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	s.logger.Info("delete leave success", zap.String("request_id", rid), zap.String("leave_id", id))
	return nil
}

// canTransition reports whether a leave may move from one status to another.
// approved is terminal apart from re-approving.
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected
	case StatusRejected:
		return to == StatusApproved
	default:
		return false
	}
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDate
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDate
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func ToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		Employee:   l.Employee.Summary(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Days:       l.Days(),
		Reason:     l.Reason,
		Status:     l.Status,
		ApprovedBy: l.ApprovedBy.Summary(),
		CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.ApprovedByID != nil {
		approver := l.ApprovedByID.String()
		resp.ApprovedByID = &approver
	}
	return resp
}

func ToListResponse(leaves []Leave) []LeaveResponse {
	res := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		res[i] = ToResponse(l)
	}
	return res
}
