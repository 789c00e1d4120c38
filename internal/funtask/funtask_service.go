package funtask

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-hrms/internal/domain"
	employeeerrors "go-hrms/internal/employee/errors"
	"go-hrms/internal/events"
	funtaskerrors "go-hrms/internal/funtask/errors"
	"go-hrms/internal/messaging/kafka"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateFunTaskRequest) (FunTaskResponse, error)
	GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]FunTaskResponse, error)
	GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string, filter ListFilter) ([]FunTaskResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (FunTaskResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateFunTaskRequest) (FunTaskResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Leaderboard(ctx context.Context, actor domain.Actor, limit int) ([]LeaderboardEntry, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rbac   rbac.Service
	board  *Leaderboard
	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rbacService rbac.Service,
	board *Leaderboard,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("funtask.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("funtask.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		rbac:   rbacService,
		board:  board,
		now:    func() time.Time { return time.Now().UTC() },
		logger: l,
	}
}

func relationsFor(actor domain.Actor, task *FunTask) []string {
	relations := []string{}
	if task == nil {
		return relations
	}
	if actor.ID == task.CreatedByID {
		relations = append(relations, domain.RelationCreator)
	}
	if actor.ID == task.AssignedToID {
		relations = append(relations, domain.RelationAssignee)
	}
	return relations
}

func (s *service) authorize(actor domain.Actor, action string, task *FunTask) error {
	return s.rbac.Authorize(domain.EnforceRequest{
		Role:      actor.Role,
		Resource:  rbac.ResourceFunTask,
		Action:    action,
		Relations: relationsFor(actor, task),
	})
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateFunTaskRequest) (FunTaskResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create fun task requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.ID.String()),
		zap.String("assigned_to", req.AssignedToID),
		zap.Int("points", req.Points),
	)

	if err := s.authorize(actor, rbac.ActionCreate, nil); err != nil {
		s.logger.Warn("create fun task forbidden", zap.String("role", actor.Role))
		return FunTaskResponse{}, err
	}

	assignee, err := s.existingEmployee(ctx, s.repo, req.AssignedToID)
	if err != nil {
		return FunTaskResponse{}, err
	}

	task := &FunTask{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Points:       req.Points,
		CreatedByID:  actor.ID,
		AssignedToID: assignee,
		Status:       StatusPending,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("create fun task persist failed", zap.String("request_id", rid), zap.Error(err))
		return FunTaskResponse{}, mapRepositoryError(err)
	}

	created, err := s.repo.FindByID(ctx, task.ID.String())
	if err != nil {
		return FunTaskResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("create fun task success",
		zap.String("request_id", rid),
		zap.String("fun_task_id", task.ID.String()),
	)
	return ToResponse(*created), nil
}

func (s *service) existingEmployee(ctx context.Context, repo Repository, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, funtaskerrors.ErrAssigneeNotFound
	}
	ok, err := repo.EmployeeExists(ctx, parsed.String())
	if err != nil {
		s.logger.Error("fun task assignee lookup failed", zap.Error(err))
		return uuid.Nil, err
	}
	if !ok {
		return uuid.Nil, funtaskerrors.ErrAssigneeNotFound
	}
	return parsed, nil
}

func (s *service) GetAll(ctx context.Context, actor domain.Actor, filter ListFilter) ([]FunTaskResponse, error) {
	if err := s.authorize(actor, rbac.ActionList, nil); err != nil {
		return nil, err
	}
	if filter.AssignedToID != "" {
		if _, err := uuid.Parse(filter.AssignedToID); err != nil {
			return []FunTaskResponse{}, nil
		}
	}
	tasks, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all fun tasks failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(tasks), nil
}

func (s *service) GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string, filter ListFilter) ([]FunTaskResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, employeeerrors.ErrEmployeeNotFound
	}
	filter.AssignedToID = employeeID
	return s.GetAll(ctx, actor, filter)
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (FunTaskResponse, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get fun task by id failed", zap.String("fun_task_id", id), zap.Error(err))
		}
		return FunTaskResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(actor, rbac.ActionRead, task); err != nil {
		return FunTaskResponse{}, err
	}
	return ToResponse(*task), nil
}

// Update edits a fun task and applies status changes. Completing a task
// stamps completedAt and credits the assignee in the same serializable
// transaction, keyed on the status read at the start.
func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateFunTaskRequest) (FunTaskResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update fun task requested",
		zap.String("request_id", rid),
		zap.String("fun_task_id", id),
		zap.String("actor_id", actor.ID.String()),
	)

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		s.logger.Error("update fun task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return FunTaskResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	task, err := qtx.FindByID(ctx, id)
	if err != nil {
		return FunTaskResponse{}, mapRepositoryError(err)
	}

	action := rbac.ActionUpdateStatus
	if req.editsDetails() {
		action = rbac.ActionUpdate
	}
	if err := s.authorize(actor, action, task); err != nil {
		s.logger.Warn("update fun task forbidden",
			zap.String("fun_task_id", id),
			zap.String("actor_id", actor.ID.String()),
			zap.String("action", action),
		)
		return FunTaskResponse{}, err
	}

	from := task.Status
	to := from
	if req.Status != nil {
		to = *req.Status
	}
	if !canTransition(from, to) {
		s.logger.Warn("update fun task invalid transition",
			zap.String("fun_task_id", id),
			zap.String("from_status", from),
			zap.String("to_status", to),
		)
		return FunTaskResponse{}, funtaskerrors.ErrInvalidStatusTransition
	}
	if to == StatusApproved && from != StatusApproved {
		if err := s.authorize(actor, rbac.ActionUpdate, task); err != nil {
			return FunTaskResponse{}, err
		}
	}

	fields, err := s.changes(ctx, qtx, task, req)
	if err != nil {
		return FunTaskResponse{}, err
	}

	completing := to == StatusCompleted && from != StatusCompleted
	if to != from {
		fields["status"] = to
	}
	if completing {
		fields["completed_at"] = s.now()
	}

	if len(fields) > 0 {
		if err := qtx.UpdateFields(ctx, id, from, fields); err != nil {
			s.logger.Warn("update fun task persist failed",
				zap.String("request_id", rid),
				zap.String("fun_task_id", id),
				zap.Error(err),
			)
			return FunTaskResponse{}, mapRepositoryError(err)
		}
	}

	updated, err := qtx.FindByID(ctx, id)
	if err != nil {
		return FunTaskResponse{}, mapRepositoryError(err)
	}

	if completing {
		if err := qtx.CreditPoints(ctx, updated.AssignedToID, updated.Points); err != nil {
			s.logger.Error("update fun task credit failed",
				zap.String("fun_task_id", id),
				zap.String("assigned_to", updated.AssignedToID.String()),
				zap.Error(err),
			)
			return FunTaskResponse{}, mapRepositoryError(err)
		}
		if err := s.publishCompleted(ctx, tx, updated); err != nil {
			return FunTaskResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update fun task commit failed", zap.String("request_id", rid), zap.Error(err))
		return FunTaskResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update fun task success",
		zap.String("request_id", rid),
		zap.String("fun_task_id", id),
		zap.String("from_status", from),
		zap.String("to_status", to),
		zap.Bool("credited", completing),
	)
	return ToResponse(*updated), nil
}

// changes turns the non-status part of a request into column updates.
// Points and assignee are frozen once the task has been completed.
func (s *service) changes(ctx context.Context, qtx Repository, task *FunTask, req UpdateFunTaskRequest) (map[string]any, error) {
	fields := map[string]any{}

	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}

	locked := task.Status != StatusPending
	if req.Points != nil && *req.Points != task.Points {
		if locked {
			return nil, funtaskerrors.ErrCompletedTaskLocked
		}
		fields["points"] = *req.Points
	}
	if req.AssignedToID != nil && *req.AssignedToID != task.AssignedToID.String() {
		if locked {
			return nil, funtaskerrors.ErrCompletedTaskLocked
		}
		assignee, err := s.existingEmployee(ctx, qtx, *req.AssignedToID)
		if err != nil {
			return nil, err
		}
		fields["assigned_to_id"] = assignee
	}
	return fields, nil
}

func (s *service) publishCompleted(ctx context.Context, tx *sql.Tx, task *FunTask) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	completedAt := s.now()
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}
	event := events.FunTaskCompletedEvent{
		EventID:      uuid.NewString(),
		EventType:    events.FunTaskCompletedType,
		RequestID:    rid,
		FunTaskID:    task.ID.String(),
		AssignedToID: task.AssignedToID.String(),
		Points:       task.Points,
		CompletedAt:  completedAt,
	}
	outboxEvent, err := kafka.NewPendingEvent(event.EventID, rid, "fun_task", task.ID.String(),
		event.EventType, events.FunTaskLifecycleTopic, event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
		s.logger.Error("update fun task outbox persist failed",
			zap.String("fun_task_id", task.ID.String()),
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
		s.logger.Error("delete fun task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	task, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := s.authorize(actor, rbac.ActionDelete, task); err != nil {
		s.logger.Warn("delete fun task forbidden",
			zap.String("fun_task_id", id),
			zap.String("actor_id", actor.ID.String()),
		)
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete fun task failed", zap.String("fun_task_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete fun task commit failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	s.logger.Info("delete fun task success", zap.String("request_id", rid), zap.String("fun_task_id", id))
	return nil
}

func (s *service) Leaderboard(ctx context.Context, actor domain.Actor, limit int) ([]LeaderboardEntry, error) {
	if err := s.authorize(actor, rbac.ActionList, nil); err != nil {
		return nil, err
	}
	entries, err := s.board.Top(ctx, limit)
	if err != nil {
		s.logger.Error("get leaderboard failed", zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// canTransition allows pending -> completed -> approved and same-status
// requests.
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusCompleted
	case StatusCompleted:
		return to == StatusApproved
	default:
		return false
	}
}

func ToResponse(task FunTask) FunTaskResponse {
	resp := FunTaskResponse{
		ID:           task.ID.String(),
		Title:        task.Title,
		Description:  task.Description,
		Points:       task.Points,
		Status:       task.Status,
		CreatedByID:  task.CreatedByID.String(),
		CreatedBy:    task.CreatedBy.Summary(),
		AssignedToID: task.AssignedToID.String(),
		AssignedTo:   task.AssignedTo.Summary(),
		CreatedAt:    task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.CompletedAt != nil {
		completed := task.CompletedAt.UTC().Format(time.RFC3339)
		resp.CompletedAt = &completed
	}
	return resp
}

func ToListResponse(tasks []FunTask) []FunTaskResponse {
	res := make([]FunTaskResponse, len(tasks))
	for i, t := range tasks {
		res[i] = ToResponse(t)
	}
	return res
}
