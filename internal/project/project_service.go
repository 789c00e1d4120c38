package project

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go-hrms/internal/domain"
	projecterrors "go-hrms/internal/project/errors"
	"go-hrms/internal/rbac"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateProjectRequest) (ProjectResponse, error)
	GetAll(ctx context.Context, actor domain.Actor) ([]ProjectResponse, error)
	GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string) ([]ProjectResponse, error)
	GetByID(ctx context.Context, actor domain.Actor, id string) (ProjectResponse, error)
	Update(ctx context.Context, actor domain.Actor, id string, req UpdateProjectRequest) (ProjectResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	AddTask(ctx context.Context, actor domain.Actor, projectID string, req CreateTaskRequest) (ProjectResponse, error)
	UpdateTask(ctx context.Context, actor domain.Actor, projectID, taskID string, req UpdateTaskRequest) (ProjectResponse, error)
	DeleteTask(ctx context.Context, actor domain.Actor, projectID, taskID string) (ProjectResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rbac   rbac.Service
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rbacService rbac.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("project.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("project.service")
	}
	return &service{db: db, repo: repo, rbac: rbacService, logger: l}
}

func projectRelations(actor domain.Actor, p *Project) []string {
	relations := []string{}
	if p == nil {
		return relations
	}
	if actor.ID == p.ManagerID {
		relations = append(relations, domain.RelationManager)
	}
	if p.HasMember(actor.ID) {
		relations = append(relations, domain.RelationMember)
	}
	return relations
}

func taskRelations(actor domain.Actor, p *Project, task *Task) []string {
	relations := []string{}
	if actor.ID == p.ManagerID {
		relations = append(relations, domain.RelationManager)
	}
	if task.AssignedToID != nil && *task.AssignedToID == actor.ID {
		relations = append(relations, domain.RelationAssignee)
	}
	return relations
}

func (s *service) authorize(actor domain.Actor, resource, action string, relations []string) error {
	return s.rbac.Authorize(domain.EnforceRequest{
		Role:      actor.Role,
		Resource:  resource,
		Action:    action,
		Relations: relations,
	})
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, projecterrors.ErrInvalidDate
	}
	return t, nil
}

func checkRange(start, end time.Time) error {
	if !end.After(start) {
		return projecterrors.ErrInvalidDateRange
	}
	return nil
}

// memberIDs parses and dedupes ids, then checks that every one is an
// employee.
func (s *service) memberIDs(ctx context.Context, qtx Repository, raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, v := range raw {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, projecterrors.ErrMemberNotFound
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	count, err := qtx.CountEmployees(ctx, ids)
	if err != nil {
		s.logger.Error("project member lookup failed", zap.Error(err))
		return nil, err
	}
	if count != int64(len(ids)) {
		return nil, projecterrors.ErrMemberNotFound
	}
	return ids, nil
}

func (s *service) assignee(ctx context.Context, qtx Repository, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, projecterrors.ErrAssigneeNotFound
	}
	count, err := qtx.CountEmployees(ctx, []uuid.UUID{id})
	if err != nil {
		s.logger.Error("task assignee lookup failed", zap.Error(err))
		return uuid.Nil, err
	}
	if count == 0 {
		return uuid.Nil, projecterrors.ErrAssigneeNotFound
	}
	return id, nil
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateProjectRequest) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create project requested",
		zap.String("request_id", rid),
		zap.String("manager_id", actor.ID.String()),
		zap.Int("team_members", len(req.TeamMembers)),
	)

	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionCreate, nil); err != nil {
		s.logger.Warn("create project forbidden", zap.String("role", actor.Role))
		return ProjectResponse{}, err
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return ProjectResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return ProjectResponse{}, err
	}
	if err := checkRange(startDate, endDate); err != nil {
		s.logger.Warn("create project validation failed", zap.Error(err))
		return ProjectResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = StatusNotStarted
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create project begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	members, err := s.memberIDs(ctx, qtx, req.TeamMembers)
	if err != nil {
		return ProjectResponse{}, err
	}

	p := &Project{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      status,
		ManagerID:   actor.ID,
	}
	if err := qtx.Create(ctx, p); err != nil {
		s.logger.Error("create project persist failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if len(members) > 0 {
		if err := qtx.ReplaceMembers(ctx, p.ID, members); err != nil {
			s.logger.Error("create project members failed", zap.String("project_id", p.ID.String()), zap.Error(err))
			return ProjectResponse{}, mapRepositoryError(err)
		}
	}

	created, err := qtx.FindByID(ctx, p.ID.String())
	if err != nil {
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create project commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("create project success",
		zap.String("request_id", rid),
		zap.String("project_id", p.ID.String()),
	)
	return ToResponse(*created), nil
}

// GetAll lists every project for roles holding list_all and the caller's
// own projects for everyone else.
func (s *service) GetAll(ctx context.Context, actor domain.Actor) ([]ProjectResponse, error) {
	all, err := s.rbac.Enforce(domain.EnforceRequest{
		Role:     actor.Role,
		Resource: rbac.ResourceProject,
		Action:   rbac.ActionListAll,
	})
	if err != nil {
		return nil, err
	}

	filter := ListFilter{}
	if !all {
		filter.MemberID = actor.ID.String()
	}
	projects, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all projects failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(projects), nil
}

func (s *service) GetByEmployee(ctx context.Context, actor domain.Actor, employeeID string) ([]ProjectResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	relations := []string{}
	if id == actor.ID {
		relations = append(relations, domain.RelationSelf)
	}
	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionList, relations); err != nil {
		s.logger.Warn("get employee projects forbidden",
			zap.String("actor_id", actor.ID.String()),
			zap.String("employee_id", employeeID),
		)
		return nil, err
	}

	projects, err := s.repo.FindAll(ctx, ListFilter{MemberID: id.String()})
	if err != nil {
		s.logger.Error("get employee projects failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return ToListResponse(projects), nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id string) (ProjectResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("get project by id failed", zap.String("project_id", id), zap.Error(err))
		}
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionRead, projectRelations(actor, p)); err != nil {
		return ProjectResponse{}, err
	}
	return ToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id string, req UpdateProjectRequest) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update project requested",
		zap.String("request_id", rid),
		zap.String("project_id", id),
		zap.String("actor_id", actor.ID.String()),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update project begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionUpdate, projectRelations(actor, p)); err != nil {
		s.logger.Warn("update project forbidden",
			zap.String("project_id", id),
			zap.String("actor_id", actor.ID.String()),
		)
		return ProjectResponse{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}

	startDate, endDate := p.StartDate, p.EndDate
	if req.StartDate != nil {
		if startDate, err = parseDate(*req.StartDate); err != nil {
			return ProjectResponse{}, err
		}
		fields["start_date"] = startDate
	}
	if req.EndDate != nil {
		if endDate, err = parseDate(*req.EndDate); err != nil {
			return ProjectResponse{}, err
		}
		fields["end_date"] = endDate
	}
	if err := checkRange(startDate, endDate); err != nil {
		s.logger.Warn("update project validation failed", zap.String("project_id", id), zap.Error(err))
		return ProjectResponse{}, err
	}

	if len(fields) > 0 {
		if err := qtx.UpdateFields(ctx, id, fields); err != nil {
			s.logger.Error("update project persist failed", zap.String("project_id", id), zap.Error(err))
			return ProjectResponse{}, mapRepositoryError(err)
		}
	}

	if req.TeamMembers != nil {
		members, err := s.memberIDs(ctx, qtx, *req.TeamMembers)
		if err != nil {
			return ProjectResponse{}, err
		}
		if err := qtx.ReplaceMembers(ctx, p.ID, members); err != nil {
			s.logger.Error("update project members failed", zap.String("project_id", id), zap.Error(err))
			return ProjectResponse{}, mapRepositoryError(err)
		}
	}

	updated, err := qtx.FindByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update project commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("update project success", zap.String("request_id", rid), zap.String("project_id", id))
	return ToResponse(*updated), nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete project begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionDelete, projectRelations(actor, p)); err != nil {
		s.logger.Warn("delete project forbidden",
			zap.String("project_id", id),
			zap.String("actor_id", actor.ID.String()),
		)
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		s.logger.Error("delete project failed", zap.String("project_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete project commit failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	s.logger.Info("delete project success",
		zap.String("request_id", rid),
		zap.String("project_id", id),
		zap.Int("tasks", len(p.Tasks)),
	)
	return nil
}

func (s *service) AddTask(ctx context.Context, actor domain.Actor, projectID string, req CreateTaskRequest) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("add task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindByID(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := s.authorize(actor, rbac.ResourceProject, rbac.ActionAddTask, projectRelations(actor, p)); err != nil {
		s.logger.Warn("add task forbidden",
			zap.String("project_id", projectID),
			zap.String("actor_id", actor.ID.String()),
		)
		return ProjectResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = TaskStatusTodo
	}
	task := &Task{
		ID:          uuid.New(),
		ProjectID:   p.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      status,
	}
	if req.AssignedToID != nil {
		assignee, err := s.assignee(ctx, qtx, *req.AssignedToID)
		if err != nil {
			return ProjectResponse{}, err
		}
		task.AssignedToID = &assignee
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return ProjectResponse{}, err
		}
		task.DueDate = &due
	}

	if err := qtx.CreateTask(ctx, task); err != nil {
		s.logger.Error("add task persist failed", zap.String("project_id", projectID), zap.Error(err))
		return ProjectResponse{}, mapRepositoryError(err)
	}

	updated, err := qtx.FindByID(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("add task commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("add task success",
		zap.String("request_id", rid),
		zap.String("project_id", projectID),
		zap.String("task_id", task.ID.String()),
	)
	return ToResponse(*updated), nil
}

// loadTask loads a project and one of its tasks. Either missing reports
// the same not found error.
func (s *service) loadTask(ctx context.Context, qtx Repository, projectID, taskID string) (*Project, *Task, error) {
	p, err := qtx.FindByID(ctx, projectID)
	if err != nil {
		return nil, nil, mapTaskError(err)
	}
	task, err := qtx.FindTask(ctx, projectID, taskID)
	if err != nil {
		return nil, nil, mapTaskError(err)
	}
	return p, task, nil
}

func (s *service) UpdateTask(ctx context.Context, actor domain.Actor, projectID, taskID string, req UpdateTaskRequest) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, task, err := s.loadTask(ctx, qtx, projectID, taskID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if err := s.authorize(actor, rbac.ResourceTask, rbac.ActionUpdate, taskRelations(actor, p, task)); err != nil {
		s.logger.Warn("update task forbidden",
			zap.String("project_id", projectID),
			zap.String("task_id", taskID),
			zap.String("actor_id", actor.ID.String()),
		)
		return ProjectResponse{}, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			return ProjectResponse{}, err
		}
		fields["due_date"] = due
	}
	if req.AssignedToID != nil {
		assignee, err := s.assignee(ctx, qtx, *req.AssignedToID)
		if err != nil {
			return ProjectResponse{}, err
		}
		fields["assigned_to_id"] = assignee
	}

	if len(fields) > 0 {
		if err := qtx.UpdateTaskFields(ctx, taskID, fields); err != nil {
			s.logger.Error("update task persist failed", zap.String("task_id", taskID), zap.Error(err))
			return ProjectResponse{}, mapTaskError(err)
		}
	}

	updated, err := qtx.FindByID(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, mapTaskError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update task commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("update task success",
		zap.String("request_id", rid),
		zap.String("project_id", projectID),
		zap.String("task_id", taskID),
	)
	return ToResponse(*updated), nil
}

func (s *service) DeleteTask(ctx context.Context, actor domain.Actor, projectID, taskID string) (ProjectResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, task, err := s.loadTask(ctx, qtx, projectID, taskID)
	if err != nil {
		return ProjectResponse{}, err
	}
	if err := s.authorize(actor, rbac.ResourceTask, rbac.ActionDelete, taskRelations(actor, p, task)); err != nil {
		s.logger.Warn("delete task forbidden",
			zap.String("project_id", projectID),
			zap.String("task_id", taskID),
			zap.String("actor_id", actor.ID.String()),
		)
		return ProjectResponse{}, err
	}

	if err := qtx.DeleteTask(ctx, taskID); err != nil {
		s.logger.Error("delete task failed", zap.String("task_id", taskID), zap.Error(err))
		return ProjectResponse{}, mapTaskError(err)
	}

	updated, err := qtx.FindByID(ctx, projectID)
	if err != nil {
		return ProjectResponse{}, mapTaskError(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("delete task commit failed", zap.String("request_id", rid), zap.Error(err))
		return ProjectResponse{}, err
	}

	s.logger.Info("delete task success",
		zap.String("request_id", rid),
		zap.String("project_id", projectID),
		zap.String("task_id", taskID),
	)
	return ToResponse(*updated), nil
}

func toTaskResponse(task Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		ProjectID:   task.ProjectID.String(),
		Name:        task.Name,
		Description: task.Description,
		AssignedTo:  task.AssignedTo.Summary(),
		Status:      task.Status,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.AssignedToID != nil {
		id := task.AssignedToID.String()
		resp.AssignedToID = &id
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		resp.DueDate = &due
	}
	return resp
}

func ToResponse(p Project) ProjectResponse {
	members := make([]domain.EmployeeSummary, len(p.TeamMembers))
	for i := range p.TeamMembers {
		members[i] = *p.TeamMembers[i].Summary()
	}
	tasks := make([]TaskResponse, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = toTaskResponse(t)
	}
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		Status:      p.Status,
		ManagerID:   p.ManagerID.String(),
		Manager:     p.Manager.Summary(),
		TeamMembers: members,
		Tasks:       tasks,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ToListResponse(projects []Project) []ProjectResponse {
	res := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		res[i] = ToResponse(p)
	}
	return res
}
