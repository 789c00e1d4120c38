package project_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-hrms/internal/domain"
	"go-hrms/internal/project"
	projecterrors "go-hrms/internal/project/errors"
	projectMock "go-hrms/internal/project/mock"
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"
	"go-hrms/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service project.Service
	repo    *projectMock.MockRepository
}

func newRBAC(t *testing.T) rbac.Service {
	t.Helper()
	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)
	svc, err := rbac.NewService(enforcer)
	assert.NoError(t, err)
	return svc
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, _ := sqlmock.New()
	repo := projectMock.NewMockRepository(ctrl)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: project.NewService(db, repo, newRBAC(t)),
		repo:    repo,
	}
}

func actor(role string) domain.Actor {
	return domain.Actor{ID: uuid.New(), Role: role}
}

func sampleProject(managerID uuid.UUID, members ...uuid.UUID) *project.Project {
	p := &project.Project{
		ID:          uuid.New(),
		Name:        "Payroll revamp",
		Description: "Rebuild payroll exports",
		StartDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:      project.StatusNotStarted,
		ManagerID:   managerID,
		Manager:     &domain.EmployeeRef{ID: managerID, Name: "Boss"},
	}
	for _, m := range members {
		p.TeamMembers = append(p.TeamMembers, domain.EmployeeRef{ID: m})
	}
	return p
}

func sampleTask(projectID uuid.UUID, assignee *uuid.UUID) *project.Task {
	return &project.Task{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Name:         "Export CSV",
		Description:  "Monthly export",
		AssignedToID: assignee,
		Status:       project.TaskStatusTodo,
	}
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("manager creates with team", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		manager := actor(domain.RoleManager)
		m1, m2 := uuid.New(), uuid.New()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountEmployees(ctx, []uuid.UUID{m1, m2}).Return(int64(2), nil)
		var createdID uuid.UUID
		deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p *project.Project) error {
			assert.Equal(t, manager.ID, p.ManagerID)
			assert.Equal(t, project.StatusNotStarted, p.Status)
			createdID = p.ID
			return nil
		})
		deps.repo.EXPECT().ReplaceMembers(ctx, gomock.Any(), []uuid.UUID{m1, m2}).Return(nil)
		deps.repo.EXPECT().FindByID(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, id string) (*project.Project, error) {
			p := sampleProject(manager.ID, m1, m2)
			p.ID = createdID
			return p, nil
		})
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Create(ctx, manager, project.CreateProjectRequest{
			Name:        "Payroll revamp",
			Description: "Rebuild payroll exports",
			StartDate:   "2024-01-10",
			EndDate:     "2024-02-01",
			TeamMembers: []string{m1.String(), m2.String(), m1.String()},
		})

		assert.NoError(t, err)
		assert.Equal(t, createdID.String(), resp.ID)
		assert.Len(t, resp.TeamMembers, 2)
		assert.Equal(t, "2024-01-10", resp.StartDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("end date must be after start date", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, actor(domain.RoleAdmin), project.CreateProjectRequest{
			Name: "Same day", Description: "x", StartDate: "2024-01-10", EndDate: "2024-01-10",
		})

		assert.ErrorIs(t, err, projecterrors.ErrInvalidDateRange)
	})

	t.Run("employee cannot create", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, actor(domain.RoleEmployee), project.CreateProjectRequest{
			Name: "Mine", Description: "x", StartDate: "2024-01-10", EndDate: "2024-01-11",
		})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("unknown team member", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		m1, m2 := uuid.New(), uuid.New()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CountEmployees(ctx, []uuid.UUID{m1, m2}).Return(int64(1), nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Create(ctx, actor(domain.RoleManager), project.CreateProjectRequest{
			Name: "P", Description: "x", StartDate: "2024-01-10", EndDate: "2024-01-11",
			TeamMembers: []string{m1.String(), m2.String()},
		})

		assert.ErrorIs(t, err, projecterrors.ErrMemberNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func strPtr(s string) *string { return &s }

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("merged dates are validated", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		manager := actor(domain.RoleManager)
		p := sampleProject(manager.ID)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, manager, p.ID.String(), project.UpdateProjectRequest{EndDate: strPtr("2024-01-05")})

		assert.ErrorIs(t, err, projecterrors.ErrInvalidDateRange)
	})

	t.Run("team members are replaced", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		manager := actor(domain.RoleManager)
		oldMember, newMember := uuid.New(), uuid.New()
		p := sampleProject(manager.ID, oldMember)
		members := []string{newMember.String()}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().UpdateFields(ctx, p.ID.String(), map[string]any{"status": project.StatusInProgress}).Return(nil)
		deps.repo.EXPECT().CountEmployees(ctx, []uuid.UUID{newMember}).Return(int64(1), nil)
		deps.repo.EXPECT().ReplaceMembers(ctx, p.ID, []uuid.UUID{newMember}).Return(nil)
		updated := sampleProject(manager.ID, newMember)
		updated.ID = p.ID
		updated.Status = project.StatusInProgress
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(updated, nil)
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Update(ctx, manager, p.ID.String(), project.UpdateProjectRequest{
			Status:      strPtr(project.StatusInProgress),
			TeamMembers: &members,
		})

		assert.NoError(t, err)
		assert.Equal(t, project.StatusInProgress, resp.Status)
		assert.Len(t, resp.TeamMembers, 1)
		assert.Equal(t, newMember.String(), resp.TeamMembers[0].ID)
	})

	t.Run("empty team clears members", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		admin := actor(domain.RoleAdmin)
		p := sampleProject(uuid.New(), uuid.New())
		members := []string{}

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil).Times(2)
		deps.repo.EXPECT().ReplaceMembers(ctx, p.ID, []uuid.UUID{}).Return(nil)
		deps.sqlMock.ExpectCommit()

		_, err := deps.service.Update(ctx, admin, p.ID.String(), project.UpdateProjectRequest{TeamMembers: &members})

		assert.NoError(t, err)
	})

	t.Run("other manager is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		p := sampleProject(uuid.New())

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, actor(domain.RoleManager), p.ID.String(), project.UpdateProjectRequest{Name: strPtr("Mine")})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("missing project", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, "missing").Return(nil, gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Update(ctx, actor(domain.RoleAdmin), "missing", project.UpdateProjectRequest{})

		assert.ErrorIs(t, err, projecterrors.ErrProjectNotFound)
	})
}

func TestProjectService_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("member reads project", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		member := actor(domain.RoleEmployee)
		p := sampleProject(uuid.New(), member.ID)

		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)

		resp, err := deps.service.GetByID(ctx, member, p.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, "Boss", resp.Manager.Name)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		p := sampleProject(uuid.New(), uuid.New())

		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)

		_, err := deps.service.GetByID(ctx, actor(domain.RoleManager), p.ID.String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("admin lists everything", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.EXPECT().FindAll(ctx, project.ListFilter{}).Return([]project.Project{*sampleProject(uuid.New())}, nil)

		resp, err := deps.service.GetAll(ctx, actor(domain.RoleAdmin))

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("employee lists own projects", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		me := actor(domain.RoleEmployee)

		deps.repo.EXPECT().FindAll(ctx, project.ListFilter{MemberID: me.ID.String()}).Return([]project.Project{}, nil)

		resp, err := deps.service.GetAll(ctx, me)

		assert.NoError(t, err)
		assert.Empty(t, resp)
	})

	t.Run("employee cannot list another employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetByEmployee(ctx, actor(domain.RoleManager), uuid.NewString())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("employee lists self", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		me := actor(domain.RoleEmployee)

		deps.repo.EXPECT().FindAll(ctx, project.ListFilter{MemberID: me.ID.String()}).Return([]project.Project{*sampleProject(me.ID)}, nil)

		resp, err := deps.service.GetByEmployee(ctx, me, me.ID.String())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})
}

func TestProjectService_Tasks(t *testing.T) {
	ctx := context.Background()

	t.Run("owner adds task with default status", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		manager := actor(domain.RoleManager)
		assignee := uuid.New()
		p := sampleProject(manager.ID, assignee)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().CountEmployees(ctx, []uuid.UUID{assignee}).Return(int64(1), nil)
		deps.repo.EXPECT().CreateTask(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, task *project.Task) error {
			assert.Equal(t, project.TaskStatusTodo, task.Status)
			assert.Equal(t, p.ID, task.ProjectID)
			assert.Equal(t, assignee, *task.AssignedToID)
			assert.Equal(t, "2024-01-20", task.DueDate.Format("2006-01-02"))
			p.Tasks = append(p.Tasks, *task)
			return nil
		})
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.AddTask(ctx, manager, p.ID.String(), project.CreateTaskRequest{
			Name:         "Export CSV",
			Description:  "Monthly export",
			AssignedToID: strPtr(assignee.String()),
			DueDate:      strPtr("2024-01-20"),
		})

		assert.NoError(t, err)
		assert.Len(t, resp.Tasks, 1)
		assert.Equal(t, "2024-01-20", *resp.Tasks[0].DueDate)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		admin := actor(domain.RoleAdmin)
		p := sampleProject(uuid.New())
		ghost := uuid.New()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().CountEmployees(ctx, []uuid.UUID{ghost}).Return(int64(0), nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.AddTask(ctx, admin, p.ID.String(), project.CreateTaskRequest{
			Name: "x", Description: "y", AssignedToID: strPtr(ghost.String()),
		})

		assert.ErrorIs(t, err, projecterrors.ErrAssigneeNotFound)
	})

	t.Run("assignee updates task", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		assignee := actor(domain.RoleEmployee)
		p := sampleProject(uuid.New(), assignee.ID)
		task := sampleTask(p.ID, &assignee.ID)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil).Times(2)
		deps.repo.EXPECT().FindTask(ctx, p.ID.String(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().UpdateTaskFields(ctx, task.ID.String(), map[string]any{"status": project.TaskStatusCompleted}).Return(nil)
		deps.sqlMock.ExpectCommit()

		_, err := deps.service.UpdateTask(ctx, assignee, p.ID.String(), task.ID.String(), project.UpdateTaskRequest{
			Status: strPtr(project.TaskStatusCompleted),
		})

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("team member who is not assignee cannot update", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		member := actor(domain.RoleEmployee)
		p := sampleProject(uuid.New(), member.ID)
		other := uuid.New()
		task := sampleTask(p.ID, &other)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().FindTask(ctx, p.ID.String(), task.ID.String()).Return(task, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.UpdateTask(ctx, member, p.ID.String(), task.ID.String(), project.UpdateTaskRequest{
			Status: strPtr(project.TaskStatusCompleted),
		})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("missing task", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		p := sampleProject(uuid.New())

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().FindTask(ctx, p.ID.String(), "nope").Return(nil, gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.UpdateTask(ctx, actor(domain.RoleAdmin), p.ID.String(), "nope", project.UpdateTaskRequest{})

		assert.ErrorIs(t, err, projecterrors.ErrProjectOrTaskNotFound)
	})

	t.Run("missing project reports project or task", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, "nope").Return(nil, gorm.ErrRecordNotFound)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.DeleteTask(ctx, actor(domain.RoleAdmin), "nope", "t")

		assert.ErrorIs(t, err, projecterrors.ErrProjectOrTaskNotFound)
	})

	t.Run("assignee cannot delete task", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		assignee := actor(domain.RoleEmployee)
		p := sampleProject(uuid.New(), assignee.ID)
		task := sampleTask(p.ID, &assignee.ID)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().FindTask(ctx, p.ID.String(), task.ID.String()).Return(task, nil)
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.DeleteTask(ctx, assignee, p.ID.String(), task.ID.String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("project manager deletes task", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		manager := actor(domain.RoleManager)
		p := sampleProject(manager.ID)
		task := sampleTask(p.ID, nil)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil).Times(2)
		deps.repo.EXPECT().FindTask(ctx, p.ID.String(), task.ID.String()).Return(task, nil)
		deps.repo.EXPECT().DeleteTask(ctx, task.ID.String()).Return(nil)
		deps.sqlMock.ExpectCommit()

		_, err := deps.service.DeleteTask(ctx, manager, p.ID.String(), task.ID.String())

		assert.NoError(t, err)
	})
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		p := sampleProject(uuid.New())

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.repo.EXPECT().Delete(ctx, p.ID.String()).Return(nil)
		deps.sqlMock.ExpectCommit()

		assert.NoError(t, deps.service.Delete(ctx, actor(domain.RoleAdmin), p.ID.String()))
	})

	t.Run("member cannot delete", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		member := actor(domain.RoleManager)
		p := sampleProject(uuid.New(), member.ID)

		deps.sqlMock.ExpectBegin()
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, p.ID.String()).Return(p, nil)
		deps.sqlMock.ExpectRollback()

		err := deps.service.Delete(ctx, member, p.ID.String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
