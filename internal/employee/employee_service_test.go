package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-hrms/internal/domain"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
	employeeMock "go-hrms/internal/employee/mock"
	"go-hrms/internal/rbac"
	"go-hrms/internal/rbac/infra"
	"go-hrms/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	redismock redismock.ClientMock
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
	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)

	svc := employee.NewService(db, repo, newRBAC(t), fakeHasher{}, dbRedis)

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func sampleEmployee(role string) *employee.Employee {
	return &employee.Employee{
		ID:          uuid.New(),
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Password:    "secret-hash",
		Role:        role,
		Department:  "Engineering",
		Position:    "Developer",
		JoiningDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func actorOf(e *employee.Employee) domain.Actor {
	return domain.Actor{ID: e.ID, Role: e.Role}
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("manager lists", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		filter := employee.ListFilter{Query: "jane"}
		deps.repo.EXPECT().FindAll(ctx, filter).Return([]employee.Employee{*sampleEmployee(domain.RoleEmployee)}, nil)

		resp, err := deps.service.GetAll(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleManager}, filter)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Jane Doe", resp[0].Name)
	})

	t.Run("employee forbidden", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetAll(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}, employee.ListFilter{})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		cached := []employee.EmployeeOption{{ID: uuid.New().String(), Name: "Jane", Email: "jane@example.com"}}
		jsonResp, _ := json.Marshal(cached)
		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).SetVal(string(jsonResp))

		resp, err := deps.service.GetOptions(ctx)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		e := sampleEmployee(domain.RoleEmployee)
		want := []employee.EmployeeOption{{ID: e.ID.String(), Name: e.Name, Email: e.Email}}
		jsonResp, _ := json.Marshal(want)

		deps.redismock.ExpectGet(employee.EmployeeOptionsKey).RedisNil()
		deps.repo.EXPECT().FindOptions(ctx).Return([]employee.Employee{*e}, nil)
		deps.redismock.ExpectSet(employee.EmployeeOptionsKey, jsonResp, employee.EmployeeOptionsTTL).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		assert.NoError(t, err)
		assert.Equal(t, want, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	defer deps.db.Close()

	t.Run("found without password", func(t *testing.T) {
		e := sampleEmployee(domain.RoleEmployee)
		deps.repo.EXPECT().FindByID(ctx, e.ID.String()).Return(e, nil)

		resp, err := deps.service.GetByID(ctx, actorOf(e), e.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, e.Email, resp.Email)
		raw, _ := json.Marshal(resp)
		assert.NotContains(t, string(raw), "secret-hash")
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("admin changes email password and role", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		newEmail := "New@Example.com "
		newPassword := "newsecret"
		newRole := domain.RoleManager

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)
		deps.repo.EXPECT().FindByEmail(ctx, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().
			UpdateFields(ctx, target.ID.String(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, id string, fields map[string]any) error {
				assert.Equal(t, "new@example.com", fields["email"])
				assert.Equal(t, "hashed:newsecret", fields["password"])
				assert.Equal(t, domain.RoleManager, fields["role"])
				assert.NotContains(t, fields, "leaves_taken")
				return nil
			})
		updated := *target
		updated.Email = "new@example.com"
		updated.Role = domain.RoleManager
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(&updated, nil)
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		resp, err := deps.service.Update(ctx, admin, target.ID.String(), employee.UpdateEmployeeRequest{
			Email:    &newEmail,
			Password: &newPassword,
			Role:     &newRole,
		})

		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", resp.Email)
		assert.Equal(t, domain.RoleManager, resp.Role)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		other := sampleEmployee(domain.RoleEmployee)
		email := "taken@example.com"

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)
		deps.repo.EXPECT().FindByEmail(ctx, email).Return(other, nil)

		_, err := deps.service.Update(ctx, admin, target.ID.String(), employee.UpdateEmployeeRequest{Email: &email})

		assert.ErrorIs(t, err, employeeerrors.ErrDuplicateEmail)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 400, httpErr.Status)
		assert.Equal(t, "Email already exists", httpErr.Message)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("missing employee returns not found before authorization", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		id := uuid.New().String()
		name := "x"
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.Update(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleEmployee}, id, employee.UpdateEmployeeRequest{Name: &name})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("manager cannot update others", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		name := "x"
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)

		_, err := deps.service.Update(ctx, domain.Actor{ID: uuid.New(), Role: domain.RoleManager}, target.ID.String(), employee.UpdateEmployeeRequest{Name: &name})

		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestEmployeeService_UpdateSelf(t *testing.T) {
	ctx := context.Background()

	t.Run("role change rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		me := sampleEmployee(domain.RoleEmployee)
		role := domain.RoleAdmin

		_, err := deps.service.UpdateSelf(ctx, actorOf(me), employee.UpdateEmployeeRequest{Role: &role})

		assert.ErrorIs(t, err, employeeerrors.ErrPrivilegedSelfUpdate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("admin changing own role is pointed at the admin route", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		me := sampleEmployee(domain.RoleAdmin)
		role := domain.RoleManager

		_, err := deps.service.UpdateSelf(ctx, actorOf(me), employee.UpdateEmployeeRequest{Role: &role})

		assert.ErrorIs(t, err, employeeerrors.ErrPrivilegedSelfUpdate)
		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, 403, httpErr.Status)
		assert.Contains(t, httpErr.Message, "PUT /employees/:id")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("own contact number", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		me := sampleEmployee(domain.RoleEmployee)
		phone := "0812-000"

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, me.ID.String()).Return(me, nil).Times(2)
		deps.repo.EXPECT().
			UpdateFields(ctx, me.ID.String(), map[string]any{"contact_number": phone}).
			Return(nil)
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		_, err := deps.service.UpdateSelf(ctx, actorOf(me), employee.UpdateEmployeeRequest{ContactNumber: &phone})

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("restricted when referenced", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)
		deps.repo.EXPECT().CountDependents(ctx, target.ID.String()).Return(employee.Dependents{Leaves: 2}, nil)

		err := deps.service.Delete(ctx, admin, target.ID.String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeHasDependents)
		assert.Equal(t, 409, apperror.ToHTTP(err).Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success removes memberships", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)
		deps.repo.EXPECT().CountDependents(ctx, target.ID.String()).Return(employee.Dependents{}, nil)
		deps.repo.EXPECT().DeleteMemberships(ctx, target.ID.String()).Return(nil)
		deps.repo.EXPECT().Delete(ctx, target.ID.String()).Return(nil)
		deps.redismock.ExpectDel(employee.EmployeeOptionsKey).SetVal(1)

		err := deps.service.Delete(ctx, admin, target.ID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repository failure is wrapped as internal", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		target := sampleEmployee(domain.RoleEmployee)
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, target.ID.String()).Return(target, nil)
		deps.repo.EXPECT().CountDependents(ctx, target.ID.String()).Return(employee.Dependents{}, errors.New("db down"))

		err := deps.service.Delete(ctx, admin, target.ID.String())

		assert.Error(t, err)
		assert.Equal(t, 500, apperror.ToHTTP(err).Status)
	})
}
