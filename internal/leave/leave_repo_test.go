package leave_test

import (
	"context"
	"testing"
	"time"

	"go-hrms/internal/domain"
	"go-hrms/internal/employee"
	"go-hrms/internal/leave"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func seedEmployee(t *testing.T, db *gorm.DB, name string) *employee.Employee {
	t.Helper()
	e := &employee.Employee{
		ID:          uuid.New(),
		Name:        name,
		Email:       name + "@example.com",
		Password:    "hash",
		Role:        domain.RoleEmployee,
		Department:  "Engineering",
		Position:    "Developer",
		JoiningDate: time.Now().UTC(),
	}
	assert.NoError(t, db.Create(e).Error)
	return e
}

func TestLeaveRepository_StatusAndCredit(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, &employee.Employee{}, &leave.Leave{})
	repo := leave.NewRepository(db)

	owner := seedEmployee(t, db, "jane")
	approver := seedEmployee(t, db, "boss")

	l := sampleLeave(owner.ID, leave.StatusPending)
	assert.NoError(t, repo.Create(ctx, l))

	found, err := repo.FindByID(ctx, l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, "jane", found.Employee.Name)
	assert.Nil(t, found.ApprovedBy)
	assert.Equal(t, 3, found.Days())

	assert.NoError(t, repo.UpdateStatus(ctx, l.ID.String(), leave.StatusPending, leave.StatusApproved, approver.ID))

	err = repo.UpdateStatus(ctx, l.ID.String(), leave.StatusPending, leave.StatusRejected, approver.ID)
	assert.ErrorIs(t, err, apperror.ErrConcurrentUpdate)

	found, err = repo.FindByID(ctx, l.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, found.Status)
	assert.Equal(t, "boss", found.ApprovedBy.Name)

	assert.NoError(t, repo.CreditLeaves(ctx, owner.ID, 3))
	assert.NoError(t, repo.CreditLeaves(ctx, owner.ID, 2))

	var reloaded employee.Employee
	assert.NoError(t, db.First(&reloaded, "id = ?", owner.ID).Error)
	assert.Equal(t, 5, reloaded.LeavesTaken)

	assert.ErrorIs(t, repo.CreditLeaves(ctx, uuid.New(), 1), gorm.ErrRecordNotFound)
}

func TestLeaveRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, &employee.Employee{}, &leave.Leave{})
	repo := leave.NewRepository(db)

	jane := seedEmployee(t, db, "jane")
	joe := seedEmployee(t, db, "joe")

	older := sampleLeave(jane.ID, leave.StatusPending)
	newer := sampleLeave(jane.ID, leave.StatusRejected)
	newer.StartDate = older.StartDate.AddDate(0, 1, 0)
	newer.EndDate = older.EndDate.AddDate(0, 1, 0)
	other := sampleLeave(joe.ID, leave.StatusPending)
	for _, l := range []*leave.Leave{older, newer, other} {
		assert.NoError(t, repo.Create(ctx, l))
	}

	all, err := repo.FindAll(ctx, leave.ListFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)

	mine, err := repo.FindAll(ctx, leave.ListFilter{EmployeeID: jane.ID.String()})
	assert.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := repo.FindAll(ctx, leave.ListFilter{Status: leave.StatusPending})
	assert.NoError(t, err)
	assert.Len(t, pending, 2)

	assert.NoError(t, repo.Delete(ctx, other.ID.String()))
	assert.ErrorIs(t, repo.Delete(ctx, other.ID.String()), gorm.ErrRecordNotFound)
}

func TestLeaveRepository_WithTxRollback(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, &employee.Employee{}, &leave.Leave{})
	repo := leave.NewRepository(db)
	owner := seedEmployee(t, db, "jane")

	sqlDB, err := db.DB()
	assert.NoError(t, err)
	tx, err := sqlDB.BeginTx(ctx, nil)
	assert.NoError(t, err)

	assert.NoError(t, repo.WithTx(tx).CreditLeaves(ctx, owner.ID, 4))
	assert.NoError(t, tx.Rollback())

	var reloaded employee.Employee
	assert.NoError(t, db.First(&reloaded, "id = ?", owner.ID).Error)
	assert.Equal(t, 0, reloaded.LeavesTaken)
}
