package leave

import (
	"context"
	"database/sql"

	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/gormtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *Leave) error
	FindAll(ctx context.Context, filter ListFilter) ([]Leave, error)
	FindByID(ctx context.Context, id string) (*Leave, error)
	UpdateStatus(ctx context.Context, id, from, to string, approverID uuid.UUID) error
	CreditLeaves(ctx context.Context, employeeID uuid.UUID, days int) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return gormtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) withRefs(ctx context.Context) *gorm.DB {
	return r.conn(ctx).
		Preload("Employee").
		Preload("ApprovedBy")
}

func (r *repository) Create(ctx context.Context, l *Leave) error {
	return r.conn(ctx).Omit("Employee", "ApprovedBy").Create(l).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Leave, error) {
	var leaves []Leave
	q := r.withRefs(ctx)
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Order("start_date DESC").Order("created_at DESC").Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.withRefs(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

// UpdateStatus moves the leave from status from to status to. It reports
// ErrConcurrentUpdate when the row no longer holds from.
func (r *repository) UpdateStatus(ctx context.Context, id, from, to string, approverID uuid.UUID) error {
	res := r.conn(ctx).
		Model(&Leave{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":         to,
			"approved_by_id": approverID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) CreditLeaves(ctx context.Context, employeeID uuid.UUID, days int) error {
	res := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		UpdateColumn("leaves_taken", gorm.Expr("leaves_taken + ?", days))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Leave{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
