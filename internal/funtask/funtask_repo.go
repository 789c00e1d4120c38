package funtask

import (
	"context"
	"database/sql"

	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/gormtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, task *FunTask) error
	FindAll(ctx context.Context, filter ListFilter) ([]FunTask, error)
	FindByID(ctx context.Context, id string) (*FunTask, error)
	EmployeeExists(ctx context.Context, id string) (bool, error)
	UpdateFields(ctx context.Context, id, fromStatus string, fields map[string]any) error
	CreditPoints(ctx context.Context, employeeID uuid.UUID, points int) error
	Delete(ctx context.Context, id string) error
	// TopByPoints returns every employee with points when limit <= 0.
	TopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	EmployeeNames(ctx context.Context, ids []string) (map[string]string, error)
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

func (r *repository) Create(ctx context.Context, task *FunTask) error {
	return r.conn(ctx).Omit("CreatedBy", "AssignedTo").Create(task).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]FunTask, error) {
	var tasks []FunTask
	q := r.conn(ctx).Preload("CreatedBy").Preload("AssignedTo")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AssignedToID != "" {
		q = q.Where("assigned_to_id = ?", filter.AssignedToID)
	}
	err := q.Order("created_at DESC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*FunTask, error) {
	var task FunTask
	err := r.conn(ctx).
		Preload("CreatedBy").
		Preload("AssignedTo").
		First(&task, "id = ?", id).Error
	return &task, err
}

func (r *repository) EmployeeExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.conn(ctx).Table("employees").Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateFields writes fields only while the task still holds fromStatus.
func (r *repository) UpdateFields(ctx context.Context, id, fromStatus string, fields map[string]any) error {
	res := r.conn(ctx).
		Model(&FunTask{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) CreditPoints(ctx context.Context, employeeID uuid.UUID, points int) error {
	res := r.conn(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		UpdateColumn("fun_task_points", gorm.Expr("fun_task_points + ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&FunTask{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) TopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var rows []struct {
		ID            string
		Name          string
		FunTaskPoints int64
	}
	query := r.conn(ctx).
		Table("employees").
		Select("id", "name", "fun_task_points").
		Where("fun_task_points > 0").
		Order("fun_task_points DESC").
		Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{Rank: i + 1, EmployeeID: row.ID, Name: row.Name, Points: row.FunTaskPoints}
	}
	return entries, nil
}

func (r *repository) EmployeeNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var rows []struct {
		ID   string
		Name string
	}
	if err := r.conn(ctx).Table("employees").Select("id", "name").Where("id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
