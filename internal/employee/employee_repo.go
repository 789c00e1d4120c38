package employee

import (
	"context"
	"database/sql"
	"strings"

	"go-hrms/internal/shared/gormtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	Count(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, filter ListFilter) ([]Employee, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (Dependents, error)
	DeleteMemberships(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return gormtx.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.conn(ctx).Model(&Employee{}).Count(&total).Error
	return total, err
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Employee, error) {
	var empls []Employee
	q := r.conn(ctx).Model(&Employee{})

	if term := strings.TrimSpace(strings.ToLower(filter.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Department != "" {
		q = q.Where("department = ?", filter.Department)
	}

	err := q.Order("name ASC").Order("id ASC").Find(&empls).Error
	return empls, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.conn(ctx).
		Select("id", "name", "email").
		Order("name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var empl Employee
	err := r.conn(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&empl).Error
	return &empl, err
}

// UpdateFields writes only the given columns so concurrent counter credits
// are never overwritten with stale values.
func (r *repository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.conn(ctx).Model(&Employee{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.conn(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountDependents(ctx context.Context, id string) (Dependents, error) {
	var d Dependents
	conn := r.conn(ctx)

	counts := []struct {
		table string
		where string
		args  []any
		dest  *int64
	}{
		{"leaves", "employee_id = ? OR approved_by_id = ?", []any{id, id}, &d.Leaves},
		{"fun_tasks", "created_by_id = ? OR assigned_to_id = ?", []any{id, id}, &d.FunTasks},
		{"projects", "manager_id = ?", []any{id}, &d.ManagedProject},
		{"tasks", "assigned_to_id = ?", []any{id}, &d.AssignedTasks},
	}
	for _, c := range counts {
		if err := conn.Table(c.table).Where(c.where, c.args...).Count(c.dest).Error; err != nil {
			return Dependents{}, err
		}
	}
	return d, nil
}

func (r *repository) DeleteMemberships(ctx context.Context, id string) error {
	return r.conn(ctx).
		Exec("DELETE FROM project_team_members WHERE employee_id = ?", id).Error
}
