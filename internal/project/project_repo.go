package project

import (
	"context"
	"database/sql"

	"go-hrms/internal/shared/gormtx"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=project_repo.go -destination=mock/project_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *Project) error
	FindAll(ctx context.Context, filter ListFilter) ([]Project, error)
	FindByID(ctx context.Context, id string) (*Project, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	ReplaceMembers(ctx context.Context, projectID uuid.UUID, memberIDs []uuid.UUID) error
	CountEmployees(ctx context.Context, ids []uuid.UUID) (int64, error)
	Delete(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *Task) error
	FindTask(ctx context.Context, projectID, taskID string) (*Task, error)
	UpdateTaskFields(ctx context.Context, taskID string, fields map[string]any) error
	DeleteTask(ctx context.Context, taskID string) error
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

func (r *repository) preload(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Manager").
		Preload("TeamMembers", func(db *gorm.DB) *gorm.DB { return db.Order("employees.name ASC") }).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.created_at ASC") }).
		Preload("Tasks.AssignedTo")
}

func (r *repository) Create(ctx context.Context, p *Project) error {
	return r.conn(ctx).Omit("Manager", "TeamMembers", "Tasks").Create(p).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Project, error) {
	var projects []Project
	q := r.preload(r.conn(ctx))
	if filter.MemberID != "" {
		members := r.conn(ctx).
			Model(&ProjectMember{}).
			Select("project_id").
			Where("employee_id = ?", filter.MemberID)
		q = q.Where("manager_id = ? OR id IN (?)", filter.MemberID, members)
	}
	err := q.Order("start_date DESC").Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.preload(r.conn(ctx)).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	res := r.conn(ctx).Model(&Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceMembers swaps the team for memberIDs. Callers run it inside the
// transaction that also writes the project.
func (r *repository) ReplaceMembers(ctx context.Context, projectID uuid.UUID, memberIDs []uuid.UUID) error {
	if err := r.conn(ctx).Where("project_id = ?", projectID).Delete(&ProjectMember{}).Error; err != nil {
		return err
	}
	if len(memberIDs) == 0 {
		return nil
	}

	rows := make([]ProjectMember, len(memberIDs))
	for i, id := range memberIDs {
		rows[i] = ProjectMember{ProjectID: projectID, EmployeeID: id}
	}
	return r.conn(ctx).Create(&rows).Error
}

func (r *repository) CountEmployees(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.conn(ctx).Table("employees").Where("id IN ?", ids).Count(&count).Error
	return count, err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	conn := r.conn(ctx)
	if err := conn.Where("project_id = ?", id).Delete(&Task{}).Error; err != nil {
		return err
	}
	if err := conn.Where("project_id = ?", id).Delete(&ProjectMember{}).Error; err != nil {
		return err
	}
	res := conn.Delete(&Project{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateTask(ctx context.Context, task *Task) error {
	return r.conn(ctx).Omit("AssignedTo").Create(task).Error
}

func (r *repository) FindTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	var task Task
	err := r.conn(ctx).
		Preload("AssignedTo").
		First(&task, "id = ? AND project_id = ?", taskID, projectID).Error
	return &task, err
}

func (r *repository) UpdateTaskFields(ctx context.Context, taskID string, fields map[string]any) error {
	res := r.conn(ctx).Model(&Task{}).Where("id = ?", taskID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteTask(ctx context.Context, taskID string) error {
	res := r.conn(ctx).Delete(&Task{}, "id = ?", taskID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
