package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/infrastructure/database/entities"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// PostgresRepository persists projects, tasks, employees and sprints with GORM.
type PostgresRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ domain.Repository = (*PostgresRepository)(nil)

// query locks the rows it reads when running inside a transaction.
func (r *PostgresRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *PostgresRepository) upsert(ctx context.Context, value any) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "public_id"}},
		UpdateAll: true,
	}).Create(value).Error
}

func (r *PostgresRepository) getError(ctx context.Context, kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("%s %s not found", kind, id), err, kind+"-get-notfound-001").WithCode("not_found")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
		fmt.Sprintf("failed to load %s", kind), err, kind+"-get-db-001")
}

func dbError(ctx context.Context, message, errorUUID string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, errorUUID)
}

func (r *PostgresRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var entity entities.Project
	if err := r.query(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		return nil, r.getError(ctx, "project", id, err)
	}
	return mapProjectFromEntity(&entity), nil
}

func (r *PostgresRepository) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	var rows []entities.Project
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list projects", "project-list-db-001", err)
	}
	out := make([]*domain.Project, 0, len(rows))
	for i := range rows {
		out = append(out, mapProjectFromEntity(&rows[i]))
	}
	return out, nil
}

func (r *PostgresRepository) SaveProject(ctx context.Context, p *domain.Project) error {
	stampTimes(&p.CreatedAt, &p.UpdatedAt)
	if err := r.upsert(ctx, mapProjectToEntity(p)); err != nil {
		return dbError(ctx, "failed to save project", "project-save-db-001", err)
	}
	return nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var entity entities.Task
	if err := r.query(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		return nil, r.getError(ctx, "task", id, err)
	}
	return mapTaskFromEntity(&entity), nil
}

func (r *PostgresRepository) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&entities.Task{})
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.AssigneeID != "" {
		q = q.Where("assigned_employee_id = ?", filter.AssigneeID)
	}
	var rows []entities.Task
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list tasks", "task-list-db-001", err)
	}
	out := make([]*domain.Task, 0, len(rows))
	for i := range rows {
		out = append(out, mapTaskFromEntity(&rows[i]))
	}
	return out, nil
}

func (r *PostgresRepository) SaveTask(ctx context.Context, t *domain.Task) error {
	stampTimes(&t.CreatedAt, &t.UpdatedAt)
	if err := r.upsert(ctx, mapTaskToEntity(t)); err != nil {
		return dbError(ctx, "failed to save task", "task-save-db-001", err)
	}
	return nil
}

func (r *PostgresRepository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	var entity entities.Employee
	if err := r.query(ctx).Where("public_id = ?", id).First(&entity).Error; err != nil {
		return nil, r.getError(ctx, "employee", id, err)
	}
	return mapEmployeeFromEntity(&entity), nil
}

func (r *PostgresRepository) ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]*domain.Employee, error) {
	q := r.db.WithContext(ctx).Model(&entities.Employee{})
	if dept := strings.TrimSpace(filter.Department); dept != "" {
		q = q.Where("LOWER(department) = LOWER(?)", dept)
	}
	if filter.Availability != "" {
		q = q.Where("availability = ?", string(filter.Availability))
	}
	var rows []entities.Employee
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list employees", "employee-list-db-001", err)
	}
	out := make([]*domain.Employee, 0, len(rows))
	for i := range rows {
		out = append(out, mapEmployeeFromEntity(&rows[i]))
	}
	return out, nil
}

func (r *PostgresRepository) SaveEmployee(ctx context.Context, e *domain.Employee) error {
	e.UpdatedAt = time.Now().UTC()
	if err := r.upsert(ctx, mapEmployeeToEntity(e)); err != nil {
		return dbError(ctx, "failed to save employee", "employee-save-db-001", err)
	}
	return nil
}

func (r *PostgresRepository) ListSprints(ctx context.Context, projectID string) ([]*domain.Sprint, error) {
	q := r.db.WithContext(ctx).Model(&entities.Sprint{})
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var rows []entities.Sprint
	if err := q.Order("number ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(ctx, "failed to list sprints", "sprint-list-db-001", err)
	}
	out := make([]*domain.Sprint, 0, len(rows))
	for i := range rows {
		out = append(out, mapSprintFromEntity(&rows[i]))
	}
	return out, nil
}

func (r *PostgresRepository) SaveSprint(ctx context.Context, s *domain.Sprint) error {
	stampTimes(&s.CreatedAt, &s.UpdatedAt)
	if err := r.upsert(ctx, mapSprintToEntity(s)); err != nil {
		return dbError(ctx, "failed to save sprint", "sprint-save-db-001", err)
	}
	return nil
}

// GetActiveProject returns an empty id when the session has none.
func (r *PostgresRepository) GetActiveProject(ctx context.Context, sessionID string) (string, error) {
	var entity entities.ActiveProject
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", dbError(ctx, "failed to load active project", "active-project-get-db-001", err)
	}
	return entity.ProjectID, nil
}

func (r *PostgresRepository) SetActiveProject(ctx context.Context, sessionID, projectID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Project{}).Where("public_id = ?", projectID).Count(&count).Error; err != nil {
		return dbError(ctx, "failed to check project", "active-project-set-db-001", err)
	}
	if count == 0 {
		return r.getError(ctx, "project", projectID, gorm.ErrRecordNotFound)
	}
	entity := entities.ActiveProject{SessionID: sessionID, ProjectID: projectID, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"project_id", "updated_at"}),
	}).Create(&entity).Error
	if err != nil {
		return dbError(ctx, "failed to set active project", "active-project-set-db-002", err)
	}
	return nil
}

// WithinTx runs fn inside one database transaction. Nested calls reuse the outer transaction.
func (r *PostgresRepository) WithinTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx, inTx: true})
	})
}

func stampTimes(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
