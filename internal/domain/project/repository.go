package project

import (
	"context"
)

// TaskFilter narrows task listings. Empty fields match everything.
type TaskFilter struct {
	ProjectID  string
	Status     TaskStatus
	AssigneeID string
}

// EmployeeFilter narrows employee listings.
type EmployeeFilter struct {
	Department   string
	Availability Availability
}

// Repository is the persistence contract for domain entities and per-session project state.
// Implementations return platformerrors with ErrorTypeNotFound for missing entities.
type Repository interface {
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	SaveProject(ctx context.Context, p *Project) error

	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	SaveTask(ctx context.Context, t *Task) error

	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]*Employee, error)
	SaveEmployee(ctx context.Context, e *Employee) error

	ListSprints(ctx context.Context, projectID string) ([]*Sprint, error)
	SaveSprint(ctx context.Context, s *Sprint) error

	GetActiveProject(ctx context.Context, sessionID string) (string, error)
	SetActiveProject(ctx context.Context, sessionID, projectID string) error

	// WithinTx runs fn against a repository bound to a single transaction.
	// Any error returned by fn rolls back every write made through the bound repository.
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}
