package project

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	domain "github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

type memoryState struct {
	Projects  map[string]*domain.Project
	Tasks     map[string]*domain.Task
	Employees map[string]*domain.Employee
	Sprints   map[string]*domain.Sprint
	Active    map[string]string
	Order     map[string][]string
}

func newMemoryState() *memoryState {
	return &memoryState{
		Projects:  map[string]*domain.Project{},
		Tasks:     map[string]*domain.Task{},
		Employees: map[string]*domain.Employee{},
		Sprints:   map[string]*domain.Sprint{},
		Active:    map[string]string{},
		Order:     map[string][]string{},
	}
}

func (s *memoryState) clone() (*memoryState, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := newMemoryState()
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *memoryState) track(kind, id string) {
	for _, existing := range s.Order[kind] {
		if existing == id {
			return
		}
	}
	s.Order[kind] = append(s.Order[kind], id)
}

// MemoryRepository keeps domain entities in process. Listings follow insertion order.
// Transactions work on a snapshot that replaces the live state only when fn succeeds.
type MemoryRepository struct {
	mu    *sync.RWMutex
	state *memoryState
	inTx  bool
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{mu: &sync.RWMutex{}, state: newMemoryState()}
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func (r *MemoryRepository) notFound(ctx context.Context, kind, id string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", kind, id), nil, "memory-"+kind+"-not-found")
}

func (r *MemoryRepository) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.state.Projects[id]
	if !ok {
		return nil, r.notFound(ctx, "project", id)
	}
	return copyOf(p), nil
}

func (r *MemoryRepository) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Project, 0, len(r.state.Projects))
	for _, id := range r.state.Order["project"] {
		out = append(out, copyOf(r.state.Projects[id]))
	}
	return out, nil
}

func (r *MemoryRepository) SaveProject(ctx context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Projects[p.ID] = copyOf(p)
	r.state.track("project", p.ID)
	return nil
}

func (r *MemoryRepository) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.state.Tasks[id]
	if !ok {
		return nil, r.notFound(ctx, "task", id)
	}
	return cloneTask(t), nil
}

func (r *MemoryRepository) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Task
	for _, id := range r.state.Order["task"] {
		t := r.state.Tasks[id]
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.AssigneeID != "" && t.AssignedEmployeeID != filter.AssigneeID {
			continue
		}
		out = append(out, cloneTask(t))
	}
	return out, nil
}

func (r *MemoryRepository) SaveTask(ctx context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Tasks[t.ID] = cloneTask(t)
	r.state.track("task", t.ID)
	return nil
}

func (r *MemoryRepository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.state.Employees[id]
	if !ok {
		return nil, r.notFound(ctx, "employee", id)
	}
	return cloneEmployee(e), nil
}

func (r *MemoryRepository) ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]*domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Employee
	for _, id := range r.state.Order["employee"] {
		e := r.state.Employees[id]
		if filter.Department != "" && !strings.EqualFold(e.Department, filter.Department) {
			continue
		}
		if filter.Availability != "" && e.Availability != filter.Availability {
			continue
		}
		out = append(out, cloneEmployee(e))
	}
	return out, nil
}

func (r *MemoryRepository) SaveEmployee(ctx context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Employees[e.ID] = cloneEmployee(e)
	r.state.track("employee", e.ID)
	return nil
}

func (r *MemoryRepository) ListSprints(ctx context.Context, projectID string) ([]*domain.Sprint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Sprint
	for _, id := range r.state.Order["sprint"] {
		s := r.state.Sprints[id]
		if projectID != "" && s.ProjectID != projectID {
			continue
		}
		c := copyOf(s)
		c.TaskIDs = append([]string(nil), s.TaskIDs...)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *MemoryRepository) SaveSprint(ctx context.Context, s *domain.Sprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := copyOf(s)
	c.TaskIDs = append([]string(nil), s.TaskIDs...)
	r.state.Sprints[s.ID] = c
	r.state.track("sprint", s.ID)
	return nil
}

// GetActiveProject returns an empty id when the session has none.
func (r *MemoryRepository) GetActiveProject(ctx context.Context, sessionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Active[sessionID], nil
}

func (r *MemoryRepository) SetActiveProject(ctx context.Context, sessionID, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.state.Projects[projectID]; !ok {
		return r.notFound(ctx, "project", projectID)
	}
	r.state.Active[sessionID] = projectID
	return nil
}

// WithinTx serializes transactions. fn must only use the repository it is given.
func (r *MemoryRepository) WithinTx(ctx context.Context, fn func(repo domain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, err := r.state.clone()
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeInternal,
			"failed to snapshot state", err, "memory-tx-snapshot")
	}
	tx := &MemoryRepository{mu: &sync.RWMutex{}, state: snapshot, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	r.state = snapshot
	return nil
}

func cloneTask(t *domain.Task) *domain.Task {
	c := copyOf(t)
	c.Stack = append([]string(nil), t.Stack...)
	c.DependsOn = append([]string(nil), t.DependsOn...)
	c.StartDate = copyOf(t.StartDate)
	c.DueDate = copyOf(t.DueDate)
	return c
}

func cloneEmployee(e *domain.Employee) *domain.Employee {
	c := copyOf(e)
	c.TechStack = append([]string(nil), e.TechStack...)
	c.CurrentTaskIDs = append([]string(nil), e.CurrentTaskIDs...)
	c.UnavailableUntil = copyOf(e.UnavailableUntil)
	return c
}

var _ domain.Repository = (*MemoryRepository)(nil)
