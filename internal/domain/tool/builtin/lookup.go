package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

const dateLayout = "2006-01-02"

func notFound(ctx context.Context, format string, args ...any) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, fmt.Sprintf(format, args...), nil, "").
		WithCode(tool.CodeNotFound)
}

func invalid(ctx context.Context, format string, args ...any) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf(format, args...), nil, "").
		WithCode(tool.CodeInvalidArguments)
}

func conflict(ctx context.Context, format string, args ...any) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, fmt.Sprintf(format, args...), nil, "").
		WithCode(tool.CodeConflict)
}

// resolveProject finds the project named by ref (id or name) or falls back to the session's
// active project.
func resolveProject(ctx context.Context, tc tool.Context, ref string) (*project.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		id, err := tc.Repo.GetActiveProject(ctx, tc.SessionID)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"no active project: pass project_id or call switch_active_project first", nil, "").
				WithCode(tool.CodeNoActiveProject)
		}
		return tc.Repo.GetProject(ctx, id)
	}

	p, err := tc.Repo.GetProject(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, err
	}

	projects, err := tc.Repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	match, err := pick(ctx, "project", ref, projects, func(p *project.Project) string { return p.Name })
	if err != nil {
		return nil, err
	}
	return match, nil
}

// findTask resolves a task by id, or by title within projectID when projectID is set.
func findTask(ctx context.Context, tc tool.Context, projectID, taskID, title string) (*project.Task, error) {
	if id := strings.TrimSpace(taskID); id != "" {
		return tc.Repo.GetTask(ctx, id)
	}
	if strings.TrimSpace(title) == "" {
		return nil, invalid(ctx, "task_id or task_title is required")
	}
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	return pick(ctx, "task", title, tasks, func(t *project.Task) string { return t.Title })
}

// findEmployee resolves an employee by id or by name.
func findEmployee(ctx context.Context, tc tool.Context, id, name string) (*project.Employee, error) {
	if id = strings.TrimSpace(id); id != "" {
		return tc.Repo.GetEmployee(ctx, id)
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid(ctx, "employee_id or employee_name is required")
	}
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if strings.EqualFold(e.FirstName, strings.TrimSpace(name)) && countFirstName(employees, e.FirstName) == 1 {
			return e, nil
		}
	}
	return pick(ctx, "employee", name, employees, func(e *project.Employee) string { return e.FullName() })
}

func countFirstName(employees []*project.Employee, first string) int {
	n := 0
	for _, e := range employees {
		if strings.EqualFold(e.FirstName, first) {
			n++
		}
	}
	return n
}

// pick matches ref against labels: an exact case-insensitive match wins, then a unique substring match.
func pick[T any](ctx context.Context, kind, ref string, items []T, label func(T) string) (T, error) {
	var zero T
	needle := strings.ToLower(strings.TrimSpace(ref))
	for _, item := range items {
		if strings.ToLower(strings.TrimSpace(label(item))) == needle {
			return item, nil
		}
	}

	var partial []T
	for _, item := range items {
		if strings.Contains(strings.ToLower(label(item)), needle) {
			partial = append(partial, item)
		}
	}
	switch len(partial) {
	case 0:
		return zero, notFound(ctx, "no %s matches %q", kind, ref)
	case 1:
		return partial[0], nil
	}
	names := make([]string, 0, len(partial))
	for _, item := range partial {
		names = append(names, label(item))
	}
	return zero, conflict(ctx, "%q matches several %ss: %s", ref, kind, strings.Join(names, ", "))
}

func indexEmployees(employees []*project.Employee) map[string]*project.Employee {
	out := make(map[string]*project.Employee, len(employees))
	for _, e := range employees {
		out[e.ID] = e
	}
	return out
}

func appendUnique(items []string, v string) []string {
	for _, item := range items {
		if item == v {
			return items
		}
	}
	return append(items, v)
}

func removeItem(items []string, v string) []string {
	out := items[:0:0]
	for _, item := range items {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
