package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/scoring"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

type listTasksArgs struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress blocked completed" jsonschema:"enum=todo,enum=in_progress,enum=blocked,enum=completed"`
	Assignee  string `json:"assignee,omitempty" jsonschema:"description=Employee id or name to filter by"`
}

type listEmployeesArgs struct {
	Department   string `json:"department,omitempty" jsonschema:"description=Only employees of this department such as Backend"`
	Availability string `json:"availability_status,omitempty" validate:"omitempty,oneof=available limited unavailable" jsonschema:"enum=available,enum=limited,enum=unavailable"`
}

type employeeRef struct {
	EmployeeID   string `json:"employee_id,omitempty" validate:"required_without=EmployeeName"`
	EmployeeName string `json:"employee_name,omitempty" jsonschema:"description=Full or first name of the employee"`
}

type departmentArgs struct {
	Department string `json:"department" validate:"required" jsonschema:"description=Department name such as Backend"`
}

type taskRef struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	TaskID    string `json:"task_id,omitempty" validate:"required_without=TaskTitle"`
	TaskTitle string `json:"task_title,omitempty" jsonschema:"description=Title of the task"`
}

type candidatesArgs struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	TaskID    string `json:"task_id,omitempty" validate:"required_without=TaskTitle"`
	TaskTitle string `json:"task_title,omitempty" jsonschema:"description=Title of the task"`
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=20" jsonschema:"minimum=1,maximum=20,default=5"`
}

type taskSummary struct {
	ID         string             `json:"task_id"`
	ProjectID  string             `json:"project_id"`
	Title      string             `json:"task_title"`
	Status     project.TaskStatus `json:"status"`
	Priority   project.Priority   `json:"priority,omitempty"`
	AssignedTo string             `json:"assigned_to,omitempty"`
	Sprint     int                `json:"sprint_number,omitempty"`
}

type employeeSummary struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Role         string               `json:"role,omitempty"`
	Department   string               `json:"department"`
	TechStack    []string             `json:"tech_stack,omitempty"`
	Workload     project.Workload     `json:"current_workload"`
	Availability project.Availability `json:"availability_status"`
	OpenTasks    int                  `json:"open_tasks"`
}

func summarizeTask(t *project.Task) taskSummary {
	return taskSummary{ID: t.ID, ProjectID: t.ProjectID, Title: t.Title, Status: t.Status, Priority: t.Priority, AssignedTo: t.AssignedTo, Sprint: t.SprintNumber}
}

func summarizeEmployee(e *project.Employee, openTasks int) employeeSummary {
	return employeeSummary{
		ID: e.ID, Name: e.FullName(), Role: e.Role, Department: e.Department, TechStack: e.TechStack,
		Workload: e.Workload, Availability: e.Availability, OpenTasks: openTasks,
	}
}

func listTasks(ctx context.Context, tc tool.Context, args listTasksArgs) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	filter := project.TaskFilter{ProjectID: p.ID, Status: project.TaskStatus(args.Status)}
	if args.Assignee != "" {
		e, err := findEmployee(ctx, tc, "", args.Assignee)
		if err != nil {
			return nil, err
		}
		filter.AssigneeID = e.ID
	}
	tasks, err := tc.Repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, summarizeTask(t))
	}
	return tool.Success(fmt.Sprintf("Found %d task(s) in %s", len(out), p.Name), map[string]any{
		"project_id":   p.ID,
		"project_name": p.Name,
		"tasks":        out,
		"count":        len(out),
	})
}

func listEmployees(ctx context.Context, tc tool.Context, args listEmployeesArgs) (*tool.Result, error) {
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{
		Department:   strings.TrimSpace(args.Department),
		Availability: project.Availability(args.Availability),
	})
	if err != nil {
		return nil, err
	}
	open, err := openTaskCounts(ctx, tc)
	if err != nil {
		return nil, err
	}
	out := make([]employeeSummary, 0, len(employees))
	for _, e := range employees {
		out = append(out, summarizeEmployee(e, open[e.ID]))
	}
	return tool.Success(fmt.Sprintf("Found %d employee(s)", len(out)), map[string]any{
		"department": args.Department,
		"employees":  out,
		"count":      len(out),
	})
}

func getEmployeeInfo(ctx context.Context, tc tool.Context, args employeeRef) (*tool.Result, error) {
	e, err := findEmployee(ctx, tc, args.EmployeeID, args.EmployeeName)
	if err != nil {
		return nil, err
	}
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{AssigneeID: e.ID})
	if err != nil {
		return nil, err
	}
	open := 0
	for _, t := range tasks {
		if t.IsOpen() {
			open++
		}
	}
	return tool.Success(e.FullName(), map[string]any{
		"employee":           e,
		"open_tasks":         open,
		"total_assigned":     len(tasks),
		"unavailable_reason": e.UnavailableReason,
	})
}

func getEmployeeTasks(ctx context.Context, tc tool.Context, args employeeRef) (*tool.Result, error) {
	e, err := findEmployee(ctx, tc, args.EmployeeID, args.EmployeeName)
	if err != nil {
		return nil, err
	}
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{AssigneeID: e.ID})
	if err != nil {
		return nil, err
	}
	out := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, summarizeTask(t))
	}
	return tool.Success(fmt.Sprintf("%s has %d task(s)", e.FullName(), len(out)), map[string]any{
		"employee_id": e.ID,
		"name":        e.FullName(),
		"tasks":       out,
		"count":       len(out),
	})
}

func getDepartmentWorkload(ctx context.Context, tc tool.Context, args departmentArgs) (*tool.Result, error) {
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{Department: strings.TrimSpace(args.Department)})
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, notFound(ctx, "no employees in department %q", args.Department)
	}
	open, err := openTaskCounts(ctx, tc)
	if err != nil {
		return nil, err
	}

	byWorkload := map[project.Workload]int{}
	byAvailability := map[project.Availability]int{}
	out := make([]employeeSummary, 0, len(employees))
	for _, e := range employees {
		byWorkload[e.Workload]++
		byAvailability[e.Availability]++
		out = append(out, summarizeEmployee(e, open[e.ID]))
	}
	return tool.Success(fmt.Sprintf("%s has %d employee(s)", args.Department, len(out)), map[string]any{
		"department":         args.Department,
		"employees":          out,
		"count":              len(out),
		"workload_breakdown": byWorkload,
		"availability":       byAvailability,
		"capacity_ratio":     scoring.CapacityRatio(employees),
	})
}

func getAvailableEmployeesForTask(ctx context.Context, tc tool.Context, args candidatesArgs) (*tool.Result, error) {
	task, _, err := taskInScope(ctx, tc, taskRef{ProjectID: args.ProjectID, TaskID: args.TaskID, TaskTitle: args.TaskTitle})
	if err != nil {
		return nil, err
	}
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	limit := args.Limit
	if limit == 0 {
		limit = 5
	}
	ranked := scoring.RankCandidates(task, employees)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return tool.Success(fmt.Sprintf("%d candidate(s) for %s", len(ranked), task.Title), map[string]any{
		"task_id":    task.ID,
		"task_title": task.Title,
		"candidates": ranked,
		"count":      len(ranked),
	})
}

// taskInScope resolves a task reference, searching the given or active project when only a title is given.
func taskInScope(ctx context.Context, tc tool.Context, ref taskRef) (*project.Task, *project.Project, error) {
	if ref.TaskID != "" {
		t, err := tc.Repo.GetTask(ctx, ref.TaskID)
		return t, nil, err
	}
	p, err := resolveProject(ctx, tc, ref.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	t, err := findTask(ctx, tc, p.ID, "", ref.TaskTitle)
	return t, p, err
}

func openTaskCounts(ctx context.Context, tc tool.Context) (map[string]int, error) {
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, t := range tasks {
		if t.IsOpen() && t.IsAssigned() {
			out[t.AssignedEmployeeID]++
		}
	}
	return out, nil
}
