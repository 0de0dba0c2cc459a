package builtin

import (
	"context"
	"fmt"
	"sort"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

type noArgs struct{}

type projectRef struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
}

type switchProjectArgs struct {
	ProjectID string `json:"project_id" validate:"required" jsonschema:"description=Id or name of the project to make active"`
}

type projectSummary struct {
	ID         string `json:"project_id"`
	Name       string `json:"project_name"`
	Department string `json:"department,omitempty"`
	Status     string `json:"status,omitempty"`
	Active     bool   `json:"active"`
}

type projectDetails struct {
	*project.Project
	TaskCounts   map[project.TaskStatus]int `json:"task_counts"`
	TotalTasks   int                        `json:"total_tasks"`
	SprintCount  int                        `json:"sprint_count"`
	ActiveSprint int                        `json:"active_sprint,omitempty"`
}

func listProjects(ctx context.Context, tc tool.Context, _ noArgs) (*tool.Result, error) {
	projects, err := tc.Repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	active, err := tc.Repo.GetActiveProject(ctx, tc.SessionID)
	if err != nil {
		return nil, err
	}
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{ID: p.ID, Name: p.Name, Department: p.Department, Status: p.Status, Active: p.ID == active})
	}
	return tool.Success(fmt.Sprintf("Found %d project(s)", len(out)), map[string]any{
		"projects":          out,
		"count":             len(out),
		"active_project_id": active,
	})
}

func getProjectDetails(ctx context.Context, tc tool.Context, args projectRef) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return nil, err
	}
	sprints, err := tc.Repo.ListSprints(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	details := projectDetails{Project: p, TaskCounts: map[project.TaskStatus]int{}, TotalTasks: len(tasks)}
	for _, t := range tasks {
		details.TaskCounts[t.Status]++
	}
	for _, s := range sprints {
		if s.Status == project.SprintStatusReplaced {
			continue
		}
		details.SprintCount++
		if s.Status == project.SprintStatusActive {
			details.ActiveSprint = s.Number
		}
	}
	return tool.Success(fmt.Sprintf("Project %s", p.Name), details)
}

func switchActiveProject(ctx context.Context, tc tool.Context, args switchProjectArgs) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := tc.Repo.SetActiveProject(ctx, tc.SessionID, p.ID); err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("Active project is now %s", p.Name), projectSummary{
		ID: p.ID, Name: p.Name, Department: p.Department, Status: p.Status, Active: true,
	})
}

func listSprints(ctx context.Context, tc tool.Context, args projectRef) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	sprints, err := tc.Repo.ListSprints(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sprints, func(i, j int) bool { return sprints[i].Number < sprints[j].Number })
	return tool.Success(fmt.Sprintf("%s has %d sprint(s)", p.Name, len(sprints)), map[string]any{
		"project_id":   p.ID,
		"project_name": p.Name,
		"sprints":      sprints,
		"count":        len(sprints),
	})
}
