package builtin

import (
	"context"
	"fmt"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/scoring"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

type sprintHealthArgs struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	SprintNumber int    `json:"sprint_number,omitempty" validate:"omitempty,min=1" jsonschema:"description=Sprint to score. Defaults to the active sprint."`
}

func calculateSprintHealth(ctx context.Context, tc tool.Context, args sprintHealthArgs) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	sprints, err := tc.Repo.ListSprints(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	sprint := selectSprint(sprints, args.SprintNumber)
	if sprint == nil {
		if args.SprintNumber > 0 {
			return nil, notFound(ctx, "%s has no sprint %d", p.Name, args.SprintNumber)
		}
		return nil, notFound(ctx, "%s has no sprints yet; generate a sprint plan first", p.Name)
	}

	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return nil, err
	}
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	staff := indexEmployees(employees)

	inSprint := make(map[string]bool, len(sprint.TaskIDs))
	for _, id := range sprint.TaskIDs {
		inSprint[id] = true
	}
	var sprintTasks []*project.Task
	var team []*project.Employee
	seen := map[string]bool{}
	for _, t := range tasks {
		if !inSprint[t.ID] && t.SprintNumber != sprint.Number {
			continue
		}
		sprintTasks = append(sprintTasks, t)
		if e, ok := staff[t.AssignedEmployeeID]; ok && !seen[e.ID] {
			seen[e.ID] = true
			team = append(team, e)
		}
	}

	report := scoring.SprintHealth(scoring.HealthInput{
		Tasks: sprintTasks,
		Team:  team,
		Start: sprint.StartDate,
		End:   sprint.EndDate,
		Now:   tc.Now,
	})
	return tool.Success(fmt.Sprintf("Sprint %d of %s is %s", sprint.Number, p.Name, report.Status), map[string]any{
		"project_id":    p.ID,
		"project_name":  p.Name,
		"sprint_number": sprint.Number,
		"sprint_name":   sprint.Name,
		"health":        report,
		"health_score":  report.Score,
		"status":        report.Status,
	})
}

// selectSprint returns sprint number n, or the active sprint, or the earliest planned one.
func selectSprint(sprints []*project.Sprint, n int) *project.Sprint {
	var planned *project.Sprint
	for _, s := range sprints {
		if s.Status == project.SprintStatusReplaced {
			continue
		}
		if n > 0 {
			if s.Number == n {
				return s
			}
			continue
		}
		if s.Status == project.SprintStatusActive {
			return s
		}
		if s.Status == project.SprintStatusPlanned && (planned == nil || s.Number < planned.Number) {
			planned = s
		}
	}
	return planned
}

func predictDelays(ctx context.Context, tc tool.Context, args projectRef) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return nil, err
	}
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return nil, err
	}
	prediction := scoring.PredictDelay(scoring.DelayInput{Tasks: tasks, Employees: employees, Now: tc.Now})
	return tool.Success(fmt.Sprintf("%s delay risk is %s", p.Name, prediction.RiskLevel), map[string]any{
		"project_id":   p.ID,
		"project_name": p.Name,
		"prediction":   prediction,
		"risk_level":   prediction.RiskLevel,
	})
}
