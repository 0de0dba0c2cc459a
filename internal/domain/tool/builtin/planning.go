package builtin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/scoring"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

const defaultSprintWeeks = 2

type generatePlanArgs struct {
	ProjectID     string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	DurationWeeks int    `json:"sprint_duration_weeks,omitempty" validate:"omitempty,min=1,max=4" jsonschema:"minimum=1,maximum=4,default=2"`
	StartDate     string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02" jsonschema:"description=First sprint start as YYYY-MM-DD. Defaults to next Monday."`
}

type replanArgs struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	VacationDays int    `json:"vacation_days,omitempty" validate:"min=0,max=90" jsonschema:"minimum=0,maximum=90"`
	DelayDays    int    `json:"delays,omitempty" validate:"min=0,max=90" jsonschema:"description=Days of delay to absorb,minimum=0,maximum=90"`
}

type planProposal struct {
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name"`
	Plan        *scoring.Plan `json:"plan"`
	Replaces    []string      `json:"replaces_sprint_ids"`
	FirstNumber int           `json:"first_sprint_number"`
}

type replanProposal struct {
	ProjectID    string          `json:"project_id"`
	ProjectName  string          `json:"project_name"`
	VacationDays int             `json:"vacation_days"`
	DelayDays    int             `json:"delays"`
	Replan       *scoring.Replan `json:"replan"`
}

func proposeSprintPlan(ctx context.Context, tc tool.Context, args generatePlanArgs) (*tool.Result, error) {
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	tasks, team, err := projectWork(ctx, tc, p)
	if err != nil {
		return nil, err
	}
	sprints, err := tc.Repo.ListSprints(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	weeks := args.DurationWeeks
	if weeks == 0 {
		weeks = defaultSprintWeeks
	}
	start := nextMonday(tc.Now)
	if args.StartDate != "" {
		start, _ = time.Parse(dateLayout, args.StartDate)
	}

	// Completed sprints stay; open ones are replaced and their unfinished tasks replanned.
	var open []*project.Task
	for _, t := range tasks {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	plan, err := scoring.GenerateSprintPlan(scoring.PlanInput{ProjectID: p.ID, Tasks: open, Team: team, Start: start, DurationWeeks: weeks})
	if err != nil {
		return nil, conflict(ctx, "%s: %v", p.Name, err)
	}

	proposal := planProposal{ProjectID: p.ID, ProjectName: p.Name, Plan: plan, Replaces: []string{}, FirstNumber: 1}
	for _, s := range sprints {
		switch s.Status {
		case project.SprintStatusCompleted:
			if s.Number >= proposal.FirstNumber {
				proposal.FirstNumber = s.Number + 1
			}
		case project.SprintStatusPlanned, project.SprintStatusActive:
			proposal.Replaces = append(proposal.Replaces, s.ID)
		}
	}
	for i := range plan.Sprints {
		n := proposal.FirstNumber + i
		plan.Sprints[i].Number = n
		plan.Sprints[i].Name = fmt.Sprintf("Sprint %d", n)
	}
	return tool.Success(fmt.Sprintf("Proposed %d sprint(s) of %d week(s) for %s", len(plan.Sprints), weeks, p.Name), proposal)
}

func applySprintPlan(ctx context.Context, tc tool.Context, _ generatePlanArgs, proposal *tool.Result) (*tool.Result, error) {
	p, err := tool.DecodeData[planProposal](proposal)
	if err != nil {
		return nil, err
	}
	if p.Plan == nil {
		return nil, invalid(ctx, "proposal carries no plan")
	}
	var created []*project.Sprint
	err = tc.Repo.WithinTx(ctx, func(repo project.Repository) error {
		if err := retireSprints(ctx, tc, repo, p.ProjectID, p.Replaces); err != nil {
			return err
		}
		for _, planned := range p.Plan.Sprints {
			s := &project.Sprint{
				ID:            project.NewSprintID(),
				ProjectID:     p.ProjectID,
				Number:        planned.Number,
				Name:          planned.Name,
				StartDate:     planned.StartDate,
				EndDate:       planned.EndDate,
				DurationWeeks: p.Plan.DurationWeeks,
				Status:        project.SprintStatusPlanned,
				TaskIDs:       planned.TaskIDs,
				CreatedAt:     tc.Now,
				UpdatedAt:     tc.Now,
			}
			if err := repo.SaveSprint(ctx, s); err != nil {
				return err
			}
			if err := scheduleTasks(ctx, tc, repo, s); err != nil {
				return err
			}
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("Created %d sprint(s) for %s", len(created), p.ProjectName), map[string]any{
		"project_id":   p.ProjectID,
		"project_name": p.ProjectName,
		"sprints":      created,
		"count":        len(created),
		"replaced":     len(p.Replaces),
	})
}

func proposeReplan(ctx context.Context, tc tool.Context, args replanArgs) (*tool.Result, error) {
	if args.VacationDays == 0 && args.DelayDays == 0 {
		return nil, invalid(ctx, "nothing to replan: pass vacation_days or delays")
	}
	p, err := resolveProject(ctx, tc, args.ProjectID)
	if err != nil {
		return nil, err
	}
	tasks, team, err := projectWork(ctx, tc, p)
	if err != nil {
		return nil, err
	}
	sprints, err := tc.Repo.ListSprints(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	replan, err := scoring.ReplanSprints(scoring.ReplanInput{
		Sprints: sprints, Tasks: tasks, Team: team,
		VacationDays: args.VacationDays, DelayDays: args.DelayDays,
	})
	if err != nil {
		return nil, conflict(ctx, "%s: %v", p.Name, err)
	}
	return tool.Success(
		fmt.Sprintf("Proposed shifting %s by %d day(s), %d task(s) moved, %d sprint(s) added",
			p.Name, replan.Changes.ShiftedDays, len(replan.Changes.MovedTasks), replan.Changes.AddedSprints),
		replanProposal{ProjectID: p.ID, ProjectName: p.Name, VacationDays: args.VacationDays, DelayDays: args.DelayDays, Replan: replan},
	)
}

func applyReplan(ctx context.Context, tc tool.Context, _ replanArgs, proposal *tool.Result) (*tool.Result, error) {
	p, err := tool.DecodeData[replanProposal](proposal)
	if err != nil {
		return nil, err
	}
	if p.Replan == nil {
		return nil, invalid(ctx, "proposal carries no replan")
	}
	var created []*project.Sprint
	err = tc.Repo.WithinTx(ctx, func(repo project.Repository) error {
		existing, err := repo.ListSprints(ctx, p.ProjectID)
		if err != nil {
			return err
		}
		status := make(map[string]project.SprintStatus, len(existing))
		for _, s := range existing {
			status[s.ID] = s.Status
		}
		if err := retireSprints(ctx, tc, repo, p.ProjectID, p.Replan.ReplacedSprintIDs); err != nil {
			return err
		}

		for i, planned := range p.Replan.Sprints {
			s := &project.Sprint{
				ID:            project.NewSprintID(),
				ProjectID:     p.ProjectID,
				Number:        planned.Number,
				Name:          planned.Name,
				StartDate:     planned.StartDate,
				EndDate:       planned.EndDate,
				DurationWeeks: int(planned.EndDate.Sub(planned.StartDate).Hours() / (24 * 7)),
				Status:        project.SprintStatusPlanned,
				TaskIDs:       planned.TaskIDs,
				VacationDays:  p.VacationDays,
				DelayDays:     p.DelayDays,
				CreatedAt:     tc.Now,
				UpdatedAt:     tc.Now,
			}
			if i < len(p.Replan.ReplacedSprintIDs) {
				s.OriginalSprintID = p.Replan.ReplacedSprintIDs[i]
				if status[s.OriginalSprintID] == project.SprintStatusActive {
					s.Status = project.SprintStatusActive
				}
			}
			if err := repo.SaveSprint(ctx, s); err != nil {
				return err
			}
			if err := scheduleTasks(ctx, tc, repo, s); err != nil {
				return err
			}
			created = append(created, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("Replanned %s into %d sprint(s)", p.ProjectName, len(created)), map[string]any{
		"project_id":   p.ProjectID,
		"project_name": p.ProjectName,
		"sprints":      created,
		"changes":      p.Replan.Changes,
	})
}

// retireSprints marks the project's open sprints as replaced. The open set must be exactly
// the one the proposal was computed against; anything else means the proposal is stale.
func retireSprints(ctx context.Context, tc tool.Context, repo project.Repository, projectID string, ids []string) error {
	sprints, err := repo.ListSprints(ctx, projectID)
	if err != nil {
		return err
	}
	expected := make(map[string]bool, len(ids))
	for _, id := range ids {
		expected[id] = true
	}

	var open []*project.Sprint
	for _, s := range sprints {
		if s.Status != project.SprintStatusPlanned && s.Status != project.SprintStatusActive {
			if expected[s.ID] {
				return conflict(ctx, "sprint %d is already %s; ask for a fresh plan", s.Number, s.Status)
			}
			continue
		}
		if !expected[s.ID] {
			return conflict(ctx, "the sprints of this project changed since the proposal (sprint %d is new); ask for a fresh plan", s.Number)
		}
		open = append(open, s)
	}
	if len(open) != len(expected) {
		return conflict(ctx, "some sprints of this proposal no longer exist; ask for a fresh plan")
	}

	for _, s := range open {
		s.Status = project.SprintStatusReplaced
		s.UpdatedAt = tc.Now
		if err := repo.SaveSprint(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func scheduleTasks(ctx context.Context, tc tool.Context, repo project.Repository, s *project.Sprint) error {
	for _, id := range s.TaskIDs {
		t, err := repo.GetTask(ctx, id)
		if err != nil {
			return err
		}
		start, due := s.StartDate, s.EndDate
		t.SprintNumber = s.Number
		t.StartDate = &start
		t.DueDate = &due
		t.UpdatedAt = tc.Now
		if err := repo.SaveTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// projectWork loads a project's tasks and the people planning should count on: everyone
// holding one of its tasks, or else the project's department.
func projectWork(ctx context.Context, tc tool.Context, p *project.Project) ([]*project.Task, []*project.Employee, error) {
	tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: p.ID})
	if err != nil {
		return nil, nil, err
	}
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return nil, nil, err
	}
	staff := indexEmployees(employees)

	var team []*project.Employee
	seen := map[string]bool{}
	for _, t := range tasks {
		if e, ok := staff[t.AssignedEmployeeID]; ok && !seen[e.ID] {
			seen[e.ID] = true
			team = append(team, e)
		}
	}
	if len(team) == 0 && p.Department != "" {
		for _, e := range employees {
			if e.Department == p.Department {
				team = append(team, e)
			}
		}
	}
	sort.SliceStable(team, func(i, j int) bool { return team[i].ID < team[j].ID })
	return tasks, team, nil
}

func nextMonday(now time.Time) time.Time {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (8 - int(day.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}
