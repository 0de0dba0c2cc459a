package builtin

import (
	"context"
	"fmt"
	"strings"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/scoring"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

const maxAlternatives = 3

type assignArgs struct {
	ProjectID    string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	TaskID       string `json:"task_id,omitempty" validate:"required_without=TaskTitle"`
	TaskTitle    string `json:"task_title,omitempty" jsonschema:"description=Title of the task to assign"`
	EmployeeID   string `json:"employee_id,omitempty"`
	EmployeeName string `json:"employee_name,omitempty" jsonschema:"description=Preferred assignee. Omit to pick the best match."`
}

type reassignArgs struct {
	ProjectID       string `json:"project_id,omitempty" jsonschema:"description=Project id or name. Defaults to the active project."`
	TaskID          string `json:"task_id,omitempty" validate:"required_without=TaskTitle"`
	TaskTitle       string `json:"task_title,omitempty" jsonschema:"description=Title of the task to reassign"`
	NewEmployeeID   string `json:"new_employee_id,omitempty"`
	NewEmployeeName string `json:"new_employee_name,omitempty" jsonschema:"description=New assignee. Omit to pick the best match."`
	Reason          string `json:"reason,omitempty"`
}

type alternative struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Reason     string  `json:"reason"`
	Score      float64 `json:"score"`
}

type assignmentProposal struct {
	TaskID             string        `json:"task_id"`
	TaskTitle          string        `json:"task_title"`
	ProjectID          string        `json:"project_id"`
	AssignedTo         string        `json:"assigned_to"`
	EmployeeID         string        `json:"employee_id"`
	PreviousAssignee   string        `json:"previous_assignee,omitempty"`
	PreviousEmployeeID string        `json:"previous_employee_id,omitempty"`
	NewAssignee        string        `json:"new_assignee,omitempty"`
	Reason             string        `json:"reason"`
	ConfidenceScore    float64       `json:"confidence_score"`
	Alternatives       []alternative `json:"alternatives"`
	PotentialRisks     []string      `json:"potential_risks"`
	CascadeRisks       []string      `json:"cascade_risks,omitempty"`
}

func proposeAssignment(ctx context.Context, tc tool.Context, args assignArgs) (*tool.Result, error) {
	task, _, err := taskInScope(ctx, tc, taskRef{ProjectID: args.ProjectID, TaskID: args.TaskID, TaskTitle: args.TaskTitle})
	if err != nil {
		return nil, err
	}
	if task.IsAssigned() {
		return nil, conflict(ctx, "%q is already assigned to %s; use reassign_task to change it", task.Title, task.AssignedTo)
	}

	chosen, ranked, err := chooseCandidate(ctx, tc, task, args.EmployeeID, args.EmployeeName, "")
	if err != nil {
		return nil, err
	}
	p := newProposal(task, chosen, ranked)
	return tool.Success(fmt.Sprintf("Proposed assigning %q to %s", task.Title, chosen.Name), p)
}

func applyAssignment(ctx context.Context, tc tool.Context, _ assignArgs, proposal *tool.Result) (*tool.Result, error) {
	p, err := tool.DecodeData[assignmentProposal](proposal)
	if err != nil {
		return nil, err
	}
	err = tc.Repo.WithinTx(ctx, func(repo project.Repository) error {
		task, err := repo.GetTask(ctx, p.TaskID)
		if err != nil {
			return err
		}
		if task.IsAssigned() && task.AssignedEmployeeID != p.EmployeeID {
			return conflict(ctx, "%q was assigned to %s in the meantime", task.Title, task.AssignedTo)
		}
		return moveTask(ctx, tc, repo, task, p.EmployeeID, p.Reason)
	})
	if err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("Assigned %q to %s", p.TaskTitle, p.AssignedTo), map[string]any{
		"task_id":     p.TaskID,
		"task_title":  p.TaskTitle,
		"assigned_to": p.AssignedTo,
		"employee_id": p.EmployeeID,
		"reason":      p.Reason,
	})
}

func proposeReassignment(ctx context.Context, tc tool.Context, args reassignArgs) (*tool.Result, error) {
	task, _, err := taskInScope(ctx, tc, taskRef{ProjectID: args.ProjectID, TaskID: args.TaskID, TaskTitle: args.TaskTitle})
	if err != nil {
		return nil, err
	}
	if !task.IsAssigned() {
		return nil, conflict(ctx, "%q has no assignee yet; use assign_task_to_employee", task.Title)
	}

	chosen, ranked, err := chooseCandidate(ctx, tc, task, args.NewEmployeeID, args.NewEmployeeName, task.AssignedEmployeeID)
	if err != nil {
		return nil, err
	}
	if chosen.EmployeeID == task.AssignedEmployeeID {
		return nil, conflict(ctx, "%q is already assigned to %s", task.Title, task.AssignedTo)
	}

	p := newProposal(task, chosen, ranked)
	p.PreviousAssignee = task.AssignedTo
	p.PreviousEmployeeID = task.AssignedEmployeeID
	p.NewAssignee = chosen.Name
	if strings.TrimSpace(args.Reason) != "" {
		p.Reason = args.Reason + "; " + p.Reason
	}

	dependents, err := tc.Repo.ListTasks(ctx, project.TaskFilter{ProjectID: task.ProjectID})
	if err != nil {
		return nil, err
	}
	p.CascadeRisks = []string{}
	for _, d := range dependents {
		if !d.IsOpen() {
			continue
		}
		for _, dep := range d.DependsOn {
			if dep == task.ID {
				p.CascadeRisks = append(p.CascadeRisks, fmt.Sprintf("%q depends on this task and may slip during the handover", d.Title))
			}
		}
	}
	if task.Status == project.TaskStatusInProgress {
		p.CascadeRisks = append(p.CascadeRisks, fmt.Sprintf("work in progress by %s needs a handover", task.AssignedTo))
	}
	return tool.Success(fmt.Sprintf("Proposed moving %q from %s to %s", task.Title, task.AssignedTo, chosen.Name), p)
}

func applyReassignment(ctx context.Context, tc tool.Context, _ reassignArgs, proposal *tool.Result) (*tool.Result, error) {
	p, err := tool.DecodeData[assignmentProposal](proposal)
	if err != nil {
		return nil, err
	}
	err = tc.Repo.WithinTx(ctx, func(repo project.Repository) error {
		task, err := repo.GetTask(ctx, p.TaskID)
		if err != nil {
			return err
		}
		if task.AssignedEmployeeID != p.PreviousEmployeeID && task.AssignedEmployeeID != p.EmployeeID {
			return conflict(ctx, "%q changed hands in the meantime (now %s)", task.Title, task.AssignedTo)
		}
		return moveTask(ctx, tc, repo, task, p.EmployeeID, p.Reason)
	})
	if err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("Reassigned %q from %s to %s", p.TaskTitle, p.PreviousAssignee, p.AssignedTo), map[string]any{
		"task_id":           p.TaskID,
		"task_title":        p.TaskTitle,
		"assigned_to":       p.AssignedTo,
		"employee_id":       p.EmployeeID,
		"previous_assignee": p.PreviousAssignee,
		"reason":            p.Reason,
	})
}

// chooseCandidate scores the requested employee, or the best ranked one when none is named.
// exclude drops the current assignee from the ranking.
func chooseCandidate(ctx context.Context, tc tool.Context, task *project.Task, id, name, exclude string) (scoring.Candidate, []scoring.Candidate, error) {
	employees, err := tc.Repo.ListEmployees(ctx, project.EmployeeFilter{})
	if err != nil {
		return scoring.Candidate{}, nil, err
	}
	var ranked []scoring.Candidate
	for _, c := range scoring.RankCandidates(task, employees) {
		if c.EmployeeID != exclude {
			ranked = append(ranked, c)
		}
	}

	if id != "" || name != "" {
		e, err := findEmployee(ctx, tc, id, name)
		if err != nil {
			return scoring.Candidate{}, nil, err
		}
		return scoring.ScoreEmployee(task, e), ranked, nil
	}
	if len(ranked) == 0 {
		return scoring.Candidate{}, nil, conflict(ctx, "no available employee can take %q", task.Title)
	}
	return ranked[0], ranked, nil
}

func newProposal(task *project.Task, chosen scoring.Candidate, ranked []scoring.Candidate) assignmentProposal {
	p := assignmentProposal{
		TaskID:          task.ID,
		TaskTitle:       task.Title,
		ProjectID:       task.ProjectID,
		AssignedTo:      chosen.Name,
		EmployeeID:      chosen.EmployeeID,
		Reason:          chosen.Reason,
		ConfidenceScore: chosen.Confidence(),
		Alternatives:    []alternative{},
		PotentialRisks:  []string{},
	}
	for _, c := range ranked {
		if c.EmployeeID == chosen.EmployeeID {
			continue
		}
		if len(p.Alternatives) == maxAlternatives {
			break
		}
		p.Alternatives = append(p.Alternatives, alternative{EmployeeID: c.EmployeeID, Name: c.Name, Reason: c.Reason, Score: c.Score})
	}

	e := chosen.Employee
	if e != nil && !e.IsAvailable() {
		p.PotentialRisks = append(p.PotentialRisks, fmt.Sprintf("%s is currently %s", chosen.Name, e.Availability))
	}
	if chosen.Workload == project.WorkloadHigh {
		p.PotentialRisks = append(p.PotentialRisks, fmt.Sprintf("%s already has a high workload", chosen.Name))
	}
	if len(task.Stack) > 0 && chosen.TechOverlap < 0.5 {
		p.PotentialRisks = append(p.PotentialRisks, fmt.Sprintf("%s covers %d of the task's %d technologies", chosen.Name, len(chosen.MatchedTech), len(task.Stack)))
	}
	if task.Status == project.TaskStatusBlocked {
		p.PotentialRisks = append(p.PotentialRisks, "the task is currently blocked")
	}
	return p
}

// moveTask points task at employeeID and keeps both employees' task lists in step.
func moveTask(ctx context.Context, tc tool.Context, repo project.Repository, task *project.Task, employeeID, reason string) error {
	next, err := repo.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if previous := task.AssignedEmployeeID; previous != "" && previous != employeeID {
		prev, err := repo.GetEmployee(ctx, previous)
		switch {
		case err == nil:
			prev.CurrentTaskIDs = removeItem(prev.CurrentTaskIDs, task.ID)
			prev.UpdatedAt = tc.Now
			if err := repo.SaveEmployee(ctx, prev); err != nil {
				return err
			}
		case !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound):
			return err
		}
	}

	task.AssignedEmployeeID = next.ID
	task.AssignedTo = next.FullName()
	task.AssignmentReason = reason
	task.UpdatedAt = tc.Now
	if err := repo.SaveTask(ctx, task); err != nil {
		return err
	}
	next.CurrentTaskIDs = appendUnique(next.CurrentTaskIDs, task.ID)
	next.UpdatedAt = tc.Now
	return repo.SaveEmployee(ctx, next)
}
