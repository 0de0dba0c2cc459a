package builtin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

type availabilityArgs struct {
	EmployeeID       string `json:"employee_id,omitempty" validate:"required_without=EmployeeName"`
	EmployeeName     string `json:"employee_name,omitempty" jsonschema:"description=Full or first name of the employee"`
	Availability     string `json:"availability_status" validate:"required,oneof=available limited unavailable" jsonschema:"enum=available,enum=limited,enum=unavailable"`
	UnavailableUntil string `json:"unavailable_until,omitempty" validate:"omitempty,datetime=2006-01-02" jsonschema:"description=Return date as YYYY-MM-DD"`
	Reason           string `json:"reason,omitempty" jsonschema:"description=Why availability changes such as vacation"`
}

type availabilityProposal struct {
	EmployeeID       string               `json:"employee_id"`
	Name             string               `json:"name"`
	CurrentStatus    project.Availability `json:"current_status"`
	NewStatus        project.Availability `json:"new_status"`
	UnavailableUntil string               `json:"unavailable_until,omitempty"`
	Reason           string               `json:"reason,omitempty"`
	AffectedTasks    []taskSummary        `json:"affected_tasks"`
	PotentialRisks   []string             `json:"potential_risks"`
}

func proposeAvailability(ctx context.Context, tc tool.Context, args availabilityArgs) (*tool.Result, error) {
	e, err := findEmployee(ctx, tc, args.EmployeeID, args.EmployeeName)
	if err != nil {
		return nil, err
	}
	next := project.Availability(args.Availability)
	if next == project.AvailabilityAvailable && args.UnavailableUntil != "" {
		return nil, invalid(ctx, "unavailable_until only applies to limited or unavailable status")
	}
	if args.UnavailableUntil != "" {
		until, _ := time.Parse(dateLayout, args.UnavailableUntil)
		if !tc.Now.IsZero() && until.Before(tc.Now.Truncate(24*time.Hour)) {
			return nil, invalid(ctx, "unavailable_until %s is in the past", args.UnavailableUntil)
		}
	}

	p := availabilityProposal{
		EmployeeID:       e.ID,
		Name:             e.FullName(),
		CurrentStatus:    e.Availability,
		NewStatus:        next,
		UnavailableUntil: args.UnavailableUntil,
		Reason:           strings.TrimSpace(args.Reason),
		AffectedTasks:    []taskSummary{},
		PotentialRisks:   []string{},
	}
	if next != project.AvailabilityAvailable {
		tasks, err := tc.Repo.ListTasks(ctx, project.TaskFilter{AssigneeID: e.ID})
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if t.IsOpen() {
				p.AffectedTasks = append(p.AffectedTasks, summarizeTask(t))
			}
		}
		if len(p.AffectedTasks) > 0 {
			p.PotentialRisks = append(p.PotentialRisks, fmt.Sprintf("%d open task(s) held by %s may slip; consider reassigning them", len(p.AffectedTasks), p.Name))
		}
	}
	return tool.Success(fmt.Sprintf("Proposed marking %s as %s", p.Name, next), p)
}

func applyAvailability(ctx context.Context, tc tool.Context, _ availabilityArgs, proposal *tool.Result) (*tool.Result, error) {
	p, err := tool.DecodeData[availabilityProposal](proposal)
	if err != nil {
		return nil, err
	}
	err = tc.Repo.WithinTx(ctx, func(repo project.Repository) error {
		e, err := repo.GetEmployee(ctx, p.EmployeeID)
		if err != nil {
			return err
		}
		e.Availability = p.NewStatus
		e.UnavailableReason = p.Reason
		e.UnavailableUntil = nil
		if p.UnavailableUntil != "" {
			until, err := time.Parse(dateLayout, p.UnavailableUntil)
			if err != nil {
				return invalid(ctx, "unavailable_until %q is not a date", p.UnavailableUntil)
			}
			e.UnavailableUntil = &until
		}
		if p.NewStatus == project.AvailabilityAvailable {
			e.UnavailableReason = ""
		}
		e.UpdatedAt = tc.Now
		return repo.SaveEmployee(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return tool.Success(fmt.Sprintf("%s is now %s", p.Name, p.NewStatus), map[string]any{
		"employee_id":         p.EmployeeID,
		"name":                p.Name,
		"availability_status": p.NewStatus,
		"previous_status":     p.CurrentStatus,
		"unavailable_until":   p.UnavailableUntil,
		"affected_tasks":      len(p.AffectedTasks),
	})
}
