package project

import (
	"gorm.io/datatypes"

	domain "github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/infrastructure/database/entities"
)

func jsonStrings(list []string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](append([]string{}, list...))
}

func mapProjectToEntity(p *domain.Project) *entities.Project {
	return &entities.Project{
		PublicID:           p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Department:         p.Department,
		Status:             p.Status,
		TechStack:          jsonStrings(p.TechStack),
		AcceptanceCriteria: jsonStrings(p.AcceptanceCriteria),
		ScopeItems:         jsonStrings(p.ScopeItems),
		Timeline:           p.Timeline,
		CriticalAnalysis:   p.CriticalAnalysis,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func mapProjectFromEntity(e *entities.Project) *domain.Project {
	return &domain.Project{
		ID:                 e.PublicID,
		Name:               e.Name,
		Description:        e.Description,
		Department:         e.Department,
		Status:             e.Status,
		TechStack:          e.TechStack,
		AcceptanceCriteria: e.AcceptanceCriteria,
		ScopeItems:         e.ScopeItems,
		Timeline:           e.Timeline,
		CriticalAnalysis:   e.CriticalAnalysis,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func mapTaskToEntity(t *domain.Task) *entities.Task {
	return &entities.Task{
		PublicID:           t.ID,
		ProjectID:          t.ProjectID,
		Title:              t.Title,
		Detail:             t.Detail,
		Stack:              jsonStrings(t.Stack),
		Department:         t.Department,
		Source:             t.Source,
		Status:             string(t.Status),
		Priority:           string(t.Priority),
		EstimatedHours:     t.EstimatedHours,
		AssignedEmployeeID: t.AssignedEmployeeID,
		AssignedTo:         t.AssignedTo,
		AssignmentReason:   t.AssignmentReason,
		SprintNumber:       t.SprintNumber,
		DependsOn:          jsonStrings(t.DependsOn),
		StartDate:          t.StartDate,
		DueDate:            t.DueDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func mapTaskFromEntity(e *entities.Task) *domain.Task {
	return &domain.Task{
		ID:                 e.PublicID,
		ProjectID:          e.ProjectID,
		Title:              e.Title,
		Detail:             e.Detail,
		Stack:              e.Stack,
		Department:         e.Department,
		Source:             e.Source,
		Status:             domain.TaskStatus(e.Status),
		Priority:           domain.Priority(e.Priority),
		EstimatedHours:     e.EstimatedHours,
		AssignedEmployeeID: e.AssignedEmployeeID,
		AssignedTo:         e.AssignedTo,
		AssignmentReason:   e.AssignmentReason,
		SprintNumber:       e.SprintNumber,
		DependsOn:          e.DependsOn,
		StartDate:          e.StartDate,
		DueDate:            e.DueDate,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func mapEmployeeToEntity(e *domain.Employee) *entities.Employee {
	return &entities.Employee{
		PublicID:          e.ID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Role:              e.Role,
		Department:        e.Department,
		Team:              e.Team,
		TechStack:         jsonStrings(e.TechStack),
		Workload:          string(e.Workload),
		Availability:      string(e.Availability),
		UnavailableUntil:  e.UnavailableUntil,
		UnavailableReason: e.UnavailableReason,
		CurrentTaskIDs:    jsonStrings(e.CurrentTaskIDs),
		UpdatedAt:         e.UpdatedAt,
	}
}

func mapEmployeeFromEntity(e *entities.Employee) *domain.Employee {
	return &domain.Employee{
		ID:                e.PublicID,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Role:              e.Role,
		Department:        e.Department,
		Team:              e.Team,
		TechStack:         e.TechStack,
		Workload:          domain.Workload(e.Workload),
		Availability:      domain.Availability(e.Availability),
		UnavailableUntil:  e.UnavailableUntil,
		UnavailableReason: e.UnavailableReason,
		CurrentTaskIDs:    e.CurrentTaskIDs,
		UpdatedAt:         e.UpdatedAt,
	}
}

func mapSprintToEntity(s *domain.Sprint) *entities.Sprint {
	return &entities.Sprint{
		PublicID:         s.ID,
		ProjectID:        s.ProjectID,
		Number:           s.Number,
		Name:             s.Name,
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		DurationWeeks:    s.DurationWeeks,
		Status:           string(s.Status),
		TaskIDs:          jsonStrings(s.TaskIDs),
		OriginalSprintID: s.OriginalSprintID,
		VacationDays:     s.VacationDays,
		DelayDays:        s.DelayDays,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func mapSprintFromEntity(e *entities.Sprint) *domain.Sprint {
	return &domain.Sprint{
		ID:               e.PublicID,
		ProjectID:        e.ProjectID,
		Number:           e.Number,
		Name:             e.Name,
		StartDate:        e.StartDate,
		EndDate:          e.EndDate,
		DurationWeeks:    e.DurationWeeks,
		Status:           domain.SprintStatus(e.Status),
		TaskIDs:          e.TaskIDs,
		OriginalSprintID: e.OriginalSprintID,
		VacationDays:     e.VacationDays,
		DelayDays:        e.DelayDays,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
