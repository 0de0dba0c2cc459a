// Package project defines the project-management entities the assistant operates on.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Workload is an employee's current load tier.
type Workload string

const (
	WorkloadLow    Workload = "low"
	WorkloadMedium Workload = "medium"
	WorkloadHigh   Workload = "high"
)

// Valid reports whether w is a known tier.
func (w Workload) Valid() bool {
	switch w {
	case WorkloadLow, WorkloadMedium, WorkloadHigh:
		return true
	}
	return false
}

// Availability is an employee's availability status.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityLimited     Availability = "limited"
	AvailabilityUnavailable Availability = "unavailable"
)

// Valid reports whether a is a known status.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityUnavailable:
		return true
	}
	return false
}

// TaskStatus tracks task progress.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Priority of a task.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// SprintStatus tracks sprint lifecycle.
type SprintStatus string

const (
	SprintStatusPlanned   SprintStatus = "planned"
	SprintStatusActive    SprintStatus = "active"
	SprintStatusCompleted SprintStatus = "completed"
	SprintStatusReplaced  SprintStatus = "replaced"
)

// Project is a unit of delivery with its analysed scope.
type Project struct {
	ID                 string    `json:"project_id" yaml:"project_id"`
	Name               string    `json:"project_name" yaml:"project_name"`
	Description        string    `json:"description,omitempty" yaml:"description"`
	Department         string    `json:"department,omitempty" yaml:"department"`
	Status             string    `json:"status,omitempty" yaml:"status"`
	TechStack          []string  `json:"tech_stack,omitempty" yaml:"tech_stack"`
	AcceptanceCriteria []string  `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria"`
	ScopeItems         []string  `json:"scope_items,omitempty" yaml:"scope_items"`
	Timeline           string    `json:"timeline,omitempty" yaml:"timeline"`
	CriticalAnalysis   string    `json:"critical_analysis,omitempty" yaml:"critical_analysis"`
	CreatedAt          time.Time `json:"created_at" yaml:"-"`
	UpdatedAt          time.Time `json:"updated_at" yaml:"-"`
}

// Task is a unit of work inside a project.
type Task struct {
	ID                 string     `json:"task_id" yaml:"task_id"`
	ProjectID          string     `json:"project_id" yaml:"project_id"`
	Title              string     `json:"task_title" yaml:"task_title"`
	Detail             string     `json:"task_detail,omitempty" yaml:"task_detail"`
	Stack              []string   `json:"task_stack,omitempty" yaml:"task_stack"`
	Department         string     `json:"department,omitempty" yaml:"department"`
	Source             string     `json:"source,omitempty" yaml:"source"`
	Status             TaskStatus `json:"status" yaml:"status"`
	Priority           Priority   `json:"priority,omitempty" yaml:"priority"`
	EstimatedHours     float64    `json:"estimated_hours,omitempty" yaml:"estimated_hours"`
	AssignedEmployeeID string     `json:"assigned_employee_id,omitempty" yaml:"assigned_employee_id"`
	AssignedTo         string     `json:"assigned_to,omitempty" yaml:"assigned_to"`
	AssignmentReason   string     `json:"assignment_reason,omitempty" yaml:"assignment_reason"`
	SprintNumber       int        `json:"sprint_number,omitempty" yaml:"sprint_number"`
	DependsOn          []string   `json:"depends_on,omitempty" yaml:"depends_on"`
	StartDate          *time.Time `json:"start_date,omitempty" yaml:"start_date"`
	DueDate            *time.Time `json:"due_date,omitempty" yaml:"due_date"`
	CreatedAt          time.Time  `json:"created_at" yaml:"-"`
	UpdatedAt          time.Time  `json:"updated_at" yaml:"-"`
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return strings.TrimSpace(t.AssignedEmployeeID) != ""
}

// IsOpen reports whether the task still needs work.
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusCompleted
}

// Employee is a team member that can take tasks.
type Employee struct {
	ID                string       `json:"id" yaml:"id"`
	FirstName         string       `json:"first_name" yaml:"first_name"`
	LastName          string       `json:"last_name" yaml:"last_name"`
	Role              string       `json:"role,omitempty" yaml:"role"`
	Department        string       `json:"department" yaml:"department"`
	Team              string       `json:"team,omitempty" yaml:"team"`
	TechStack         []string     `json:"tech_stack,omitempty" yaml:"tech_stack"`
	Workload          Workload     `json:"current_workload" yaml:"current_workload"`
	Availability      Availability `json:"availability_status" yaml:"availability_status"`
	UnavailableUntil  *time.Time   `json:"unavailable_until,omitempty" yaml:"unavailable_until"`
	UnavailableReason string       `json:"unavailable_reason,omitempty" yaml:"unavailable_reason"`
	CurrentTaskIDs    []string     `json:"current_task_ids,omitempty" yaml:"current_task_ids"`
	UpdatedAt         time.Time    `json:"updated_at" yaml:"-"`
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// IsAvailable reports whether the employee can take new work.
func (e *Employee) IsAvailable() bool {
	return e.Availability == "" || e.Availability == AvailabilityAvailable
}

// Sprint is one time-boxed iteration of a project plan.
type Sprint struct {
	ID               string       `json:"sprint_id"`
	ProjectID        string       `json:"project_id"`
	Number           int          `json:"number"`
	Name             string       `json:"name"`
	StartDate        time.Time    `json:"start_date"`
	EndDate          time.Time    `json:"end_date"`
	DurationWeeks    int          `json:"sprint_duration_weeks"`
	Status           SprintStatus `json:"status"`
	TaskIDs          []string     `json:"task_ids"`
	OriginalSprintID string       `json:"original_sprint_id,omitempty"`
	VacationDays     int          `json:"vacation_days,omitempty"`
	DelayDays        int          `json:"delays,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewSprintID returns a fresh sprint identifier.
func NewSprintID() string {
	return "sprint_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
