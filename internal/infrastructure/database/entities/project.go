package entities

import (
	"time"

	"gorm.io/datatypes"
)

// TableName specifies the table name for Project.
func (Project) TableName() string {
	return "projects"
}

// Project is the persisted project record.
type Project struct {
	ID                 uint                        `gorm:"primaryKey"`
	PublicID           string                      `gorm:"uniqueIndex;size:64"`
	Name               string                      `gorm:"size:256;index"`
	Description        string                      `gorm:"type:text"`
	Department         string                      `gorm:"size:128"`
	Status             string                      `gorm:"size:32"`
	TechStack          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	AcceptanceCriteria datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ScopeItems         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Timeline           string                      `gorm:"type:text"`
	CriticalAnalysis   string                      `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for Task.
func (Task) TableName() string {
	return "tasks"
}

// Task is the persisted task record.
type Task struct {
	ID                 uint                        `gorm:"primaryKey"`
	PublicID           string                      `gorm:"uniqueIndex;size:64"`
	ProjectID          string                      `gorm:"size:64;index:idx_task_project"`
	Title              string                      `gorm:"size:512"`
	Detail             string                      `gorm:"type:text"`
	Stack              datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Department         string                      `gorm:"size:128"`
	Source             string                      `gorm:"size:64"`
	Status             string                      `gorm:"size:32;index:idx_task_status"`
	Priority           string                      `gorm:"size:32"`
	EstimatedHours     float64                     `gorm:"default:0"`
	AssignedEmployeeID string                      `gorm:"size:64;index:idx_task_assignee"`
	AssignedTo         string                      `gorm:"size:256"`
	AssignmentReason   string                      `gorm:"type:text"`
	SprintNumber       int                         `gorm:"default:0"`
	DependsOn          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	StartDate          *time.Time
	DueDate            *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for Employee.
func (Employee) TableName() string {
	return "employees"
}

// Employee is the persisted employee record.
type Employee struct {
	ID                uint                        `gorm:"primaryKey"`
	PublicID          string                      `gorm:"uniqueIndex;size:64"`
	FirstName         string                      `gorm:"size:128"`
	LastName          string                      `gorm:"size:128"`
	Role              string                      `gorm:"size:128"`
	Department        string                      `gorm:"size:128;index:idx_employee_department"`
	Team              string                      `gorm:"size:128"`
	TechStack         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Workload          string                      `gorm:"size:32"`
	Availability      string                      `gorm:"size:32;index:idx_employee_availability"`
	UnavailableUntil  *time.Time
	UnavailableReason string                      `gorm:"type:text"`
	CurrentTaskIDs    datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for Sprint.
func (Sprint) TableName() string {
	return "sprints"
}

// Sprint is the persisted sprint record.
type Sprint struct {
	ID               uint                        `gorm:"primaryKey"`
	PublicID         string                      `gorm:"uniqueIndex;size:64"`
	ProjectID        string                      `gorm:"size:64;index:idx_sprint_project"`
	Number           int                         `gorm:"default:0"`
	Name             string                      `gorm:"size:256"`
	StartDate        time.Time
	EndDate          time.Time
	DurationWeeks    int                         `gorm:"default:2"`
	Status           string                      `gorm:"size:32"`
	TaskIDs          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	OriginalSprintID string                      `gorm:"size:64"`
	VacationDays     int                         `gorm:"default:0"`
	DelayDays        int                         `gorm:"default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for ActiveProject.
func (ActiveProject) TableName() string {
	return "active_projects"
}

// ActiveProject remembers the project a session works on.
type ActiveProject struct {
	SessionID string `gorm:"primaryKey;size:64"`
	ProjectID string `gorm:"size:64"`
	UpdatedAt time.Time
}
