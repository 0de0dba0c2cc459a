// Package builtin holds the project-management tools the assistant can call.
package builtin

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/tool"
)

// Tools returns every built-in tool in catalog order.
func Tools() []tool.Tool {
	return []tool.Tool{
		tool.MustNew(tool.Spec[noArgs]{
			Name:        "list_projects",
			Description: "List all projects and show which one is active in this conversation.",
			Run:         listProjects,
		}),
		tool.MustNew(tool.Spec[projectRef]{
			Name:        "get_project_details",
			Description: "Show a project's scope, tech stack, task counts by status and sprint summary.",
			Run:         getProjectDetails,
		}),
		tool.MustNew(tool.Spec[switchProjectArgs]{
			Name:        "switch_active_project",
			Description: "Make a project the active one for this conversation. Later tools default to it.",
			Run:         switchActiveProject,
		}),
		tool.MustNew(tool.Spec[listTasksArgs]{
			Name:        "list_tasks",
			Description: "List tasks of a project, optionally filtered by status or assignee.",
			Run:         listTasks,
		}),
		tool.MustNew(tool.Spec[listEmployeesArgs]{
			Name:        "list_employees",
			Description: "List employees, optionally filtered by department or availability.",
			Run:         listEmployees,
		}),
		tool.MustNew(tool.Spec[employeeRef]{
			Name:        "get_employee_info",
			Description: "Show an employee's role, skills, workload and availability.",
			Run:         getEmployeeInfo,
		}),
		tool.MustNew(tool.Spec[employeeRef]{
			Name:        "get_employee_tasks",
			Description: "List the tasks assigned to an employee across projects.",
			Run:         getEmployeeTasks,
		}),
		tool.MustNew(tool.Spec[departmentArgs]{
			Name:        "get_department_workload",
			Description: "Summarise workload and availability of a department.",
			Run:         getDepartmentWorkload,
		}),
		tool.MustNew(tool.Spec[candidatesArgs]{
			Name:        "get_available_employees_for_task",
			Description: "Rank available employees for a task by skill match, workload and department.",
			Run:         getAvailableEmployeesForTask,
		}),
		tool.MustNew(tool.Spec[projectRef]{
			Name:        "list_sprints",
			Description: "List the sprints of a project.",
			Run:         listSprints,
		}),
		tool.MustNew(tool.Spec[sprintHealthArgs]{
			Name:        "calculate_sprint_health",
			Description: "Score the health of a sprint from completion, blockers, capacity and time pressure.",
			Run:         calculateSprintHealth,
		}),
		tool.MustNew(tool.Spec[projectRef]{
			Name:        "predict_delays",
			Description: "Predict delay risk for a project from blocked, unassigned and understaffed work.",
			Run:         predictDelays,
		}),
		tool.MustNew(tool.Spec[assignArgs]{
			Name:             "assign_task_to_employee",
			Description:      "Propose an assignee for an unassigned task. The user must confirm before it is saved.",
			ConfirmationType: tool.ConfirmAssignTask,
			Run:              proposeAssignment,
			Apply:            applyAssignment,
		}),
		tool.MustNew(tool.Spec[reassignArgs]{
			Name:             "reassign_task",
			Description:      "Propose moving an assigned task to someone else. The user must confirm before it is saved.",
			ConfirmationType: tool.ConfirmReassignTask,
			Run:              proposeReassignment,
			Apply:            applyReassignment,
		}),
		tool.MustNew(tool.Spec[availabilityArgs]{
			Name:             "update_employee_availability",
			Description:      "Propose changing an employee's availability, e.g. for vacation. Requires confirmation.",
			ConfirmationType: tool.ConfirmUpdateAvailability,
			Run:              proposeAvailability,
			Apply:            applyAvailability,
		}),
		tool.MustNew(tool.Spec[generatePlanArgs]{
			Name:             "generate_sprint_plan",
			Description:      "Propose sprints for a project's open tasks by priority and team capacity. Requires confirmation.",
			ConfirmationType: tool.ConfirmGenerateSprints,
			Run:              proposeSprintPlan,
			Apply:            applySprintPlan,
		}),
		tool.MustNew(tool.Spec[replanArgs]{
			Name:             "replan_sprints",
			Description:      "Propose shifting open sprints for vacation days and delays. Requires confirmation.",
			ConfirmationType: tool.ConfirmReplanSprints,
			Run:              proposeReplan,
			Apply:            applyReplan,
		}),
	}
}

// NewRegistry builds a registry holding every built-in tool.
func NewRegistry(log zerolog.Logger, timeout time.Duration) (*tool.Registry, error) {
	return tool.NewRegistry(log, timeout, Tools()...)
}
