package orchestrator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/tool"
)

func mustSuccess(t *testing.T, message string, payload any) *tool.Result {
	t.Helper()
	r, err := tool.Success(message, payload)
	require.NoError(t, err)
	return r
}

func TestFormat(t *testing.T) {
	tasks := make([]map[string]any, 0, 12)
	for i := 1; i <= 12; i++ {
		tasks = append(tasks, map[string]any{"task_title": fmt.Sprintf("Task %d", i), "status": "todo", "priority": "low"})
	}

	tests := []struct {
		name     string
		tool     string
		result   *tool.Result
		contains []string
		excludes []string
	}{
		{
			name: "employees",
			tool: "list_employees",
			result: mustSuccess(t, "Found 1 employee(s)", map[string]any{
				"department": "Backend",
				"employees": []map[string]any{{
					"name": "Alice Nguyen", "role": "Developer", "department": "Backend",
					"tech_stack": []string{"Go", "SQL", "Redis", "Kafka"}, "current_workload": "low",
					"availability_status": "available", "open_tasks": 2,
				}},
			}),
			contains: []string{"Employees in Backend", "Alice Nguyen", "workload low", "[Go, SQL, Redis]"},
			excludes: []string{"Kafka"},
		},
		{
			name:     "no employees",
			tool:     "list_employees",
			result:   mustSuccess(t, "Found 0 employee(s)", map[string]any{"employees": []any{}}),
			contains: []string{"No employees found in all departments."},
		},
		{
			name:     "long task list",
			tool:     "list_tasks",
			result:   mustSuccess(t, "Found 12 task(s)", map[string]any{"project_name": "Apollo", "tasks": tasks}),
			contains: []string{"Tasks for Apollo** (12)", "10. [ ] Task 10", "... and 2 more task(s)", "unassigned"},
			excludes: []string{"Task 11"},
		},
		{
			name: "projects",
			tool: "list_projects",
			result: mustSuccess(t, "Found 1 project(s)", map[string]any{
				"projects": []map[string]any{{"project_name": "Apollo", "department": "Backend", "status": "active", "active": true}},
			}),
			contains: []string{"1. Apollo (Backend, active) - active"},
		},
		{
			name:     "fallback to message",
			tool:     "switch_active_project",
			result:   mustSuccess(t, "Active project is now Apollo", map[string]any{"project_id": "p1"}),
			contains: []string{"Active project is now Apollo."},
		},
		{
			name:     "error",
			tool:     "get_employee_info",
			result:   tool.Failure(tool.CodeNotFound, "employee Zed not found."),
			contains: []string{"I couldn't complete get_employee_info: employee Zed not found."},
			excludes: []string{".."},
		},
		{
			name:     "no active project",
			tool:     "list_tasks",
			result:   tool.Failure(tool.CodeNoActiveProject, "pick a project first"),
			contains: []string{"There is no active project yet. pick a project first."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.tool, tt.result)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
			assert.False(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestUnknownTool(t *testing.T) {
	assert.Equal(t, `Error: no tool named "drop_db" is available.`, UnknownTool("drop_db"))
}
