package builtin_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/domain/tool/builtin"
	projectrepo "github.com/janhq/pm-assistant/internal/infrastructure/repository/project"
)

var now = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *projectrepo.MemoryRepository
	registry *tool.Registry
	tc       tool.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := projectrepo.NewMemoryRepository()

	require.NoError(t, repo.SaveProject(ctx, &project.Project{ID: "p1", Name: "Apollo", Department: "Backend"}))
	require.NoError(t, repo.SaveProject(ctx, &project.Project{ID: "p2", Name: "Hermes", Department: "Frontend"}))

	employees := []*project.Employee{
		{ID: "e1", FirstName: "Alice", LastName: "Nguyen", Department: "Backend", TechStack: []string{"Go", "PostgreSQL"}, Workload: project.WorkloadLow, Availability: project.AvailabilityAvailable},
		{ID: "e2", FirstName: "Bob", LastName: "Tran", Department: "Backend", TechStack: []string{"Go"}, Workload: project.WorkloadHigh, Availability: project.AvailabilityAvailable, CurrentTaskIDs: []string{"t3"}},
		{ID: "e3", FirstName: "Carol", LastName: "Le", Department: "Frontend", TechStack: []string{"React"}, Workload: project.WorkloadMedium, Availability: project.AvailabilityAvailable, CurrentTaskIDs: []string{"t2"}},
		{ID: "e4", FirstName: "Dan", LastName: "Pham", Department: "Backend", TechStack: []string{"Go", "PostgreSQL"}, Workload: project.WorkloadLow, Availability: project.AvailabilityUnavailable},
	}
	for _, e := range employees {
		require.NoError(t, repo.SaveEmployee(ctx, e))
	}

	tasks := []*project.Task{
		{ID: "t1", ProjectID: "p1", Title: "Login API", Stack: []string{"Go", "PostgreSQL"}, Department: "Backend", Status: project.TaskStatusTodo, Priority: project.PriorityHigh, EstimatedHours: 16},
		{ID: "t2", ProjectID: "p1", Title: "Dashboard UI", Stack: []string{"React"}, Department: "Frontend", Status: project.TaskStatusInProgress, Priority: project.PriorityMedium, EstimatedHours: 24, AssignedEmployeeID: "e3", AssignedTo: "Carol Le"},
		{ID: "t3", ProjectID: "p1", Title: "Payments", Stack: []string{"Go"}, Department: "Backend", Status: project.TaskStatusBlocked, Priority: project.PriorityCritical, EstimatedHours: 8, AssignedEmployeeID: "e2", AssignedTo: "Bob Tran", DependsOn: []string{"t1"}},
		{ID: "t4", ProjectID: "p2", Title: "Landing page", Status: project.TaskStatusTodo},
	}
	for _, task := range tasks {
		require.NoError(t, repo.SaveTask(ctx, task))
	}

	registry, err := builtin.NewRegistry(zerolog.Nop(), time.Second)
	require.NoError(t, err)
	return &fixture{repo: repo, registry: registry, tc: tool.Context{Repo: repo, SessionID: "session_test", Now: now}}
}

func (f *fixture) invoke(t *testing.T, name, args string) *tool.Result {
	t.Helper()
	res, err := f.registry.Invoke(context.Background(), f.tc, name, json.RawMessage(args))
	require.NoError(t, err)
	return res
}

func (f *fixture) apply(t *testing.T, name, args string, proposal *tool.Result) *tool.Result {
	t.Helper()
	res, err := f.registry.Apply(context.Background(), f.tc, name, json.RawMessage(args), proposal)
	require.NoError(t, err)
	return res
}

func decode(t *testing.T, r *tool.Result) map[string]any {
	t.Helper()
	require.False(t, r.IsError(), r.Message)
	var out map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &out))
	return out
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)

	descriptors := f.registry.Descriptors()
	assert.Len(t, descriptors, 17)

	mutating := map[string]tool.ConfirmationType{}
	for _, d := range descriptors {
		assert.Equal(t, "object", d.InputSchema["type"], d.Name)
		assert.NotEmpty(t, d.Description, d.Name)
		if d.Mutating {
			mutating[d.Name] = d.ConfirmationType
		}
	}
	assert.Equal(t, map[string]tool.ConfirmationType{
		"assign_task_to_employee":      tool.ConfirmAssignTask,
		"reassign_task":                tool.ConfirmReassignTask,
		"update_employee_availability": tool.ConfirmUpdateAvailability,
		"generate_sprint_plan":         tool.ConfirmGenerateSprints,
		"replan_sprints":               tool.ConfirmReplanSprints,
	}, mutating)
}

func TestListEmployees_ByDepartment(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "list_employees", `{"department":"Backend"}`))
	assert.EqualValues(t, 3, data["count"])
	for _, e := range data["employees"].([]any) {
		assert.Equal(t, "Backend", e.(map[string]any)["department"])
	}

	data = decode(t, f.invoke(t, "list_employees", `{"availability_status":"unavailable"}`))
	assert.EqualValues(t, 1, data["count"])
}

func TestActiveProject(t *testing.T) {
	f := newFixture(t)

	res := f.invoke(t, "list_tasks", `{}`)
	assert.True(t, res.IsError())
	assert.Equal(t, tool.CodeNoActiveProject, res.ErrorCode)

	res = f.invoke(t, "switch_active_project", `{"project_id":"apollo"}`)
	assert.False(t, res.RequiresConfirmation)
	assert.Equal(t, "p1", decode(t, res)["project_id"])

	data := decode(t, f.invoke(t, "list_tasks", `{}`))
	assert.EqualValues(t, 3, data["count"])

	data = decode(t, f.invoke(t, "list_tasks", `{"status":"blocked"}`))
	assert.EqualValues(t, 1, data["count"])

	data = decode(t, f.invoke(t, "list_projects", `{}`))
	assert.Equal(t, "p1", data["active_project_id"])

	res = f.invoke(t, "switch_active_project", `{"project_id":"Zeus"}`)
	assert.Equal(t, tool.CodeNotFound, res.ErrorCode)
}

func TestGetAvailableEmployeesForTask(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "get_available_employees_for_task", `{"project_id":"p1","task_title":"login api"}`))
	candidates := data["candidates"].([]any)
	require.Len(t, candidates, 3)
	assert.Equal(t, "e1", candidates[0].(map[string]any)["employee_id"])
	assert.Equal(t, "e2", candidates[1].(map[string]any)["employee_id"])
}

func TestAssignTask_ProposeThenApply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	args := `{"project_id":"p1","task_title":"Login API"}`

	proposal := f.invoke(t, "assign_task_to_employee", args)
	require.True(t, proposal.RequiresConfirmation)
	assert.Equal(t, tool.ConfirmAssignTask, proposal.ConfirmationType)

	data := decode(t, proposal)
	assert.Equal(t, "e1", data["employee_id"])
	assert.Equal(t, "Alice Nguyen", data["assigned_to"])
	assert.EqualValues(t, 1, data["confidence_score"])
	assert.NotEmpty(t, data["alternatives"])

	task, err := f.repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, task.IsAssigned(), "proposing must not assign")

	res := f.apply(t, "assign_task_to_employee", args, proposal)
	require.False(t, res.IsError(), res.Message)
	assert.False(t, res.RequiresConfirmation)

	task, err = f.repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "e1", task.AssignedEmployeeID)
	assert.Equal(t, "Alice Nguyen", task.AssignedTo)
	alice, err := f.repo.GetEmployee(ctx, "e1")
	require.NoError(t, err)
	assert.Contains(t, alice.CurrentTaskIDs, "t1")

	res = f.apply(t, "assign_task_to_employee", args, proposal)
	assert.False(t, res.IsError(), "applying the same assignment twice is harmless")

	res = f.invoke(t, "assign_task_to_employee", args)
	assert.Equal(t, tool.CodeConflict, res.ErrorCode)
}

func TestAssignTask_NamedEmployee(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "assign_task_to_employee", `{"project_id":"p1","task_title":"Login","employee_name":"Dan"}`))
	assert.Equal(t, "e4", data["employee_id"])
	assert.Contains(t, data["potential_risks"], "Dan Pham is currently unavailable")
}

func TestAssignTask_InvalidArguments(t *testing.T) {
	f := newFixture(t)
	res := f.invoke(t, "assign_task_to_employee", `{"project_id":"p1"}`)
	assert.Equal(t, tool.CodeInvalidArguments, res.ErrorCode)
}

func TestReassignTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	args := `{"project_id":"p1","task_title":"Payments","new_employee_name":"Alice Nguyen","reason":"Bob is overloaded"}`

	proposal := f.invoke(t, "reassign_task", args)
	data := decode(t, proposal)
	assert.Equal(t, "Bob Tran", data["previous_assignee"])
	assert.Equal(t, "Alice Nguyen", data["new_assignee"])
	assert.Contains(t, data["reason"], "Bob is overloaded")

	res := f.apply(t, "reassign_task", args, proposal)
	require.False(t, res.IsError(), res.Message)

	task, err := f.repo.GetTask(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, "e1", task.AssignedEmployeeID)
	bob, err := f.repo.GetEmployee(ctx, "e2")
	require.NoError(t, err)
	assert.NotContains(t, bob.CurrentTaskIDs, "t3")
}

func TestReassignTask_StaleProposalRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	args := `{"project_id":"p1","task_title":"Payments","new_employee_id":"e1"}`
	proposal := f.invoke(t, "reassign_task", args)
	require.False(t, proposal.IsError())

	task, err := f.repo.GetTask(ctx, "t3")
	require.NoError(t, err)
	task.AssignedEmployeeID, task.AssignedTo = "e3", "Carol Le"
	require.NoError(t, f.repo.SaveTask(ctx, task))

	res := f.apply(t, "reassign_task", args, proposal)
	assert.Equal(t, tool.CodeConflict, res.ErrorCode)

	task, err = f.repo.GetTask(ctx, "t3")
	require.NoError(t, err)
	assert.Equal(t, "e3", task.AssignedEmployeeID)
}

func TestUpdateAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	args := `{"employee_name":"Bob Tran","availability_status":"unavailable","unavailable_until":"2026-04-30","reason":"vacation"}`

	proposal := f.invoke(t, "update_employee_availability", args)
	data := decode(t, proposal)
	assert.Len(t, data["affected_tasks"], 1)

	bob, err := f.repo.GetEmployee(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, project.AvailabilityAvailable, bob.Availability)

	res := f.apply(t, "update_employee_availability", args, proposal)
	require.False(t, res.IsError(), res.Message)

	bob, err = f.repo.GetEmployee(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, project.AvailabilityUnavailable, bob.Availability)
	require.NotNil(t, bob.UnavailableUntil)
	assert.Equal(t, "2026-04-30", bob.UnavailableUntil.Format("2006-01-02"))

	res = f.invoke(t, "update_employee_availability", `{"employee_id":"e2","availability_status":"away"}`)
	assert.Equal(t, tool.CodeInvalidArguments, res.ErrorCode)
	res = f.invoke(t, "update_employee_availability", `{"employee_id":"e2","availability_status":"limited","unavailable_until":"2026-01-01"}`)
	assert.Equal(t, tool.CodeInvalidArguments, res.ErrorCode)
}

func TestSprintPlanning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	proposal := f.invoke(t, "generate_sprint_plan", `{"project_id":"p1","sprint_duration_weeks":1,"start_date":"2026-04-20"}`)
	require.True(t, proposal.RequiresConfirmation)
	sprints, err := f.repo.ListSprints(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, sprints)

	res := f.apply(t, "generate_sprint_plan", `{"project_id":"p1"}`, proposal)
	require.False(t, res.IsError(), res.Message)

	sprints, err = f.repo.ListSprints(ctx, "p1")
	require.NoError(t, err)
	require.NotEmpty(t, sprints)
	assert.Equal(t, 1, sprints[0].Number)
	assert.Equal(t, "2026-04-20", sprints[0].StartDate.Format("2006-01-02"))

	task, err := f.repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.NotZero(t, task.SprintNumber)
	require.NotNil(t, task.DueDate)

	health := decode(t, f.invoke(t, "calculate_sprint_health", `{"project_id":"p1","sprint_number":1}`))
	assert.EqualValues(t, 1, health["sprint_number"])
	assert.NotEmpty(t, health["status"])

	replan := f.invoke(t, "replan_sprints", `{"project_id":"p1","vacation_days":2,"delays":1}`)
	require.True(t, replan.RequiresConfirmation, replan.Message)
	res = f.apply(t, "replan_sprints", `{"project_id":"p1","vacation_days":2,"delays":1}`, replan)
	require.False(t, res.IsError(), res.Message)

	all, err := f.repo.ListSprints(ctx, "p1")
	require.NoError(t, err)
	replaced, current := 0, 0
	for _, s := range all {
		if s.Status == project.SprintStatusReplaced {
			replaced++
			continue
		}
		current++
		if s.Number == 1 {
			assert.NotEmpty(t, s.OriginalSprintID)
			assert.Equal(t, "2026-04-23", s.StartDate.Format("2006-01-02"))
			assert.Equal(t, 2, s.VacationDays)
		}
	}
	assert.Equal(t, len(sprints), replaced)
	assert.GreaterOrEqual(t, current, replaced)

	res = f.apply(t, "replan_sprints", `{"project_id":"p1","vacation_days":2,"delays":1}`, replan)
	assert.Equal(t, tool.CodeConflict, res.ErrorCode, "a consumed replan cannot be applied again")

	res = f.invoke(t, "replan_sprints", `{"project_id":"p1"}`)
	assert.Equal(t, tool.CodeInvalidArguments, res.ErrorCode)
}

func TestSprintPlanning_ConcurrentProposalsApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	args := `{"project_id":"p1","sprint_duration_weeks":1,"start_date":"2026-04-20"}`

	first := f.invoke(t, "generate_sprint_plan", args)
	second := f.invoke(t, "generate_sprint_plan", args)
	require.True(t, first.RequiresConfirmation)
	require.True(t, second.RequiresConfirmation)

	res := f.apply(t, "generate_sprint_plan", args, first)
	require.False(t, res.IsError(), res.Message)
	before, err := f.repo.ListSprints(ctx, "p1")
	require.NoError(t, err)

	res = f.apply(t, "generate_sprint_plan", args, second)
	assert.Equal(t, tool.CodeConflict, res.ErrorCode)

	after, err := f.repo.ListSprints(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
	openByNumber := map[int]int{}
	for _, s := range after {
		if s.Status == project.SprintStatusPlanned || s.Status == project.SprintStatusActive {
			openByNumber[s.Number]++
		}
	}
	for n, count := range openByNumber {
		assert.Equal(t, 1, count, "sprint %d", n)
	}
}

func TestPredictDelays(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "predict_delays", `{"project_id":"p1"}`))
	assert.NotEqual(t, "low", data["risk_level"])

	data = decode(t, f.invoke(t, "predict_delays", `{"project_id":"Hermes"}`))
	prediction := data["prediction"].(map[string]any)
	assert.NotEmpty(t, prediction["risk_factors"])
}

func TestDepartmentWorkload(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "get_department_workload", `{"department":"backend"}`))
	assert.EqualValues(t, 3, data["count"])

	res := f.invoke(t, "get_department_workload", `{"department":"Legal"}`)
	assert.Equal(t, tool.CodeNotFound, res.ErrorCode)
}

func TestEmployeeLookups(t *testing.T) {
	f := newFixture(t)

	data := decode(t, f.invoke(t, "get_employee_tasks", `{"employee_name":"carol"}`))
	assert.EqualValues(t, 1, data["count"])

	data = decode(t, f.invoke(t, "get_employee_info", `{"employee_id":"e2"}`))
	assert.EqualValues(t, 1, data["open_tasks"])

	res := f.invoke(t, "get_employee_info", `{}`)
	assert.Equal(t, tool.CodeInvalidArguments, res.ErrorCode)
}
