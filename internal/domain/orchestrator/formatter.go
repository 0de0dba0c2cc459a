package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/janhq/pm-assistant/internal/domain/tool"
)

const maxListed = 10

type taskView struct {
	Title      string `json:"task_title"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	AssignedTo string `json:"assigned_to"`
	Sprint     int    `json:"sprint_number"`
}

type employeeView struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Department   string   `json:"department"`
	TechStack    []string `json:"tech_stack"`
	Workload     string   `json:"current_workload"`
	Availability string   `json:"availability_status"`
	OpenTasks    int      `json:"open_tasks"`
}

type projectView struct {
	Name       string `json:"project_name"`
	Department string `json:"department"`
	Status     string `json:"status"`
	Active     bool   `json:"active"`
}

type candidateView struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Format renders a successful, non-confirmable tool result for the user without a model call.
// Tools without a dedicated template fall back to the result message.
func Format(toolName string, r *tool.Result) string {
	if r.IsError() {
		return FormatError(toolName, r)
	}
	var b strings.Builder
	switch toolName {
	case "list_tasks", "get_employee_tasks":
		var v struct {
			ProjectName string     `json:"project_name"`
			Name        string     `json:"name"`
			Tasks       []taskView `json:"tasks"`
		}
		if !decodeView(r, &v) {
			break
		}
		owner := v.ProjectName
		if owner == "" {
			owner = v.Name
		}
		if len(v.Tasks) == 0 {
			fmt.Fprintf(&b, "No tasks found for %s.", owner)
			break
		}
		fmt.Fprintf(&b, "**Tasks for %s** (%d)\n", owner, len(v.Tasks))
		for i, t := range head(v.Tasks) {
			assignee := t.AssignedTo
			if assignee == "" {
				assignee = "unassigned"
			}
			fmt.Fprintf(&b, "%d. %s %s [%s, %s] - %s\n", i+1, statusMark(t.Status), t.Title, t.Status, t.Priority, assignee)
		}
		writeMore(&b, len(v.Tasks), "task")
	case "list_employees", "get_department_workload":
		var v struct {
			Department string         `json:"department"`
			Employees  []employeeView `json:"employees"`
		}
		if !decodeView(r, &v) {
			break
		}
		scope := "all departments"
		if v.Department != "" {
			scope = v.Department
		}
		if len(v.Employees) == 0 {
			fmt.Fprintf(&b, "No employees found in %s.", scope)
			break
		}
		fmt.Fprintf(&b, "**Employees in %s** (%d)\n", scope, len(v.Employees))
		for i, e := range head(v.Employees) {
			fmt.Fprintf(&b, "%d. %s, %s (%s) - workload %s, %s, %d open task(s)", i+1,
				e.Name, e.Role, e.Department, e.Workload, e.Availability, e.OpenTasks)
			if len(e.TechStack) > 0 {
				stack := e.TechStack
				if len(stack) > 3 {
					stack = stack[:3]
				}
				fmt.Fprintf(&b, " [%s]", strings.Join(stack, ", "))
			}
			b.WriteString("\n")
		}
		writeMore(&b, len(v.Employees), "employee")
	case "list_projects":
		var v struct {
			Projects []projectView `json:"projects"`
		}
		if !decodeView(r, &v) {
			break
		}
		if len(v.Projects) == 0 {
			b.WriteString("There are no projects yet.")
			break
		}
		fmt.Fprintf(&b, "**Projects** (%d)\n", len(v.Projects))
		for i, p := range v.Projects {
			fmt.Fprintf(&b, "%d. %s (%s, %s)", i+1, p.Name, p.Department, p.Status)
			if p.Active {
				b.WriteString(" - active")
			}
			b.WriteString("\n")
		}
	case "get_available_employees_for_task":
		var v struct {
			TaskTitle  string          `json:"task_title"`
			Candidates []candidateView `json:"candidates"`
		}
		if !decodeView(r, &v) {
			break
		}
		if len(v.Candidates) == 0 {
			fmt.Fprintf(&b, "Nobody is available for %s right now.", v.TaskTitle)
			break
		}
		fmt.Fprintf(&b, "**Best candidates for %s**\n", v.TaskTitle)
		for i, c := range v.Candidates {
			fmt.Fprintf(&b, "%d. %s (score %.0f): %s\n", i+1, c.Name, c.Score, c.Reason)
		}
	case "calculate_sprint_health":
		var v struct {
			SprintName string `json:"sprint_name"`
			Health     struct {
				Score          float64  `json:"health_score"`
				Status         string   `json:"status"`
				CompletionRate float64  `json:"completion_rate"`
				BlockedTasks   int      `json:"blocked_tasks"`
				DaysRemaining  int      `json:"days_remaining"`
				Recs           []string `json:"recommendations"`
			} `json:"health"`
		}
		if !decodeView(r, &v) {
			break
		}
		h := v.Health
		fmt.Fprintf(&b, "**%s health: %.0f/100 (%s)**\n", v.SprintName, h.Score, h.Status)
		fmt.Fprintf(&b, "Completion %.0f%%, %d blocked task(s), %d day(s) remaining.\n", h.CompletionRate*100, h.BlockedTasks, h.DaysRemaining)
		writeBullets(&b, h.Recs)
	case "predict_delays":
		var v struct {
			ProjectName string `json:"project_name"`
			Prediction  struct {
				RiskLevel string `json:"risk_level"`
				Days      int    `json:"estimated_delay_days"`
				Factors   []struct {
					Severity    string `json:"severity"`
					Description string `json:"description"`
				} `json:"risk_factors"`
				Recs []string `json:"recommendations"`
			} `json:"prediction"`
		}
		if !decodeView(r, &v) {
			break
		}
		p := v.Prediction
		fmt.Fprintf(&b, "**%s delay risk: %s** (about %d day(s))\n", v.ProjectName, p.RiskLevel, p.Days)
		for i, f := range p.Factors {
			if i == maxListed {
				writeMore(&b, len(p.Factors), "risk factor")
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", f.Severity, f.Description)
		}
		writeBullets(&b, p.Recs)
	}
	if b.Len() == 0 {
		return strings.TrimSuffix(strings.TrimSpace(r.Message), ".") + "."
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatError renders a failed tool result.
func FormatError(toolName string, r *tool.Result) string {
	msg := "something went wrong"
	if r != nil && strings.TrimSpace(r.Message) != "" {
		msg = strings.TrimSuffix(strings.TrimSpace(r.Message), ".")
	}
	if r != nil && r.ErrorCode == tool.CodeNoActiveProject {
		return "There is no active project yet. " + msg + "."
	}
	return fmt.Sprintf("I couldn't complete %s: %s.", toolName, msg)
}

// UnknownTool is the reply when the model asks for a tool that is not registered.
func UnknownTool(name string) string {
	return fmt.Sprintf("Error: no tool named %q is available.", name)
}

func decodeView(r *tool.Result, v any) bool {
	if !r.Structured() {
		return false
	}
	return json.Unmarshal(r.Data, v) == nil
}

func head[T any](items []T) []T {
	if len(items) > maxListed {
		return items[:maxListed]
	}
	return items
}

func writeMore(b *strings.Builder, total int, noun string) {
	if total > maxListed {
		fmt.Fprintf(b, "... and %d more %s(s)\n", total-maxListed, noun)
	}
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func statusMark(status string) string {
	switch status {
	case "completed":
		return "[x]"
	case "in_progress":
		return "[~]"
	case "blocked":
		return "[!]"
	}
	return "[ ]"
}
