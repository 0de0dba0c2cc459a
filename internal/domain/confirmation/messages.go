package confirmation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/tool"
)

const proceedQuestion = "Do you want me to proceed?"

type alternativeView struct {
	Name   string  `json:"name"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

type assignmentView struct {
	TaskTitle        string            `json:"task_title"`
	AssignedTo       string            `json:"assigned_to"`
	PreviousAssignee string            `json:"previous_assignee"`
	Reason           string            `json:"reason"`
	Confidence       float64           `json:"confidence_score"`
	Alternatives     []alternativeView `json:"alternatives"`
	Risks            []string          `json:"potential_risks"`
	CascadeRisks     []string          `json:"cascade_risks"`
}

type availabilityView struct {
	Name          string            `json:"name"`
	NewStatus     string            `json:"new_status"`
	Until         string            `json:"unavailable_until"`
	Reason        string            `json:"reason"`
	AffectedTasks []json.RawMessage `json:"affected_tasks"`
	Risks         []string          `json:"potential_risks"`
}

type sprintView struct {
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	TaskIDs   []string  `json:"task_ids"`
}

type planView struct {
	ProjectName string `json:"project_name"`
	Plan        struct {
		DurationWeeks int          `json:"sprint_duration_weeks"`
		Sprints       []sprintView `json:"sprints"`
	} `json:"plan"`
	Replaces []string `json:"replaces_sprint_ids"`
}

type replanView struct {
	ProjectName  string `json:"project_name"`
	VacationDays int    `json:"vacation_days"`
	DelayDays    int    `json:"delays"`
	Replan       struct {
		Sprints []sprintView `json:"sprints"`
		Changes struct {
			ShiftedDays  int      `json:"shifted_days"`
			MovedTasks   []string `json:"moved_tasks"`
			AddedSprints int      `json:"added_sprints"`
		} `json:"changes"`
	} `json:"replan"`
}

// Summarize renders the question shown to the user for a proposal.
func Summarize(result *tool.Result) string {
	var b strings.Builder
	switch result.ConfirmationType {
	case tool.ConfirmAssignTask, tool.ConfirmReassignTask:
		var v assignmentView
		if !decode(result, &v) {
			break
		}
		if result.ConfirmationType == tool.ConfirmReassignTask {
			fmt.Fprintf(&b, "I propose moving **%s** from %s to **%s**", v.TaskTitle, v.PreviousAssignee, v.AssignedTo)
		} else {
			fmt.Fprintf(&b, "I propose assigning **%s** to **%s**", v.TaskTitle, v.AssignedTo)
		}
		fmt.Fprintf(&b, " (confidence %.0f%%).\n", v.Confidence*100)
		if v.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", v.Reason)
		}
		writeList(&b, "Risks", v.Risks)
		writeList(&b, "Knock-on effects", v.CascadeRisks)
		if len(v.Alternatives) > 0 {
			b.WriteString("Alternatives:\n")
			for _, a := range v.Alternatives {
				fmt.Fprintf(&b, "- %s (score %.0f): %s\n", a.Name, a.Score, a.Reason)
			}
		}
	case tool.ConfirmUpdateAvailability:
		var v availabilityView
		if !decode(result, &v) {
			break
		}
		fmt.Fprintf(&b, "I will mark **%s** as **%s**", v.Name, v.NewStatus)
		if v.Until != "" {
			fmt.Fprintf(&b, " until %s", v.Until)
		}
		if v.Reason != "" {
			fmt.Fprintf(&b, " (%s)", v.Reason)
		}
		b.WriteString(".\n")
		if n := len(v.AffectedTasks); n > 0 {
			fmt.Fprintf(&b, "%d open task(s) are affected.\n", n)
		}
		writeList(&b, "Risks", v.Risks)
	case tool.ConfirmGenerateSprints:
		var v planView
		if !decode(result, &v) {
			break
		}
		fmt.Fprintf(&b, "I propose %d sprint(s) of %d week(s) for **%s**:\n", len(v.Plan.Sprints), v.Plan.DurationWeeks, v.ProjectName)
		writeSprints(&b, v.Plan.Sprints)
		if n := len(v.Replaces); n > 0 {
			fmt.Fprintf(&b, "This replaces %d existing open sprint(s).\n", n)
		}
	case tool.ConfirmReplanSprints:
		var v replanView
		if !decode(result, &v) {
			break
		}
		c := v.Replan.Changes
		fmt.Fprintf(&b, "I propose shifting **%s** by %d day(s) (%d vacation, %d delay).\n", v.ProjectName, c.ShiftedDays, v.VacationDays, v.DelayDays)
		writeSprints(&b, v.Replan.Sprints)
		fmt.Fprintf(&b, "%d task(s) move to a later sprint and %d sprint(s) are added.\n", len(c.MovedTasks), c.AddedSprints)
	}
	if b.Len() == 0 {
		b.WriteString(strings.TrimSpace(result.Message))
		b.WriteString(".\n")
	}
	b.WriteString("\n")
	b.WriteString(proceedQuestion)
	return b.String()
}

// Rejection renders the reply to a rejected proposal. Assignment rejections list the alternatives.
func Rejection(rec *Record) string {
	switch rec.Type {
	case tool.ConfirmAssignTask, tool.ConfirmReassignTask:
		var v assignmentView
		if decode(rec.Proposal, &v) {
			var b strings.Builder
			fmt.Fprintf(&b, "Okay, I won't assign **%s** to %s.", v.TaskTitle, v.AssignedTo)
			if len(v.Alternatives) > 0 {
				names := make([]string, 0, len(v.Alternatives))
				for _, a := range v.Alternatives {
					names = append(names, fmt.Sprintf("%s (%s)", a.Name, a.Reason))
				}
				fmt.Fprintf(&b, " Other candidates: %s. Tell me who you prefer.", strings.Join(names, "; "))
			}
			return b.String()
		}
	case tool.ConfirmUpdateAvailability:
		var v availabilityView
		if decode(rec.Proposal, &v) {
			return fmt.Sprintf("Okay, %s's availability stays unchanged.", v.Name)
		}
	case tool.ConfirmGenerateSprints, tool.ConfirmReplanSprints:
		return "Okay, the current sprint plan stays as it is."
	}
	return "Okay, I cancelled that action. Nothing was changed."
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func writeSprints(b *strings.Builder, sprints []sprintView) {
	for _, s := range sprints {
		fmt.Fprintf(b, "- %s: %s to %s, %d task(s)\n", s.Name, s.StartDate.Format("Jan 2"), s.EndDate.Format("Jan 2"), len(s.TaskIDs))
	}
}

func decode(r *tool.Result, v any) bool {
	if r == nil || len(r.Data) == 0 {
		return false
	}
	return json.Unmarshal(r.Data, v) == nil
}
