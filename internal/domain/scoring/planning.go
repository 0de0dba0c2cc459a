package scoring

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

const (
	hoursPerWeek      = 30.0
	minSprintCapacity = 40.0
	workdaysPerWeek   = 5.0
)

var priorityRank = map[project.Priority]int{
	project.PriorityCritical: 0,
	project.PriorityHigh:     1,
	project.PriorityMedium:   2,
	project.PriorityLow:      3,
}

// ErrNoOpenTasks is returned when there is nothing to plan.
var ErrNoOpenTasks = errors.New("project has no open tasks to plan")

// PlanInput drives sprint generation.
type PlanInput struct {
	ProjectID     string
	Tasks         []*project.Task
	Team          []*project.Employee
	Start         time.Time
	DurationWeeks int
}

// PlannedSprint is one proposed sprint.
type PlannedSprint struct {
	Number        int       `json:"number"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TaskIDs       []string  `json:"task_ids"`
	TaskTitles    []string  `json:"task_titles"`
	PlannedHours  float64   `json:"planned_hours"`
	CapacityHours float64   `json:"capacity_hours"`
}

// Plan is a proposed sequence of sprints.
type Plan struct {
	ProjectID     string          `json:"project_id"`
	DurationWeeks int             `json:"sprint_duration_weeks"`
	TotalHours    float64         `json:"total_hours"`
	Sprints       []PlannedSprint `json:"sprints"`
}

// SprintCapacity is the team's hours per sprint: available people count fully and limited
// people half. The result is never below a floor so a plan can always make progress.
func SprintCapacity(team []*project.Employee, weeks int) float64 {
	var people float64
	for _, e := range team {
		switch e.Availability {
		case project.AvailabilityUnavailable:
		case project.AvailabilityLimited:
			people += limitedCapacity
		default:
			people++
		}
	}
	return math.Max(people*hoursPerWeek*float64(weeks), minSprintCapacity)
}

// GenerateSprintPlan fills sprints greedily by priority. A task never lands in a sprint
// earlier than any of its dependencies.
func GenerateSprintPlan(in PlanInput) (*Plan, error) {
	if in.DurationWeeks < 1 {
		return nil, ErrInvalidSprintWeeks
	}
	open := make([]*project.Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		if t.IsOpen() {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return nil, ErrNoOpenTasks
	}
	sort.SliceStable(open, func(i, j int) bool {
		return rankOf(open[i].Priority) < rankOf(open[j].Priority)
	})
	open = dependencyOrder(open)

	capacity := SprintCapacity(in.Team, in.DurationWeeks)
	placed := make(map[string]int, len(open))
	var load []float64
	var buckets [][]*project.Task

	plan := &Plan{ProjectID: in.ProjectID, DurationWeeks: in.DurationWeeks}
	for _, t := range open {
		hours := taskHours(t)
		plan.TotalHours += hours

		earliest := 0
		for _, dep := range t.DependsOn {
			if idx, ok := placed[dep]; ok && idx > earliest {
				earliest = idx
			}
		}
		idx := earliest
		for idx < len(load) && load[idx] > 0 && load[idx]+hours > capacity {
			idx++
		}
		for idx >= len(load) {
			load = append(load, 0)
			buckets = append(buckets, nil)
		}
		load[idx] += hours
		buckets[idx] = append(buckets[idx], t)
		placed[t.ID] = idx
	}

	dates, err := CalculateSprintDates(in.Start, in.DurationWeeks, len(buckets))
	if err != nil {
		return nil, err
	}
	for i, bucket := range buckets {
		s := PlannedSprint{
			Number:        dates[i].Number,
			Name:          fmt.Sprintf("Sprint %d", dates[i].Number),
			StartDate:     dates[i].Start,
			EndDate:       dates[i].End,
			PlannedHours:  round(load[i], 1),
			CapacityHours: round(capacity, 1),
		}
		for _, t := range bucket {
			s.TaskIDs = append(s.TaskIDs, t.ID)
			s.TaskTitles = append(s.TaskTitles, t.Title)
		}
		plan.Sprints = append(plan.Sprints, s)
	}
	plan.TotalHours = round(plan.TotalHours, 1)
	return plan, nil
}

// ReplanInput drives a replan of existing sprints.
type ReplanInput struct {
	Sprints      []*project.Sprint
	Tasks        []*project.Task
	Team         []*project.Employee
	VacationDays int
	DelayDays    int
}

// ReplanChanges summarises what a replan did.
type ReplanChanges struct {
	ShiftedDays  int      `json:"shifted_days"`
	MovedTasks   []string `json:"moved_tasks"`
	AddedSprints int      `json:"added_sprints"`
}

// Replan is a proposed replacement for the current sprints.
type Replan struct {
	ReplacedSprintIDs []string        `json:"replaced_sprint_ids"`
	Sprints           []PlannedSprint `json:"sprints"`
	Changes           ReplanChanges   `json:"changes"`
}

// ErrNothingToReplan is returned when no active or planned sprint exists.
var ErrNothingToReplan = errors.New("project has no planned or active sprints")

// ReplanSprints shifts remaining sprints by vacation plus delay days and removes the lost
// vacation capacity from the first sprint. Open tasks that no longer fit move forward,
// appending sprints when needed. Completed sprints are left untouched.
func ReplanSprints(in ReplanInput) (*Replan, error) {
	if in.VacationDays < 0 || in.DelayDays < 0 {
		return nil, errors.New("vacation and delay days must not be negative")
	}
	current := make([]*project.Sprint, 0, len(in.Sprints))
	for _, s := range in.Sprints {
		if s.Status == project.SprintStatusPlanned || s.Status == project.SprintStatusActive {
			current = append(current, s)
		}
	}
	if len(current) == 0 {
		return nil, ErrNothingToReplan
	}
	sort.SliceStable(current, func(i, j int) bool { return current[i].Number < current[j].Number })

	tasks := make(map[string]*project.Task, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks[t.ID] = t
	}

	weeks := current[0].DurationWeeks
	if weeks < 1 {
		weeks = 2
	}
	shift := in.VacationDays + in.DelayDays
	base := SprintCapacity(in.Team, weeks)
	perDay := base / (float64(weeks) * workdaysPerWeek)

	out := &Replan{Changes: ReplanChanges{ShiftedDays: shift, MovedTasks: []string{}}}
	var carry []*project.Task
	for i, s := range current {
		out.ReplacedSprintIDs = append(out.ReplacedSprintIDs, s.ID)
		capacity := base
		if i == 0 {
			capacity = math.Max(base-perDay*float64(in.VacationDays), 0)
		}

		queue := append(carry, sprintTasks(s, tasks)...)
		carry = nil
		next := PlannedSprint{
			Number:        s.Number,
			Name:          s.Name,
			StartDate:     s.StartDate.AddDate(0, 0, shift),
			EndDate:       s.EndDate.AddDate(0, 0, shift),
			CapacityHours: round(capacity, 1),
		}
		next, carry = fill(next, queue, capacity, s.TaskIDs, &out.Changes)
		out.Sprints = append(out.Sprints, next)
	}

	last := out.Sprints[len(out.Sprints)-1]
	for len(carry) > 0 {
		s := PlannedSprint{
			Number:        last.Number + 1,
			Name:          fmt.Sprintf("Sprint %d", last.Number+1),
			StartDate:     last.EndDate,
			EndDate:       last.EndDate.AddDate(0, 0, 7*weeks),
			CapacityHours: round(base, 1),
		}
		s, carry = fill(s, carry, base, nil, &out.Changes)
		out.Sprints = append(out.Sprints, s)
		out.Changes.AddedSprints++
		last = s
	}
	return out, nil
}

func fill(s PlannedSprint, queue []*project.Task, capacity float64, original []string, changes *ReplanChanges) (PlannedSprint, []*project.Task) {
	was := make(map[string]bool, len(original))
	for _, id := range original {
		was[id] = true
	}
	var rest []*project.Task
	for _, t := range queue {
		hours := taskHours(t)
		if len(rest) == 0 && (s.PlannedHours == 0 || s.PlannedHours+hours <= capacity) {
			s.PlannedHours += hours
			s.TaskIDs = append(s.TaskIDs, t.ID)
			s.TaskTitles = append(s.TaskTitles, t.Title)
			if !was[t.ID] {
				changes.MovedTasks = append(changes.MovedTasks, t.ID)
			}
			continue
		}
		rest = append(rest, t)
	}
	s.PlannedHours = round(s.PlannedHours, 1)
	return s, rest
}

func sprintTasks(s *project.Sprint, tasks map[string]*project.Task) []*project.Task {
	out := make([]*project.Task, 0, len(s.TaskIDs))
	for _, id := range s.TaskIDs {
		if t, ok := tasks[id]; ok && t.IsOpen() {
			out = append(out, t)
		}
	}
	return out
}

// dependencyOrder keeps the priority order but moves each task after the open tasks it
// depends on. Cycles are broken at the first revisit.
func dependencyOrder(tasks []*project.Task) []*project.Task {
	byID := make(map[string]*project.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	done := make(map[string]bool, len(tasks))
	visiting := make(map[string]bool)
	out := make([]*project.Task, 0, len(tasks))

	var visit func(t *project.Task)
	visit = func(t *project.Task) {
		if done[t.ID] || visiting[t.ID] {
			return
		}
		visiting[t.ID] = true
		for _, dep := range t.DependsOn {
			if d, ok := byID[dep]; ok {
				visit(d)
			}
		}
		visiting[t.ID] = false
		done[t.ID] = true
		out = append(out, t)
	}
	for _, t := range tasks {
		visit(t)
	}
	return out
}

func taskHours(t *project.Task) float64 {
	if t.EstimatedHours > 0 {
		return t.EstimatedHours
	}
	return defaultTaskHours
}

func rankOf(p project.Priority) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return priorityRank[project.PriorityMedium]
}
