package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

// RiskLevel is the ordinal delay risk of a project.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskFactorType classifies what contributes to delay risk.
type RiskFactorType string

const (
	FactorUnavailableEmployee RiskFactorType = "unavailable_employee"
	FactorUnassignedTask      RiskFactorType = "unassigned_task"
	FactorBlockedTask         RiskFactorType = "blocked_task"
	FactorDependencyChain     RiskFactorType = "dependency_chain"
)

// Severity of one risk factor.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

const defaultUnavailableDays = 5.0

var priorityWeight = map[project.Priority]float64{
	project.PriorityLow:      0.5,
	project.PriorityMedium:   1,
	project.PriorityHigh:     2,
	project.PriorityCritical: 3,
}

// RiskFactor is one typed contributor to the predicted delay. Impact is in days.
type RiskFactor struct {
	Type        RiskFactorType `json:"type"`
	Severity    Severity       `json:"severity"`
	Impact      float64        `json:"impact_score"`
	Description string         `json:"description"`
	TaskID      string         `json:"task_id,omitempty"`
	EmployeeID  string         `json:"employee_id,omitempty"`
}

// DelayInput is the snapshot a prediction is computed from.
type DelayInput struct {
	Tasks     []*project.Task
	Employees []*project.Employee
	Now       time.Time
}

// DelayPrediction is the outcome of PredictDelay.
type DelayPrediction struct {
	RiskLevel          RiskLevel    `json:"risk_level"`
	EstimatedDelayDays int          `json:"estimated_delay_days"`
	OpenTasks          int          `json:"open_tasks"`
	Factors            []RiskFactor `json:"risk_factors"`
	Recommendations    []string     `json:"recommendations,omitempty"`
}

// PredictDelay estimates delay from open tasks. Blocked tasks, unassigned tasks and tasks held
// by unavailable people are primary factors; dependency chains only propagate a primary factor
// to the tasks waiting on it. Without any primary factor the risk is always low.
func PredictDelay(in DelayInput) DelayPrediction {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	employees := make(map[string]*project.Employee, len(in.Employees))
	for _, e := range in.Employees {
		employees[e.ID] = e
	}
	tasks := make(map[string]*project.Task, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks[t.ID] = t
	}

	pred := DelayPrediction{Factors: []RiskFactor{}}
	risky := make(map[string]bool)

	for _, t := range in.Tasks {
		if !t.IsOpen() {
			continue
		}
		pred.OpenTasks++
		weight := weightOf(t.Priority)

		if t.Status == project.TaskStatusBlocked {
			risky[t.ID] = true
			pred.Factors = append(pred.Factors, RiskFactor{
				Type:        FactorBlockedTask,
				Severity:    severityFor(t.Priority, SeverityMedium),
				Impact:      round(2*weight, 2),
				Description: fmt.Sprintf("Task %q is blocked", t.Title),
				TaskID:      t.ID,
			})
		}

		if !t.IsAssigned() {
			risky[t.ID] = true
			pred.Factors = append(pred.Factors, RiskFactor{
				Type:        FactorUnassignedTask,
				Severity:    severityFor(t.Priority, SeverityLow),
				Impact:      round(weight, 2),
				Description: fmt.Sprintf("Task %q has no assignee", t.Title),
				TaskID:      t.ID,
			})
			continue
		}

		e, ok := employees[t.AssignedEmployeeID]
		if !ok || e.IsAvailable() {
			continue
		}
		days := unavailableDays(e, now)
		severity := SeverityHigh
		if e.Availability == project.AvailabilityLimited {
			days /= 2
			severity = SeverityMedium
		}
		risky[t.ID] = true
		pred.Factors = append(pred.Factors, RiskFactor{
			Type:        FactorUnavailableEmployee,
			Severity:    severity,
			Impact:      round(days, 2),
			Description: fmt.Sprintf("%s is %s while holding %q", e.FullName(), e.Availability, t.Title),
			TaskID:      t.ID,
			EmployeeID:  e.ID,
		})
	}

	pred.Factors = append(pred.Factors, dependencyFactors(in.Tasks, tasks, risky)...)

	var total float64
	for _, f := range pred.Factors {
		total += f.Impact
	}
	pred.EstimatedDelayDays = int(math.Ceil(total))
	pred.RiskLevel = riskLevelFor(pred.EstimatedDelayDays, len(risky))
	pred.Recommendations = delayRecommendations(pred)
	return pred
}

// dependencyFactors flags open tasks that transitively wait on a risky task.
func dependencyFactors(ordered []*project.Task, byID map[string]*project.Task, risky map[string]bool) []RiskFactor {
	if len(risky) == 0 {
		return nil
	}
	memo := make(map[string]int)
	var factors []RiskFactor
	for _, t := range ordered {
		if !t.IsOpen() || len(t.DependsOn) == 0 {
			continue
		}
		depth := riskyDepth(t, byID, risky, memo, map[string]bool{})
		if depth == 0 {
			continue
		}
		severity := SeverityLow
		if depth >= 3 {
			severity = SeverityHigh
		} else if depth == 2 {
			severity = SeverityMedium
		}
		factors = append(factors, RiskFactor{
			Type:        FactorDependencyChain,
			Severity:    severity,
			Impact:      round(0.5*float64(depth), 2),
			Description: fmt.Sprintf("Task %q waits on an at-risk task %d level(s) upstream", t.Title, depth),
			TaskID:      t.ID,
		})
	}
	return factors
}

// riskyDepth returns the distance to the nearest risky open upstream task, or zero.
func riskyDepth(t *project.Task, byID map[string]*project.Task, risky map[string]bool, memo map[string]int, visiting map[string]bool) int {
	if d, ok := memo[t.ID]; ok {
		return d
	}
	if visiting[t.ID] {
		return 0
	}
	visiting[t.ID] = true
	defer delete(visiting, t.ID)

	best := 0
	for _, depID := range t.DependsOn {
		dep, ok := byID[depID]
		if !ok || !dep.IsOpen() {
			continue
		}
		d := 0
		if risky[dep.ID] {
			d = 1
		} else if up := riskyDepth(dep, byID, risky, memo, visiting); up > 0 {
			d = up + 1
		}
		if d > 0 && (best == 0 || d < best) {
			best = d
		}
	}
	memo[t.ID] = best
	return best
}

func riskLevelFor(days, riskyTasks int) RiskLevel {
	if riskyTasks == 0 {
		return RiskLow
	}
	switch {
	case days > 14:
		return RiskCritical
	case days > 7:
		return RiskHigh
	case days > 2:
		return RiskMedium
	default:
		return RiskLow
	}
}

func unavailableDays(e *project.Employee, now time.Time) float64 {
	if e.UnavailableUntil == nil {
		return defaultUnavailableDays
	}
	days := math.Ceil(e.UnavailableUntil.Sub(now).Hours() / 24)
	return clamp(days, 0, 30)
}

func weightOf(p project.Priority) float64 {
	if w, ok := priorityWeight[p]; ok {
		return w
	}
	return priorityWeight[project.PriorityMedium]
}

func severityFor(p project.Priority, fallback Severity) Severity {
	switch p {
	case project.PriorityCritical:
		return SeverityCritical
	case project.PriorityHigh:
		return SeverityHigh
	case project.PriorityLow:
		return SeverityLow
	case project.PriorityMedium:
		return SeverityMedium
	}
	return fallback
}

func delayRecommendations(p DelayPrediction) []string {
	counts := make(map[RiskFactorType]int)
	for _, f := range p.Factors {
		counts[f.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, string(t))
	}
	sort.Strings(types)

	var recs []string
	for _, t := range types {
		n := counts[RiskFactorType(t)]
		switch RiskFactorType(t) {
		case FactorBlockedTask:
			recs = append(recs, fmt.Sprintf("Resolve blockers on %d task(s)", n))
		case FactorUnassignedTask:
			recs = append(recs, fmt.Sprintf("Assign owners to %d open task(s)", n))
		case FactorUnavailableEmployee:
			recs = append(recs, fmt.Sprintf("Reassign %d task(s) held by unavailable people", n))
		case FactorDependencyChain:
			recs = append(recs, fmt.Sprintf("Re-sequence %d task(s) waiting on at-risk work", n))
		}
	}
	return recs
}
