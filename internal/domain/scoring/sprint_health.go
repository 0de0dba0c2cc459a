package scoring

import (
	"fmt"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

// HealthStatus is the band a sprint health score falls into.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthCritical HealthStatus = "critical"
)

// Health weights. Completion, capacity and schedule add up to 100 before blocker penalties.
const (
	completionWeight = 40.0
	capacityWeight   = 30.0
	scheduleWeight   = 30.0
	limitedCapacity  = 0.5
	defaultTaskHours = 8.0
)

var blockerPenalty = map[project.Priority]float64{
	project.PriorityLow:      5,
	project.PriorityMedium:   8,
	project.PriorityHigh:     12,
	project.PriorityCritical: 15,
}

// HealthBand maps a score to its band.
func HealthBand(score float64) HealthStatus {
	switch {
	case score >= 80:
		return HealthHealthy
	case score >= 60:
		return HealthWarning
	case score >= 40:
		return HealthAtRisk
	default:
		return HealthCritical
	}
}

// HealthInput is the snapshot a health score is computed from.
type HealthInput struct {
	Tasks []*project.Task
	Team  []*project.Employee
	Start time.Time
	End   time.Time
	Now   time.Time
}

// HealthReport explains a sprint health score.
type HealthReport struct {
	Score           float64      `json:"health_score"`
	Status          HealthStatus `json:"status"`
	CompletionRate  float64      `json:"completion_rate"`
	TotalTasks      int          `json:"total_tasks"`
	CompletedTasks  int          `json:"completed_tasks"`
	BlockedTasks    int          `json:"blocked_tasks"`
	BlockerPenalty  float64      `json:"blocker_penalty"`
	CapacityRatio   float64      `json:"capacity_ratio"`
	TimePressure    float64      `json:"time_pressure"`
	DaysRemaining   int          `json:"days_remaining"`
	Recommendations []string     `json:"recommendations,omitempty"`
}

// SprintHealth scores a sprint between 0 and 100. More blocked tasks or less team capacity
// never raise the score, and identical inputs always produce identical reports.
func SprintHealth(in HealthInput) HealthReport {
	report := HealthReport{TotalTasks: len(in.Tasks)}

	var totalHours, doneHours float64
	for _, t := range in.Tasks {
		hours := t.EstimatedHours
		if hours <= 0 {
			hours = defaultTaskHours
		}
		totalHours += hours
		switch t.Status {
		case project.TaskStatusCompleted:
			report.CompletedTasks++
			doneHours += hours
		case project.TaskStatusBlocked:
			report.BlockedTasks++
			penalty, ok := blockerPenalty[t.Priority]
			if !ok {
				penalty = blockerPenalty[project.PriorityMedium]
			}
			report.BlockerPenalty += penalty
		}
	}

	report.CompletionRate = 1
	if totalHours > 0 {
		report.CompletionRate = doneHours / totalHours
	}
	report.CapacityRatio = CapacityRatio(in.Team)
	report.TimePressure, report.DaysRemaining = timePressure(in, 1-report.CompletionRate)

	score := report.CompletionRate*completionWeight +
		report.CapacityRatio*capacityWeight +
		(1-report.TimePressure)*scheduleWeight -
		report.BlockerPenalty

	report.Score = round(clamp(score, 0, 100), 1)
	report.Status = HealthBand(report.Score)
	report.CompletionRate = round(report.CompletionRate, 4)
	report.CapacityRatio = round(report.CapacityRatio, 4)
	report.TimePressure = round(report.TimePressure, 4)
	report.Recommendations = healthRecommendations(report)
	return report
}

// CapacityRatio is the share of the team able to work: available counts fully, limited
// counts half, unavailable counts zero. An empty team reports full capacity.
func CapacityRatio(team []*project.Employee) float64 {
	if len(team) == 0 {
		return 1
	}
	var capacity float64
	for _, e := range team {
		switch e.Availability {
		case project.AvailabilityUnavailable:
		case project.AvailabilityLimited:
			capacity += limitedCapacity
		default:
			capacity++
		}
	}
	return capacity / float64(len(team))
}

// timePressure compares remaining work against remaining time. Sprints without dates
// report no pressure.
func timePressure(in HealthInput, remainingWork float64) (float64, int) {
	if in.Start.IsZero() || in.End.IsZero() || !in.End.After(in.Start) {
		return 0, 0
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	total := in.End.Sub(in.Start).Hours()
	remaining := in.End.Sub(now).Hours()
	remaining = clamp(remaining, 0, total)
	remainingTime := remaining / total

	days := int(remaining / 24)
	return clamp(remainingWork-remainingTime, 0, 1), days
}

func healthRecommendations(r HealthReport) []string {
	var recs []string
	if r.BlockedTasks > 0 {
		recs = append(recs, fmt.Sprintf("Unblock %d blocked task(s) first", r.BlockedTasks))
	}
	if r.CapacityRatio < 0.75 {
		recs = append(recs, "Team capacity is reduced; consider reassigning work from unavailable members")
	}
	if r.TimePressure > 0.2 {
		recs = append(recs, "Remaining work exceeds remaining time; consider descoping or replanning")
	}
	return recs
}
