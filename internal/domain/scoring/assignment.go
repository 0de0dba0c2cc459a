// Package scoring holds the deterministic heuristics behind assignment, sprint health,
// delay prediction and sprint planning. Nothing here calls a language model.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

// Assignment weights.
const (
	TechOverlapWeight  = 50.0
	WorkloadLowBonus   = 30.0
	WorkloadMedBonus   = 15.0
	WorkloadHighBonus  = 0.0
	DepartmentBonus    = 20.0
	MaxAssignmentScore = TechOverlapWeight + WorkloadLowBonus + DepartmentBonus
)

// Candidate is one scored employee for a task.
type Candidate struct {
	Employee        *project.Employee `json:"-"`
	EmployeeID      string            `json:"employee_id"`
	Name            string            `json:"name"`
	Department      string            `json:"department"`
	Workload        project.Workload  `json:"current_workload"`
	Score           float64           `json:"score"`
	TechOverlap     float64           `json:"tech_overlap"`
	MatchedTech     []string          `json:"matched_tech,omitempty"`
	DepartmentMatch bool              `json:"department_match"`
	Reason          string            `json:"reason"`
}

// Confidence maps the score onto [0,1].
func (c Candidate) Confidence() float64 {
	return round(c.Score/MaxAssignmentScore, 2)
}

// WorkloadBonus returns the bonus for a workload tier. Unknown tiers score as medium.
func WorkloadBonus(w project.Workload) float64 {
	switch w {
	case project.WorkloadLow:
		return WorkloadLowBonus
	case project.WorkloadHigh:
		return WorkloadHighBonus
	default:
		return WorkloadMedBonus
	}
}

// ScoreEmployee scores e for task regardless of availability.
func ScoreEmployee(task *project.Task, e *project.Employee) Candidate {
	matched := matchTech(task.Stack, e.TechStack)

	overlap := 0.0
	if required := uniqueFold(task.Stack); len(required) > 0 {
		overlap = float64(len(matched)) / float64(len(required))
	}

	deptMatch := task.Department != "" && strings.EqualFold(strings.TrimSpace(task.Department), strings.TrimSpace(e.Department))

	score := overlap*TechOverlapWeight + WorkloadBonus(e.Workload)
	if deptMatch {
		score += DepartmentBonus
	}

	c := Candidate{
		Employee:        e,
		EmployeeID:      e.ID,
		Name:            e.FullName(),
		Department:      e.Department,
		Workload:        e.Workload,
		Score:           round(score, 2),
		TechOverlap:     round(overlap, 4),
		MatchedTech:     matched,
		DepartmentMatch: deptMatch,
	}
	c.Reason = describe(c)
	return c
}

// RankCandidates scores every available employee and orders them best first.
// Equal scores keep their input order.
func RankCandidates(task *project.Task, employees []*project.Employee) []Candidate {
	ranked := make([]Candidate, 0, len(employees))
	for _, e := range employees {
		if e == nil || !e.IsAvailable() {
			continue
		}
		ranked = append(ranked, ScoreEmployee(task, e))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func describe(c Candidate) string {
	parts := make([]string, 0, 3)
	if len(c.MatchedTech) > 0 {
		parts = append(parts, fmt.Sprintf("matches %s", strings.Join(c.MatchedTech, ", ")))
	} else {
		parts = append(parts, "no direct stack match")
	}
	parts = append(parts, fmt.Sprintf("%s workload", workloadLabel(c.Workload)))
	if c.DepartmentMatch {
		parts = append(parts, "same department")
	}
	return strings.Join(parts, "; ")
}

func workloadLabel(w project.Workload) string {
	if w == "" {
		return "unknown"
	}
	return string(w)
}

func matchTech(required, known []string) []string {
	have := make(map[string]struct{}, len(known))
	for _, k := range known {
		have[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	var matched []string
	for _, r := range uniqueFold(required) {
		if _, ok := have[strings.ToLower(r)]; ok {
			matched = append(matched, r)
		}
	}
	return matched
}

func uniqueFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
