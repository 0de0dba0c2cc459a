package scoring

import (
	"errors"
	"time"
)

var (
	ErrInvalidSprintWeeks = errors.New("sprint duration must be at least one week")
	ErrInvalidSprintCount = errors.New("sprint count must be at least one")
)

// DateRange is a half-open [Start, End) interval for one sprint.
type DateRange struct {
	Number int       `json:"number"`
	Start  time.Time `json:"start_date"`
	End    time.Time `json:"end_date"`
}

// CalculateSprintDates lays out count contiguous sprints of weeks length starting at start.
// Sprint n ends exactly at start + n*weeks, and each sprint starts where the previous one ended.
func CalculateSprintDates(start time.Time, weeks, count int) ([]DateRange, error) {
	if weeks < 1 {
		return nil, ErrInvalidSprintWeeks
	}
	if count < 1 {
		return nil, ErrInvalidSprintCount
	}
	ranges := make([]DateRange, count)
	for i := 0; i < count; i++ {
		ranges[i] = DateRange{
			Number: i + 1,
			Start:  start.AddDate(0, 0, 7*weeks*i),
			End:    start.AddDate(0, 0, 7*weeks*(i+1)),
		}
	}
	return ranges, nil
}
