package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"contentdesk/internal/model"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

var ErrInvalidGranularity = errors.New("invalid granularity (expected day|week|month)")

func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case "", Week:
		return Week, nil
	case Day:
		return Day, nil
	case Month:
		return Month, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// Bucket holds the tasks due on one calendar date.
type Bucket struct {
	Date  model.Date          `json:"date"`
	Tasks []model.ContentTask `json:"tasks"`
}

// View is a bucketed projection of tasks around an anchor date. Start and End are
// inclusive.
type View struct {
	Granularity Granularity `json:"granularity"`
	Anchor      model.Date  `json:"anchor"`
	Start       model.Date  `json:"start"`
	End         model.Date  `json:"end"`
	Buckets     []Bucket    `json:"buckets"`
}

// Total returns the number of tasks across all buckets.
func (v View) Total() int {
	n := 0
	for _, b := range v.Buckets {
		n += len(b.Tasks)
	}
	return n
}

// Project buckets tasks by due date for the range around anchor. Every date in the
// range gets a bucket, empty or not. Tasks without a parseable due date are skipped.
func Project(tasks []model.ContentTask, g Granularity, anchor time.Time) View {
	anchor = truncateDay(anchor)
	start, end := Range(g, anchor)

	v := View{
		Granularity: g,
		Anchor:      model.DateOf(anchor),
		Start:       model.DateOf(start),
		End:         model.DateOf(end),
	}
	index := map[model.Date]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := model.DateOf(d)
		index[key] = len(v.Buckets)
		v.Buckets = append(v.Buckets, Bucket{Date: key, Tasks: []model.ContentTask{}})
	}

	for _, t := range tasks {
		due, ok := t.Due.Time()
		if !ok {
			continue
		}
		i, ok := index[model.DateOf(due)]
		if !ok {
			continue
		}
		v.Buckets[i].Tasks = append(v.Buckets[i].Tasks, t)
	}
	for i := range v.Buckets {
		ts := v.Buckets[i].Tasks
		sort.SliceStable(ts, func(a, b int) bool { return ts[a].ID < ts[b].ID })
	}
	return v
}

// Range returns the inclusive first and last dates covered by g around anchor.
func Range(g Granularity, anchor time.Time) (time.Time, time.Time) {
	anchor = truncateDay(anchor)
	switch g {
	case Day:
		return anchor, anchor
	case Month:
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(anchor.Year(), anchor.Month(), daysInMonth(anchor.Year(), anchor.Month()), 0, 0, 0, 0, time.UTC)
		return first, last
	default:
		start := WeekStart(anchor)
		return start, start.AddDate(0, 0, 6)
	}
}

// WeekStart returns the Monday of the ISO week containing t. A Sunday belongs to the
// week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	t = truncateDay(t)
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back)
}

// Advance moves anchor by offset days, weeks or months. Month moves keep the day of
// month where possible and clamp it to the target month's length otherwise.
func Advance(anchor time.Time, g Granularity, offset int) time.Time {
	anchor = truncateDay(anchor)
	switch g {
	case Day:
		return anchor.AddDate(0, 0, offset)
	case Month:
		y, m := anchor.Year(), anchor.Month()
		total := int(m) - 1 + offset
		y += floorDiv(total, 12)
		m = time.Month(total - floorDiv(total, 12)*12 + 1)
		return time.Date(y, m, clampDay(y, m, anchor.Day()), 0, 0, 0, 0, time.UTC)
	default:
		return anchor.AddDate(0, 0, 7*offset)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(y int, m time.Month, d int) int {
	if d < 1 {
		return 1
	}
	max := daysInMonth(y, m)
	if d > max {
		return max
	}
	return d
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
