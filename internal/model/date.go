package model

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date (YYYY-MM-DD) without time-of-day semantics.
// The empty Date means "no date".
type Date string

func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return "", err
	}
	return DateOf(t), nil
}

// Time returns the date at midnight UTC. ok is false for empty or malformed dates.
func (d Date) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (d Date) String() string { return string(d) }
