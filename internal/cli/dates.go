package cli

import (
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/model"
)

func parseDate(s string) (model.Date, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", strings.TrimSpace(s))
	}
	return d, nil
}

// parseAnchor parses an optional date flag, defaulting to today (UTC).
func parseAnchor(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := parseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := d.Time()
	return t, nil
}
