package statusutil

import (
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/model"
)

type Status string

const (
	Pending   Status = "Pending"
	Ready     Status = "Ready"
	Confirmed Status = "Confirmed"
	Posted    Status = "Posted"
)

// Statuses lists the task lifecycle in order.
var Statuses = []Status{Pending, Ready, Confirmed, Posted}

// Derive computes a task's lifecycle status from its timestamps.
// Precedence: posted > confirmed > ready > pending.
func Derive(t model.ContentTask) Status {
	switch {
	case Present(t.PostedAt):
		return Posted
	case Present(t.ConfirmedAt):
		return Confirmed
	case Present(t.ReadiedAt):
		return Ready
	default:
		return Pending
	}
}

// Present reports whether a lifecycle timestamp is set. Nil and the zero time both
// count as absent.
func Present(ts *time.Time) bool {
	return ts != nil && !ts.IsZero()
}

func StatusLabels() []string {
	out := make([]string, 0, len(Statuses))
	for _, s := range Statuses {
		out = append(out, string(s))
	}
	return out
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return Pending, nil
	case "ready":
		return Ready, nil
	case "confirmed":
		return Confirmed, nil
	case "posted":
		return Posted, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

// NormalizeEnquiryStatus accepts labels and their compact forms ("in-progress",
// "InProgress", "in progress").
func NormalizeEnquiryStatus(s string) (model.EnquiryStatus, error) {
	key := compact(s)
	if key == "" {
		return "", fmt.Errorf("invalid enquiry status: empty")
	}
	for _, st := range model.EnquiryStatuses {
		if compact(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid enquiry status: %q", s)
}

func EnquiryStatusOptions() []string {
	out := make([]string, 0, len(model.EnquiryStatuses))
	for _, st := range model.EnquiryStatuses {
		out = append(out, string(st))
	}
	return out
}

const (
	BrandActive   = "Active"
	BrandInactive = "Inactive"
)

func BrandActivity(b model.Brand) string {
	if b.Active {
		return BrandActive
	}
	return BrandInactive
}

func compact(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
