package records

import (
	"fmt"

	"contentdesk/internal/filter"
	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"
)

var ErrUnknownView = filter.ErrUnknownView

// TaskView is a task as shown to users: the stored record plus its derived status.
type TaskView struct {
	model.ContentTask
	Status statusutil.Status `json:"status"`
}

func ViewOf(t model.ContentTask) TaskView {
	return TaskView{ContentTask: t, Status: statusutil.Derive(t)}
}

func ViewsOf(xs []model.ContentTask) []TaskView {
	out := make([]TaskView, 0, len(xs))
	for _, t := range xs {
		out = append(out, ViewOf(t))
	}
	return out
}

// Result is one view's filtered records plus the option list of every section,
// computed from the full (unfiltered) record set.
type Result struct {
	View    string              `json:"view"`
	Items   any                 `json:"items"`
	Matched int                 `json:"matched"`
	Total   int                 `json:"total"`
	Options map[string][]string `json:"options"`
	State   filter.State        `json:"state"`
}

// Query runs the filter pipeline for view over db.
func Query(db *store.DB, view string, sections []filter.Section, st filter.State) (Result, error) {
	if st == nil {
		st = filter.State{}
	}
	res := Result{View: view, State: st}
	switch view {
	case filter.ViewTasks:
		all := Tasks(db.Tasks)
		got := filter.Apply(all, st, sections)
		res.Items = ViewsOf(UnwrapTasks(got))
		res.Matched, res.Total = len(got), len(all)
		res.Options = filter.ExtractAll(all, sections)
	case filter.ViewBrands:
		all := Brands(db.Brands)
		got := filter.Apply(all, st, sections)
		res.Items = UnwrapBrands(got)
		res.Matched, res.Total = len(got), len(all)
		res.Options = filter.ExtractAll(all, sections)
	case filter.ViewEnquiries:
		all := Enquiries(db.Enquiries)
		got := filter.Apply(all, st, sections)
		res.Items = UnwrapEnquiries(got)
		res.Matched, res.Total = len(got), len(all)
		res.Options = filter.ExtractAll(all, sections)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
	return res, nil
}

// FilterTasks returns the tasks of db matching st under the tasks view sections.
func FilterTasks(db *store.DB, sections []filter.Section, st filter.State) []model.ContentTask {
	return UnwrapTasks(filter.Apply(Tasks(db.Tasks), st, sections))
}
