package records

import (
	"errors"
	"testing"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"
)

func tsPtr(t time.Time) *time.Time { return &t }

func TestTaskStatusFacetFollowsDerivedStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	tasks := []model.ContentTask{
		{ID: 1, Brand: model.Ref{ID: 1, Name: "Acme"}, ReadiedAt: tsPtr(now)},
		{ID: 2, Brand: model.Ref{ID: 2, Name: "Other"}, ReadiedAt: tsPtr(now)},
		{ID: 3, Brand: model.Ref{ID: 1, Name: "Acme"}},
		// Posted without ever being readied still counts as Posted.
		{ID: 4, Brand: model.Ref{ID: 1, Name: "Acme"}, PostedAt: tsPtr(now)},
	}
	sections := filter.DefaultViews()[filter.ViewTasks]
	st := filter.State{
		"status":     {Values: []string{"Ready", "Posted"}},
		"brand_name": {Values: []string{"Acme"}},
	}
	got := UnwrapTasks(filter.Apply(Tasks(tasks), st, sections))
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 4 {
		t.Fatalf("expected tasks 1 and 4, got %+v", got)
	}
}

func TestTaskBrandOptionsDisappearWithRecords(t *testing.T) {
	sections := filter.DefaultViews()[filter.ViewTasks]
	brandSection, _ := filter.FindSection(sections, "brand_name")
	tasks := []model.ContentTask{
		{ID: 1, Brand: model.Ref{Name: "Globex"}},
		{ID: 2, Brand: model.Ref{Name: "Acme"}},
	}
	if got := filter.ExtractOptions(Tasks(tasks), brandSection); len(got) != 2 || got[0] != "Acme" {
		t.Fatalf("expected [Acme Globex], got %v", got)
	}
	if got := filter.ExtractOptions(Tasks(tasks[1:]), brandSection); len(got) != 1 || got[0] != "Acme" {
		t.Fatalf("expected [Acme], got %v", got)
	}
}

func TestTaskClaimantAndExtendedFields(t *testing.T) {
	task := Task{model.ContentTask{
		ID:       7,
		Claimant: &model.ActorRef{ID: "act-1", Name: "Sam"},
		Extra:    map[string]string{"campaign": "Spring"},
	}}
	if v := filter.Values(task, "claimant.name"); len(v) != 1 || v[0] != "Sam" {
		t.Fatalf("expected claimant name, got %v", v)
	}
	if v := filter.Values(task, "campaign"); len(v) != 1 || v[0] != "Spring" {
		t.Fatalf("expected extended campaign, got %v", v)
	}
	unclaimed := Task{model.ContentTask{ID: 8}}
	if v := filter.Values(unclaimed, "claimant.name"); len(v) != 0 {
		t.Fatalf("expected no claimant, got %v", v)
	}
}

func TestBrandFacets(t *testing.T) {
	brands := []model.Brand{
		{ID: 1, Name: "Acme", Active: true, Services: []model.Service{{ID: 1, Name: "SEO"}, {ID: 2, Name: "Ads"}}},
		{ID: 2, Name: "Globex", Active: false, Services: []model.Service{{ID: 3, Name: "SEO"}}},
	}
	sections := filter.DefaultViews()[filter.ViewBrands]
	opts := filter.ExtractAll(Brands(brands), sections)
	if got := opts["services"]; len(got) != 2 || got[0] != "Ads" || got[1] != "SEO" {
		t.Fatalf("expected [Ads SEO], got %v", got)
	}
	if got := opts["status"]; len(got) != 2 || got[0] != "Active" {
		t.Fatalf("expected fixed Active/Inactive, got %v", got)
	}
	got := filter.Apply(Brands(brands), filter.State{"status": {Values: []string{"Inactive"}}}, sections)
	if len(got) != 1 || got[0].Name != "Globex" {
		t.Fatalf("expected Globex only, got %+v", got)
	}
}

func TestEnquiryFacets(t *testing.T) {
	enqs := []model.Enquiry{
		{ID: 1, Name: "Dana", Company: "Initech", Service: "SEO", Status: model.EnquiryInProgress},
		{ID: 2, Name: "Lee", Company: "", Service: "Ads", Status: model.EnquiryClosed,
			Log: []model.ConversationLogEntry{{Title: "Call", Date: "2026-02-01"}}},
	}
	sections := filter.DefaultViews()[filter.ViewEnquiries]
	opts := filter.ExtractAll(Enquiries(enqs), sections)
	if got := opts["company"]; len(got) != 1 || got[0] != "Initech" {
		t.Fatalf("expected empty company discarded, got %v", got)
	}
	got := filter.Apply(Enquiries(enqs), filter.State{"status": {Values: []string{"Closed"}}, "search": {Text: "LE"}}, sections)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected Lee, got %+v", got)
	}
	if v := filter.Values(got[0], "last_contact"); len(v) != 1 || v[0] != "2026-02-01" {
		t.Fatalf("expected last contact date, got %v", v)
	}
}

func TestQuery_TasksViewUsesFullSetForOptions(t *testing.T) {
	db := &store.DB{}
	store.Seed(db, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	sections := filter.DefaultViews()[filter.ViewTasks]
	st := filter.State{"brand_name": {Values: []string{"Acme Coffee"}}}

	res, err := Query(db, filter.ViewTasks, sections, st)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	items, ok := res.Items.([]TaskView)
	if !ok {
		t.Fatalf("expected []TaskView; got %T", res.Items)
	}
	if res.Matched != 2 || len(items) != 2 || res.Total != len(db.Tasks) {
		t.Fatalf("expected 2 of %d; got matched=%d total=%d", len(db.Tasks), res.Matched, res.Total)
	}
	if got := res.Options["brand_name"]; len(got) != 3 {
		t.Fatalf("expected options from all brands; got %v", got)
	}
	if items[1].Status != statusutil.Ready {
		t.Fatalf("expected second Acme task Ready; got %s", items[1].Status)
	}
}

func TestQuery_UnknownView(t *testing.T) {
	if _, err := Query(&store.DB{}, "invoices", nil, nil); !errors.Is(err, ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView; got %v", err)
	}
}
