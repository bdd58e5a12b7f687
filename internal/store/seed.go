package store

import (
	"time"

	"contentdesk/internal/model"
)

// Seed fills an empty db with a small demo data set anchored around now: two actors,
// three brands, four post types, a week of tasks across every lifecycle stage and a
// few enquiries.
func Seed(db *DB, now time.Time) {
	now = now.UTC()
	day := func(offset int) model.Date { return model.DateOf(now.AddDate(0, 0, offset)) }
	ago := func(h int) *time.Time {
		t := now.Add(-time.Duration(h) * time.Hour)
		return &t
	}
	str := func(s string) *string { return &s }

	if db.NextIDs == nil {
		db.NextIDs = map[string]int64{}
	}
	if db.Version == 0 {
		db.Version = 1
	}

	db.Actors = append(db.Actors,
		model.Actor{ID: "ana", Name: "Ana Ortiz", Admin: true},
		model.Actor{ID: "ben", Name: "Ben Clarke"},
	)
	if db.CurrentActorID == "" {
		db.CurrentActorID = "ana"
	}

	for _, name := range []string{"Reel", "Carousel", "Story", "Blog"} {
		db.PostTypes = append(db.PostTypes, model.PostType{ID: db.NextID(KindPostType), Name: name, CreatedAt: now})
	}
	pt := func(name string) model.Ref {
		p, _ := db.FindPostTypeByName(name)
		return model.Ref{ID: p.ID, Name: p.Name}
	}

	addBrand := func(name string, active bool, contact, email string, services ...string) model.Ref {
		b := model.Brand{
			ID:          db.NextID(KindBrand),
			Name:        name,
			Active:      active,
			ContactName: contact,
			Email:       email,
			Services:    []model.Service{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		db.Brands = append(db.Brands, b)
		for _, sv := range services {
			id := db.NextID(KindService)
			last := &db.Brands[len(db.Brands)-1]
			last.Services = append(last.Services, model.Service{ID: id, Name: sv})
		}
		return model.Ref{ID: b.ID, Name: b.Name}
	}
	acme := addBrand("Acme Coffee", true, "Dana Reyes", "dana@acme.example", "Social", "Photography")
	north := addBrand("Northwind Outfitters", true, "Lee Park", "lee@northwind.example", "Social", "Copywriting", "Ads")
	lumen := addBrand("Lumen Studio", false, "Kai Moss", "kai@lumen.example", "Branding")

	ana := &model.ActorRef{ID: "ana", Name: "Ana Ortiz"}
	ben := &model.ActorRef{ID: "ben", Name: "Ben Clarke"}

	tasks := []model.ContentTask{
		{Brand: acme, PostType: pt("Reel"), Title: "Spring blend teaser", Description: "15s teaser for the **spring blend** launch.", Due: day(0), Extra: map[string]string{"campaign": "spring"}},
		{Brand: acme, PostType: pt("Carousel"), Title: "Barista tips carousel", Due: day(1), Claimant: ben, ReadiedAt: ago(5)},
		{Brand: north, PostType: pt("Story"), Title: "Trail gear unboxing", Due: day(2), Claimant: ana, ReadiedAt: ago(30), ConfirmerID: str("ana"), ConfirmedAt: ago(20), Extra: map[string]string{"campaign": "outdoors"}},
		{Brand: north, PostType: pt("Blog"), Title: "Layering guide", Description: "Long-form guide.\n\n- base\n- mid\n- shell", Due: day(-1), Claimant: ben, ReadiedAt: ago(72), ConfirmerID: str("ana"), ConfirmedAt: ago(60), PosterID: str("ben"), PostedAt: ago(24)},
		{Brand: north, PostType: pt("Reel"), Title: "Autumn lookbook", Due: day(4)},
		{Brand: lumen, PostType: pt("Carousel"), Title: "Portfolio recap", Due: day(6), Claimant: ana},
	}
	for _, t := range tasks {
		t.ID = db.NextID(KindTask)
		t.CreatedBy = "ana"
		t.CreatedAt = now
		t.UpdatedAt = now
		db.Tasks = append(db.Tasks, t)
	}

	enquiries := []model.Enquiry{
		{Name: "Priya Shah", Company: "Hearth Bakery", Service: "Social", Status: model.EnquiryJustConnected, Log: []model.ConversationLogEntry{
			{Title: "Intro call", Date: day(-3), Body: "Wants two reels a week.", Author: "ana"},
		}},
		{Name: "Tom Eriksen", Company: "Fjord Bikes", Service: "Ads", Status: model.EnquiryAdvancedPayment, Log: []model.ConversationLogEntry{
			{Title: "Proposal sent", Date: day(-10), Author: "ben"},
			{Title: "Deposit received", Date: day(-2), Body: "50% upfront.", Author: "ana"},
		}},
		{Name: "Mara Lin", Company: "Lin & Co", Service: "Branding", Status: model.EnquiryClosed, Log: []model.ConversationLogEntry{}},
	}
	for _, e := range enquiries {
		e.ID = db.NextID(KindEnquiry)
		e.CreatedAt = now
		e.UpdatedAt = now
		db.Enquiries = append(db.Enquiries, e)
	}
}
