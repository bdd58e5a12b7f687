// Package records adapts the domain model to the filter engine's Record interface.
//
// Field names are the keys used by view configurations (views.yaml "field").
package records

import (
	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"
)

type Task struct {
	model.ContentTask
}

func (t Task) FieldValue(name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "title":
		return t.Title, true
	case "description":
		return t.Description, true
	case "asset_url":
		return t.AssetURL, true
	case "due":
		return string(t.Due), true
	case "status":
		return string(statusutil.Derive(t.ContentTask)), true
	case "brand":
		return map[string]any{"id": t.Brand.ID, "name": t.Brand.Name}, true
	case "post_type":
		return map[string]any{"id": t.PostType.ID, "name": t.PostType.Name}, true
	case "claimant":
		if t.Claimant == nil {
			return nil, true
		}
		return map[string]any{"id": t.Claimant.ID, "name": t.Claimant.Name}, true
	case "confirmer":
		return t.ConfirmerID, true
	case "poster":
		return t.PosterID, true
	}
	return nil, false
}

func (t Task) ExtendedFields() map[string]any {
	out := make(map[string]any, len(t.Extra))
	for k, v := range t.Extra {
		out[k] = v
	}
	return out
}

type Brand struct {
	model.Brand
}

func (b Brand) FieldValue(name string) (any, bool) {
	switch name {
	case "id":
		return b.ID, true
	case "name":
		return b.Name, true
	case "status":
		return statusutil.BrandActivity(b.Brand), true
	case "active":
		return b.Active, true
	case "contact_name":
		return b.ContactName, true
	case "email":
		return b.Email, true
	case "phone":
		return b.Phone, true
	case "services":
		names := make([]string, 0, len(b.Services))
		for _, s := range b.Services {
			names = append(names, s.Name)
		}
		return names, true
	}
	return nil, false
}

type Enquiry struct {
	model.Enquiry
}

func (e Enquiry) FieldValue(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "company":
		return e.Company, true
	case "service":
		return e.Service, true
	case "status":
		return string(e.Status), true
	case "last_contact":
		if len(e.Log) == 0 {
			return nil, true
		}
		return string(e.Log[len(e.Log)-1].Date), true
	}
	return nil, false
}

func Tasks(xs []model.ContentTask) []Task {
	out := make([]Task, 0, len(xs))
	for _, x := range xs {
		out = append(out, Task{x})
	}
	return out
}

func Brands(xs []model.Brand) []Brand {
	out := make([]Brand, 0, len(xs))
	for _, x := range xs {
		out = append(out, Brand{x})
	}
	return out
}

func Enquiries(xs []model.Enquiry) []Enquiry {
	out := make([]Enquiry, 0, len(xs))
	for _, x := range xs {
		out = append(out, Enquiry{x})
	}
	return out
}

func UnwrapTasks(xs []Task) []model.ContentTask {
	out := make([]model.ContentTask, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.ContentTask)
	}
	return out
}

func UnwrapBrands(xs []Brand) []model.Brand {
	out := make([]model.Brand, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.Brand)
	}
	return out
}

func UnwrapEnquiries(xs []Enquiry) []model.Enquiry {
	out := make([]model.Enquiry, 0, len(xs))
	for _, x := range xs {
		out = append(out, x.Enquiry)
	}
	return out
}
