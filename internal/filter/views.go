package filter

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"contentdesk/internal/statusutil"

	"gopkg.in/yaml.v3"
)

const (
	ViewTasks     = "tasks"
	ViewBrands    = "brands"
	ViewEnquiries = "enquiries"
)

// DefaultViews returns the built-in section configuration of every view.
func DefaultViews() map[string][]Section {
	return map[string][]Section{
		ViewTasks: {
			Enumerated{ID: "status", Title: "Status", Field: "status", Options: WithNegations(statusutil.StatusLabels())},
			Searchable{ID: "brand_name", Title: "Brand", Field: "brand.name"},
			Derived{ID: "post_type", Title: "Post type", Field: "post_type.name"},
			Derived{ID: "claimant", Title: "Claimed by", Field: "claimant.name"},
			GlobalSearch{ID: "search", Title: "Search", Field: "title"},
		},
		ViewBrands: {
			Enumerated{ID: "status", Title: "Status", Field: "status", Options: []string{statusutil.BrandActive, statusutil.BrandInactive}},
			Searchable{ID: "services", Title: "Services", Field: "services"},
			GlobalSearch{ID: "search", Title: "Search", Field: "name"},
		},
		ViewEnquiries: {
			Enumerated{ID: "status", Title: "Status", Field: "status", Options: statusutil.EnquiryStatusOptions()},
			Derived{ID: "service", Title: "Service", Field: "service"},
			Searchable{ID: "company", Title: "Company", Field: "company"},
			GlobalSearch{ID: "search", Title: "Search", Field: "name"},
		},
	}
}

// SectionSpec is the serialized form of a section (views.yaml, JSON output).
type SectionSpec struct {
	ID      string   `yaml:"id" json:"id"`
	Label   string   `yaml:"label" json:"label"`
	Kind    string   `yaml:"kind" json:"kind"`
	Field   string   `yaml:"field,omitempty" json:"field,omitempty"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Section converts a spec into its tagged variant. Unrecognized kinds become Unknown.
func (sp SectionSpec) Section() Section {
	id := strings.TrimSpace(sp.ID)
	label := strings.TrimSpace(sp.Label)
	if label == "" {
		label = id
	}
	field := strings.TrimSpace(sp.Field)
	switch Kind(strings.ToLower(strings.TrimSpace(sp.Kind))) {
	case KindEnumerated:
		return Enumerated{ID: id, Title: label, Field: field, Options: append([]string{}, sp.Options...)}
	case KindDerived:
		return Derived{ID: id, Title: label, Field: field}
	case KindSearchable:
		return Searchable{ID: id, Title: label, Field: field}
	case KindGlobalSearch:
		return GlobalSearch{ID: id, Title: label, Field: field}
	default:
		return Unknown{ID: id, Title: label, RawKind: sp.Kind}
	}
}

// SpecOf is the inverse of SectionSpec.Section.
func SpecOf(s Section) SectionSpec {
	sp := SectionSpec{ID: s.SectionID(), Label: s.Label(), Kind: string(s.Kind()), Field: FieldOf(s)}
	if e, ok := s.(Enumerated); ok {
		sp.Options = append([]string{}, e.Options...)
	}
	return sp
}

type viewsFile struct {
	Views map[string][]SectionSpec `yaml:"views"`
}

var (
	ErrDuplicateSection = errors.New("duplicate section id")
	ErrUnknownView      = errors.New("unknown view")
)

// LoadViews reads view definitions from path on top of DefaultViews. Views named in the
// file replace the built-in definition wholesale; only the built-in views can be named.
// A missing file yields the defaults.
func LoadViews(path string) (map[string][]Section, error) {
	views := DefaultViews()
	path = strings.TrimSpace(path)
	if path == "" {
		return views, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return views, nil
		}
		return nil, err
	}

	var f viewsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse views %s: %w", path, err)
	}
	for name, specs := range f.Views {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := views[name]; !ok {
			return nil, fmt.Errorf("parse views %s: %w: %s (expected one of %s)", path, ErrUnknownView, name, strings.Join(ViewNames(DefaultViews()), ", "))
		}
		seen := map[string]bool{}
		sections := make([]Section, 0, len(specs))
		for _, sp := range specs {
			s := sp.Section()
			if s.SectionID() == "" {
				return nil, fmt.Errorf("view %s: section without id", name)
			}
			if seen[s.SectionID()] {
				return nil, fmt.Errorf("view %s: %w: %s", name, ErrDuplicateSection, s.SectionID())
			}
			seen[s.SectionID()] = true
			sections = append(sections, s)
		}
		views[name] = sections
	}
	return views, nil
}

// ViewNames returns the configured view names, sorted.
func ViewNames(views map[string][]Section) []string {
	out := make([]string, 0, len(views))
	for name := range views {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ParseSelections turns "section=value" pairs into a state for sections. Values for
// global-search sections become the section's text.
func ParseSelections(sections []Section, pairs []string) (State, error) {
	st := State{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q (expected section=value)", p)
		}
		s, found := FindSection(sections, k)
		if !found {
			return nil, fmt.Errorf("unknown filter section: %s", k)
		}
		sel := st[s.SectionID()]
		if IsCheckbox(s) {
			if v != "" && !sel.Has(v) {
				sel.Values = append(sel.Values, v)
			}
		} else {
			sel.Text = v
		}
		st[s.SectionID()] = sel
	}
	return st, nil
}

// WithSearch returns a copy of st with text set on the first global-search section of
// sections. It is a no-op when the view has no global search.
func WithSearch(sections []Section, st State, text string) State {
	out := st.Clone()
	for _, s := range sections {
		if s.Kind() != KindGlobalSearch {
			continue
		}
		sel := out[s.SectionID()]
		sel.Text = strings.TrimSpace(text)
		if sel.IsEmpty() {
			delete(out, s.SectionID())
		} else {
			out[s.SectionID()] = sel
		}
		break
	}
	return out
}
