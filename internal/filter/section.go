package filter

import "strings"

type Kind string

const (
	KindEnumerated   Kind = "enumerated-checkbox"
	KindDerived      Kind = "derived-checkbox"
	KindSearchable   Kind = "searchable-checkbox"
	KindGlobalSearch Kind = "global-search"
)

// NegationPrefix marks an enumerated option that matches every value except the option
// it prefixes, e.g. "Not Posted".
const NegationPrefix = "Not "

// Section is one filterable dimension of a view. The concrete types below are the only
// implementations; extraction and matching switch on them.
type Section interface {
	SectionID() string
	Label() string
	Kind() Kind
}

// Enumerated offers a fixed option list regardless of the dataset (status, active flag).
type Enumerated struct {
	ID      string
	Title   string
	Field   string
	Options []string
}

// Derived offers the distinct values of Field found in the current dataset.
type Derived struct {
	ID    string
	Title string
	Field string
}

// Searchable is a Derived section whose option list has an attached substring box.
type Searchable struct {
	ID    string
	Title string
	Field string
}

// GlobalSearch matches free text against one designated field.
type GlobalSearch struct {
	ID    string
	Title string
	Field string
}

// Unknown keeps a misconfigured section addressable. It has no options and never
// constrains the result.
type Unknown struct {
	ID      string
	Title   string
	RawKind string
}

func (s Enumerated) SectionID() string   { return s.ID }
func (s Enumerated) Label() string       { return s.Title }
func (s Enumerated) Kind() Kind          { return KindEnumerated }
func (s Derived) SectionID() string      { return s.ID }
func (s Derived) Label() string          { return s.Title }
func (s Derived) Kind() Kind             { return KindDerived }
func (s Searchable) SectionID() string   { return s.ID }
func (s Searchable) Label() string       { return s.Title }
func (s Searchable) Kind() Kind          { return KindSearchable }
func (s GlobalSearch) SectionID() string { return s.ID }
func (s GlobalSearch) Label() string     { return s.Title }
func (s GlobalSearch) Kind() Kind        { return KindGlobalSearch }
func (s Unknown) SectionID() string      { return s.ID }
func (s Unknown) Label() string          { return s.Title }
func (s Unknown) Kind() Kind             { return Kind(s.RawKind) }

// IsCheckbox reports whether selections in s are option sets (as opposed to text).
func IsCheckbox(s Section) bool {
	switch s.(type) {
	case Enumerated, Derived, Searchable:
		return true
	default:
		return false
	}
}

// FieldOf returns the record field a section reads, or "" for Unknown.
func FieldOf(s Section) string {
	switch s := s.(type) {
	case Enumerated:
		return s.Field
	case Derived:
		return s.Field
	case Searchable:
		return s.Field
	case GlobalSearch:
		return s.Field
	default:
		return ""
	}
}

// WithNegations returns options followed by NegationPrefix+option for each.
func WithNegations(options []string) []string {
	out := make([]string, 0, len(options)*2)
	out = append(out, options...)
	for _, o := range options {
		out = append(out, NegationPrefix+o)
	}
	return out
}

// negatedBase returns the option that value negates, when value is a negation option
// declared by the same section.
func negatedBase(value string, options []string) (string, bool) {
	if !strings.HasPrefix(value, NegationPrefix) {
		return "", false
	}
	base := strings.TrimPrefix(value, NegationPrefix)
	for _, o := range options {
		if o == base {
			return base, true
		}
	}
	return "", false
}

// FindSection returns the section with the given id.
func FindSection(sections []Section, id string) (Section, bool) {
	id = strings.TrimSpace(id)
	for _, s := range sections {
		if s.SectionID() == id {
			return s, true
		}
	}
	return nil, false
}
