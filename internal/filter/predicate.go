package filter

import "strings"

// Matches reports whether rec passes every section of the view.
//
// Sections combine with AND; values selected within one checkbox section combine with
// OR. A section without a selection imposes no constraint. Selections keyed by ids that
// are not in sections are ignored.
func Matches(rec Record, state State, sections []Section) bool {
	for _, s := range sections {
		sel, ok := state[s.SectionID()]
		if !ok || sel.IsEmpty() {
			continue
		}
		if !sectionMatches(rec, s, sel) {
			return false
		}
	}
	return true
}

func sectionMatches(rec Record, s Section, sel Selection) bool {
	switch s := s.(type) {
	case Enumerated:
		if len(sel.Values) == 0 {
			return true
		}
		have := Values(rec, s.Field)
		for _, want := range sel.Values {
			if base, ok := negatedBase(want, s.Options); ok {
				if !contains(have, base) {
					return true
				}
				continue
			}
			if contains(have, want) {
				return true
			}
		}
		return false
	case Derived:
		return anySelected(Values(rec, s.Field), sel)
	case Searchable:
		return anySelected(Values(rec, s.Field), sel)
	case GlobalSearch:
		q := strings.ToLower(strings.TrimSpace(sel.Text))
		if q == "" {
			return true
		}
		for _, v := range Values(rec, s.Field) {
			if strings.Contains(strings.ToLower(v), q) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func anySelected(have []string, sel Selection) bool {
	if len(sel.Values) == 0 {
		return true
	}
	for _, v := range have {
		if sel.Has(v) {
			return true
		}
	}
	return false
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// Apply returns the records that match, preserving input order. A section whose field
// no record in the set knows is skipped, so a misnamed field never empties the result.
func Apply[R Record](records []R, state State, sections []Section) []R {
	active := make([]Section, 0, len(sections))
	for _, s := range sections {
		if knownBySome(records, s) {
			active = append(active, s)
		}
	}
	out := make([]R, 0, len(records))
	for _, r := range records {
		if Matches(r, state, active) {
			out = append(out, r)
		}
	}
	return out
}

func knownBySome[R Record](records []R, s Section) bool {
	field := FieldOf(s)
	for _, r := range records {
		if Known(r, field) {
			return true
		}
	}
	return false
}
