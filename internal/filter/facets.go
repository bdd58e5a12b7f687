package filter

import (
	"sort"
	"strings"
)

// ExtractOptions computes the option list a section offers for records.
//
// Enumerated sections return their fixed list; Derived and Searchable sections return
// the sorted distinct values currently present; everything else returns an empty list.
func ExtractOptions[R Record](records []R, s Section) []string {
	switch s := s.(type) {
	case Enumerated:
		return append([]string{}, s.Options...)
	case Derived:
		return distinctValues(records, s.Field)
	case Searchable:
		return distinctValues(records, s.Field)
	default:
		return []string{}
	}
}

// ExtractAll maps each section id to its option list.
func ExtractAll[R Record](records []R, sections []Section) map[string][]string {
	out := make(map[string][]string, len(sections))
	for _, s := range sections {
		out[s.SectionID()] = ExtractOptions(records, s)
	}
	return out
}

func distinctValues[R Record](records []R, field string) []string {
	if strings.TrimSpace(field) == "" {
		return []string{}
	}
	seen := map[string]bool{}
	out := []string{}
	for _, r := range records {
		for _, v := range Values(r, field) {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// NarrowOptions keeps the options containing query (case-insensitive). It backs the
// substring box of searchable sections and never touches filter state.
func NarrowOptions(options []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]string{}, options...)
	}
	out := []string{}
	for _, o := range options {
		if strings.Contains(strings.ToLower(o), q) {
			out = append(out, o)
		}
	}
	return out
}
