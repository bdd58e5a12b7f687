package tui

import (
	"fmt"
	"strings"

	"contentdesk/internal/filter"
)

// facetRow is one line of the facet pane: a section header or one of its options.
type facetRow struct {
	sectionID string
	header    bool
	label     string
	value     string
	selected  bool
	// stale marks a selection whose option disappeared from the current record set.
	stale bool
}

// facetRows lays out the facet pane for the current view. Searchable sections show
// only the options matching their narrowing query; selections stay visible even when
// they no longer appear in the option list.
func (m *Model) facetRows() []facetRow {
	st := m.filter().State()
	var rows []facetRow
	for _, s := range m.sections() {
		id := s.SectionID()
		sel := st[id]
		rows = append(rows, facetRow{sectionID: id, header: true, label: sectionHeader(s, sel, m.narrow[m.narrowKey(id)])})
		if !filter.IsCheckbox(s) || m.isCollapsed(m.view, id) {
			continue
		}

		opts := m.options[id]
		if s.Kind() == filter.KindSearchable {
			opts = filter.NarrowOptions(opts, m.narrow[m.narrowKey(id)])
		}
		seen := map[string]bool{}
		for _, o := range opts {
			seen[o] = true
			rows = append(rows, facetRow{sectionID: id, label: o, value: o, selected: sel.Has(o)})
		}
		for _, v := range sel.Values {
			if !seen[v] {
				rows = append(rows, facetRow{sectionID: id, label: v, value: v, selected: true, stale: true})
			}
		}
	}
	return rows
}

func sectionHeader(s filter.Section, sel filter.Selection, narrow string) string {
	label := s.Label()
	switch {
	case s.Kind() == filter.KindGlobalSearch:
		if sel.Text != "" {
			return fmt.Sprintf("%s: %q", label, sel.Text)
		}
		return label + ": (press /)"
	case len(sel.Values) > 0:
		label = fmt.Sprintf("%s (%d)", label, len(sel.Values))
	}
	if strings.TrimSpace(narrow) != "" {
		label += " ~" + narrow
	}
	return label
}

func (m *Model) currentFacetRow() (facetRow, bool) {
	rows := m.facetRows()
	if m.facetCursor < 0 || m.facetCursor >= len(rows) {
		return facetRow{}, false
	}
	return rows[m.facetCursor], true
}

func (m *Model) clampFacetCursor() {
	n := len(m.facetRows())
	if m.facetCursor >= n {
		m.facetCursor = n - 1
	}
	if m.facetCursor < 0 {
		m.facetCursor = 0
	}
}

// activateFacetRow folds a section header or toggles an option.
func (m *Model) activateFacetRow() {
	row, ok := m.currentFacetRow()
	if !ok {
		return
	}
	if row.header {
		s, _ := filter.FindSection(m.sections(), row.sectionID)
		if s != nil && s.Kind() == filter.KindGlobalSearch {
			m.startSearch()
			return
		}
		m.setCollapsed(m.view, row.sectionID, !m.isCollapsed(m.view, row.sectionID))
		m.clampFacetCursor()
		return
	}
	m.filter().ToggleValue(row.sectionID, row.value)
}

func (m *Model) isCollapsed(view, sectionID string) bool {
	return m.collapsed[view][sectionID]
}

func (m *Model) setCollapsed(view, sectionID string, on bool) {
	if m.collapsed[view] == nil {
		m.collapsed[view] = map[string]bool{}
	}
	if on {
		m.collapsed[view][sectionID] = true
		return
	}
	delete(m.collapsed[view], sectionID)
}
