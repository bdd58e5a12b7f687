package tui

import (
	"fmt"
	"sort"
	"strings"

	"contentdesk/internal/filter"
	"contentdesk/internal/model"
	"contentdesk/internal/schedule"
	"contentdesk/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
)

const facetPaneWidth = 32

// chromeHeight is the header, input, flash and help lines around the panes.
const chromeHeight = 5

func (m *Model) resize() {
	bodyH := m.height - chromeHeight - 2
	if bodyH < 3 {
		bodyH = 3
	}
	mainW := m.width - facetPaneWidth - 4 - 4
	if mainW < 20 {
		mainW = 20
	}
	listH := bodyH
	if m.showDetail {
		listH = bodyH / 2
		m.detail.Width = mainW
		m.detail.Height = bodyH - listH - 1
	}
	m.list.SetSize(mainW, listH)
	m.help.Width = m.width
	m.syncDetail()
}

func (m *Model) mainWidth() int { return m.list.Width() }

// syncDetail re-renders the detail pane for the selected record.
func (m *Model) syncDetail() {
	if !m.showDetail {
		return
	}
	m.detail.SetContent(m.detailContent(m.detail.Width))
	m.detail.GotoTop()
}

func (m *Model) detailContent(width int) string {
	it, ok := m.selected()
	if !ok || m.db == nil {
		return styleMuted().Render("nothing selected")
	}
	theme := m.opts.Config.TUI.Theme
	var b strings.Builder
	switch it.kind {
	case filter.ViewTasks:
		t, ok := m.selectedTask()
		if !ok {
			return ""
		}
		fmt.Fprintf(&b, "%s\n", styleHeading().Render(t.Title))
		fmt.Fprintf(&b, "%s · %s · due %s · %s\n", t.Brand.Name, t.PostType.Name, t.Due, statusutil.Derive(t))
		if t.Claimant != nil {
			fmt.Fprintf(&b, "claimed by %s\n", t.Claimant.Name)
		}
		if t.AssetURL != "" {
			fmt.Fprintf(&b, "asset %s\n", t.AssetURL)
		}
		keys := make([]string, 0, len(t.Extra))
		for k := range t.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, t.Extra[k])
		}
		if md := renderMarkdown(t.Description, width, theme); md != "" {
			b.WriteString("\n" + md + "\n")
		}
	case filter.ViewBrands:
		br, ok := m.db.FindBrand(it.id)
		if !ok {
			return ""
		}
		fmt.Fprintf(&b, "%s  %s\n", styleHeading().Render(br.Name), statusutil.BrandActivity(*br))
		for _, line := range []string{br.ContactName, br.Email, br.Phone} {
			if line != "" {
				b.WriteString(line + "\n")
			}
		}
		for _, s := range br.Services {
			fmt.Fprintf(&b, "- %s\n", s.Name)
		}
	case filter.ViewEnquiries:
		e, ok := m.db.FindEnquiry(it.id)
		if !ok {
			return ""
		}
		fmt.Fprintf(&b, "%s  %s\n", styleHeading().Render(e.Name), e.Status)
		if e.Company != "" || e.Service != "" {
			fmt.Fprintf(&b, "%s %s\n", e.Company, e.Service)
		}
		for _, entry := range e.Log {
			fmt.Fprintf(&b, "\n%s %s\n", styleHeading().Render(entry.Title), styleMuted().Render(string(entry.Date)+" "+entry.Author))
			if md := renderMarkdown(entry.Body, width, theme); md != "" {
				b.WriteString(md + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")

	facets := stylePane(m.focus == paneFacets).Width(facetPaneWidth).Render(m.facetPane())
	var main string
	if m.scheduling {
		main = m.scheduleView()
	} else {
		main = m.list.View()
		if len(m.list.Items()) == 0 {
			main = styleMuted().Render("no records match")
		}
		if m.showDetail {
			main += "\n" + strings.Repeat("─", m.mainWidth()) + "\n" + m.detail.View()
		}
	}
	mainPane := stylePane(m.focus == paneList).Width(m.mainWidth()).Render(main)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, facets, mainPane))
	b.WriteString("\n")

	if m.inputMode != inputNone {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	if m.flash != "" {
		st := styleMuted()
		if m.flashErr {
			st = lipgloss.NewStyle().Foreground(colorFlashError)
		}
		b.WriteString(st.Render(truncateToWidth(m.flash, m.width)))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) headerLine() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("contentdesk")
	parts := []string{title}
	for _, v := range m.views {
		label := v
		if v == m.view {
			label = styleSelected().Render(" " + v + " ")
		} else {
			label = styleMuted().Render(label)
		}
		parts = append(parts, label)
	}
	if m.scheduling {
		parts = append(parts, styleSelected().Render(" schedule "))
	}
	who := m.opts.Session.ActorName
	if who == "" {
		who = "read-only"
	}
	if m.opts.Session.Admin {
		who += " (admin)"
	}
	n := len(m.list.Items())
	parts = append(parts, styleMuted().Render(fmt.Sprintf("%d shown", n)), styleMuted().Render(who))
	if d := m.dirtyCount(); d > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorReady).Render(fmt.Sprintf("%d unsaved", d)))
	}
	return truncateToWidth(strings.Join(parts, "  "), m.width)
}

func (m *Model) dirtyCount() int {
	n := 0
	for _, d := range m.drafts {
		if d.Dirty() {
			n++
		}
	}
	return n
}

func (m *Model) facetPane() string {
	rows := m.facetRows()
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		var line string
		switch {
		case r.header:
			marker := "▾ "
			if m.isCollapsed(m.view, r.sectionID) {
				marker = "▸ "
			}
			line = styleHeading().Render(truncateToWidth(marker+r.label, facetPaneWidth))
		default:
			box := "[ ] "
			if r.selected {
				box = "[x] "
			}
			label := r.label
			if r.stale {
				label += " (gone)"
			}
			line = "  " + truncateToWidth(box+label, facetPaneWidth-2)
			if r.stale {
				line = styleMuted().Render(line)
			}
		}
		if i == m.facetCursor && m.focus == paneFacets {
			line = styleSelected().Render(padOrCutANSI(stripSGR(line), facetPaneWidth))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// scheduleView lists the filtered tasks bucketed by due date around the anchor.
func (m *Model) scheduleView() string {
	v := schedule.Project(m.filteredTasks(), m.granularity, m.anchor)
	w := m.mainWidth()

	var b strings.Builder
	head := fmt.Sprintf("%s %s → %s  (%d tasks)", v.Granularity, v.Start, v.End, v.Total())
	b.WriteString(styleHeading().Render(head))
	b.WriteString("\n")
	today := model.DateOf(m.opts.Now())
	for _, bucket := range v.Buckets {
		if len(bucket.Tasks) == 0 && v.Granularity == schedule.Month {
			continue
		}
		day := string(bucket.Date)
		if t, ok := bucket.Date.Time(); ok {
			day = t.Format("Mon 2006-01-02")
		}
		if bucket.Date == today {
			day += " (today)"
		}
		b.WriteString(lipgloss.NewStyle().Foreground(colorAccent).Render(day))
		b.WriteString("\n")
		if len(bucket.Tasks) == 0 {
			b.WriteString(styleMuted().Render("  -"))
			b.WriteString("\n")
			continue
		}
		for _, t := range bucket.Tasks {
			st := statusutil.Derive(t)
			badge := lipgloss.NewStyle().Foreground(statusColor(st)).Render(padOrCutANSI(string(st), 10))
			line := fmt.Sprintf("  %s #%d %s · %s", badge, t.ID, t.Title, t.Brand.Name)
			b.WriteString(padOrCutANSI(line, w))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) anchorDate() model.Date { return model.DateOf(m.anchor) }
