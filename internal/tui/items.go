package tui

import (
	"fmt"
	"io"
	"strings"

	"contentdesk/internal/filter"
	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// recordItem is one row of the record list; badge is colored, the rest is plain text.
type recordItem struct {
	kind  string
	id    int64
	title string
	badge string
	color lipgloss.TerminalColor
	meta  string
	dirty bool
}

func (i recordItem) FilterValue() string { return i.title }

func taskItem(t model.ContentTask, dirty bool) recordItem {
	st := statusutil.Derive(t)
	meta := fmt.Sprintf("%s · %s · due %s", t.Brand.Name, t.PostType.Name, t.Due)
	if t.Claimant != nil {
		meta += " · @" + t.Claimant.Name
	}
	return recordItem{
		kind:  filter.ViewTasks,
		id:    t.ID,
		title: t.Title,
		badge: string(st),
		color: statusColor(st),
		meta:  meta,
		dirty: dirty,
	}
}

func brandItem(b model.Brand) recordItem {
	names := make([]string, 0, len(b.Services))
	for _, s := range b.Services {
		names = append(names, s.Name)
	}
	color := lipgloss.TerminalColor(colorPosted)
	if !b.Active {
		color = colorPending
	}
	return recordItem{
		kind:  filter.ViewBrands,
		id:    b.ID,
		title: b.Name,
		badge: statusutil.BrandActivity(b),
		color: color,
		meta:  strings.Join(names, ", "),
	}
}

func enquiryItem(e model.Enquiry) recordItem {
	meta := e.Company
	if e.Service != "" {
		if meta != "" {
			meta += " · "
		}
		meta += e.Service
	}
	return recordItem{
		kind:  filter.ViewEnquiries,
		id:    e.ID,
		title: e.Name,
		badge: string(e.Status),
		color: enquiryColor(e.Status),
		meta:  meta,
	}
}

func statusColor(s statusutil.Status) lipgloss.TerminalColor {
	switch s {
	case statusutil.Ready:
		return colorReady
	case statusutil.Confirmed:
		return colorConfirmed
	case statusutil.Posted:
		return colorPosted
	default:
		return colorPending
	}
}

func enquiryColor(s model.EnquiryStatus) lipgloss.TerminalColor {
	switch s {
	case model.EnquiryInProgress:
		return colorReady
	case model.EnquiryAdvancedPayment:
		return colorConfirmed
	case model.EnquiryCompleted:
		return colorPosted
	default:
		return colorPending
	}
}

const badgeWidth = 17

// rowDelegate renders one line per record: badge, title, muted meta.
type rowDelegate struct{}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(recordItem)
	contentW := m.Width()
	if !ok || contentW < 4 {
		return
	}
	selected := index == m.Index()

	mark := " "
	if it.dirty {
		mark = "*"
	}
	badge := lipgloss.NewStyle().Foreground(it.color).Bold(true).Render(padOrCutANSI(it.badge, badgeWidth))
	title := fmt.Sprintf("%s#%-3d %s", mark, it.id, it.title)
	meta := ""
	if it.meta != "" {
		meta = "  " + it.meta
	}

	if selected {
		line := padOrCutANSI(badge+" "+title+meta, contentW)
		fmt.Fprint(w, styleSelected().Render(stripSGR(line)))
		return
	}
	rest := contentW - badgeWidth - 1
	body := truncateToWidth(title, rest)
	if room := rest - lipgloss.Width(body) - 2; room > 0 && it.meta != "" {
		body += "  " + styleMuted().Render(truncateToWidth(it.meta, room))
	}
	fmt.Fprint(w, padOrCutANSI(badge+" "+body, contentW))
}
