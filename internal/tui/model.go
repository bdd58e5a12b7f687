package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"contentdesk/internal/fetch"
	"contentdesk/internal/filter"
	"contentdesk/internal/logging"
	"contentdesk/internal/model"
	"contentdesk/internal/mutate"
	"contentdesk/internal/records"
	"contentdesk/internal/schedule"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type pane int

const (
	paneFacets pane = iota
	paneList
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputNarrow
)

// loadedMsg tells the board that the loader delivered a snapshot or an error.
type loadedMsg struct{}

// boardViews are the views the board knows how to list, in cycle order.
var boardViews = []string{filter.ViewTasks, filter.ViewBrands, filter.ViewEnquiries}

// Model is the board: a facet pane, a record list (or the schedule), and a detail pane.
//
// Filter controllers call back into the model synchronously, so the model is used by
// pointer.
type Model struct {
	opts   Options
	keys   keyMap
	help   help.Model
	loader *fetch.Loader[*store.DB]
	loaded chan struct{}

	db      *store.DB
	loadErr error

	views     []string
	view      string
	filters   map[string]*filter.Controller
	options   map[string][]string
	collapsed map[string]map[string]bool
	narrow    map[string]string

	focus       pane
	facetCursor int
	input       textinput.Model
	inputMode   inputMode
	inputTarget string

	list       list.Model
	detail     viewport.Model
	showDetail bool

	scheduling  bool
	granularity schedule.Granularity
	anchor      time.Time

	drafts   map[int64]*mutate.Draft
	flash    string
	flashErr bool

	width  int
	height int
}

func newModel(opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Views == nil {
		opts.Views = filter.DefaultViews()
	}

	m := &Model{
		opts:      opts,
		keys:      defaultKeyMap(),
		help:      help.New(),
		loaded:    make(chan struct{}, 1),
		filters:   map[string]*filter.Controller{},
		options:   map[string][]string{},
		collapsed: map[string]map[string]bool{},
		narrow:    map[string]string{},
		drafts:    map[int64]*mutate.Draft{},
		width:     100,
		height:    30,
	}

	for _, v := range boardViews {
		sections, ok := opts.Views[v]
		if !ok {
			continue
		}
		m.views = append(m.views, v)
		c := filter.NewController(sections)
		c.Subscribe(func(filter.State) { m.refresh() })
		m.filters[v] = c
	}
	if len(m.views) == 0 {
		m.views = []string{filter.ViewTasks}
		m.filters[filter.ViewTasks] = filter.NewController(nil)
	}
	m.view = m.views[0]

	g, err := schedule.ParseGranularity(opts.Config.TUI.Granularity)
	if err != nil {
		g = schedule.Week
	}
	m.granularity = g
	m.anchor = dayOf(opts.Now())

	m.input = textinput.New()
	m.input.CharLimit = 120

	m.list = list.New(nil, rowDelegate{}, 0, 0)
	m.list.SetShowHelp(false)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowTitle(false)
	m.detail = viewport.New(0, 0)

	m.restoreState()
	m.resize()

	m.loader = fetch.NewLoader(fetch.Opts[*store.DB]{
		Fetch:    func(ctx context.Context) (*store.DB, error) { return m.opts.Store.Load(ctx) },
		Debounce: opts.Config.Debounce(),
		OnLoad:   func(*store.DB) { m.signalLoaded() },
		OnError:  func(error) { m.signalLoaded() },
		Log:      opts.Log,
	})
	return m
}

func (m *Model) log() *logging.Logger { return m.opts.Log }

// signalLoaded wakes the board; the data itself is read from the loader snapshot, so
// coalesced signals lose nothing.
func (m *Model) signalLoaded() {
	select {
	case m.loaded <- struct{}{}:
	default:
	}
}

func (m *Model) waitForLoad() tea.Cmd {
	ch := m.loaded
	return func() tea.Msg {
		<-ch
		return loadedMsg{}
	}
}

func (m *Model) Init() tea.Cmd {
	m.loader.Mount()
	return m.waitForLoad()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		if db, ok := m.loader.Snapshot(); ok {
			m.db = db
		}
		m.loadErr = m.loader.Err()
		if m.loadErr != nil {
			m.setFlash("load failed: "+m.loadErr.Error(), true)
		}
		m.refresh()
		return m, m.waitForLoad()

	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Focus):
		if m.focus == paneFacets {
			m.focus = paneList
		} else {
			m.focus = paneFacets
		}
	case key.Matches(msg, k.Up):
		m.move(-1)
	case key.Matches(msg, k.Down):
		m.move(1)
	case key.Matches(msg, k.Toggle):
		if m.focus == paneFacets {
			m.activateFacetRow()
		} else {
			m.showDetail = !m.showDetail
			m.resize()
		}
	case key.Matches(msg, k.Search):
		m.startSearch()
	case key.Matches(msg, k.Narrow):
		m.startNarrow()
	case key.Matches(msg, k.Clear):
		if row, ok := m.currentFacetRow(); ok {
			m.filter().ClearSection(row.sectionID)
		}
	case key.Matches(msg, k.ClearAll):
		m.filter().ClearAll()
	case key.Matches(msg, k.ViewNext):
		m.nextView()
	case key.Matches(msg, k.Schedule):
		if m.view == filter.ViewTasks {
			m.scheduling = !m.scheduling
		}
	case key.Matches(msg, k.Gran):
		m.granularity = nextGranularity(m.granularity)
	case key.Matches(msg, k.Prev):
		m.moveAnchor(schedule.Advance(m.anchor, m.granularity, -1))
	case key.Matches(msg, k.Next):
		m.moveAnchor(schedule.Advance(m.anchor, m.granularity, 1))
	case key.Matches(msg, k.Today):
		m.moveAnchor(dayOf(m.opts.Now()))
	case key.Matches(msg, k.Detail):
		m.showDetail = !m.showDetail
		m.resize()
	case key.Matches(msg, k.Refresh):
		m.loader.Refresh()
	case key.Matches(msg, k.Save):
		m.save()
	case key.Matches(msg, k.Claim):
		m.transition(mutate.Claim)
	case key.Matches(msg, k.Unclaim):
		m.transition(mutate.Unclaim)
	case key.Matches(msg, k.Ready):
		m.transition("ready-toggle")
	case key.Matches(msg, k.Confirm):
		m.transition(mutate.Confirm)
	case key.Matches(msg, k.Unconfirm):
		m.transition(mutate.Unconfirm)
	case key.Matches(msg, k.Post):
		m.transition(mutate.Post)
	case key.Matches(msg, k.Unpost):
		m.transition(mutate.Unpost)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.inputMode = inputNone
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.inputMode {
	case inputSearch:
		m.filter().SetText(m.inputTarget, m.input.Value())
	case inputNarrow:
		m.narrow[m.narrowKey(m.inputTarget)] = m.input.Value()
		m.clampFacetCursor()
	}
	return m, cmd
}

func (m *Model) filter() *filter.Controller { return m.filters[m.view] }

func (m *Model) sections() []filter.Section { return m.filter().Sections() }

func (m *Model) move(delta int) {
	if m.focus == paneFacets {
		m.facetCursor += delta
		m.clampFacetCursor()
		return
	}
	if delta < 0 {
		m.list.CursorUp()
	} else {
		m.list.CursorDown()
	}
	m.syncDetail()
}

func (m *Model) nextView() {
	for i, v := range m.views {
		if v == m.view {
			m.view = m.views[(i+1)%len(m.views)]
			break
		}
	}
	if m.view != filter.ViewTasks {
		m.scheduling = false
	}
	m.facetCursor = 0
	m.refresh()
}

// moveAnchor changes the schedule anchor and asks the loader for a debounced re-fetch.
func (m *Model) moveAnchor(t time.Time) {
	m.anchor = dayOf(t)
	m.loader.Notify()
}

func nextGranularity(g schedule.Granularity) schedule.Granularity {
	switch g {
	case schedule.Day:
		return schedule.Week
	case schedule.Week:
		return schedule.Month
	default:
		return schedule.Day
	}
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *Model) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashErr = isErr
}

// tasks returns the loaded tasks with unsaved drafts applied.
func (m *Model) tasks() []model.ContentTask {
	if m.db == nil {
		return nil
	}
	out := make([]model.ContentTask, 0, len(m.db.Tasks))
	for _, t := range m.db.Tasks {
		if d, ok := m.drafts[t.ID]; ok {
			t = d.Task()
		}
		out = append(out, t)
	}
	return out
}

func (m *Model) filteredTasks() []model.ContentTask {
	return records.UnwrapTasks(filter.Apply(records.Tasks(m.tasks()), m.filter().State(), m.sections()))
}

// refresh recomputes options and the record list from the current snapshot and filter
// state.
func (m *Model) refresh() {
	sections := m.sections()
	st := m.filter().State()
	var items []list.Item

	switch m.view {
	case filter.ViewTasks:
		all := records.Tasks(m.tasks())
		m.options = filter.ExtractAll(all, sections)
		for _, t := range filter.Apply(all, st, sections) {
			items = append(items, taskItem(t.ContentTask, m.isDirty(t.ID)))
		}
	case filter.ViewBrands:
		var src []model.Brand
		if m.db != nil {
			src = m.db.Brands
		}
		all := records.Brands(src)
		m.options = filter.ExtractAll(all, sections)
		for _, b := range filter.Apply(all, st, sections) {
			items = append(items, brandItem(b.Brand))
		}
	case filter.ViewEnquiries:
		var src []model.Enquiry
		if m.db != nil {
			src = m.db.Enquiries
		}
		all := records.Enquiries(src)
		m.options = filter.ExtractAll(all, sections)
		for _, e := range filter.Apply(all, st, sections) {
			items = append(items, enquiryItem(e.Enquiry))
		}
	}

	m.list.SetItems(items)
	m.clampFacetCursor()
	m.syncDetail()
}

func (m *Model) isDirty(id int64) bool {
	d, ok := m.drafts[id]
	return ok && d.Dirty()
}

func (m *Model) selected() (recordItem, bool) {
	it, ok := m.list.SelectedItem().(recordItem)
	return it, ok
}

func (m *Model) selectedTask() (model.ContentTask, bool) {
	it, ok := m.selected()
	if !ok || it.kind != filter.ViewTasks {
		return model.ContentTask{}, false
	}
	for _, t := range m.tasks() {
		if t.ID == it.id {
			return t, true
		}
	}
	return model.ContentTask{}, false
}

func (m *Model) draftFor(t model.ContentTask) *mutate.Draft {
	if d, ok := m.drafts[t.ID]; ok {
		return d
	}
	d := mutate.NewDraft(t, m.opts.Session, m.opts.Policy)
	d.SetClock(func() time.Time { return m.opts.Now().UTC() })
	m.drafts[t.ID] = d
	return d
}

// transition applies a lifecycle change to the selected task's draft. Denied changes
// leave the draft untouched and only flash a note.
func (m *Model) transition(name string) {
	if m.view != filter.ViewTasks {
		return
	}
	t, ok := m.selectedTask()
	if !ok {
		m.setFlash("no task selected", true)
		return
	}
	d := m.draftFor(t)
	var res mutate.Result
	if name == "ready-toggle" {
		name = mutate.Ready
		if statusutil.Present(d.Task().ReadiedAt) {
			name = mutate.Unready
		}
		res = d.ToggleReady()
	} else {
		res, _ = d.Apply(name)
	}
	if !d.Dirty() {
		delete(m.drafts, t.ID)
	}
	if !res.Changed {
		who := m.opts.Session.ActorID
		if who == "" {
			who = "no actor"
		}
		m.setFlash(fmt.Sprintf("%s: no effect on task %d for %s", name, t.ID, who), true)
		return
	}
	m.setFlash(fmt.Sprintf("%s task %d: %s (unsaved, ctrl+s to save)", name, t.ID, statusutil.Derive(res.Task)), false)
	m.refresh()
}

// save persists every dirty draft as a whole record, appends its events and triggers
// a re-fetch. A failed save keeps the draft dirty.
func (m *Model) save() {
	ctx := context.Background()
	ids := make([]int64, 0, len(m.drafts))
	for id := range m.drafts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	saved := 0
	for _, id := range ids {
		d := m.drafts[id]
		if !d.Dirty() {
			delete(m.drafts, id)
			continue
		}
		changes, err := d.Save(ctx, m.opts.Store)
		if err != nil {
			m.log().Error("tui: save task", "task", id, "err", err)
			m.setFlash(fmt.Sprintf("save task %d failed: %v", id, err), true)
			return
		}
		for _, c := range changes {
			if err := m.opts.Store.AppendEvent(ctx, m.opts.Session.ActorID, c.Type, store.TaskEntityID(id), c.Payload); err != nil {
				m.log().Warn("tui: append event", "task", id, "type", c.Type, "err", err)
			}
		}
		if m.db != nil {
			m.db.ReplaceTask(d.Task())
		}
		delete(m.drafts, id)
		saved++
	}
	if saved == 0 {
		m.setFlash("nothing to save", false)
		return
	}
	m.log().Info("tui: saved", "tasks", saved)
	m.setFlash(fmt.Sprintf("saved %d task(s)", saved), false)
	m.refresh()
	m.loader.Refresh()
}

func (m *Model) startSearch() {
	for _, s := range m.sections() {
		if s.Kind() != filter.KindGlobalSearch {
			continue
		}
		m.inputMode = inputSearch
		m.inputTarget = s.SectionID()
		m.input.Prompt = s.Label() + ": "
		m.input.SetValue(m.filter().State()[s.SectionID()].Text)
		m.input.Focus()
		return
	}
}

func (m *Model) startNarrow() {
	row, ok := m.currentFacetRow()
	if !ok {
		return
	}
	s, ok := filter.FindSection(m.sections(), row.sectionID)
	if !ok || s.Kind() != filter.KindSearchable {
		return
	}
	m.inputMode = inputNarrow
	m.inputTarget = s.SectionID()
	m.input.Prompt = "Find " + strings.ToLower(s.Label()) + ": "
	m.input.SetValue(m.narrow[m.narrowKey(s.SectionID())])
	m.input.Focus()
}

func (m *Model) narrowKey(sectionID string) string { return m.view + "/" + sectionID }

func (m *Model) restoreState() {
	st, err := m.opts.Store.LoadTUIState()
	if err != nil || st == nil {
		return
	}
	switch st.View {
	case "schedule":
		m.scheduling = true
	case filter.ViewBrands, filter.ViewEnquiries, filter.ViewTasks:
		if _, ok := m.filters[st.View]; ok {
			m.view = st.View
		}
	}
	if g, err := schedule.ParseGranularity(st.Granularity); err == nil && st.Granularity != "" {
		m.granularity = g
	}
	if t, ok := model.Date(st.Anchor).Time(); ok {
		m.anchor = t
	}
	for view, ids := range st.Collapsed {
		for _, id := range ids {
			m.setCollapsed(view, id, true)
		}
	}
	m.showDetail = st.ShowDetail
}

func (m *Model) persistState() error {
	view := m.view
	if m.scheduling {
		view = "schedule"
	}
	st := &store.TUIState{
		Version:     1,
		View:        view,
		Granularity: string(m.granularity),
		Anchor:      string(m.anchorDate()),
		Collapsed:   map[string][]string{},
		ShowDetail:  m.showDetail,
	}
	for v, ids := range m.collapsed {
		for id, on := range ids {
			if on {
				st.Collapsed[v] = append(st.Collapsed[v], id)
			}
		}
		sort.Strings(st.Collapsed[v])
	}
	return m.opts.Store.SaveTUIState(st)
}
