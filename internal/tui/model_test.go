package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/perm"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// testNow is a Sunday, so its week starts on 2025-12-29.
var testNow = time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, sess perm.Session) (*Model, store.Store) {
	t.Helper()
	s := store.Store{Dir: t.TempDir()}
	db := &store.DB{}
	store.Seed(db, testNow)
	if err := s.Save(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return loadTestModel(t, s, sess), s
}

func loadTestModel(t *testing.T, s store.Store, sess perm.Session) *Model {
	t.Helper()
	m := newModel(Options{
		Store:   s,
		Session: sess,
		Views:   filter.DefaultViews(),
		Config:  store.Config{DebounceMS: 10},
		Now:     func() time.Time { return testNow },
	})
	t.Cleanup(m.loader.Close)

	m.Init()
	m.loader.Wait()
	m.Update(loadedMsg{})
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func listIDs(m *Model) []int64 {
	var out []int64
	for _, it := range m.list.Items() {
		out = append(out, it.(recordItem).id)
	}
	return out
}

func sameIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// selectTask focuses the list and moves the cursor onto task id.
func selectTask(t *testing.T, m *Model, id int64) {
	t.Helper()
	if m.focus != paneList {
		press(m, "tab")
	}
	for range m.list.Items() {
		press(m, "k")
	}
	for range m.list.Items() {
		if it, ok := m.selected(); ok && it.id == id {
			return
		}
		press(m, "j")
	}
	t.Fatalf("task %d not in list %v", id, listIDs(m))
}

func ben() perm.Session { return perm.Session{ActorID: "ben", ActorName: "Ben Clarke"} }

func TestModel_LoadListsAllTasks(t *testing.T) {
	m, _ := newTestModel(t, ben())

	// Ordered by due date: task 4 is due yesterday.
	if got := listIDs(m); !sameIDs(got, 4, 1, 2, 3, 5, 6) {
		t.Fatalf("expected all six tasks by due date; got %v", got)
	}
	if m.loadErr != nil {
		t.Fatalf("unexpected load error: %v", m.loadErr)
	}
	if v := m.View(); !strings.Contains(v, "Spring blend teaser") {
		t.Fatalf("expected first task title in view")
	}
}

func TestModel_FacetToggleFiltersList(t *testing.T) {
	m, _ := newTestModel(t, ben())

	row, ok := m.currentFacetRow()
	if !ok || !row.header || row.sectionID != "status" {
		t.Fatalf("expected cursor on status header; got %+v", row)
	}
	press(m, "j")
	row, _ = m.currentFacetRow()
	if row.value != string(statusutil.Pending) {
		t.Fatalf("expected Pending option; got %+v", row)
	}
	press(m, "space")

	if got := listIDs(m); !sameIDs(got, 1, 5, 6) {
		t.Fatalf("expected pending tasks 1,5,6; got %v", got)
	}
	if !m.filter().State()["status"].Has("Pending") {
		t.Fatalf("expected Pending selected in filter state")
	}

	press(m, "X")
	if got := listIDs(m); len(got) != 6 {
		t.Fatalf("expected clear-all to restore 6 tasks; got %v", got)
	}
}

func TestModel_CollapseKeepsSelection(t *testing.T) {
	m, _ := newTestModel(t, ben())

	press(m, "j", "space", "k", "space")
	if !m.isCollapsed(filter.ViewTasks, "status") {
		t.Fatalf("expected status section collapsed")
	}
	for _, r := range m.facetRows() {
		if !r.header && r.sectionID == "status" {
			t.Fatalf("expected no status options while collapsed; got %+v", r)
		}
	}
	if got := listIDs(m); !sameIDs(got, 1, 5, 6) {
		t.Fatalf("expected selection to survive collapse; got %v", got)
	}
}

func TestModel_GlobalSearch(t *testing.T) {
	m, _ := newTestModel(t, ben())

	press(m, "/")
	if m.inputMode != inputSearch {
		t.Fatalf("expected search input mode")
	}
	typeText(m, "look")
	if got := listIDs(m); !sameIDs(got, 5) {
		t.Fatalf("expected only the lookbook task; got %v", got)
	}
	press(m, "enter")
	if m.inputMode != inputNone {
		t.Fatalf("expected input closed")
	}
	if got := m.filter().State()["search"].Text; got != "look" {
		t.Fatalf("expected search text kept; got %q", got)
	}
}

func TestModel_NarrowBrandOptions(t *testing.T) {
	m, _ := newTestModel(t, ben())

	rows := m.facetRows()
	for i, r := range rows {
		if r.header && r.sectionID == "brand_name" {
			m.facetCursor = i
		}
	}
	press(m, "f")
	if m.inputMode != inputNarrow {
		t.Fatalf("expected narrow input mode")
	}
	typeText(m, "north")
	press(m, "enter")

	var opts []string
	for _, r := range m.facetRows() {
		if !r.header && r.sectionID == "brand_name" {
			opts = append(opts, r.value)
		}
	}
	if len(opts) != 1 || opts[0] != "Northwind Outfitters" {
		t.Fatalf("expected narrowed brand options; got %v", opts)
	}
	if got := listIDs(m); len(got) != 6 {
		t.Fatalf("narrowing options must not filter records; got %v", got)
	}
}

func TestModel_ClaimAndSave(t *testing.T) {
	m, s := newTestModel(t, ben())

	selectTask(t, m, 5)
	press(m, "c")
	if m.flashErr {
		t.Fatalf("unexpected error flash: %s", m.flash)
	}
	if !m.isDirty(5) {
		t.Fatalf("expected unsaved draft for task 5")
	}

	before, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tk, _ := before.FindTask(5); tk.Claimant != nil {
		t.Fatalf("claim must not persist before save")
	}

	press(m, "ctrl+s")
	m.loader.Wait()
	if m.flashErr || len(m.drafts) != 0 {
		t.Fatalf("expected clean save; flash=%q drafts=%d", m.flash, len(m.drafts))
	}

	after, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tk, _ := after.FindTask(5)
	if tk.Claimant == nil || tk.Claimant.ID != "ben" {
		t.Fatalf("expected task 5 claimed by ben; got %+v", tk.Claimant)
	}
	evs, err := s.Events(context.Background(), store.TaskEntityID(5), 10)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 1 || evs[0].Type != "task.claim" {
		t.Fatalf("expected one task.claim event; got %+v", evs)
	}
}

func TestModel_DeniedTransitionIsNoop(t *testing.T) {
	m, _ := newTestModel(t, ben())

	// Task 2 is Ready and claimed by ben, who is not an admin.
	selectTask(t, m, 2)
	press(m, "o")
	if !m.flashErr || !strings.HasPrefix(m.flash, "confirm: no effect on task 2") {
		t.Fatalf("expected no-effect flash for task 2; got %q", m.flash)
	}
	if len(m.drafts) != 0 {
		t.Fatalf("denied transition must not leave a draft")
	}
}

func TestModel_ReadyToggleNamesDeniedUnready(t *testing.T) {
	m, _ := newTestModel(t, ben())
	m.opts.Policy = perm.Policy{EnforceOrder: true}

	// Task 3 is Confirmed, so unready is refused under enforce_order.
	selectTask(t, m, 3)
	press(m, "r")
	if !m.flashErr || !strings.HasPrefix(m.flash, "unready: no effect on task 3") {
		t.Fatalf("expected unready no-effect flash; got %q", m.flash)
	}
	if len(m.drafts) != 0 {
		t.Fatalf("denied transition must not leave a draft")
	}

	selectTask(t, m, 5)
	press(m, "r")
	if m.flashErr || !strings.HasPrefix(m.flash, "ready task 5") {
		t.Fatalf("expected ready flash for task 5; got %q", m.flash)
	}
}

func TestModel_ReadonlySessionCannotClaim(t *testing.T) {
	m, _ := newTestModel(t, perm.Session{})

	press(m, "tab", "c")
	if !m.flashErr {
		t.Fatalf("expected claim without identity to be refused")
	}
}

func TestModel_ScheduleNavigation(t *testing.T) {
	m, _ := newTestModel(t, ben())

	press(m, "s")
	if !m.scheduling {
		t.Fatalf("expected schedule mode")
	}
	v := m.View()
	if !strings.Contains(v, "2025-12-29") || !strings.Contains(v, "2026-01-04") {
		t.Fatalf("expected the week of 2025-12-29 in view")
	}
	if !strings.Contains(v, "Layering guide") || strings.Contains(v, "Autumn lookbook") {
		t.Fatalf("expected only this week's tasks")
	}

	press(m, "]")
	if got := m.anchorDate(); got != "2026-01-11" {
		t.Fatalf("expected anchor one week later; got %s", got)
	}
	v = m.View()
	if !strings.Contains(v, "2026-01-05") || !strings.Contains(v, "Autumn lookbook") {
		t.Fatalf("expected next week's tasks in view")
	}

	press(m, "t")
	if got := m.anchorDate(); got != "2026-01-04" {
		t.Fatalf("expected today anchor; got %s", got)
	}
	press(m, "g")
	if m.granularity != "month" {
		t.Fatalf("expected month granularity; got %s", m.granularity)
	}
}

func TestModel_LoadErrorKeepsRecords(t *testing.T) {
	m, _ := newTestModel(t, ben())

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m.opts.Store = store.Store{Dir: filepath.Join(blocker, "db")}
	press(m, "R")
	m.loader.Wait()
	m.Update(loadedMsg{})

	if m.loadErr == nil || !m.flashErr {
		t.Fatalf("expected load error to be surfaced")
	}
	if got := listIDs(m); len(got) != 6 {
		t.Fatalf("expected previous records kept; got %v", got)
	}
}

func TestModel_ViewCycleAndStatePersistence(t *testing.T) {
	m, s := newTestModel(t, ben())

	press(m, "v")
	if m.view != filter.ViewBrands {
		t.Fatalf("expected brands view; got %s", m.view)
	}
	if got := listIDs(m); len(got) != 3 {
		t.Fatalf("expected 3 brands; got %v", got)
	}
	press(m, "space", "d")
	if err := m.persistState(); err != nil {
		t.Fatalf("persist: %v", err)
	}

	m2 := loadTestModel(t, s, ben())
	if m2.view != filter.ViewBrands || !m2.showDetail {
		t.Fatalf("expected restored view and detail; got view=%s detail=%v", m2.view, m2.showDetail)
	}
	first := m2.facetRows()[0]
	if !m2.isCollapsed(filter.ViewBrands, first.sectionID) {
		t.Fatalf("expected collapsed section restored")
	}
}
