package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"contentdesk/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	t.Setenv(envConfigDir, t.TempDir())
	return Store{Dir: t.TempDir()}
}

func seededStore(t *testing.T) (Store, *DB) {
	t.Helper()
	s := newTestStore(t)
	db := &DB{}
	Seed(db, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	if err := s.Save(context.Background(), db); err != nil {
		t.Fatalf("save: %v", err)
	}
	return s, db
}

func TestSQLiteState_SaveLoad_RoundTrip(t *testing.T) {
	s, seeded := seededStore(t)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentActorID != "ana" {
		t.Fatalf("expected current actor ana; got %q", got.CurrentActorID)
	}
	if len(got.Tasks) != len(seeded.Tasks) || len(got.Brands) != 3 || len(got.PostTypes) != 4 || len(got.Enquiries) != 3 {
		t.Fatalf("unexpected counts: tasks=%d brands=%d postTypes=%d enquiries=%d", len(got.Tasks), len(got.Brands), len(got.PostTypes), len(got.Enquiries))
	}
	if got.NextIDs[KindTask] != int64(len(seeded.Tasks)) {
		t.Fatalf("expected task counter %d; got %d", len(seeded.Tasks), got.NextIDs[KindTask])
	}
	b, ok := got.FindBrandByName("northwind outfitters")
	if !ok || len(b.Services) != 3 {
		t.Fatalf("expected Northwind with 3 services; got %+v", b)
	}
	posted, ok := got.FindTask(4)
	if !ok || posted.PostedAt == nil || posted.PosterID == nil || *posted.PosterID != "ben" {
		t.Fatalf("expected posted task 4; got %+v", posted)
	}
}

func TestLoad_EmptyStoreHasNonNilSlices(t *testing.T) {
	s := newTestStore(t)
	db, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if db.Tasks == nil || db.Brands == nil || db.Actors == nil || db.Enquiries == nil || db.PostTypes == nil {
		t.Fatalf("expected empty non-nil slices; got %+v", db)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, sqliteFileName)); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestSaveTask_UpdatesOneRow(t *testing.T) {
	s, db := seededStore(t)
	task := db.Tasks[0]
	task.Claimant = &model.ActorRef{ID: "ben", Name: "Ben Clarke"}
	if err := s.SaveTask(context.Background(), task); err != nil {
		t.Fatalf("SaveTask: %v", err)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	saved, _ := got.FindTask(task.ID)
	if saved.Claimant == nil || saved.Claimant.ID != "ben" {
		t.Fatalf("expected claimant ben; got %+v", saved.Claimant)
	}
	if len(got.Tasks) != len(db.Tasks) {
		t.Fatalf("expected %d tasks; got %d", len(db.Tasks), len(got.Tasks))
	}

	missing := model.ContentTask{ID: 999, Title: "ghost"}
	var nf NotFoundError
	if err := s.SaveTask(context.Background(), missing); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestEvents_AppendAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i, typ := range []string{"task.claim", "task.ready", "task.confirm"} {
		if err := s.AppendEvent(ctx, "ana", typ, TaskEntityID(1), map[string]any{"n": i}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.AppendEvent(ctx, "ben", "enquiry.create", EnquiryEntityID(1), nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	evs, err := s.Events(ctx, TaskEntityID(1), 0)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 3 || evs[0].Type != "task.claim" || evs[2].Type != "task.confirm" {
		t.Fatalf("expected 3 task events oldest first; got %+v", evs)
	}
	if evs[0].ID == "" || evs[0].ID == evs[1].ID {
		t.Fatalf("expected unique event ids; got %q %q", evs[0].ID, evs[1].ID)
	}

	last, err := s.Events(ctx, "", 2)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(last) != 2 || last[0].Type != "task.confirm" || last[1].Type != "enquiry.create" {
		t.Fatalf("expected newest 2 events oldest first; got %+v", last)
	}
	if last[1].Payload != nil {
		t.Fatalf("expected nil payload; got %#v", last[1].Payload)
	}
}

func TestNextID_NeverReuses(t *testing.T) {
	db := &DB{Tasks: []model.ContentTask{{ID: 3}, {ID: 7}}}
	if got := db.NextID(KindTask); got != 8 {
		t.Fatalf("expected 8; got %d", got)
	}
	db.Tasks = db.Tasks[:1]
	if got := db.NextID(KindTask); got != 9 {
		t.Fatalf("expected 9 after removal; got %d", got)
	}
}

func TestResolveBrand(t *testing.T) {
	db := &DB{}
	Seed(db, time.Now())
	b, err := db.ResolveBrand("2")
	if err != nil || b.Name != "Northwind Outfitters" {
		t.Fatalf("expected brand 2; got %+v, %v", b, err)
	}
	b, err = db.ResolveBrand("acme coffee")
	if err != nil || b.ID != 1 {
		t.Fatalf("expected Acme by name; got %+v, %v", b, err)
	}
	if _, err := db.ResolveBrand("nope"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseID(t *testing.T) {
	if n, err := ParseID(KindTask, "task-12"); err != nil || n != 12 {
		t.Fatalf("expected 12; got %d, %v", n, err)
	}
	if _, err := ParseID(KindTask, "0"); err == nil {
		t.Fatalf("expected error for zero id")
	}
}

func TestConfig_LoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.DebounceMS != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config written: %v", err)
	}

	if err := os.WriteFile(path, []byte("actor = \"ben\"\n\n[policy]\nenforce_order = true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err = LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.Actor != "ben" || !cfg.Policy.EnforceOrder || cfg.Policy.PostRequiresAdmin {
		t.Fatalf("unexpected parsed config: %+v", cfg)
	}
	if cfg.Debounce() != 300*time.Millisecond {
		t.Fatalf("expected default debounce kept; got %v", cfg.Debounce())
	}
}

func TestConfig_SaveThenLoad(t *testing.T) {
	t.Setenv(envConfigDir, t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.Actor = "ana"
	cfg.Policy.PostRequiresAdmin = true
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Actor != "ana" || !got.Policy.PostRequiresAdmin {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestTUIState_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	st, err := s.LoadTUIState()
	if err != nil || st.Version != 1 {
		t.Fatalf("expected default state; got %+v, %v", st, err)
	}
	st.View = "schedule"
	st.Anchor = "2026-01-04"
	st.Collapsed = map[string][]string{"tasks": {"claimant"}}
	if err := s.SaveTUIState(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.View != "schedule" || got.Anchor != "2026-01-04" || len(got.Collapsed["tasks"]) != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}
}
