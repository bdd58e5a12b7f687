package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"contentdesk/internal/model"
	"contentdesk/internal/schedule"
	"contentdesk/internal/store"
)

var seedNow = time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)

func seededDB() *store.DB {
	db := &store.DB{}
	store.Seed(db, seedNow)
	return db
}

func TestRenderTaskMarkdown_IncludesMetaDescriptionAndHistory(t *testing.T) {
	t.Parallel()

	db := seededDB()
	md, err := RenderTaskMarkdown(db, 1, RenderOptions{Events: []model.Event{
		{Type: "task.claim", ActorID: "ben", TS: seedNow.Add(time.Hour)},
		{Type: "task.create", ActorID: "ana", TS: seedNow},
	}})
	if err != nil {
		t.Fatalf("RenderTaskMarkdown: %v", err)
	}
	for _, want := range []string{"# Spring blend teaser", "- Brand: Acme Coffee", "- Status: Pending", "- campaign: spring", "## Description", "**spring blend**", "## History"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Index(md, "task.create") > strings.Index(md, "task.claim") {
		t.Fatalf("expected history in time order, got:\n%s", md)
	}
}

func TestRenderTaskMarkdown_ConfirmedTaskShowsActors(t *testing.T) {
	t.Parallel()

	md, err := RenderTaskMarkdown(seededDB(), 4, RenderOptions{})
	if err != nil {
		t.Fatalf("RenderTaskMarkdown: %v", err)
	}
	if !strings.Contains(md, "- Status: Posted") || !strings.Contains(md, "by ana") || !strings.Contains(md, "by ben") {
		t.Fatalf("expected posted task meta, got:\n%s", md)
	}
	if strings.Contains(md, "## History") {
		t.Fatalf("expected no history section without events")
	}
}

func TestRenderTaskMarkdown_UnknownTask(t *testing.T) {
	t.Parallel()

	_, err := RenderTaskMarkdown(seededDB(), 99, RenderOptions{})
	if err == nil || err.Error() != "task not found: 99" {
		t.Fatalf("expected not-found error; got %v", err)
	}
}

func TestWriteSchedule_WritesIndexAndTaskPages(t *testing.T) {
	t.Parallel()

	db := seededDB()
	v := schedule.Project(db.Tasks, schedule.Week, seedNow)
	to := t.TempDir()

	res, err := WriteSchedule(db, v, to, WriteOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("WriteSchedule: %v", err)
	}
	// Tasks 1 (today) and 4 (yesterday) fall in the week of 2025-12-29.
	if len(res.Written) != 3 {
		t.Fatalf("expected index + 2 task pages; got %v", res.Written)
	}
	planDir := filepath.Join(to, "plans", "week-2025-12-29")
	index, err := os.ReadFile(filepath.Join(planDir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), "(tasks/task-1.md)") || !strings.Contains(string(index), "_nothing due_") {
		t.Fatalf("unexpected index:\n%s", index)
	}
	if _, err := os.Stat(filepath.Join(planDir, "tasks", "task-4.md")); err != nil {
		t.Fatalf("stat task-4.md: %v", err)
	}

	if _, err := WriteSchedule(db, v, to, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "file exists") {
		t.Fatalf("expected refusal to overwrite; got %v", err)
	}
}
