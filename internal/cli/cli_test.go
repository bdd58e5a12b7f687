package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Hints []string        `json:"_hints"`
}

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// newDemoDir returns a store dir seeded with the demo data set.
func newDemoDir(t *testing.T) string {
	t.Helper()
	t.Setenv("CONTENTDESK_CONFIG_DIR", t.TempDir())
	t.Setenv("CONTENTDESK_ACTOR", "")
	t.Setenv("CONTENTDESK_FORMAT", "")
	dir := t.TempDir()
	if _, stderr, err := runCLI(t, []string{"--dir", dir, "init", "--demo"}); err != nil {
		t.Fatalf("init --demo: %v\nstderr:\n%s", err, string(stderr))
	}
	return dir
}

func mustRun(t *testing.T, args ...string) envelope {
	t.Helper()
	out, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("%v: %v\nstderr:\n%s", args, err, string(stderr))
	}
	var env envelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("unmarshal output: %v\nstdout:\n%s", err, string(out))
	}
	return env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, string(raw))
	}
	return v
}

func TestTasksList_Filters(t *testing.T) {
	dir := newDemoDir(t)

	tests := []struct {
		name string
		args []string
		want float64
	}{
		{name: "all", args: nil, want: 6},
		{name: "single status", args: []string{"--filter", "status=Pending"}, want: 3},
		{name: "status values OR", args: []string{"--filter", "status=Ready", "--filter", "status=Posted"}, want: 2},
		{name: "negation", args: []string{"--filter", "status=Not Pending"}, want: 3},
		{name: "brand", args: []string{"--filter", "brand_name=Acme Coffee"}, want: 2},
		{name: "sections AND", args: []string{"--filter", "brand_name=Acme Coffee", "--filter", "status=Ready"}, want: 1},
		{name: "search", args: []string{"--search", "LOOKBOOK"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--dir", dir, "tasks", "list"}, tt.args...)
			env := mustRun(t, args...)
			if env.Meta["matched"] != tt.want {
				t.Fatalf("expected matched=%v; got %v", tt.want, env.Meta["matched"])
			}
			if env.Meta["total"] != float64(6) {
				t.Fatalf("expected total=6; got %v", env.Meta["total"])
			}
			items := decode[[]map[string]any](t, env.Data)
			if float64(len(items)) != tt.want {
				t.Fatalf("expected %v items; got %d", tt.want, len(items))
			}
		})
	}
}

func TestTasksList_UnknownSectionIsAnError(t *testing.T) {
	dir := newDemoDir(t)
	_, stderr, err := runCLI(t, []string{"--dir", dir, "tasks", "list", "--filter", "color=red"})
	if err == nil {
		t.Fatalf("expected error for unknown section")
	}
	if !strings.Contains(string(stderr), "unknown filter section") {
		t.Fatalf("expected unknown section message; got %q", string(stderr))
	}
}

func TestTasksClaim_SavesAndAppendsEvent(t *testing.T) {
	dir := newDemoDir(t)

	env := mustRun(t, "--dir", dir, "--actor", "ben", "tasks", "claim", "5")
	if env.Meta["changed"] != true {
		t.Fatalf("expected changed=true; got %v", env.Meta["changed"])
	}
	task := decode[map[string]any](t, env.Data)
	claimant, _ := task["claimant"].(map[string]any)
	if claimant["id"] != "ben" || claimant["name"] != "Ben Clarke" {
		t.Fatalf("expected claimant ben; got %v", task["claimant"])
	}

	shown := decode[map[string]any](t, mustRun(t, "--dir", dir, "tasks", "show", "task-5").Data)
	if c, _ := shown["claimant"].(map[string]any); c["id"] != "ben" {
		t.Fatalf("expected claim to persist; got %v", shown["claimant"])
	}
	if shown["status"] != "Pending" {
		t.Fatalf("expected claim not to change status; got %v", shown["status"])
	}

	evs := decode[[]map[string]any](t, mustRun(t, "--dir", dir, "tasks", "events", "5").Data)
	if len(evs) != 1 || evs[0]["type"] != "task.claim" || evs[0]["actorId"] != "ben" {
		t.Fatalf("expected one task.claim event by ben; got %v", evs)
	}
}

func TestTasksClaim_HeldByAnotherActorIsNoop(t *testing.T) {
	dir := newDemoDir(t)

	// Task 6 is claimed by ana.
	env := mustRun(t, "--dir", dir, "--actor", "ben", "tasks", "claim", "6")
	if env.Meta["changed"] != false {
		t.Fatalf("expected changed=false; got %v", env.Meta["changed"])
	}
	evs := decode[[]map[string]any](t, mustRun(t, "--dir", dir, "tasks", "events", "6").Data)
	if len(evs) != 0 {
		t.Fatalf("expected no events; got %v", evs)
	}
}

func TestTasksConfirm_RequiresAdmin(t *testing.T) {
	dir := newDemoDir(t)

	env := mustRun(t, "--dir", dir, "--actor", "ben", "tasks", "confirm", "2")
	if env.Meta["changed"] != false {
		t.Fatalf("expected non-admin confirm to be a no-op; got %v", env.Meta["changed"])
	}
	if task := decode[map[string]any](t, env.Data); task["status"] != "Ready" {
		t.Fatalf("expected status Ready; got %v", task["status"])
	}

	env = mustRun(t, "--dir", dir, "--actor", "ana", "tasks", "confirm", "2")
	if env.Meta["changed"] != true {
		t.Fatalf("expected admin confirm to apply; got %v", env.Meta["changed"])
	}
	task := decode[map[string]any](t, env.Data)
	if task["status"] != "Confirmed" || task["confirmerId"] != "ana" {
		t.Fatalf("expected Confirmed by ana; got status=%v confirmer=%v", task["status"], task["confirmerId"])
	}
}

func TestTasksPostUnpost_RoundTrip(t *testing.T) {
	dir := newDemoDir(t)

	task := decode[map[string]any](t, mustRun(t, "--dir", dir, "tasks", "post", "1").Data)
	if task["status"] != "Posted" || task["posterId"] != "ana" {
		t.Fatalf("expected Posted by ana; got %v", task)
	}
	task = decode[map[string]any](t, mustRun(t, "--dir", dir, "tasks", "unpost", "1").Data)
	if task["status"] != "Pending" {
		t.Fatalf("expected Pending after unpost; got %v", task["status"])
	}
	if _, ok := task["postedAt"]; ok {
		t.Fatalf("expected postedAt cleared; got %v", task["postedAt"])
	}

	evs := decode[[]map[string]any](t, mustRun(t, "--dir", dir, "tasks", "events", "1").Data)
	if len(evs) != 2 || evs[0]["type"] != "task.post" || evs[1]["type"] != "task.unpost" {
		t.Fatalf("expected post then unpost events; got %v", evs)
	}
}

func TestTasksTransition_UnknownActor(t *testing.T) {
	dir := newDemoDir(t)
	_, stderr, err := runCLI(t, []string{"--dir", dir, "--actor", "ghost", "tasks", "claim", "1"})
	if err == nil {
		t.Fatalf("expected error for unknown actor")
	}
	if !strings.Contains(string(stderr), "actor not found: ghost") {
		t.Fatalf("expected actor not found; got %q", string(stderr))
	}
}

func TestTasksShow_NotFound(t *testing.T) {
	dir := newDemoDir(t)
	_, stderr, err := runCLI(t, []string{"--dir", dir, "tasks", "show", "99"})
	if err == nil || !strings.Contains(string(stderr), "task not found: 99") {
		t.Fatalf("expected task not found; got err=%v stderr=%q", err, string(stderr))
	}
}

func TestTasksCreate(t *testing.T) {
	dir := newDemoDir(t)

	env := mustRun(t, "--dir", dir, "tasks", "create",
		"--brand", "acme coffee", "--post-type", "Story", "--title", "Latte art",
		"--due", "2026-02-03", "--extra", "campaign=spring")
	task := decode[map[string]any](t, env.Data)
	if task["id"] != float64(7) || task["status"] != "Pending" || task["due"] != "2026-02-03" {
		t.Fatalf("unexpected task: %v", task)
	}
	if extra, _ := task["extra"].(map[string]any); extra["campaign"] != "spring" {
		t.Fatalf("expected extra campaign; got %v", task["extra"])
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "tasks", "create",
		"--brand", "Lumen Studio", "--post-type", "Reel", "--title", "x", "--due", "2026-02-03"})
	if err == nil || !strings.Contains(string(stderr), "inactive") {
		t.Fatalf("expected inactive brand error; got err=%v stderr=%q", err, string(stderr))
	}

	_, stderr, err = runCLI(t, []string{"--dir", dir, "tasks", "create",
		"--brand", "Acme Coffee", "--post-type", "Reel", "--title", "x", "--due", "03/02/2026"})
	if err == nil || !strings.Contains(string(stderr), "expected YYYY-MM-DD") {
		t.Fatalf("expected date error; got err=%v stderr=%q", err, string(stderr))
	}
}

func TestTasksSetDue_MovesInSchedule(t *testing.T) {
	dir := newDemoDir(t)

	mustRun(t, "--dir", dir, "tasks", "set-due", "5", "2030-06-15")
	env := mustRun(t, "--dir", dir, "schedule", "--granularity", "day", "--date", "2030-06-15")
	if env.Meta["total"] != float64(1) {
		t.Fatalf("expected one task on 2030-06-15; got %v", env.Meta["total"])
	}
	view := decode[map[string]any](t, env.Data)
	buckets, _ := view["buckets"].([]any)
	if len(buckets) != 1 {
		t.Fatalf("expected one day bucket; got %d", len(buckets))
	}
}

func TestSchedule_TodayAndOffset(t *testing.T) {
	dir := newDemoDir(t)
	today := time.Now().UTC().Format("2006-01-02")

	// Task 1 is due today; task 2 tomorrow.
	env := mustRun(t, "--dir", dir, "schedule", "--granularity", "day", "--date", today)
	if env.Meta["total"] != float64(1) {
		t.Fatalf("expected one task today; got %v", env.Meta["total"])
	}
	env = mustRun(t, "--dir", dir, "schedule", "--granularity", "day", "--date", today, "--offset", "1", "--filter", "status=Ready")
	if env.Meta["total"] != float64(1) {
		t.Fatalf("expected the Ready task tomorrow; got %v", env.Meta["total"])
	}
	if len(env.Hints) != 2 {
		t.Fatalf("expected prev/next hints; got %v", env.Hints)
	}

	_, _, err := runCLI(t, []string{"--dir", dir, "schedule", "--granularity", "year"})
	if err == nil {
		t.Fatalf("expected invalid granularity error")
	}
}

func TestFacets_OptionsFromFullSet(t *testing.T) {
	dir := newDemoDir(t)

	env := mustRun(t, "--dir", dir, "facets", "tasks", "--filter", "status=Posted")
	if env.Meta["matched"] != float64(1) {
		t.Fatalf("expected matched=1; got %v", env.Meta["matched"])
	}
	facets := decode[[]map[string]any](t, env.Data)
	byID := map[string]map[string]any{}
	for _, f := range facets {
		byID[f["id"].(string)] = f
	}
	brands, _ := byID["brand_name"]["options"].([]any)
	if len(brands) != 3 || brands[0] != "Acme Coffee" {
		t.Fatalf("expected all three brands sorted; got %v", brands)
	}
	if sel, _ := byID["status"]["selected"].([]any); len(sel) != 1 || sel[0] != "Posted" {
		t.Fatalf("expected status selection echoed; got %v", byID["status"]["selected"])
	}
	if opts, _ := byID["search"]["options"].([]any); len(opts) != 0 {
		t.Fatalf("expected no options for global search; got %v", opts)
	}
}

func TestViews_ListsSections(t *testing.T) {
	dir := newDemoDir(t)

	views := decode[map[string][]map[string]any](t, mustRun(t, "--dir", dir, "views").Data)
	if len(views) != 3 {
		t.Fatalf("expected three views; got %d", len(views))
	}
	if views["tasks"][0]["kind"] != "enumerated-checkbox" {
		t.Fatalf("expected status section first; got %v", views["tasks"][0])
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "views", "invoices"}); err == nil {
		t.Fatalf("expected unknown view error")
	}
}

func TestBrands_ServicesAndActive(t *testing.T) {
	dir := newDemoDir(t)

	b := decode[map[string]any](t, mustRun(t, "--dir", dir, "brands", "services", "add", "Acme Coffee", "Ads").Data)
	if svcs, _ := b["services"].([]any); len(svcs) != 3 {
		t.Fatalf("expected three services; got %v", b["services"])
	}
	b = decode[map[string]any](t, mustRun(t, "--dir", dir, "brands", "services", "remove", "1", "photography").Data)
	if svcs, _ := b["services"].([]any); len(svcs) != 2 {
		t.Fatalf("expected two services; got %v", b["services"])
	}

	env := mustRun(t, "--dir", dir, "brands", "list", "--filter", "services=Ads")
	if env.Meta["matched"] != float64(2) {
		t.Fatalf("expected two brands with Ads; got %v", env.Meta["matched"])
	}

	mustRun(t, "--dir", dir, "brands", "set-active", "Lumen Studio", "true")
	env = mustRun(t, "--dir", dir, "brands", "list", "--filter", "status=Inactive")
	if env.Meta["matched"] != float64(0) {
		t.Fatalf("expected no inactive brands; got %v", env.Meta["matched"])
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "--actor", "ben", "brands", "services", "add", "1", "Video"})
	if err == nil || !strings.Contains(string(stderr), "permission denied") {
		t.Fatalf("expected admin-only error; got err=%v stderr=%q", err, string(stderr))
	}
}

func TestEnquiries_LogAndStatus(t *testing.T) {
	dir := newDemoDir(t)

	e := decode[map[string]any](t, mustRun(t, "--dir", dir, "enquiries", "log", "add", "1",
		"--title", "Follow-up", "--date", "2026-01-05", "--body", "Sent *rates*.").Data)
	log, _ := e["log"].([]any)
	if len(log) != 2 {
		t.Fatalf("expected two log entries; got %v", e["log"])
	}
	last, _ := log[1].(map[string]any)
	if last["date"] != "2026-01-05" || last["author"] != "ana" {
		t.Fatalf("unexpected log entry: %v", last)
	}

	e = decode[map[string]any](t, mustRun(t, "--dir", dir, "enquiries", "set-status", "enquiry-1", "in-progress").Data)
	if e["status"] != "In Progress" {
		t.Fatalf("expected In Progress; got %v", e["status"])
	}

	env := mustRun(t, "--dir", dir, "enquiries", "list", "--filter", "status=In Progress")
	if env.Meta["matched"] != float64(1) {
		t.Fatalf("expected one in-progress enquiry; got %v", env.Meta["matched"])
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "enquiries", "set-status", "1", "Lost"}); err == nil {
		t.Fatalf("expected invalid status error")
	}
}

func TestActors_CreateAndUse(t *testing.T) {
	t.Setenv("CONTENTDESK_CONFIG_DIR", t.TempDir())
	t.Setenv("CONTENTDESK_ACTOR", "")
	dir := t.TempDir()

	a := decode[map[string]any](t, mustRun(t, "--dir", dir, "actors", "create", "--name", "Sam", "--use").Data)
	id, _ := a["id"].(string)
	if !strings.HasPrefix(id, "act-") || a["admin"] != true {
		t.Fatalf("expected generated admin actor; got %v", a)
	}
	mustRun(t, "--dir", dir, "actors", "create", "--id", "kim", "--name", "Kim")
	mustRun(t, "--dir", dir, "actors", "use", "kim")

	env := mustRun(t, "--dir", dir, "actors", "list")
	if env.Meta["currentActorId"] != "kim" {
		t.Fatalf("expected current actor kim; got %v", env.Meta["currentActorId"])
	}
	_, stderr, err := runCLI(t, []string{"--dir", dir, "actors", "create", "--name", "Eve", "--admin"})
	if err == nil || !strings.Contains(string(stderr), "permission denied") {
		t.Fatalf("expected non-admin to be refused; got err=%v stderr=%q", err, string(stderr))
	}
}

func TestFormat_EDN(t *testing.T) {
	dir := newDemoDir(t)

	out, stderr, err := runCLI(t, []string{"--dir", dir, "--format", "edn", "tasks", "show", "1"})
	if err != nil {
		t.Fatalf("tasks show: %v\nstderr:\n%s", err, string(stderr))
	}
	s := string(out)
	if !strings.Contains(s, ":data") || !strings.Contains(s, ":post-type") || !strings.Contains(s, ":_hints") {
		t.Fatalf("expected EDN keywords; got:\n%s", s)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "--format", "xml", "tasks", "list"}); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestPublish_TaskAndSchedule(t *testing.T) {
	dir := newDemoDir(t)
	to := t.TempDir()

	mustRun(t, "--dir", dir, "--actor", "ben", "tasks", "claim", "5")
	env := mustRun(t, "--dir", dir, "publish", "task", "task-5", "--to", to, "--history")
	res := decode[struct {
		Written []string `json:"written"`
	}](t, env.Data)
	if len(res.Written) != 1 {
		t.Fatalf("expected one page; got %v", res.Written)
	}
	b, err := os.ReadFile(res.Written[0])
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(b), "# Autumn lookbook") || !strings.Contains(string(b), "task.claim by ben") {
		t.Fatalf("unexpected page:\n%s", b)
	}

	env = mustRun(t, "--dir", dir, "publish", "schedule", "--granularity", "day", "--to", to)
	res = decode[struct {
		Written []string `json:"written"`
	}](t, env.Data)
	if len(res.Written) != 2 {
		t.Fatalf("expected index + today's task page; got %v", res.Written)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "publish", "task", "99", "--to", to}); err == nil {
		t.Fatalf("expected unknown task to fail")
	}
}

func TestDocs_TopicsAndRaw(t *testing.T) {
	newDemoDir(t)

	env := mustRun(t, "docs")
	topics := decode[struct {
		Topics []string `json:"topics"`
	}](t, env.Data)
	if len(topics.Topics) != 4 {
		t.Fatalf("expected 4 topics; got %v", topics.Topics)
	}

	out, _, err := runCLI(t, []string{"docs", "filters", "--raw"})
	if err != nil {
		t.Fatalf("docs filters --raw: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Filters") {
		t.Fatalf("expected raw markdown; got %q", out)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}

func TestTUIOptions_ResolvesSessionFromLoadedStore(t *testing.T) {
	dir := newDemoDir(t)

	app := &App{Dir: dir, ActorID: "ana"}
	opts, err := tuiOptions(&cobra.Command{}, app)
	t.Cleanup(func() { _ = app.log.Close() })
	if err != nil {
		t.Fatalf("tuiOptions: %v", err)
	}
	if opts.Store.Dir != dir {
		t.Fatalf("expected store dir %s; got %s", dir, opts.Store.Dir)
	}
	if opts.Session.ActorID != "ana" || !opts.Session.Admin {
		t.Fatalf("expected admin session for ana; got %+v", opts.Session)
	}
	if len(opts.Views["tasks"]) == 0 {
		t.Fatalf("expected default task sections")
	}

	// An unknown actor still opens the board, without an identity.
	ghost := &App{Dir: dir, ActorID: "ghost"}
	opts, err = tuiOptions(&cobra.Command{}, ghost)
	t.Cleanup(func() { _ = ghost.log.Close() })
	if err != nil {
		t.Fatalf("tuiOptions: %v", err)
	}
	if opts.Session.HasIdentity() {
		t.Fatalf("expected no identity for unknown actor; got %+v", opts.Session)
	}
}
