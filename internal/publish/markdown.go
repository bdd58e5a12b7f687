package publish

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"contentdesk/internal/model"
	"contentdesk/internal/schedule"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"
)

type RenderOptions struct {
	// Events, when set, are rendered as the task's history section.
	Events []model.Event
}

func RenderTaskMarkdown(db *store.DB, taskID int64, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	t, ok := db.FindTask(taskID)
	if !ok || t == nil {
		return "", store.NotFoundError{Kind: "task", ID: fmt.Sprint(taskID)}
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(t.Title))
	writeLn("")
	writeLn("## Meta")
	writeLn("")
	writeLn(fmt.Sprintf("- ID: %d", t.ID))
	writeLn("- Brand: " + t.Brand.Name)
	writeLn("- Post type: " + t.PostType.Name)
	writeLn("- Due: " + string(t.Due))
	writeLn("- Status: " + string(statusutil.Derive(*t)))
	if t.Claimant != nil {
		writeLn("- Claimed by: " + t.Claimant.Name)
	}
	if t.ReadiedAt != nil {
		writeLn("- Ready: " + formatTime(*t.ReadiedAt))
	}
	if t.ConfirmedAt != nil {
		writeLn("- Confirmed: " + formatTime(*t.ConfirmedAt) + byActor(t.ConfirmerID))
	}
	if t.PostedAt != nil {
		writeLn("- Posted: " + formatTime(*t.PostedAt) + byActor(t.PosterID))
	}
	if strings.TrimSpace(t.AssetURL) != "" {
		writeLn("- Asset: <" + strings.TrimSpace(t.AssetURL) + ">")
	}
	if len(t.Extra) > 0 {
		keys := make([]string, 0, len(t.Extra))
		for k := range t.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeLn("- " + k + ": " + t.Extra[k])
		}
	}
	writeLn("- Updated: " + formatTime(t.UpdatedAt))

	if desc := strings.TrimSpace(t.Description); desc != "" {
		writeLn("")
		writeLn("## Description")
		writeLn("")
		writeLn(desc)
	}

	if len(opt.Events) > 0 {
		evs := append([]model.Event(nil), opt.Events...)
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].TS.Before(evs[j].TS) })
		writeLn("")
		writeLn("## History")
		writeLn("")
		for _, ev := range evs {
			who := ev.ActorID
			if who == "" {
				who = "unknown"
			}
			writeLn("- " + formatTime(ev.TS) + " " + ev.Type + " by " + who)
		}
	}

	return buf.String(), nil
}

// RenderScheduleMarkdown renders a content plan page linking each task page under
// tasks/.
func RenderScheduleMarkdown(v schedule.View) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Content plan: %s %s to %s\n\n", v.Granularity, v.Start, v.End)
	fmt.Fprintf(&buf, "%d task(s)\n", v.Total())
	for _, b := range v.Buckets {
		if len(b.Tasks) == 0 && v.Granularity == schedule.Month {
			continue
		}
		day := string(b.Date)
		if t, ok := b.Date.Time(); ok {
			day = t.Format("Monday 2006-01-02")
		}
		fmt.Fprintf(&buf, "\n## %s\n\n", day)
		if len(b.Tasks) == 0 {
			buf.WriteString("_nothing due_\n")
			continue
		}
		for _, t := range b.Tasks {
			fmt.Fprintf(&buf, "- [%s](tasks/%s.md) %s, %s (%s)\n",
				strings.TrimSpace(t.Title), taskFileName(t.ID), t.Brand.Name, t.PostType.Name, statusutil.Derive(t))
		}
	}
	return buf.String()
}

func taskFileName(id int64) string { return store.TaskEntityID(id) }

func byActor(id *string) string {
	if id == nil || strings.TrimSpace(*id) == "" {
		return ""
	}
	return " by " + strings.TrimSpace(*id)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
