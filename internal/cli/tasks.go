package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/model"
	"contentdesk/internal/mutate"
	"contentdesk/internal/records"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Content tasks: list, create and move through the lifecycle",
		Long: strings.TrimSpace(`
A task's status is derived from its lifecycle fields, first match wins:
posted -> Posted, confirmed -> Confirmed, readied -> Ready, otherwise Pending.
`),
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksSetDueCmd(app))
	cmd.AddCommand(newTasksEventsCmd(app))
	for _, name := range mutate.Transitions {
		cmd.AddCommand(newTaskTransitionCmd(app, name))
	}
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (filterable by status, brand, post type, claimant)",
		Example: strings.TrimSpace(`
contentdesk tasks list --filter status=Pending --filter status=Ready
contentdesk tasks list --filter "brand_name=Acme Coffee" --search teaser
contentdesk tasks list --filter "status=Not Posted"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, filter.ViewTasks, ff)
		},
	}
	ff.bind(cmd)
	return cmd
}

func findTask(db *store.DB, ref string) (*model.ContentTask, error) {
	id, err := store.ParseID(store.KindTask, ref)
	if err != nil {
		return nil, err
	}
	t, ok := db.FindTask(id)
	if !ok {
		return nil, store.NotFoundError{Kind: store.KindTask, ID: ref}
	}
	return t, nil
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <task-id>",
		Aliases: []string{"get"},
		Short:   "Show a task with its derived status",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := findTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var hints []string
			if sess, err := sessionFor(app, db); err == nil {
				d := mutate.NewDraft(*t, sess, app.cfg.Policy)
				for _, name := range mutate.Transitions {
					if d.Allowed(name) {
						hints = append(hints, fmt.Sprintf("contentdesk tasks %s %d", name, t.ID))
					}
				}
			}
			hints = append(hints, fmt.Sprintf("contentdesk tasks events %d", t.ID))
			return writeOut(cmd, app, format.Wrap(records.ViewOf(*t), hints...))
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var brandRef, postTypeRef, title, due, description, assetURL string
	var extras []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task for an active brand",
		Example: strings.TrimSpace(`
contentdesk tasks create --brand "Acme Coffee" --post-type Reel --title "Spring teaser" --due 2026-03-02
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			d, err := parseDate(due)
			if err != nil {
				return writeErr(cmd, err)
			}
			extra, err := parseExtras(extras)
			if err != nil {
				return writeErr(cmd, err)
			}

			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := sessionFor(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := db.ResolveBrand(brandRef)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !b.Active {
				names := []string{}
				for _, ab := range db.ActiveBrands() {
					names = append(names, ab.Name)
				}
				return writeErr(cmd, fmt.Errorf("brand %s is inactive (active brands: %s)", b.Name, strings.Join(names, ", ")))
			}
			pt, err := db.ResolvePostType(postTypeRef)
			if err != nil {
				return writeErr(cmd, err)
			}

			now := time.Now().UTC()
			t := model.ContentTask{
				ID:          db.NextID(store.KindTask),
				Brand:       model.Ref{ID: b.ID, Name: b.Name},
				PostType:    model.Ref{ID: pt.ID, Name: pt.Name},
				Title:       title,
				Description: description,
				AssetURL:    strings.TrimSpace(assetURL),
				Due:         d,
				Extra:       extra,
				CreatedBy:   sess.ActorID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			db.Tasks = append(db.Tasks, t)
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "task.create", store.TaskEntityID(t.ID), map[string]any{"title": t.Title, "brand": b.Name, "due": string(d)}); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("task created", "task", t.ID, "brand", b.Name)
			return writeOut(cmd, app, format.Wrap(records.ViewOf(t), fmt.Sprintf("contentdesk tasks claim %d", t.ID)))
		},
	}
	cmd.Flags().StringVar(&brandRef, "brand", "", "Brand id or name")
	cmd.Flags().StringVar(&postTypeRef, "post-type", "", "Post type id or name")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "Description (Markdown)")
	cmd.Flags().StringVar(&assetURL, "asset-url", "", "Link to the asset")
	cmd.Flags().StringArrayVar(&extras, "extra", nil, "Extended property key=value (repeatable, e.g. campaign=spring)")
	return cmd
}

func parseExtras(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --extra %q (expected key=value)", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

func newTasksSetDueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-due <task-id> <YYYY-MM-DD>",
		Short: "Move a task to another due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDate(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess, err := sessionFor(app, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := findTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if t.Due != d {
				prev := t.Due
				t.Due = d
				t.UpdatedAt = time.Now().UTC()
				if err := s.SaveTask(ctxOf(cmd), *t); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "task.set_due", store.TaskEntityID(t.ID), map[string]any{"from": string(prev), "to": string(d)}); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, format.Wrap(records.ViewOf(*t)))
		},
	}
}

func newTasksEventsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events <task-id>",
		Short: "List a task's events (oldest-first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := findTask(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			evs, err := s.Events(ctxOf(cmd), store.TaskEntityID(t.ID), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(evs))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return, newest kept (0 = all)")
	return cmd
}
