package cli

import (
	"errors"
	"strings"

	"contentdesk/internal/model"
	"contentdesk/internal/publish"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool
	var history bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Export derived Markdown pages (not canonical)",
	}

	// taskEvents collects the history rendered on each task page.
	taskEvents := func(cmd *cobra.Command, s store.Store, ids []int64) (map[int64][]model.Event, error) {
		if !history {
			return nil, nil
		}
		out := map[int64][]model.Event{}
		for _, id := range ids {
			evs, err := s.Events(ctxOf(cmd), store.TaskEntityID(id), 200)
			if err != nil {
				return nil, err
			}
			out[id] = evs
		}
		return out, nil
	}

	taskCmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Publish a single task brief as Markdown",
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
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			events, err := taskEvents(cmd, s, []int64{t.ID})
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteTask(db, t.ID, toDir, publish.WriteOptions{Overwrite: overwrite, Events: events})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res,
				"_hints": []string{"contentdesk tasks show " + args[0]},
			})
		},
	}

	var sf scheduleFlags
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Publish a content plan (index + task pages) for a day, week or month",
		RunE: func(cmd *cobra.Command, args []string) error {
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			v, db, s, err := sf.project(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var ids []int64
			for _, b := range v.Buckets {
				for _, t := range b.Tasks {
					ids = append(ids, t.ID)
				}
			}
			events, err := taskEvents(cmd, s, ids)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteSchedule(db, v, toDir, publish.WriteOptions{Overwrite: overwrite, Events: events})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"_hints": []string{
					"contentdesk schedule --granularity " + string(v.Granularity) + " --date " + string(v.Anchor),
				},
			})
		},
	}
	sf.bind(scheduleCmd)

	cmd.PersistentFlags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkPersistentFlagRequired("to")
	cmd.PersistentFlags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	cmd.PersistentFlags().BoolVar(&history, "history", false, "Include each task's event history")

	cmd.AddCommand(taskCmd)
	cmd.AddCommand(scheduleCmd)
	return cmd
}
