package cli

import (
	"strings"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/model"
	"contentdesk/internal/records"
	"contentdesk/internal/schedule"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

// scheduleFlags are shared by `schedule` and `publish schedule`.
type scheduleFlags struct {
	granularity string
	date        string
	offset      int
	filters     filterFlags
}

func (f *scheduleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.granularity, "granularity", "", "day|week|month (default from config)")
	cmd.Flags().StringVar(&f.date, "date", "", "Anchor date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&f.offset, "offset", 0, "Move the anchor by n days/weeks/months")
	f.filters.bind(cmd)
}

// project loads the store and buckets the filtered tasks around the moved anchor.
func (f *scheduleFlags) project(cmd *cobra.Command, app *App) (schedule.View, *store.DB, store.Store, error) {
	granularity := f.granularity
	if granularity == "" {
		granularity = app.cfg.TUI.Granularity
	}
	g, err := schedule.ParseGranularity(granularity)
	if err != nil {
		return schedule.View{}, nil, store.Store{}, err
	}
	anchor, err := parseAnchor(f.date)
	if err != nil {
		return schedule.View{}, nil, store.Store{}, err
	}
	db, s, err := loadDB(cmd, app)
	if err != nil {
		return schedule.View{}, nil, store.Store{}, err
	}
	sections, err := viewSections(app, filter.ViewTasks)
	if err != nil {
		return schedule.View{}, nil, store.Store{}, err
	}
	st, err := f.filters.state(sections)
	if err != nil {
		return schedule.View{}, nil, store.Store{}, err
	}

	anchor = schedule.Advance(anchor, g, f.offset)
	return schedule.Project(records.FilterTasks(db, sections, st), g, anchor), db, s, nil
}

func newScheduleCmd(app *App) *cobra.Command {
	var sf scheduleFlags

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Project filtered tasks onto day/week/month buckets",
		Example: strings.TrimSpace(`
contentdesk schedule
contentdesk schedule --granularity month --date 2026-02-01
contentdesk schedule --offset -1 --filter status=Pending
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, _, err := sf.project(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			anchor, _ := v.Anchor.Time()
			prev := schedule.Advance(anchor, v.Granularity, -1)
			next := schedule.Advance(anchor, v.Granularity, 1)
			env := format.Wrap(v,
				"contentdesk schedule --granularity "+string(v.Granularity)+" --date "+string(model.DateOf(prev)),
				"contentdesk schedule --granularity "+string(v.Granularity)+" --date "+string(model.DateOf(next)),
			).WithMeta("total", v.Total())
			return writeOut(cmd, app, env)
		},
	}
	sf.bind(cmd)
	return cmd
}
