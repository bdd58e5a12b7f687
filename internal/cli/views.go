package cli

import (
	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/records"

	"github.com/spf13/cobra"
)

func newViewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "views [view]",
		Short: "Show the filter sections configured per view",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := loadViews(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			names := filter.ViewNames(views)
			if len(args) == 1 {
				if _, err := viewSections(app, args[0]); err != nil {
					return writeErr(cmd, err)
				}
				names = []string{args[0]}
			}
			out := make(map[string][]filter.SectionSpec, len(names))
			for _, name := range names {
				specs := []filter.SectionSpec{}
				for _, s := range views[name] {
					specs = append(specs, filter.SpecOf(s))
				}
				out[name] = specs
			}
			return writeOut(cmd, app, format.Wrap(out).WithMeta("viewsPath", app.cfg.ViewsPath))
		},
	}
}

func newFacetsCmd(app *App) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "facets <view>",
		Short: "Show the valid options of every section of a view",
		Long: `Options are extracted from the full record set; the current selections only
change the match counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := args[0]
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sections, err := viewSections(app, view)
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := ff.state(sections)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := records.Query(db, view, sections, st)
			if err != nil {
				return writeErr(cmd, err)
			}
			type facet struct {
				ID       string   `json:"id"`
				Label    string   `json:"label"`
				Kind     string   `json:"kind"`
				Options  []string `json:"options"`
				Selected []string `json:"selected,omitempty"`
				Text     string   `json:"text,omitempty"`
			}
			out := make([]facet, 0, len(sections))
			for _, s := range sections {
				sel := st[s.SectionID()]
				opts := res.Options[s.SectionID()]
				if opts == nil {
					opts = []string{}
				}
				out = append(out, facet{
					ID:       s.SectionID(),
					Label:    s.Label(),
					Kind:     string(s.Kind()),
					Options:  opts,
					Selected: sel.Values,
					Text:     sel.Text,
				})
			}
			env := format.Wrap(out, "contentdesk "+view+" list --filter <section>=<option>").
				WithMeta("view", view).
				WithMeta("matched", res.Matched).
				WithMeta("total", res.Total)
			return writeOut(cmd, app, env)
		},
	}
	ff.bind(cmd)
	return cmd
}
