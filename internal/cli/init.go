package cli

import (
	"path/filepath"
	"time"

	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			seeded := false
			if demo {
				if len(db.Tasks) > 0 || len(db.Brands) > 0 {
					app.log.Warn("init: store not empty; skipping demo seed", "dir", s.Dir)
				} else {
					store.Seed(db, time.Now().UTC())
					seeded = true
				}
			}
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}

			// Make sure a config file exists so the knobs are discoverable.
			cfgPath, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := store.LoadOrCreate(cfgPath); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("init", "dir", s.Dir, "demo", seeded)

			hints := []string{"contentdesk actors create --name \"...\" --admin --use"}
			if seeded {
				hints = []string{"contentdesk tasks list", "contentdesk schedule"}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        s.Dir,
					"sqlitePath": filepath.Join(s.Dir, "contentdesk.sqlite"),
					"configPath": cfgPath,
					"seeded":     seeded,
				},
				"_hints": hints,
			})
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "Seed demo actors, brands, tasks and enquiries into an empty store")
	return cmd
}
