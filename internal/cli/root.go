package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/logging"
	"contentdesk/internal/perm"
	"contentdesk/internal/store"
	"contentdesk/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ActorID    string
	PrettyJSON bool
	Format     string

	cfg   store.Config
	views map[string][]filter.Section
	log   *logging.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "contentdesk",
		Short:        "contentdesk (local-first) content task desk: CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  contentdesk

  # Scriptable commands
  contentdesk tasks list --filter status=Pending
  contentdesk schedule --granularity week

  # Direct task lookup (shortcut for: contentdesk tasks show 12)
  contentdesk task-12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		if _, err := format.Normalize(app.Format); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.log.Close()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CONTENTDESK_DIR", ""), "Path to store dir (default: nearest .contentdesk, then ~/.contentdesk)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("CONTENTDESK_ACTOR", ""), "Actor id (overrides config and the store's current actor)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CONTENTDESK_FORMAT", "json"), "Output format (json|edn)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newActorsCmd(app))
	cmd.AddCommand(newPostTypesCmd(app))
	cmd.AddCommand(newBrandsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newEnquiriesCmd(app))
	cmd.AddCommand(newViewsCmd(app))
	cmd.AddCommand(newFacetsCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	opts, err := tuiOptions(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(opts)
}

func tuiOptions(cmd *cobra.Command, app *App) (tui.Options, error) {
	db, s, err := loadDB(cmd, app)
	if err != nil {
		return tui.Options{}, err
	}
	views, err := loadViews(app)
	if err != nil {
		return tui.Options{}, err
	}
	// The board can run without an identity; claim and the other gated transitions
	// are then no-ops.
	sess, _ := sessionFor(app, db)
	return tui.Options{
		Store:   s,
		Session: sess,
		Policy:  app.cfg.Policy,
		Views:   views,
		Config:  app.cfg,
		Log:     app.log,
	}, nil
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if d := strings.TrimSpace(app.cfg.DBDir); d != "" {
		app.Dir = d
		return d, nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func loadDB(cmd *cobra.Command, app *App) (*store.DB, store.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	s := store.Store{Dir: dir}
	if app.log == nil {
		// Logging is best-effort; a nil logger discards.
		app.log, _ = logging.New(dir, app.cfg.LogLevel)
	}
	db, err := s.Load(ctxOf(cmd))
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

func loadViews(app *App) (map[string][]filter.Section, error) {
	if app.views != nil {
		return app.views, nil
	}
	views, err := filter.LoadViews(app.cfg.ViewsPath)
	if err != nil {
		return nil, err
	}
	app.views = views
	return views, nil
}

func viewSections(app *App, view string) ([]filter.Section, error) {
	views, err := loadViews(app)
	if err != nil {
		return nil, err
	}
	sections, ok := views[view]
	if !ok {
		return nil, fmt.Errorf("unknown view: %s (expected one of %s)", view, strings.Join(filter.ViewNames(views), ", "))
	}
	return sections, nil
}

func currentActorID(app *App, db *store.DB) (string, error) {
	if app.ActorID != "" {
		return app.ActorID, nil
	}
	if a := strings.TrimSpace(app.cfg.Actor); a != "" {
		return a, nil
	}
	if db.CurrentActorID != "" {
		return db.CurrentActorID, nil
	}
	return "", errNoActor
}

func sessionFor(app *App, db *store.DB) (perm.Session, error) {
	actorID, err := currentActorID(app, db)
	if err != nil {
		return perm.Session{}, err
	}
	a, ok := db.FindActor(actorID)
	if !ok {
		return perm.Session{}, store.NotFoundError{Kind: "actor", ID: actorID}
	}
	return perm.Session{ActorID: a.ID, ActorName: a.Name, Admin: a.Admin}, nil
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
