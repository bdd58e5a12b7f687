package cli

import (
	"errors"
	"strings"

	"contentdesk/internal/model"
	"contentdesk/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newActorsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actors",
		Aliases: []string{"actor"},
		Short:   "Manage local actors (who claims, confirms and posts)",
	}
	cmd.AddCommand(newActorsCreateCmd(app))
	cmd.AddCommand(newActorsListCmd(app))
	cmd.AddCommand(newActorsUseCmd(app))
	return cmd
}

func newActorsCreateCmd(app *App) *cobra.Command {
	var id string
	var name string
	var admin bool
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id = strings.TrimSpace(id)
			if id == "" {
				id = "act-" + uuid.NewString()[:8]
			}
			if _, ok := db.FindActor(id); ok {
				return writeErr(cmd, errors.New("actor already exists: "+id))
			}
			// The first actor of a store is its admin; after that only admins mint admins.
			if admin && len(db.Actors) > 0 {
				sess, err := sessionFor(app, db)
				if err != nil {
					return writeErr(cmd, err)
				}
				if !sess.Admin {
					return writeErr(cmd, errAdminOnly(sess.ActorID, "actors create --admin"))
				}
			}
			if len(db.Actors) == 0 {
				admin = true
			}

			actor := model.Actor{ID: id, Name: name, Admin: admin}
			db.Actors = append(db.Actors, actor)
			if use {
				db.CurrentActorID = actor.ID
			}
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent(ctxOf(cmd), actor.ID, "actor.create", actor.ID, map[string]any{"name": name, "admin": admin, "use": use}); err != nil {
				return writeErr(cmd, err)
			}
			app.log.Info("actor created", "actor", actor.ID, "admin", admin)
			return writeOut(cmd, app, map[string]any{"data": actor})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Actor id (default: generated act-xxxxxxxx)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin capability (confirm/unconfirm)")
	cmd.Flags().BoolVar(&use, "use", false, "Make this the store's current actor")
	return cmd
}

func newActorsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List actors",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": db.Actors,
				"meta": map[string]any{"currentActorId": db.CurrentActorID},
			})
		},
	}
}

func newActorsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <actor-id>",
		Short: "Set the store's current actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			a, ok := db.FindActor(id)
			if !ok {
				return writeErr(cmd, store.NotFoundError{Kind: "actor", ID: id})
			}
			db.CurrentActorID = a.ID
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": a})
		},
	}
}
