package cli

import (
	"errors"
	"strings"
	"time"

	"contentdesk/internal/model"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newPostTypesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "post-types",
		Aliases: []string{"post-type"},
		Short:   "Manage post types (Reel, Carousel, ...)",
	}

	var name string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post type (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			db, s, _, err := loadAdmin(cmd, app, "post-types create")
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := db.FindPostTypeByName(name); ok {
				return writeErr(cmd, errors.New("post type already exists: "+name))
			}
			pt := model.PostType{ID: db.NextID(store.KindPostType), Name: name, CreatedAt: time.Now().UTC()}
			db.PostTypes = append(db.PostTypes, pt)
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": pt})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Post type name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List post types",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": db.PostTypes})
		},
	}

	cmd.AddCommand(createCmd, listCmd)
	return cmd
}
