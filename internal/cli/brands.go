package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/model"
	"contentdesk/internal/perm"
	"contentdesk/internal/records"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newBrandsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "brands",
		Aliases: []string{"brand"},
		Short:   "Manage client brands and their services",
	}
	cmd.AddCommand(newBrandsListCmd(app))
	cmd.AddCommand(newBrandsShowCmd(app))
	cmd.AddCommand(newBrandsCreateCmd(app))
	cmd.AddCommand(newBrandsSetActiveCmd(app))
	cmd.AddCommand(newBrandsServicesCmd(app))
	return cmd
}

func newBrandsListCmd(app *App) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List brands (filterable by status and services)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, filter.ViewBrands, ff)
		},
	}
	ff.bind(cmd)
	return cmd
}

// runList prints one view's filtered records.
func runList(cmd *cobra.Command, app *App, view string, ff filterFlags) error {
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
	app.log.Debug("list", "view", view, "matched", res.Matched, "total", res.Total)
	env := format.Wrap(res.Items, "contentdesk facets "+view).
		WithMeta("matched", res.Matched).
		WithMeta("total", res.Total)
	return writeOut(cmd, app, env)
}

func newBrandsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <brand>",
		Short: "Show a brand by id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := db.ResolveBrand(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(b, fmt.Sprintf("contentdesk tasks list --filter brand_name=%q", b.Name)))
		},
	}
}

func newBrandsCreateCmd(app *App) *cobra.Command {
	var name, contact, email, phone string
	var services []string
	var inactive bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a brand (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			db, s, sess, err := loadAdmin(cmd, app, "brands create")
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := db.FindBrandByName(name); ok {
				return writeErr(cmd, errors.New("brand already exists: "+name))
			}
			now := time.Now().UTC()
			b := model.Brand{
				ID:          db.NextID(store.KindBrand),
				Name:        name,
				Active:      !inactive,
				ContactName: strings.TrimSpace(contact),
				Email:       strings.TrimSpace(email),
				Phone:       strings.TrimSpace(phone),
				Services:    []model.Service{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			for _, sv := range services {
				if err := addService(db, &b, sv); err != nil {
					return writeErr(cmd, err)
				}
			}
			db.Brands = append(db.Brands, b)
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "brand.create", store.BrandEntityID(b.ID), map[string]any{"name": b.Name, "active": b.Active}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(b, fmt.Sprintf("contentdesk brands services add %d <service>", b.ID)))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Brand name")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact person")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	cmd.Flags().StringVar(&phone, "phone", "", "Contact phone")
	cmd.Flags().StringArrayVar(&services, "service", nil, "Service offered to the brand (repeatable)")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the brand as inactive")
	return cmd
}

func newBrandsSetActiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-active <brand> <true|false>",
		Short: "Activate or deactivate a brand (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := strconv.ParseBool(strings.TrimSpace(args[1]))
			if err != nil {
				return writeErr(cmd, fmt.Errorf("invalid active flag %q (expected true|false)", args[1]))
			}
			db, s, sess, err := loadAdmin(cmd, app, "brands set-active")
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := db.ResolveBrand(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if b.Active != active {
				b.Active = active
				b.UpdatedAt = time.Now().UTC()
				if err := s.Save(ctxOf(cmd), db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "brand.set_active", store.BrandEntityID(b.ID), map[string]any{"active": active}); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, format.Wrap(b))
		},
	}
}

func newBrandsServicesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage the services a brand receives",
	}

	addCmd := &cobra.Command{
		Use:   "add <brand> <service-name>",
		Short: "Add a service to a brand (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editServices(cmd, app, args[0], "brand.service_add", func(db *store.DB, b *model.Brand) error {
				return addService(db, b, args[1])
			})
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <brand> <service-id|name>",
		Short: "Remove a service from a brand (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editServices(cmd, app, args[0], "brand.service_remove", func(db *store.DB, b *model.Brand) error {
				return removeService(b, args[1])
			})
		},
	}

	cmd.AddCommand(addCmd, removeCmd)
	return cmd
}

func editServices(cmd *cobra.Command, app *App, ref, eventType string, edit func(*store.DB, *model.Brand) error) error {
	db, s, sess, err := loadAdmin(cmd, app, "brands services")
	if err != nil {
		return writeErr(cmd, err)
	}
	b, err := db.ResolveBrand(ref)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := edit(db, b); err != nil {
		return writeErr(cmd, err)
	}
	b.UpdatedAt = time.Now().UTC()
	if err := s.Save(ctxOf(cmd), db); err != nil {
		return writeErr(cmd, err)
	}
	if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, eventType, store.BrandEntityID(b.ID), map[string]any{"services": b.Services}); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, format.Wrap(b))
}

func addService(db *store.DB, b *model.Brand, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty service name")
	}
	for _, sv := range b.Services {
		if strings.EqualFold(sv.Name, name) {
			return fmt.Errorf("brand %s already has service %s", b.Name, sv.Name)
		}
	}
	b.Services = append(b.Services, model.Service{ID: db.NextID(store.KindService), Name: name})
	return nil
}

func removeService(b *model.Brand, ref string) error {
	ref = strings.TrimSpace(ref)
	id, idErr := strconv.ParseInt(ref, 10, 64)
	for i, sv := range b.Services {
		if (idErr == nil && sv.ID == id) || strings.EqualFold(sv.Name, ref) {
			b.Services = append(b.Services[:i], b.Services[i+1:]...)
			return nil
		}
	}
	return store.NotFoundError{Kind: store.KindService, ID: ref}
}

// loadAdmin loads the store and requires the acting actor to be an admin.
func loadAdmin(cmd *cobra.Command, app *App, action string) (*store.DB, store.Store, perm.Session, error) {
	db, s, err := loadDB(cmd, app)
	if err != nil {
		return nil, s, perm.Session{}, err
	}
	sess, err := sessionFor(app, db)
	if err != nil {
		return nil, s, perm.Session{}, err
	}
	if !sess.Admin {
		return nil, s, sess, errAdminOnly(sess.ActorID, action)
	}
	return db, s, sess, nil
}
