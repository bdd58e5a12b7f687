package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"
	"contentdesk/internal/store"

	"github.com/spf13/cobra"
)

func newEnquiriesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "enquiries",
		Aliases: []string{"enquiry"},
		Short:   "Prospective client enquiries and their conversation log",
	}
	cmd.AddCommand(newEnquiriesListCmd(app))
	cmd.AddCommand(newEnquiriesShowCmd(app))
	cmd.AddCommand(newEnquiriesCreateCmd(app))
	cmd.AddCommand(newEnquiriesSetStatusCmd(app))
	cmd.AddCommand(newEnquiriesLogCmd(app))
	return cmd
}

func newEnquiriesListCmd(app *App) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List enquiries (filterable by status, company, service)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, filter.ViewEnquiries, ff)
		},
	}
	ff.bind(cmd)
	return cmd
}

func findEnquiry(db *store.DB, ref string) (*model.Enquiry, error) {
	id, err := store.ParseID(store.KindEnquiry, ref)
	if err != nil {
		return nil, err
	}
	e, ok := db.FindEnquiry(id)
	if !ok {
		return nil, store.NotFoundError{Kind: store.KindEnquiry, ID: ref}
	}
	return e, nil
}

func newEnquiriesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <enquiry-id>",
		Short: "Show an enquiry with its conversation log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := findEnquiry(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(e, fmt.Sprintf("contentdesk enquiries log add %d --title \"...\"", e.ID)))
		},
	}
}

func newEnquiriesCreateCmd(app *App) *cobra.Command {
	var name, company, service, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a new enquiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			name = strings.TrimSpace(name)
			if name == "" {
				return writeErr(cmd, errors.New("missing --name"))
			}
			st, err := statusutil.NormalizeEnquiryStatus(status)
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
			now := time.Now().UTC()
			e := model.Enquiry{
				ID:        db.NextID(store.KindEnquiry),
				Name:      name,
				Company:   strings.TrimSpace(company),
				Service:   strings.TrimSpace(service),
				Status:    st,
				Log:       []model.ConversationLogEntry{},
				CreatedAt: now,
				UpdatedAt: now,
			}
			db.Enquiries = append(db.Enquiries, e)
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "enquiry.create", store.EnquiryEntityID(e.ID), map[string]any{"name": e.Name, "status": string(st)}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(e))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Contact name")
	cmd.Flags().StringVar(&company, "company", "", "Company")
	cmd.Flags().StringVar(&service, "service", "", "Requested service")
	cmd.Flags().StringVar(&status, "status", string(model.EnquiryJustConnected), "Status ("+strings.Join(statusutil.EnquiryStatusOptions(), "|")+")")
	return cmd
}

func newEnquiriesSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <enquiry-id> <status>",
		Short: "Move an enquiry through the pipeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.NormalizeEnquiryStatus(args[1])
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
			e, err := findEnquiry(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if e.Status != st {
				prev := e.Status
				e.Status = st
				e.UpdatedAt = time.Now().UTC()
				if err := s.Save(ctxOf(cmd), db); err != nil {
					return writeErr(cmd, err)
				}
				if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "enquiry.set_status", store.EnquiryEntityID(e.ID), map[string]any{"from": string(prev), "to": string(st)}); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, format.Wrap(e))
		},
	}
}

func newEnquiriesLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Conversation log entries",
	}

	var title, date, body string
	addCmd := &cobra.Command{
		Use:   "add <enquiry-id>",
		Short: "Append a conversation log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title = strings.TrimSpace(title)
			if title == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			anchor, err := parseAnchor(date)
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
			e, err := findEnquiry(db, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			entry := model.ConversationLogEntry{
				Title:  title,
				Date:   model.DateOf(anchor),
				Body:   body,
				Author: sess.ActorID,
			}
			e.Log = append(e.Log, entry)
			e.UpdatedAt = time.Now().UTC()
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent(ctxOf(cmd), sess.ActorID, "enquiry.log_add", store.EnquiryEntityID(e.ID), entry); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Wrap(e))
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "Entry title")
	addCmd.Flags().StringVar(&date, "date", "", "Entry date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVar(&body, "body", "", "Entry body (Markdown)")

	cmd.AddCommand(addCmd)
	return cmd
}
