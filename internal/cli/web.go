package cli

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"contentdesk/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the read-only JSON API",
		Long: strings.TrimSpace(`
Serve views, facets, records and the schedule as JSON from a local HTTP server.

The API is read-only; every request reads the store fresh, so CLI and TUI writes
show up without a restart.
`),
		Example: strings.TrimSpace(`
contentdesk web --addr 127.0.0.1:3335
curl 'http://127.0.0.1:3335/api/tasks?status=Pending&q=teaser'
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}
			views, err := loadViews(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Opens the log file under dir.
			if _, _, err := loadDB(cmd, app); err != nil {
				return writeErr(cmd, err)
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:  listenAddr,
				Dir:   dir,
				Views: views,
				Log:   app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			url := "http://" + ln.Addr().String() + "/"
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr": ln.Addr().String(),
					"url":  url,
					"dir":  dir,
				},
				"_hints": []string{"curl " + url + "api/views"},
			})
			app.log.Info("web: listening", "addr", ln.Addr().String(), "dir", dir)

			ctx, stop := signal.NotifyContext(ctxOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Serve(ctx, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("CONTENTDESK_WEB_ADDR", "127.0.0.1:3335"), "Listen address")
	return cmd
}
