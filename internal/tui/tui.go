package tui

import (
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/logging"
	"contentdesk/internal/perm"
	"contentdesk/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Store   store.Store
	Session perm.Session
	Policy  perm.Policy
	Views   map[string][]filter.Section
	Config  store.Config
	Log     *logging.Logger

	// Now is the board's clock; nil means time.Now.
	Now func() time.Time
}

// Run opens the board and blocks until the user quits.
func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Config.TUI.Theme)

	m := newModel(opts)
	defer m.loader.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if serr := m.persistState(); serr != nil {
		m.log().Warn("tui: save state", "err", serr)
	}
	return err
}
