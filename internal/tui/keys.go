package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Focus     key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	Search    key.Binding
	Narrow    key.Binding
	Clear     key.Binding
	ClearAll  key.Binding
	ViewNext  key.Binding
	Schedule  key.Binding
	Gran      key.Binding
	Prev      key.Binding
	Next      key.Binding
	Today     key.Binding
	Detail    key.Binding
	Refresh   key.Binding
	Save      key.Binding
	Claim     key.Binding
	Unclaim   key.Binding
	Ready     key.Binding
	Confirm   key.Binding
	Unconfirm key.Binding
	Post      key.Binding
	Unpost    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "facets/list")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Narrow:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "find option")),
		Clear:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear section")),
		ClearAll:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),
		ViewNext:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "next view")),
		Schedule:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "schedule")),
		Gran:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "day/week/month")),
		Prev:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous")),
		Next:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Detail:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "detail")),
		Refresh:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Claim:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "claim")),
		Unclaim:   key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "unclaim")),
		Ready:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "ready on/off")),
		Confirm:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "confirm")),
		Unconfirm: key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "unconfirm")),
		Post:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "post")),
		Unpost:    key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "unpost")),
	}
}

// ShortHelp and FullHelp satisfy help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Toggle, k.Search, k.Schedule, k.Claim, k.Ready, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Toggle, k.Search, k.Narrow, k.Clear, k.ClearAll, k.ViewNext},
		{k.Schedule, k.Gran, k.Prev, k.Next, k.Today, k.Detail, k.Refresh},
		{k.Claim, k.Unclaim, k.Ready, k.Confirm, k.Unconfirm, k.Post, k.Unpost, k.Save, k.Quit},
	}
}
