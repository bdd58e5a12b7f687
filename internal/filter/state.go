package filter

import "strings"

// Selection is the chosen value set of a checkbox section or the query of a
// global-search section. Order within Values carries no meaning.
type Selection struct {
	Values []string `json:"values,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// State maps section id to its selection.
type State map[string]Selection

func (sel Selection) Has(v string) bool {
	for _, x := range sel.Values {
		if x == v {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the selection imposes no constraint.
func (sel Selection) IsEmpty() bool {
	return len(sel.Values) == 0 && strings.TrimSpace(sel.Text) == ""
}

func (sel Selection) clone() Selection {
	out := Selection{Text: sel.Text}
	if len(sel.Values) > 0 {
		out.Values = append([]string(nil), sel.Values...)
	}
	return out
}

func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}

// IsEmpty reports whether no section constrains the result.
func (s State) IsEmpty() bool {
	for _, sel := range s {
		if !sel.IsEmpty() {
			return false
		}
	}
	return true
}
