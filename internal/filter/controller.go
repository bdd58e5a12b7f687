package filter

import "strings"

// Controller owns the live filter state of one view and notifies a single subscriber
// after every mutation. It is not safe for concurrent use; each view owns its own.
type Controller struct {
	sections   []Section
	state      State
	subscriber func(State)
}

func NewController(sections []Section) *Controller {
	c := &Controller{}
	c.SetSections(sections)
	return c
}

// Subscribe replaces the subscriber. fn receives a copy of the state.
func (c *Controller) Subscribe(fn func(State)) {
	c.subscriber = fn
}

func (c *Controller) Sections() []Section {
	return append([]Section(nil), c.sections...)
}

// SetSections switches the controller to a new section configuration. Selections for
// sections that no longer exist are dropped.
func (c *Controller) SetSections(sections []Section) {
	c.sections = append([]Section(nil), sections...)
	next := State{}
	for _, s := range c.sections {
		if sel, ok := c.state[s.SectionID()]; ok {
			next[s.SectionID()] = sel.clone()
		}
	}
	c.state = next
	c.emit()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.Clone()
}

// ToggleValue adds value to a checkbox section's selection, or removes it when present.
func (c *Controller) ToggleValue(sectionID, value string) {
	value = strings.TrimSpace(value)
	s, ok := FindSection(c.sections, sectionID)
	if ok && IsCheckbox(s) && value != "" {
		id := s.SectionID()
		sel := c.state[id].clone()
		if sel.Has(value) {
			kept := sel.Values[:0]
			for _, v := range sel.Values {
				if v != value {
					kept = append(kept, v)
				}
			}
			sel.Values = kept
		} else {
			sel.Values = append(sel.Values, value)
		}
		c.put(id, sel)
	}
	c.emit()
}

// SetText sets the query of a global-search section.
func (c *Controller) SetText(sectionID, text string) {
	if s, ok := FindSection(c.sections, sectionID); ok && s.Kind() == KindGlobalSearch {
		c.put(s.SectionID(), Selection{Text: text})
	}
	c.emit()
}

func (c *Controller) ClearSection(sectionID string) {
	delete(c.state, strings.TrimSpace(sectionID))
	c.emit()
}

// ClearAll empties every section regardless of kind.
func (c *Controller) ClearAll() {
	c.state = State{}
	c.emit()
}

func (c *Controller) put(id string, sel Selection) {
	if sel.IsEmpty() {
		delete(c.state, id)
		return
	}
	c.state[id] = sel
}

func (c *Controller) emit() {
	if c.subscriber != nil {
		c.subscriber(c.state.Clone())
	}
}
