package web

import (
	"strconv"
	"strings"
	"time"

	"contentdesk/internal/filter"
	"contentdesk/internal/format"
	"contentdesk/internal/model"
	"contentdesk/internal/records"
	"contentdesk/internal/schedule"
	"contentdesk/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) load(c *fiber.Ctx) (*store.DB, error) {
	return s.store.Load(c.UserContext())
}

func (s *Server) sections(view string) ([]filter.Section, error) {
	sections, ok := s.cfg.Views[view]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown view: "+view)
	}
	return sections, nil
}

// stateFromQuery reads one selection per section: repeated ?<section>=v params for
// checkbox sections, ?<section>=text (or ?q=text) for global search.
func stateFromQuery(c *fiber.Ctx, sections []filter.Section) filter.State {
	args := c.Context().QueryArgs()
	st := filter.State{}
	for _, sec := range sections {
		id := sec.SectionID()
		if filter.IsCheckbox(sec) {
			var sel filter.Selection
			for _, raw := range args.PeekMulti(id) {
				v := strings.TrimSpace(string(raw))
				if v != "" && !sel.Has(v) {
					sel.Values = append(sel.Values, v)
				}
			}
			if !sel.IsEmpty() {
				st[id] = sel
			}
			continue
		}
		if sec.Kind() == filter.KindGlobalSearch {
			if text := strings.TrimSpace(c.Query(id)); text != "" {
				st[id] = filter.Selection{Text: text}
			}
		}
	}
	if q := c.Query("q"); strings.TrimSpace(q) != "" {
		st = filter.WithSearch(sections, st, q)
	}
	return st
}

func (s *Server) handleViews(c *fiber.Ctx) error {
	out := map[string][]filter.SectionSpec{}
	for name, sections := range s.cfg.Views {
		specs := make([]filter.SectionSpec, 0, len(sections))
		for _, sec := range sections {
			specs = append(specs, filter.SpecOf(sec))
		}
		out[name] = specs
	}
	return c.JSON(format.Wrap(out))
}

func (s *Server) handleList(c *fiber.Ctx) error {
	view := c.Params("view")
	sections, err := s.sections(view)
	if err != nil {
		return err
	}
	db, err := s.load(c)
	if err != nil {
		return err
	}
	res, err := records.Query(db, view, sections, stateFromQuery(c, sections))
	if err != nil {
		return err
	}
	env := format.Wrap(res.Items).WithMeta("matched", res.Matched).WithMeta("total", res.Total)
	return c.JSON(env)
}

func (s *Server) handleFacets(c *fiber.Ctx) error {
	view := c.Params("view")
	sections, err := s.sections(view)
	if err != nil {
		return err
	}
	db, err := s.load(c)
	if err != nil {
		return err
	}
	res, err := records.Query(db, view, sections, stateFromQuery(c, sections))
	if err != nil {
		return err
	}
	return c.JSON(format.Wrap(fiber.Map{
		"options": res.Options,
		"state":   res.State,
	}).WithMeta("matched", res.Matched).WithMeta("total", res.Total))
}

type taskDetail struct {
	records.TaskView
	DescriptionHTML string        `json:"descriptionHtml,omitempty"`
	Events          []model.Event `json:"events"`
}

func (s *Server) handleTask(c *fiber.Ctx) error {
	id, err := store.ParseID(store.KindTask, c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	db, err := s.load(c)
	if err != nil {
		return err
	}
	t, ok := db.FindTask(id)
	if !ok {
		return store.NotFoundError{Kind: store.KindTask, ID: c.Params("id")}
	}
	evs, err := s.store.Events(c.UserContext(), store.TaskEntityID(id), 50)
	if err != nil {
		return err
	}
	return c.JSON(format.Wrap(taskDetail{
		TaskView:        records.ViewOf(*t),
		DescriptionHTML: renderMarkdownHTML(t.Description),
		Events:          evs,
	}))
}

type logEntryDetail struct {
	model.ConversationLogEntry
	BodyHTML string `json:"bodyHtml,omitempty"`
}

type enquiryDetail struct {
	model.Enquiry
	Log []logEntryDetail `json:"log"`
}

func (s *Server) handleEnquiry(c *fiber.Ctx) error {
	id, err := store.ParseID(store.KindEnquiry, c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	db, err := s.load(c)
	if err != nil {
		return err
	}
	e, ok := db.FindEnquiry(id)
	if !ok {
		return store.NotFoundError{Kind: store.KindEnquiry, ID: c.Params("id")}
	}
	out := enquiryDetail{Enquiry: *e, Log: make([]logEntryDetail, 0, len(e.Log))}
	for _, entry := range e.Log {
		out.Log = append(out.Log, logEntryDetail{ConversationLogEntry: entry, BodyHTML: renderMarkdownHTML(entry.Body)})
	}
	return c.JSON(format.Wrap(out))
}

func (s *Server) handleSchedule(c *fiber.Ctx) error {
	g, err := schedule.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	anchor := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid date: "+raw)
		}
		anchor, _ = d.Time()
	}
	offset := 0
	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid offset: "+raw)
		}
		offset = n
	}
	sections, err := s.sections(filter.ViewTasks)
	if err != nil {
		return err
	}
	db, err := s.load(c)
	if err != nil {
		return err
	}
	tasks := records.FilterTasks(db, sections, stateFromQuery(c, sections))
	view := schedule.Project(tasks, g, schedule.Advance(anchor, g, offset))
	return c.JSON(format.Wrap(view).WithMeta("total", view.Total()))
}
