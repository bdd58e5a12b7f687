package mutate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/model"
	"contentdesk/internal/perm"
	"contentdesk/internal/statusutil"
)

// Transition names accepted by Draft.Apply.
const (
	Claim     = "claim"
	Unclaim   = "unclaim"
	Ready     = "ready"
	Unready   = "unready"
	Confirm   = "confirm"
	Unconfirm = "unconfirm"
	Post      = "post"
	Unpost    = "unpost"
)

// Transitions lists every transition name in lifecycle order.
var Transitions = []string{Claim, Unclaim, Ready, Unready, Confirm, Unconfirm, Post, Unpost}

type Result struct {
	Task         model.ContentTask
	Changed      bool
	EventPayload map[string]any
}

// Change is one applied transition, kept until the draft is saved so callers can
// append it to the event log.
type Change struct {
	Type    string
	Payload map[string]any
}

// Saver persists a whole task record.
type Saver interface {
	SaveTask(ctx context.Context, t model.ContentTask) error
}

// Draft owns the mutable lifecycle fields of one task during an editing session.
//
// Every transition is a direct field mutation. A transition the session may not perform
// under the policy leaves the draft untouched and reports Changed=false; it is not an
// error. Nothing is persisted until Save.
type Draft struct {
	task    model.ContentTask
	session perm.Session
	policy  perm.Policy
	now     func() time.Time

	dirty    bool
	changes  []Change
	onChange func(model.ContentTask)
}

func NewDraft(task model.ContentTask, session perm.Session, policy perm.Policy) *Draft {
	return &Draft{
		task:    cloneTask(task),
		session: session,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the timestamp source (tests).
func (d *Draft) SetClock(now func() time.Time) {
	if now != nil {
		d.now = now
	}
}

// Subscribe registers the single listener notified after each effective transition.
func (d *Draft) Subscribe(fn func(model.ContentTask)) {
	d.onChange = fn
}

func (d *Draft) Task() model.ContentTask { return cloneTask(d.task) }
func (d *Draft) Dirty() bool             { return d.dirty }
func (d *Draft) Session() perm.Session   { return d.session }
func (d *Draft) Policy() perm.Policy     { return d.policy }

func (d *Draft) Status() statusutil.Status {
	return statusutil.Derive(d.task)
}

func (d *Draft) Changes() []Change {
	return append([]Change(nil), d.changes...)
}

// Apply runs the named transition.
func (d *Draft) Apply(name string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Claim:
		return d.Claim(), nil
	case Unclaim:
		return d.Unclaim(), nil
	case Ready:
		return d.SetReady(true), nil
	case Unready:
		return d.SetReady(false), nil
	case Confirm:
		return d.Confirm(), nil
	case Unconfirm:
		return d.Unconfirm(), nil
	case Post:
		return d.Post(), nil
	case Unpost:
		return d.Unpost(), nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTransition, name)
	}
}

// Allowed reports whether the named transition would change the draft.
func (d *Draft) Allowed(name string) bool {
	t := d.task
	s := d.session
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Claim:
		return perm.CanClaim(s, t) && (t.Claimant == nil || t.Claimant.ID != s.ActorID)
	case Unclaim:
		return t.Claimant != nil && perm.CanUnclaim(s, d.policy, t)
	case Ready:
		return !statusutil.Present(t.ReadiedAt)
	case Unready:
		return statusutil.Present(t.ReadiedAt) && perm.CanSetReady(s, d.policy, t, false)
	case Confirm:
		return !statusutil.Present(t.ConfirmedAt) && perm.CanConfirm(s, d.policy, t)
	case Unconfirm:
		return (statusutil.Present(t.ConfirmedAt) || t.ConfirmerID != nil) && perm.CanUnconfirm(s, d.policy, t)
	case Post:
		return !statusutil.Present(t.PostedAt) && perm.CanPost(s, d.policy, t)
	case Unpost:
		return (statusutil.Present(t.PostedAt) || t.PosterID != nil) && perm.CanUnpost(s, d.policy)
	default:
		return false
	}
}

func (d *Draft) Claim() Result {
	if !d.Allowed(Claim) {
		return d.unchanged()
	}
	d.task.Claimant = &model.ActorRef{ID: d.session.ActorID, Name: d.session.ActorName}
	return d.changed("task.claim", map[string]any{"claimant": d.task.Claimant.ID})
}

func (d *Draft) Unclaim() Result {
	if !d.Allowed(Unclaim) {
		return d.unchanged()
	}
	prev := d.task.Claimant.ID
	d.task.Claimant = nil
	return d.changed("task.unclaim", map[string]any{"previous": prev})
}

// ToggleReady flips the ready flag.
func (d *Draft) ToggleReady() Result {
	return d.SetReady(!statusutil.Present(d.task.ReadiedAt))
}

func (d *Draft) SetReady(ready bool) Result {
	if ready {
		if !d.Allowed(Ready) {
			return d.unchanged()
		}
		now := d.now()
		d.task.ReadiedAt = &now
		return d.changed("task.ready", map[string]any{"readiedAt": now})
	}
	if !d.Allowed(Unready) {
		return d.unchanged()
	}
	d.task.ReadiedAt = nil
	return d.changed("task.unready", map[string]any{"readiedAt": nil})
}

func (d *Draft) Confirm() Result {
	if !d.Allowed(Confirm) {
		return d.unchanged()
	}
	now := d.now()
	who := d.session.ActorID
	d.task.ConfirmerID = &who
	d.task.ConfirmedAt = &now
	return d.changed("task.confirm", map[string]any{"confirmerId": who, "confirmedAt": now})
}

func (d *Draft) Unconfirm() Result {
	if !d.Allowed(Unconfirm) {
		return d.unchanged()
	}
	d.task.ConfirmerID = nil
	d.task.ConfirmedAt = nil
	return d.changed("task.unconfirm", map[string]any{"confirmerId": nil, "confirmedAt": nil})
}

func (d *Draft) Post() Result {
	if !d.Allowed(Post) {
		return d.unchanged()
	}
	now := d.now()
	who := d.session.ActorID
	d.task.PosterID = &who
	d.task.PostedAt = &now
	return d.changed("task.post", map[string]any{"posterId": who, "postedAt": now})
}

func (d *Draft) Unpost() Result {
	if !d.Allowed(Unpost) {
		return d.unchanged()
	}
	d.task.PosterID = nil
	d.task.PostedAt = nil
	return d.changed("task.unpost", map[string]any{"posterId": nil, "postedAt": nil})
}

// Save submits the entire draft record to s. On success the draft is clean again and
// the applied changes are returned for event logging. A failed save leaves the draft
// dirty and unchanged.
func (d *Draft) Save(ctx context.Context, s Saver) ([]Change, error) {
	if !d.dirty {
		return nil, nil
	}
	out := cloneTask(d.task)
	out.UpdatedAt = d.now()
	if err := s.SaveTask(ctx, out); err != nil {
		return nil, err
	}
	d.task.UpdatedAt = out.UpdatedAt
	changes := d.changes
	d.changes = nil
	d.dirty = false
	return changes, nil
}

func (d *Draft) unchanged() Result {
	return Result{Task: d.Task(), Changed: false}
}

func (d *Draft) changed(typ string, payload map[string]any) Result {
	d.dirty = true
	d.changes = append(d.changes, Change{Type: typ, Payload: payload})
	if d.onChange != nil {
		d.onChange(d.Task())
	}
	return Result{Task: d.Task(), Changed: true, EventPayload: payload}
}

func cloneTask(t model.ContentTask) model.ContentTask {
	out := t
	if t.Claimant != nil {
		c := *t.Claimant
		out.Claimant = &c
	}
	out.ReadiedAt = cloneTime(t.ReadiedAt)
	out.ConfirmedAt = cloneTime(t.ConfirmedAt)
	out.PostedAt = cloneTime(t.PostedAt)
	out.ConfirmerID = cloneString(t.ConfirmerID)
	out.PosterID = cloneString(t.PosterID)
	if t.Extra != nil {
		out.Extra = make(map[string]string, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
