package perm

import (
	"strings"

	"contentdesk/internal/model"
	"contentdesk/internal/statusutil"
)

// Session is the acting user of an editing session, resolved once from config/flags
// and passed into the controllers that need it.
type Session struct {
	ActorID   string
	ActorName string
	Admin     bool
}

func (s Session) HasIdentity() bool {
	return strings.TrimSpace(s.ActorID) != ""
}

// Policy holds the authorization knobs that are site decisions rather than fixed rules.
// The zero value reproduces the permissive legacy behavior: anyone may unclaim, post or
// unpost, and lifecycle steps may be skipped or undone in any order.
type Policy struct {
	// UnclaimRequiresClaimant limits unclaim to the current claimant or an admin.
	UnclaimRequiresClaimant bool `toml:"unclaim_requires_claimant" json:"unclaimRequiresClaimant"`
	// PostRequiresAdmin gates post and unpost behind the admin capability.
	PostRequiresAdmin bool `toml:"post_requires_admin" json:"postRequiresAdmin"`
	// EnforceOrder requires ready before confirm and confirm before post, and refuses
	// to undo a step while a later one is still set.
	EnforceOrder bool `toml:"enforce_order" json:"enforceOrder"`
}

func CanClaim(s Session, t model.ContentTask) bool {
	if !s.HasIdentity() {
		return false
	}
	return t.Claimant == nil || strings.TrimSpace(t.Claimant.ID) == "" || t.Claimant.ID == s.ActorID
}

func CanUnclaim(s Session, p Policy, t model.ContentTask) bool {
	if !p.UnclaimRequiresClaimant {
		return true
	}
	if s.Admin {
		return true
	}
	return s.HasIdentity() && t.Claimant != nil && t.Claimant.ID == s.ActorID
}

func CanSetReady(s Session, p Policy, t model.ContentTask, ready bool) bool {
	if ready || !p.EnforceOrder {
		return true
	}
	st := statusutil.Derive(t)
	return st != statusutil.Confirmed && st != statusutil.Posted
}

func CanConfirm(s Session, p Policy, t model.ContentTask) bool {
	if !s.Admin || !s.HasIdentity() {
		return false
	}
	if p.EnforceOrder {
		return statusutil.Derive(t) == statusutil.Ready
	}
	return true
}

func CanUnconfirm(s Session, p Policy, t model.ContentTask) bool {
	if !s.Admin {
		return false
	}
	if p.EnforceOrder {
		return statusutil.Derive(t) != statusutil.Posted
	}
	return true
}

func CanPost(s Session, p Policy, t model.ContentTask) bool {
	if !s.HasIdentity() {
		return false
	}
	if p.PostRequiresAdmin && !s.Admin {
		return false
	}
	if p.EnforceOrder {
		return statusutil.Derive(t) == statusutil.Confirmed
	}
	return true
}

func CanUnpost(s Session, p Policy) bool {
	return !p.PostRequiresAdmin || s.Admin
}
