// Package policy decides who may read or mutate podcasts, episodes, subscriptions,
// comments and user accounts. Every function is pure: targets are loaded by the caller
// and passed in, and a nil target always yields a NotFound decision.
package policy

import (
	"fmt"
	"time"
)

// DefaultEditWindow is how long a comment stays editable by its author.
const DefaultEditWindow = 24 * time.Hour

// PodcastRef is the ownership view of a podcast.
type PodcastRef struct {
	ID        int64
	CreatorID string
}

// EpisodeRef is an episode together with its parent podcast, through which ownership resolves.
type EpisodeRef struct {
	ID      int64
	Podcast *PodcastRef
}

// CommentRef is a comment with the episode (and podcast) that contains it.
type CommentRef struct {
	ID       int64
	AuthorID string
	PostedAt time.Time
	Episode  *EpisodeRef
}

type SubscriptionRef struct {
	UserID    string
	PodcastID int64
}

type UserRef struct {
	ID string
}

// EditState is the edit-permission state of a comment.
type EditState int

const (
	Fresh EditState = iota
	Locked
)

func (s EditState) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "locked"
}

type Policy struct {
	editWindow time.Duration
	now        func() time.Time
}

type Option func(*Policy)

// WithEditWindow overrides DefaultEditWindow. Non-positive values are ignored.
func WithEditWindow(d time.Duration) Option {
	return func(p *Policy) {
		if d > 0 {
			p.editWindow = d
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

func New(opts ...Option) *Policy {
	p := &Policy{editWindow: DefaultEditWindow, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (pol *Policy) EditWindow() time.Duration { return pol.editWindow }

// Podcast evaluates access to a podcast. For ActionCreate the target is ignored.
func (pol *Policy) Podcast(p Principal, action Action, target *PodcastRef) Decision {
	if action == ActionRead {
		if target == nil {
			return notFound("podcast")
		}
		return allow()
	}
	if !p.Authenticated() {
		return unauthenticated()
	}
	if action == ActionCreate {
		switch p.Role {
		case RoleAdmin, RolePodcaster:
			return allow()
		case RoleListener:
			return deny(ReasonRole, "Only podcasters can create podcasts.")
		}
		return deny(ReasonRole, "unknown role")
	}
	if target == nil {
		return notFound("podcast")
	}
	switch p.Role {
	case RoleAdmin:
		return allow()
	case RolePodcaster:
		if target.CreatorID == p.ID {
			return allow()
		}
		if action == ActionDelete {
			return deny(ReasonOwnership, "You can only delete your own podcasts.")
		}
		return deny(ReasonOwnership, "You can only edit your own podcasts.")
	case RoleListener:
		return deny(ReasonRole, "Only podcasters can manage podcasts.")
	}
	return deny(ReasonRole, "unknown role")
}

// Episode evaluates access to an episode. Ownership is always taken from the parent
// podcast, including for ActionCreate where target describes the episode to be added.
func (pol *Policy) Episode(p Principal, action Action, target *EpisodeRef) Decision {
	if action == ActionRead {
		if target == nil {
			return notFound("episode")
		}
		return allow()
	}
	if !p.Authenticated() {
		return unauthenticated()
	}
	if target == nil {
		return notFound("episode")
	}
	if target.Podcast == nil {
		return notFound("podcast")
	}
	switch p.Role {
	case RoleAdmin:
		return allow()
	case RolePodcaster:
		if target.Podcast.CreatorID == p.ID {
			return allow()
		}
		switch action {
		case ActionCreate:
			return deny(ReasonOwnership, "You can only add episodes to your own podcasts.")
		case ActionDelete:
			return deny(ReasonOwnership, "You can only delete episodes from your own podcasts.")
		}
		return deny(ReasonOwnership, "You can only edit episodes from your own podcasts.")
	case RoleListener:
		return deny(ReasonRole, "Only podcasters can manage episodes.")
	}
	return deny(ReasonRole, "unknown role")
}

// Subscription evaluates access to a subscription. Only the subscriber (or an Admin)
// may see, create or remove it.
func (pol *Policy) Subscription(p Principal, action Action, target *SubscriptionRef) Decision {
	if !p.Authenticated() {
		return unauthenticated()
	}
	if target == nil {
		return notFound("subscription")
	}
	switch p.Role {
	case RoleAdmin:
		return allow()
	case RolePodcaster, RoleListener:
		if target.UserID == p.ID {
			return allow()
		}
		return deny(ReasonOwnership, "You can only manage your own subscriptions.")
	}
	return deny(ReasonRole, "unknown role")
}

// Comment evaluates access to a comment. Admins may delete any comment but get no
// edit override; edits are limited to the author inside the edit window.
func (pol *Policy) Comment(p Principal, action Action, target *CommentRef) Decision {
	if action == ActionRead {
		if target == nil {
			return notFound("comment")
		}
		return allow()
	}
	if !p.Authenticated() {
		return unauthenticated()
	}
	switch action {
	case ActionCreate:
		if target == nil || target.Episode == nil {
			return notFound("episode")
		}
		return allow()
	case ActionUpdate:
		if target == nil {
			return notFound("comment")
		}
		if target.AuthorID != p.ID {
			return deny(ReasonOwnership, "You can only edit your own comments.")
		}
		if age := pol.now().Sub(target.PostedAt); age > pol.editWindow {
			hours := int(age / time.Hour)
			return Decision{
				Outcome:  Deny,
				Reason:   ReasonEditWindowExpired,
				HoursAgo: hours,
				Message: fmt.Sprintf("Comments can only be edited within %d hours of posting. This comment was posted %d hours ago.",
					int(pol.editWindow/time.Hour), hours),
			}
		}
		return allow()
	case ActionDelete:
		if target == nil {
			return notFound("comment")
		}
		if target.AuthorID == p.ID {
			return allow()
		}
		switch p.Role {
		case RoleAdmin:
			return allow()
		case RolePodcaster:
			if target.Episode != nil && target.Episode.Podcast != nil && target.Episode.Podcast.CreatorID == p.ID {
				return allow()
			}
		case RoleListener:
		}
		return deny(ReasonOwnership, "You don't have permission to delete this comment.")
	}
	return deny(ReasonRole, "unsupported action")
}

// User evaluates account management. ActionUpdate means changing the account's role.
func (pol *Policy) User(p Principal, action Action, target *UserRef) Decision {
	if !p.Authenticated() {
		return unauthenticated()
	}
	if action == ActionCreate {
		if p.Role == RoleAdmin {
			return allow()
		}
		return deny(ReasonRole, "Only admins can create accounts for others.")
	}
	if target == nil {
		return notFound("user")
	}
	switch p.Role {
	case RoleAdmin:
		if target.ID != p.ID {
			return allow()
		}
		switch action {
		case ActionDelete:
			return deny(ReasonSelfTarget, "You cannot delete your own account.")
		case ActionUpdate:
			return deny(ReasonSelfTarget, "You cannot change your own role.")
		}
		return allow()
	case RolePodcaster, RoleListener:
		if action == ActionRead && target.ID == p.ID {
			return allow()
		}
		return deny(ReasonRole, "Only admins can manage users.")
	}
	return deny(ReasonRole, "unknown role")
}

// RequireAdmin allows only authenticated admins.
func (pol *Policy) RequireAdmin(p Principal) Decision {
	if !p.Authenticated() {
		return unauthenticated()
	}
	if p.Role != RoleAdmin {
		return deny(ReasonRole, "Admin access required.")
	}
	return allow()
}

// RequireCreator allows podcasters and admins, the roles that manage content.
func (pol *Policy) RequireCreator(p Principal) Decision {
	if !p.Authenticated() {
		return unauthenticated()
	}
	switch p.Role {
	case RoleAdmin, RolePodcaster:
		return allow()
	case RoleListener:
		return deny(ReasonRole, "Podcaster access required.")
	}
	return deny(ReasonRole, "unknown role")
}

// CommentState reports whether c can still be edited by its author.
func (pol *Policy) CommentState(c *CommentRef) EditState {
	if c == nil || pol.now().Sub(c.PostedAt) > pol.editWindow {
		return Locked
	}
	return Fresh
}

// EditTimeRemaining is how long c stays editable; zero once Locked.
func (pol *Policy) EditTimeRemaining(c *CommentRef) time.Duration {
	if c == nil {
		return 0
	}
	left := pol.editWindow - pol.now().Sub(c.PostedAt)
	if left < 0 {
		return 0
	}
	return left
}
