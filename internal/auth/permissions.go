// Package auth holds token handling, the request middleware and the
// permission evaluator that every resource handler consults.
package auth

import (
	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/internal/models"
)

// Verb classifies an operation the way HTTP safe methods do: reads are
// always harmless, writes are gated by role and ownership.
type Verb int

const (
	VerbRead Verb = iota
	VerbWrite
)

// Actor is the authenticated (or anonymous) principal a request acts as.
type Actor struct {
	ID            uuid.UUID
	Role          string
	Superuser     bool
	Authenticated bool
}

// Anonymous is the actor for requests without a valid token.
func Anonymous() Actor {
	return Actor{Role: models.RoleUser}
}

// ActorForUser builds an Actor from a loaded user record.
func ActorForUser(u *models.User) Actor {
	return Actor{
		ID:            u.ID,
		Role:          u.Role,
		Superuser:     u.IsSuperuser,
		Authenticated: true,
	}
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Superuser || a.Role == models.RoleAdmin)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == models.RoleModerator
}

// Decision is the outcome of a permission check. Denials distinguish
// missing authentication (401) from insufficient rights (403).
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Allowed() bool {
	return d == Allow
}

// AdminOnly gates user administration: admins and superusers only.
func AdminOnly(a Actor) Decision {
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	if !a.IsAdmin() {
		return DenyForbidden
	}
	return Allow
}

// AdminOrReadOnly gates category/genre/title collections: reads are open
// to everyone, writes to admins and superusers.
func AdminOrReadOnly(a Actor, v Verb) Decision {
	if v == VerbRead {
		return Allow
	}
	return AdminOnly(a)
}

// AuthenticatedOrReadOnly gates review/comment creation: reads are open,
// writes need any authenticated actor.
func AuthenticatedOrReadOnly(a Actor, v Verb) Decision {
	if v == VerbRead {
		return Allow
	}
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	return Allow
}

// OwnerModAdminOrReadOnly gates object-level mutation of reviews and
// comments: the author, moderators, admins and superusers may mutate.
func OwnerModAdminOrReadOnly(a Actor, v Verb, ownerID uuid.UUID) Decision {
	if v == VerbRead {
		return Allow
	}
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	if a.ID == ownerID || a.IsModerator() || a.IsAdmin() {
		return Allow
	}
	return DenyForbidden
}

// SelfOnly gates the self-profile endpoint: any authenticated actor.
func SelfOnly(a Actor) Decision {
	if !a.Authenticated {
		return DenyUnauthenticated
	}
	return Allow
}
