// Package tenant owns active-knowledge-base resolution for a session: which
// knowledge base is in scope, how that choice persists across sessions, and
// the one-shot auto-provisioning of a default knowledge base for users who
// have none. Every tenant-scoped request is annotated through ScopeURL, and
// tenant switches synchronously invalidate tenant-tagged caches via the
// Invalidator hook.
package tenant

import (
	"context"
	"errors"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// Role is the caller's role within a knowledge base.
type Role string

// Roles in descending order of privilege.
const (
	RoleOwner       Role = "owner"
	RoleAdmin       Role = "admin"
	RoleContributor Role = "contributor"
	RoleViewer      Role = "viewer"
)

// Membership is one knowledge base the user may access. Read-only from this
// package's perspective: created and destroyed by the backend, only read
// and cached here.
type Membership struct {
	ID          kbid.ID
	DisplayName string
	Role        Role
}

// DefaultDisplayName is the display name used when auto-provisioning a
// knowledge base for a user who has none.
const DefaultDisplayName = "My Knowledge Base"

// ErrNotReady indicates no active knowledge base is resolved yet: the
// membership list has not loaded, loaded empty with provisioning still
// pending or failed, or the list load itself failed.
var ErrNotReady = errors.New("tenant: no active knowledge base resolved")

// SelectionStore persists the active selection across sessions. Load
// returns the zero ID (not an error) when nothing is stored yet.
type SelectionStore interface {
	Load() (kbid.ID, error)
	Save(id kbid.ID) error
}

// Invalidator is notified synchronously whenever the active selection
// changes value. Implementations evict every cached result tagged with a
// different knowledge base so stale-tenant data can never be served under
// the new scope.
type Invalidator interface {
	OnTenantSwitch(ctx context.Context, newID kbid.ID) error
}

// Provisioner creates the default knowledge base for a brand-new user.
// The resolver guarantees at most one call per session.
type Provisioner interface {
	CreateDefault(ctx context.Context, displayName string) (Membership, error)
}
