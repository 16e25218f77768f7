package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// Resolver decides which knowledge base is active for one session and keeps
// that decision converged with the membership list. It is constructed at
// session start with the persisted selection loaded once, fed membership
// updates as they settle, and torn down with the session. All state is
// owned here; collaborators only read the resolved id through Active and
// ScopeURL.
//
// Evaluation order on every update is fixed: list update, selection
// convergence, then the provisioning check. Convergence is idempotent:
// re-applying it with no intervening change performs no persistence write
// and no invalidation.
type Resolver struct {
	store       SelectionStore
	invalidator Invalidator
	provisioner Provisioner
	logger      *slog.Logger

	mu          sync.Mutex
	settled     bool  // initial membership load has finished, success or failure
	loadErr     error // non-nil when the last load failed; an error is not an empty list
	memberships []Membership
	selected    kbid.ID // working selection, seeded from the store at construction
	persisted   kbid.ID // last value successfully written to the store

	// provisionAttempted is the per-session guard flag. Set the instant a
	// creation attempt is dispatched and never reset, even on failure, so
	// one session can never issue two create requests. A fresh attempt
	// requires a fresh session.
	provisionAttempted bool
	provisionPending   bool
	provisionErr       error
}

// New creates a Resolver and reads the persisted selection once. The
// invalidator and provisioner may be nil (no cache to evict, provisioning
// disabled); the store is required.
func New(store SelectionStore, invalidator Invalidator, provisioner Provisioner, logger *slog.Logger) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("tenant: selection store is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	persisted, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("tenant: loading persisted selection: %w", err)
	}

	if !persisted.IsZero() {
		logger.Debug("loaded persisted knowledge-base selection",
			slog.String("kb_id", persisted.String()),
		)
	}

	return &Resolver{
		store:       store,
		invalidator: invalidator,
		provisioner: provisioner,
		logger:      logger,
		selected:    persisted,
		persisted:   persisted,
	}, nil
}

// SetMemberships records a settled, successful membership load and runs the
// standard evaluation cycle: convergence first, then the provisioning
// check. When the list is empty and this session has not yet attempted
// provisioning, exactly one create-default call is issued before
// SetMemberships returns; its failure is returned and also retained for
// ProvisionError.
func (r *Resolver) SetMemberships(ctx context.Context, list []Membership) error {
	r.mu.Lock()

	r.settled = true
	r.loadErr = nil
	r.memberships = append([]Membership(nil), list...)

	r.converge(ctx)

	dispatch := len(r.memberships) == 0 &&
		r.provisioner != nil &&
		!r.provisionAttempted &&
		!r.provisionPending
	if dispatch {
		// Check-and-set under the lock: two back-to-back evaluation passes
		// can never both observe the flag unset.
		r.provisionAttempted = true
		r.provisionPending = true
	}

	r.mu.Unlock()

	if !dispatch {
		return nil
	}

	return r.provision(ctx)
}

// SetLoadError records a settled, failed membership load. The resolver
// stays not-ready and the provisioning guard must not fire: a load error is
// not an empty list.
func (r *Resolver) SetLoadError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settled = true
	r.loadErr = err

	r.logger.Warn("knowledge-base list load failed",
		slog.String("error", err.Error()),
	)
}

// provision issues the single create-default request for this session.
// Called without the lock held; the attempt flag is already set.
func (r *Resolver) provision(ctx context.Context) error {
	r.logger.Info("no knowledge bases found, provisioning default",
		slog.String("display_name", DefaultDisplayName),
	)

	created, err := r.provisioner.CreateDefault(ctx, DefaultDisplayName)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.provisionPending = false

	if err != nil {
		// The attempt flag stays set: no automatic retry this session.
		r.provisionErr = err
		r.logger.Error("provisioning default knowledge base failed",
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("tenant: provisioning default knowledge base: %w", err)
	}

	// Seed the membership list with the created record so the selection
	// invariant (active id is a member of the list) holds before the next
	// list refresh arrives, and select it immediately so the user is never
	// left without a tenant after creation succeeds.
	r.memberships = []Membership{created}
	r.applySelection(ctx, created.ID, true)

	r.logger.Info("provisioned default knowledge base",
		slog.String("kb_id", created.ID.String()),
	)

	return nil
}

// Select makes id the active selection and persists it immediately.
// Selecting the already-active id is a no-op beyond re-persisting the same
// value; a real change synchronously invalidates tenant-tagged caches. No
// synchronous membership validation happens here; if id is stale, the
// convergence pass at the end of this call (or the next list update)
// corrects it against a non-empty list.
func (r *Resolver) Select(ctx context.Context, id kbid.ID) error {
	if id.IsZero() {
		return errors.New("tenant: cannot select an empty knowledge-base id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	changed := !id.Equal(r.selected)
	r.selected = id

	if err := r.store.Save(id); err != nil {
		return fmt.Errorf("tenant: persisting selection: %w", err)
	}

	r.persisted = id

	if changed {
		r.invalidate(ctx, id)
	}

	r.converge(ctx)

	return nil
}

// Active returns the resolved active knowledge-base id. It returns
// ErrNotReady until the membership list has loaded successfully and the
// selection is a member of it. During a refresh the previous successful
// list remains in effect, so readiness is not lost while a reload is in
// flight.
func (r *Resolver) Active() (kbid.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.settled || r.loadErr != nil || !r.contains(r.selected) {
		return kbid.ID{}, ErrNotReady
	}

	return r.selected, nil
}

// ActiveMembership returns the full membership record for the active
// selection, if resolved.
func (r *Resolver) ActiveMembership() (Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.settled || r.loadErr != nil {
		return Membership{}, false
	}

	for _, m := range r.memberships {
		if m.ID.Equal(r.selected) {
			return m, true
		}
	}

	return Membership{}, false
}

// Memberships returns a copy of the current membership list.
func (r *Resolver) Memberships() []Membership {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Membership(nil), r.memberships...)
}

// LoadError returns the error from the last membership load, if it failed.
func (r *Resolver) LoadError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.loadErr
}

// ProvisionError returns the error from this session's provisioning
// attempt, if one was made and failed. Manual retry means a new session.
func (r *Resolver) ProvisionError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.provisionErr
}

// ProvisionAttempted reports whether this session has dispatched its
// one allowed create-default request.
func (r *Resolver) ProvisionAttempted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.provisionAttempted
}

// converge reconciles the selection with the membership list. Caller holds
// the lock. Rules, in order: an empty list forces nothing (provisioning
// pending); a selection present in the list is kept (never silently
// reassign a user's context); otherwise the first list element wins; and
// whatever was computed is persisted only when it differs from the stored
// value, so redundant runs write and invalidate nothing.
func (r *Resolver) converge(ctx context.Context) {
	if !r.settled || r.loadErr != nil || len(r.memberships) == 0 {
		return
	}

	if r.contains(r.selected) {
		// Heal a store that diverged from the working selection (e.g. a
		// failed Save on a previous pass).
		if !r.selected.Equal(r.persisted) {
			r.persist(r.selected)
		}

		return
	}

	if !r.selected.IsZero() {
		r.logger.Info("persisted selection no longer accessible, falling back",
			slog.String("stale_kb_id", r.selected.String()),
			slog.String("kb_id", r.memberships[0].ID.String()),
		)
	}

	r.applySelection(ctx, r.memberships[0].ID, false)
}

// applySelection updates the working selection, persists it when it differs
// from the stored value (or always, when forcePersist is set), and fires
// the invalidation hook exactly once on a real change. Caller holds the
// lock.
func (r *Resolver) applySelection(ctx context.Context, id kbid.ID, forcePersist bool) {
	changed := !id.Equal(r.selected)
	r.selected = id

	if forcePersist || !id.Equal(r.persisted) {
		r.persist(id)
	}

	if changed {
		r.invalidate(ctx, id)
	}
}

// persist writes the selection to the store. A write failure is logged and
// left for a later convergence pass to retry; it does not disturb the
// working selection.
func (r *Resolver) persist(id kbid.ID) {
	if err := r.store.Save(id); err != nil {
		r.logger.Warn("persisting knowledge-base selection failed",
			slog.String("kb_id", id.String()),
			slog.String("error", err.Error()),
		)

		return
	}

	r.persisted = id
}

// invalidate fires the tenant-switch hook synchronously. Caller holds the
// lock and guarantees this runs exactly once per real selection change.
func (r *Resolver) invalidate(ctx context.Context, newID kbid.ID) {
	if r.invalidator == nil {
		return
	}

	if err := r.invalidator.OnTenantSwitch(ctx, newID); err != nil {
		r.logger.Warn("tenant-switch cache invalidation failed",
			slog.String("kb_id", newID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// contains reports whether id is a member of the current list. Caller
// holds the lock.
func (r *Resolver) contains(id kbid.ID) bool {
	if id.IsZero() {
		return false
	}

	for _, m := range r.memberships {
		if m.ID.Equal(id) {
			return true
		}
	}

	return false
}
