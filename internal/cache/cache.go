// Package cache is a tenant-tagged response cache for the four tenant-scoped
// collaborators (articles, categories, team, analytics). Every entry carries
// the knowledge-base id it was fetched under; a tenant switch evicts all
// entries whose tag differs from the new tenant, so a read after a switch
// can never observe the previous tenant's data.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// Kind identifies one tenant-scoped collaborator.
type Kind string

// The four tenant-scoped collaborators.
const (
	KindArticles   Kind = "articles"
	KindCategories Kind = "categories"
	KindTeam       Kind = "team"
	KindAnalytics  Kind = "analytics"
)

// DefaultMaxAge is how long a cached response stays fresh when the config
// does not override it.
const DefaultMaxAge = 5 * time.Minute

// Store is a SQLite-backed response cache. A single writer connection is
// enforced; the CLI has no concurrent writers, and WAL mode keeps readers
// cheap for the watch command.
type Store struct {
	db     *sql.DB
	maxAge time.Duration
	logger *slog.Logger

	// nowFunc returns the current time. Tests override it to age entries.
	nowFunc func() time.Time
}

// Open opens (or creates) the cache database at dbPath and applies
// migrations. Use ":memory:" for tests. maxAge <= 0 selects DefaultMaxAge.
func Open(ctx context.Context, dbPath string, maxAge time.Duration, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cache: opening sqlite at %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: enabling WAL mode: %w", err)
	}

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("response cache ready", slog.String("path", dbPath))

	return &Store{
		db:      db,
		maxAge:  maxAge,
		logger:  logger,
		nowFunc: time.Now,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached payload for (kind, path) if it exists, was fetched
// under the given knowledge base, and is still fresh. The boolean reports a
// usable hit.
func (s *Store) Get(ctx context.Context, kind Kind, path string, kb kbid.ID) ([]byte, bool, error) {
	var (
		payload   []byte
		tag       kbid.ID
		fetchedAt int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT payload, kb_id, fetched_at FROM response_cache
		 WHERE collaborator = ? AND path = ?`,
		string(kind), path,
	).Scan(&payload, &tag, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("cache: reading entry: %w", err)
	}

	// An entry tagged with another tenant is never served. It should have
	// been evicted on switch; treat a leftover as a miss.
	if !tag.Equal(kb) {
		return nil, false, nil
	}

	if s.nowFunc().Unix()-fetchedAt > int64(s.maxAge.Seconds()) {
		return nil, false, nil
	}

	return payload, true, nil
}

// Put stores (or replaces) the payload for (kind, path), tagged with the
// knowledge base it was fetched under.
func (s *Store) Put(ctx context.Context, kind Kind, path string, kb kbid.ID, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_cache (collaborator, path, kb_id, payload, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (collaborator, path) DO UPDATE SET
		   kb_id = excluded.kb_id,
		   payload = excluded.payload,
		   fetched_at = excluded.fetched_at`,
		string(kind), path, kb, payload, s.nowFunc().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: storing entry: %w", err)
	}

	return nil
}

// OnTenantSwitch implements the resolver's Invalidator: it synchronously
// evicts every entry not tagged with the new knowledge base. Called exactly
// once per real selection change.
func (s *Store) OnTenantSwitch(ctx context.Context, newID kbid.ID) error {
	n, err := s.evictTenantMismatch(ctx, newID)
	if err != nil {
		return err
	}

	s.logger.Info("evicted stale tenant cache entries",
		slog.String("kb_id", newID.String()),
		slog.Int64("evicted", n),
	)

	return nil
}

// evictTenantMismatch deletes all rows whose tag differs from keep.
func (s *Store) evictTenantMismatch(ctx context.Context, keep kbid.ID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE kb_id != ?`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("cache: evicting mismatched tenants: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache: counting evictions: %w", err)
	}

	return n, nil
}

// EvictKind removes all entries of one collaborator for one knowledge base.
// Used as write-through invalidation after a mutation, and by the watch
// command when a change event arrives.
func (s *Store) EvictKind(ctx context.Context, kind Kind, kb kbid.ID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM response_cache WHERE collaborator = ? AND kb_id = ?`,
		string(kind), kb,
	)
	if err != nil {
		return fmt.Errorf("cache: evicting %s entries: %w", kind, err)
	}

	return nil
}

// Len returns the number of cached entries. Intended for tests and status
// output.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: counting entries: %w", err)
	}

	return n, nil
}
