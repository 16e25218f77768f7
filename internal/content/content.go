// Package content provides the tenant-scoped data accessors for articles,
// categories, team members, and analytics. Every read resolves the active
// knowledge base first, annotates the request path through the resolver's
// ScopeURL, and goes through the tenant-tagged response cache; writes go
// straight to the backend and evict the affected collaborator's cache rows.
// No request leaves this package without a resolved tenant.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ahakola/kbcenter-go/internal/api"
	"github.com/ahakola/kbcenter-go/internal/cache"
	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// Backend is the subset of the API client used here.
type Backend interface {
	Get(ctx context.Context, path string) ([]byte, error)
	CreateArticle(ctx context.Context, path string, input api.ArticleInput) (*api.Article, error)
	UpdateArticle(ctx context.Context, path string, input api.ArticleInput) (*api.Article, error)
	DeleteArticle(ctx context.Context, path string) error
	CreateCategory(ctx context.Context, path string, input api.CategoryInput) (*api.Category, error)
	InviteTeamMember(ctx context.Context, path string, input api.InviteInput) (*api.TeamMember, error)
}

// Scoper is the resolver surface consumed here: the active knowledge base
// and path annotation. Only the resolved id is read; selection state is
// never written from this package.
type Scoper interface {
	Active() (kbid.ID, error)
	ScopeURL(path string) string
}

// ResponseCache is the tenant-tagged cache surface consumed here.
type ResponseCache interface {
	Get(ctx context.Context, kind cache.Kind, path string, kb kbid.ID) ([]byte, bool, error)
	Put(ctx context.Context, kind cache.Kind, path string, kb kbid.ID, payload []byte) error
	EvictKind(ctx context.Context, kind cache.Kind, kb kbid.ID) error
}

// Service bundles the backend client, scoping resolver, and response cache
// behind typed accessors.
type Service struct {
	backend Backend
	scoper  Scoper
	cache   ResponseCache
	logger  *slog.Logger
}

// NewService creates a content service. The cache may be nil (no caching,
// every read refetches).
func NewService(backend Backend, scoper Scoper, responseCache ResponseCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		backend: backend,
		scoper:  scoper,
		cache:   responseCache,
		logger:  logger,
	}
}

// listEnvelope wraps the value array every backend list endpoint returns.
type listEnvelope[T any] struct {
	Value []T `json:"value"`
}

// fetch resolves the tenant, scopes the path, and returns the response
// bytes, serving from cache when fresh.
func (s *Service) fetch(ctx context.Context, kind cache.Kind, basePath string) ([]byte, error) {
	kb, err := s.scoper.Active()
	if err != nil {
		return nil, fmt.Errorf("content: %s read without active knowledge base: %w", kind, err)
	}

	path := s.scoper.ScopeURL(basePath)

	if s.cache != nil {
		payload, hit, cacheErr := s.cache.Get(ctx, kind, path, kb)
		if cacheErr != nil {
			// A broken cache must not block reads; log and fall through.
			s.logger.Warn("cache read failed",
				slog.String("kind", string(kind)),
				slog.String("error", cacheErr.Error()),
			)
		} else if hit {
			s.logger.Debug("cache hit",
				slog.String("kind", string(kind)),
				slog.String("path", path),
			)

			return payload, nil
		}
	}

	payload, err := s.backend.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, kind, path, kb, payload); err != nil {
			s.logger.Warn("cache write failed",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()),
			)
		}
	}

	return payload, nil
}

// fetchList decodes a cached or fetched list envelope.
func fetchList[T any](ctx context.Context, s *Service, kind cache.Kind, basePath string) ([]T, error) {
	payload, err := s.fetch(ctx, kind, basePath)
	if err != nil {
		return nil, err
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("content: decoding %s response: %w", kind, err)
	}

	return env.Value, nil
}

// Articles lists the active knowledge base's articles.
func (s *Service) Articles(ctx context.Context) ([]api.Article, error) {
	return fetchList[api.Article](ctx, s, cache.KindArticles, "/api/articles")
}

// Categories lists the active knowledge base's categories.
func (s *Service) Categories(ctx context.Context) ([]api.Category, error) {
	return fetchList[api.Category](ctx, s, cache.KindCategories, "/api/categories")
}

// TeamMembers lists the active knowledge base's team.
func (s *Service) TeamMembers(ctx context.Context) ([]api.TeamMember, error) {
	return fetchList[api.TeamMember](ctx, s, cache.KindTeam, "/api/team")
}

// Analytics returns the active knowledge base's usage summary.
func (s *Service) Analytics(ctx context.Context) (*api.AnalyticsSummary, error) {
	payload, err := s.fetch(ctx, cache.KindAnalytics, "/api/analytics")
	if err != nil {
		return nil, err
	}

	var summary api.AnalyticsSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("content: decoding analytics response: %w", err)
	}

	return &summary, nil
}

// scopedWrite resolves the tenant and scopes a mutation path.
func (s *Service) scopedWrite(kind cache.Kind, basePath string) (kbid.ID, string, error) {
	kb, err := s.scoper.Active()
	if err != nil {
		return kbid.ID{}, "", fmt.Errorf("content: %s write without active knowledge base: %w", kind, err)
	}

	return kb, s.scoper.ScopeURL(basePath), nil
}

// evict drops the collaborator's cached rows after a successful mutation so
// the next read observes the write.
func (s *Service) evict(ctx context.Context, kind cache.Kind, kb kbid.ID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.EvictKind(ctx, kind, kb); err != nil {
		s.logger.Warn("post-write cache eviction failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// CreateArticle creates an article in the active knowledge base. The slug
// defaults to one derived from the title.
func (s *Service) CreateArticle(ctx context.Context, input api.ArticleInput) (*api.Article, error) {
	kb, path, err := s.scopedWrite(cache.KindArticles, "/api/articles")
	if err != nil {
		return nil, err
	}

	if input.Slug == "" {
		input.Slug = kbid.Slug(input.Title)
	}

	created, err := s.backend.CreateArticle(ctx, path, input)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, cache.KindArticles, kb)

	return created, nil
}

// UpdateArticle applies a partial update to an article in the active
// knowledge base.
func (s *Service) UpdateArticle(ctx context.Context, articleID string, input api.ArticleInput) (*api.Article, error) {
	kb, path, err := s.scopedWrite(cache.KindArticles, "/api/articles/"+articleID)
	if err != nil {
		return nil, err
	}

	updated, err := s.backend.UpdateArticle(ctx, path, input)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, cache.KindArticles, kb)

	return updated, nil
}

// DeleteArticle removes an article from the active knowledge base.
func (s *Service) DeleteArticle(ctx context.Context, articleID string) error {
	kb, path, err := s.scopedWrite(cache.KindArticles, "/api/articles/"+articleID)
	if err != nil {
		return err
	}

	if err := s.backend.DeleteArticle(ctx, path); err != nil {
		return err
	}

	s.evict(ctx, cache.KindArticles, kb)

	return nil
}

// CreateCategory creates a category in the active knowledge base. The slug
// defaults to one derived from the name.
func (s *Service) CreateCategory(ctx context.Context, input api.CategoryInput) (*api.Category, error) {
	kb, path, err := s.scopedWrite(cache.KindCategories, "/api/categories")
	if err != nil {
		return nil, err
	}

	if input.Slug == "" {
		input.Slug = kbid.Slug(input.Name)
	}

	created, err := s.backend.CreateCategory(ctx, path, input)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, cache.KindCategories, kb)

	return created, nil
}

// InviteTeamMember invites a user to the active knowledge base.
func (s *Service) InviteTeamMember(ctx context.Context, input api.InviteInput) (*api.TeamMember, error) {
	kb, path, err := s.scopedWrite(cache.KindTeam, "/api/team")
	if err != nil {
		return nil, err
	}

	invited, err := s.backend.InviteTeamMember(ctx, path, input)
	if err != nil {
		return nil, err
	}

	s.evict(ctx, cache.KindTeam, kb)

	return invited, nil
}
