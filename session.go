package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahakola/kbcenter-go/internal/api"
	"github.com/ahakola/kbcenter-go/internal/cache"
	"github.com/ahakola/kbcenter-go/internal/config"
	"github.com/ahakola/kbcenter-go/internal/content"
	"github.com/ahakola/kbcenter-go/internal/credfile"
	"github.com/ahakola/kbcenter-go/internal/tenant"
)

// Session holds the authenticated client, the tenant resolver, the response
// cache, and the content accessors for one command invocation. The resolver
// lives exactly as long as the session: its one-shot provisioning guard and
// membership snapshot never outlive the process.
type Session struct {
	Config   *config.Config
	Client   *api.Client
	Token    api.TokenSource
	Profile  credfile.Profile
	Resolver *tenant.Resolver
	Cache    *cache.Store
	Content  *content.Service
	Logger   *slog.Logger
}

// newSession assembles a Session from loaded config: credentials, API
// client, response cache, tenant resolver, and content service. It fetches
// the membership list once and feeds the result (or its failure) to the
// resolver, which may auto-provision a default knowledge base for a
// brand-new user before this returns.
func newSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	ts, profile, err := api.TokenSourceFromPath(config.CredentialsPath(cfg), logger)
	if err != nil {
		if errors.Is(err, api.ErrNotLoggedIn) {
			return nil, fmt.Errorf("not logged in, run 'kbcenter login' first")
		}

		return nil, err
	}

	client := api.NewClient(cfg.APIBaseURL, defaultHTTPClient(), ts, logger)

	maxAge, err := cfg.CacheMaxAgeDuration()
	if err != nil {
		return nil, err
	}

	cacheStore, err := cache.Open(ctx, config.CachePath(cfg), maxAge, logger)
	if err != nil {
		return nil, err
	}

	store := tenant.NewFileStore(config.DefaultDataDir())

	resolver, err := tenant.New(store, cacheStore, &apiProvisioner{client: client}, logger)
	if err != nil {
		cacheStore.Close()
		return nil, err
	}

	session := &Session{
		Config:   cfg,
		Client:   client,
		Token:    ts,
		Profile:  profile,
		Resolver: resolver,
		Cache:    cacheStore,
		Content:  content.NewService(client, resolver, cacheStore, logger),
		Logger:   logger,
	}

	if err := session.refreshMemberships(ctx); err != nil {
		// Provisioning failures surface here; a plain list failure is
		// recorded on the resolver and reported when a command needs an
		// active knowledge base.
		cacheStore.Close()
		return nil, err
	}

	return session, nil
}

// refreshMemberships fetches the accessible knowledge bases and feeds the
// outcome to the resolver. A fetch failure is recorded as a load error, not
// treated as an empty list, so it can never trigger provisioning.
func (s *Session) refreshMemberships(ctx context.Context) error {
	kbs, err := s.Client.KnowledgeBases(ctx)
	if err != nil {
		s.Resolver.SetLoadError(err)
		return nil
	}

	return s.Resolver.SetMemberships(ctx, toMemberships(kbs))
}

// Close releases session resources.
func (s *Session) Close() error {
	return s.Cache.Close()
}

// toMemberships converts the API listing into the resolver's membership
// records, preserving backend order.
func toMemberships(kbs []api.KnowledgeBase) []tenant.Membership {
	out := make([]tenant.Membership, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, tenant.Membership{
			ID:          kb.ID,
			DisplayName: kb.DisplayName,
			Role:        tenant.Role(kb.Role),
		})
	}

	return out
}

// apiProvisioner adapts the API client to the resolver's Provisioner. The
// creator of a knowledge base is always its owner.
type apiProvisioner struct {
	client *api.Client
}

func (p *apiProvisioner) CreateDefault(ctx context.Context, displayName string) (tenant.Membership, error) {
	kb, err := p.client.CreateKnowledgeBase(ctx, displayName)
	if err != nil {
		return tenant.Membership{}, err
	}

	return tenant.Membership{
		ID:          kb.ID,
		DisplayName: kb.DisplayName,
		Role:        tenant.RoleOwner,
	}, nil
}
