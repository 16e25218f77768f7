package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(context.Background(), path, time.Minute, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestGet_MissOnEmptyCache(t *testing.T) {
	s := newTestStore(t)

	_, hit, err := s.Get(context.Background(), KindArticles, "/api/articles?kbId=a", kbid.New("a"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPutGet_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kb := kbid.New("a")

	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=a", kb, []byte(`{"value":[]}`)))

	payload, hit, err := s.Get(ctx, KindArticles, "/api/articles?kbId=a", kb)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"value":[]}`, string(payload))
}

func TestGet_TenantTagMismatchIsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles", kbid.New("a"), []byte("x")))

	// Same key, different tenant tag: never served.
	_, hit, err := s.Get(ctx, KindArticles, "/api/articles", kbid.New("b"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGet_ExpiredEntryIsMiss(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kb := kbid.New("a")

	now := time.Now()
	s.nowFunc = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, KindAnalytics, "/api/analytics?kbId=a", kb, []byte("x")))

	// Fresh read hits.
	_, hit, err := s.Get(ctx, KindAnalytics, "/api/analytics?kbId=a", kb)
	require.NoError(t, err)
	assert.True(t, hit)

	// Two minutes later (maxAge is one minute) it has gone stale.
	s.nowFunc = func() time.Time { return now.Add(2 * time.Minute) }

	_, hit, err = s.Get(ctx, KindAnalytics, "/api/analytics?kbId=a", kb)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestOnTenantSwitch_EvictsOtherTenantsOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=a", kbid.New("a"), []byte("a-articles")))
	require.NoError(t, s.Put(ctx, KindCategories, "/api/categories?kbId=a", kbid.New("a"), []byte("a-cats")))
	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=b", kbid.New("b"), []byte("b-articles")))

	require.NoError(t, s.OnTenantSwitch(ctx, kbid.New("b")))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// b's entry survived the switch to b.
	payload, hit, err := s.Get(ctx, KindArticles, "/api/articles?kbId=b", kbid.New("b"))
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "b-articles", string(payload))

	// a's entries are gone.
	_, hit, err = s.Get(ctx, KindArticles, "/api/articles?kbId=a", kbid.New("a"))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestEvictKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kb := kbid.New("a")

	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=a", kb, []byte("x")))
	require.NoError(t, s.Put(ctx, KindTeam, "/api/team?kbId=a", kb, []byte("y")))

	require.NoError(t, s.EvictKind(ctx, KindArticles, kb))

	_, hit, err := s.Get(ctx, KindArticles, "/api/articles?kbId=a", kb)
	require.NoError(t, err)
	assert.False(t, hit)

	// Other collaborators for the same tenant are untouched.
	_, hit, err = s.Get(ctx, KindTeam, "/api/team?kbId=a", kb)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestPut_ReplacesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	kb := kbid.New("a")

	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=a", kb, []byte("old")))
	require.NoError(t, s.Put(ctx, KindArticles, "/api/articles?kbId=a", kb, []byte("new")))

	payload, hit, err := s.Get(ctx, KindArticles, "/api/articles?kbId=a", kb)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "new", string(payload))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
