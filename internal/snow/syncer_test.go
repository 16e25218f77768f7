package snow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahakola/kbcenter-go/internal/api"
)

// fakePusher fails configured article ids and counts concurrency.
type fakePusher struct {
	mu       sync.Mutex
	pushed   []string
	failIDs  map[string]bool
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (p *fakePusher) PushArticle(_ context.Context, articleID, _, _ string) (string, error) {
	cur := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	for {
		seen := p.maxSeen.Load()
		if cur <= seen || p.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	if p.failIDs[articleID] {
		return "", errors.New("push failed")
	}

	p.mu.Lock()
	p.pushed = append(p.pushed, articleID)
	p.mu.Unlock()

	return "sys-" + articleID, nil
}

func articles(ids ...string) []api.Article {
	out := make([]api.Article, 0, len(ids))
	for _, id := range ids {
		out = append(out, api.Article{ID: id, Title: "t-" + id, Body: "b"})
	}

	return out
}

func TestSyncArticles_AllSucceed(t *testing.T) {
	pusher := &fakePusher{}
	syncer := NewSyncer(pusher, 2, nil)

	report, err := syncer.SyncArticles(context.Background(), articles("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Pushed)
	assert.Empty(t, report.Errors)
	assert.Len(t, pusher.pushed, 3)
}

func TestSyncArticles_FailuresDoNotAbortBatch(t *testing.T) {
	pusher := &fakePusher{failIDs: map[string]bool{"b": true}}
	syncer := NewSyncer(pusher, 2, nil)

	report, err := syncer.SyncArticles(context.Background(), articles("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pushed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "b", report.Errors[0].ArticleID)
}

func TestSyncArticles_EmptyBatch(t *testing.T) {
	syncer := NewSyncer(&fakePusher{}, 0, nil)

	report, err := syncer.SyncArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Pushed)
}

func TestSyncArticles_RespectsWorkerLimit(t *testing.T) {
	pusher := &fakePusher{}
	syncer := NewSyncer(pusher, 2, nil)

	_, err := syncer.SyncArticles(context.Background(), articles("a", "b", "c", "d", "e", "f"))
	require.NoError(t, err)
	assert.LessOrEqual(t, pusher.maxSeen.Load(), int32(2))
}

func TestSyncArticles_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pusher := &fakePusher{failIDs: map[string]bool{"a": true, "b": true}}
	syncer := NewSyncer(pusher, 1, nil)

	_, err := syncer.SyncArticles(ctx, articles("a", "b"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
