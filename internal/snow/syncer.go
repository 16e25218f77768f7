package snow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ahakola/kbcenter-go/internal/api"
)

// defaultWorkers bounds concurrent pushes against one instance.
const defaultWorkers = 4

// Pusher is the client surface the syncer needs.
type Pusher interface {
	PushArticle(ctx context.Context, articleID, title, bodyText string) (string, error)
}

// ArticleError records one failed push within a batch.
type ArticleError struct {
	ArticleID string
	Title     string
	Err       error
}

// Report summarizes one sync run. Failed pushes do not abort the batch;
// they are collected here for the caller to display.
type Report struct {
	Pushed int
	Errors []ArticleError
}

// Syncer pushes a knowledge base's articles into ServiceNow through a
// bounded worker pool.
type Syncer struct {
	pusher  Pusher
	workers int
	logger  *slog.Logger
}

// NewSyncer creates a Syncer. workers <= 0 selects the default.
func NewSyncer(pusher Pusher, workers int, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}

	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Syncer{
		pusher:  pusher,
		workers: workers,
		logger:  logger,
	}
}

// SyncArticles pushes every article through the pool. Per-article failures
// are recorded in the report; only context cancellation aborts the run.
func (s *Syncer) SyncArticles(ctx context.Context, articles []api.Article) (*Report, error) {
	if len(articles) == 0 {
		return &Report{}, nil
	}

	s.logger.Info("starting article sync",
		slog.Int("count", len(articles)),
		slog.Int("workers", s.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	var (
		mu     sync.Mutex
		report Report
	)

	for i := range articles {
		article := &articles[i]

		g.Go(func() error {
			_, err := s.pusher.PushArticle(gctx, article.ID, article.Title, article.Body)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				// Cancellation is fatal; everything else is per-article.
				if gctx.Err() != nil {
					return fmt.Errorf("snow: sync canceled: %w", gctx.Err())
				}

				report.Errors = append(report.Errors, ArticleError{
					ArticleID: article.ID,
					Title:     article.Title,
					Err:       err,
				})

				s.logger.Warn("article push failed",
					slog.String("article_id", article.ID),
					slog.String("error", err.Error()),
				)

				return nil
			}

			report.Pushed++

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return &report, err
	}

	s.logger.Info("article sync finished",
		slog.Int("pushed", report.Pushed),
		slog.Int("failed", len(report.Errors)),
	)

	return &report, nil
}
