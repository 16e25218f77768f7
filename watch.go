package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahakola/kbcenter-go/internal/cache"
	"github.com/ahakola/kbcenter-go/internal/config"
	"github.com/ahakola/kbcenter-go/internal/notify"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow backend change events and keep the response cache fresh",
		Long: "Subscribes to the backend's change-event stream for the active knowledge\n" +
			"base and evicts matching cache entries as events arrive. Also reloads the\n" +
			"config file when it changes on disk. Runs until interrupted.",
		RunE: runWatch,
	}
}

// eventStreamURL derives the websocket endpoint from the API base URL.
func eventStreamURL(baseURL, scopedPath string) string {
	ws := strings.Replace(baseURL, "http", "ws", 1)

	return ws + scopedPath
}

func runWatch(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := newSession(ctx, loadedCfg, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := requireActive(session); err != nil {
		return err
	}

	active, err := session.Resolver.Active()
	if err != nil {
		return err
	}

	token, err := session.Token.Token()
	if err != nil {
		return err
	}

	url := eventStreamURL(loadedCfg.APIBaseURL, session.Resolver.ScopeURL("/api/events"))

	listener := notify.NewListener(url, token, func(ctx context.Context, ev notify.Event) error {
		// Events for other knowledge bases are not cached under this scope.
		if !ev.KBID.Equal(active) {
			return nil
		}

		return session.Cache.EvictKind(ctx, cache.Kind(ev.Kind), ev.KBID)
	}, logger)

	holder := config.NewHolder(loadedCfg)
	configPath := config.ConfigPathFromEnv()
	if flagConfigPath != "" {
		configPath = flagConfigPath
	}

	statusf("Watching knowledge base %s for changes (Ctrl-C to stop).\n", active)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return listener.Run(gctx)
	})

	g.Go(func() error {
		err := config.Watch(gctx, configPath, holder, logger)
		if errors.Is(err, context.Canceled) {
			return err
		}

		// A watcher that cannot start (e.g. missing config directory) is
		// not fatal for the event stream.
		if err != nil {
			logger.Warn("config watch unavailable", "error", err.Error())
		}

		<-gctx.Done()

		return gctx.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch: %w", err)
	}

	statusf("Stopped.\n")

	return nil
}
