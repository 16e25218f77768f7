// Package notify subscribes to the backend's change-event stream and feeds
// content-change events to a handler, which evicts the matching response
// cache rows so the next read refetches. Used by the watch command.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ahakola/kbcenter-go/internal/kbid"
)

// Reconnect backoff bounds. Backoff doubles per consecutive failure and
// resets after a successful read.
const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 2 * time.Minute
)

// Event is one content-change notification. Kind matches the cache
// collaborator names (articles, categories, team, analytics).
type Event struct {
	Kind string  `json:"kind"`
	KBID kbid.ID `json:"kbId"`
}

// Handler processes one event. Handler errors are logged, not fatal.
type Handler func(ctx context.Context, ev Event) error

// Listener maintains a websocket subscription to the event stream with
// reconnect and capped backoff.
type Listener struct {
	url     string // ws(s) URL, already scoped to the active knowledge base
	token   string // bearer token for the subscribe request
	handler Handler
	logger  *slog.Logger

	// sleepFunc waits between reconnect attempts. Tests override it.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewListener creates a Listener for the given event-stream URL.
func NewListener(url, token string, handler Handler, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}

	return &Listener{
		url:     url,
		token:   token,
		handler: handler,
		logger:  logger,
		sleepFunc: func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		},
	}
}

// Run subscribes and processes events until the context is canceled. Every
// connection failure reconnects with doubled backoff, capped; a successful
// read resets the backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := initialBackoff

	for {
		err := l.listenOnce(ctx, &backoff)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.logger.Warn("event stream disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Duration("backoff", backoff),
		)

		if sleepErr := l.sleepFunc(ctx, backoff); sleepErr != nil {
			return sleepErr
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// listenOnce dials the stream and reads events until the connection drops.
// A successful read resets the caller's backoff through the pointer.
func (l *Listener) listenOnce(ctx context.Context, backoff *time.Duration) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+l.token)

	conn, _, err := websocket.Dial(ctx, l.url, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		return fmt.Errorf("notify: dialing event stream: %w", err)
	}

	defer conn.Close(websocket.StatusNormalClosure, "")

	l.logger.Info("subscribed to event stream", slog.String("url", l.url))

	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			// Normal closure means the server is cycling; reconnect.
			if errors.Is(err, context.Canceled) {
				return err
			}

			return fmt.Errorf("notify: reading event: %w", err)
		}

		*backoff = initialBackoff

		l.logger.Debug("received change event",
			slog.String("kind", ev.Kind),
			slog.String("kb_id", ev.KBID.String()),
		)

		if err := l.handler(ctx, ev); err != nil {
			l.logger.Warn("event handler failed",
				slog.String("kind", ev.Kind),
				slog.String("error", err.Error()),
			)
		}
	}
}
