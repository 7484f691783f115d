package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"url-chatroom/internal/api"
	"url-chatroom/internal/chat"
	"url-chatroom/internal/config"
	"url-chatroom/internal/feed"
	"url-chatroom/internal/identity"
	"url-chatroom/internal/notify"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/session"
	"url-chatroom/internal/storage"
	pktNats "url-chatroom/pkg/nats"
)

// ClientContainer holds the wired components of the terminal client.
type ClientContainer struct {
	Store    storage.Store
	Sessions *session.Store
	API      *api.Client
	Identity *identity.Bridge
	Provider *identity.GoogleProvider
	Feed     *feed.Client
	Notifier notify.Notifier

	closers []func()
}

// NewClientContainer opens the session storage and wires the client. out
// receives terminal notifications.
func NewClientContainer(ctx context.Context, cfg *config.Config, log logger.ILogger, out io.Writer) (*ClientContainer, error) {
	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	c := &ClientContainer{Store: kv}
	c.closers = append(c.closers, func() { kv.Close() })

	c.Sessions = session.NewStore(kv, log)
	c.API = api.NewClient(cfg.App.APIBaseURL, c.Sessions, &http.Client{Timeout: 15 * time.Second}, log)
	c.Provider = identity.NewGoogleProvider(cfg.Google, log)
	c.Identity = identity.NewBridge(c.Provider, c.API, c.Sessions, log)
	c.Feed = feed.NewClient(feed.NewWebsocketDialer(cfg.App.WSBaseURL), log)

	var sinks notify.Multi
	if cfg.Notify.Terminal {
		sinks = append(sinks, notify.NewTerminalNotifier(out, true))
	}
	if cfg.Notify.NatsURL != "" {
		pub, err := pktNats.NewPublisher(ctx, cfg.Notify.NatsURL)
		if err != nil {
			log.Warn("ClientContainer", "NATS notifications disabled", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, pub.Close)
			sinks = append(sinks, &lazyNatsNotifier{publisher: pub, sessions: c.Sessions})
		}
	}
	c.Notifier = sinks

	return c, nil
}

// Controller builds a chat controller for one page.
func (c *ClientContainer) Controller(tab chat.TabResolver, renderer chat.Renderer, log logger.ILogger, historyLimit int) *chat.Controller {
	return chat.NewController(chat.Options{
		Tab:          tab,
		Renderer:     renderer,
		Sessions:     c.Sessions,
		Identity:     c.Identity,
		Messages:     c.API,
		Feed:         c.Feed,
		Notifier:     c.Notifier,
		Logger:       log,
		HistoryLimit: historyLimit,
	})
}

func (c *ClientContainer) Close() {
	c.Feed.Close()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// lazyNatsNotifier tags events with the client id known after the session
// has been loaded.
type lazyNatsNotifier struct {
	publisher notify.EventPublisher
	sessions  *session.Store
}

func (n *lazyNatsNotifier) Notify(ctx context.Context, note notify.Notification) error {
	return notify.NewNatsNotifier(n.publisher, n.sessions.ClientID()).Notify(ctx, note)
}
