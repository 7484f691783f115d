// Package chat wires the session, identity, history and live feed together
// for one active page.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/feed"
	"url-chatroom/internal/notify"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/pkg/validation"
	"url-chatroom/internal/session"
	"url-chatroom/pkg/urlnorm"
)

const DefaultHistoryLimit = 100

// TabResolver yields the URL of the page the user is looking at.
type TabResolver interface {
	ActiveURL(ctx context.Context) (string, error)
}

// Renderer is the host UI. Calls may arrive from the feed goroutine.
type Renderer interface {
	Page(normalizedURL string)
	ClearMessages()
	RenderMessage(msg dto.Message)
	Status(text string)
	ConnectionState(state string)
	User(user *dto.User)
}

type Identity interface {
	SignIn(ctx context.Context) (*dto.User, error)
	SignOut(ctx context.Context) error
	FetchProfile(ctx context.Context) (*dto.User, error)
	UpdateDisplayName(ctx context.Context, name string) (*dto.User, error)
}

type Messages interface {
	ListMessages(ctx context.Context, threadKey string, limit int) ([]dto.Message, error)
	PostMessage(ctx context.Context, req dto.CreateMessageRequest) (*dto.Message, error)
}

type Feed interface {
	Connect(ctx context.Context, threadKey, clientID string) error
	Close()
	Subscribe(fn func(dto.Message)) func()
	OnStateChange(fn func(feed.State)) func()
}

type Options struct {
	Tab          TabResolver
	Renderer     Renderer
	Sessions     *session.Store
	Identity     Identity
	Messages     Messages
	Feed         Feed
	Notifier     notify.Notifier
	Logger       logger.ILogger
	HistoryLimit int
}

type outgoingMessage struct {
	Content string `json:"content" label:"Message" validate:"required,max=1000"`
}

type Controller struct {
	tab          TabResolver
	renderer     Renderer
	sessions     *session.Store
	identity     Identity
	messages     Messages
	feed         Feed
	notifier     notify.Notifier
	logger       logger.ILogger
	historyLimit int

	sending atomic.Bool

	mu          sync.Mutex
	threadKey   string
	prefs       session.Preferences
	unsubscribe func()
	unwatch     func()
}

func NewController(opts Options) *Controller {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	return &Controller{
		tab:          opts.Tab,
		renderer:     opts.Renderer,
		sessions:     opts.Sessions,
		identity:     opts.Identity,
		messages:     opts.Messages,
		feed:         opts.Feed,
		notifier:     opts.Notifier,
		logger:       opts.Logger,
		historyLimit: opts.HistoryLimit,
		prefs:        session.DefaultPreferences(),
	}
}

func (c *Controller) ThreadKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadKey
}

func (c *Controller) Preferences() session.Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Activate resolves the thread for the active page, restores the session,
// renders history, opens the live feed and then resolves the profile, in
// that order. History and feed failures are reported but do not abort.
func (c *Controller) Activate(ctx context.Context) error {
	c.Deactivate()

	raw, err := c.tab.ActiveURL(ctx)
	if err != nil {
		c.renderer.Status("Unable to read the active page")
		return err
	}
	normalized, err := urlnorm.Normalize(raw)
	if err != nil {
		c.renderer.Status("This page cannot be used as a chat room")
		return err
	}
	threadKey := urlnorm.ThreadKeyPrefix + normalized
	c.renderer.Page(normalized)

	sess, err := c.sessions.Load(ctx)
	if err != nil {
		c.renderer.Status("Unable to restore your session")
		return err
	}

	prefs, err := c.sessions.LoadPreferences(ctx)
	if err != nil {
		c.logger.Warn("Chat", "Using default preferences", map[string]interface{}{"error": err.Error()})
		prefs = session.DefaultPreferences()
	}

	c.mu.Lock()
	c.threadKey = threadKey
	c.prefs = prefs
	c.mu.Unlock()

	c.renderer.User(sess.User)
	c.loadHistory(ctx, threadKey)

	unsubscribe := c.feed.Subscribe(c.onMessage)
	unwatch := c.feed.OnStateChange(c.onState)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.unwatch = unwatch
	c.mu.Unlock()

	if err := c.feed.Connect(ctx, threadKey, sess.ClientID); err != nil {
		c.logger.Warn("Chat", "Initial feed connect failed", map[string]interface{}{"error": err.Error()})
	}

	c.resolveProfile(ctx)
	c.logger.Info("Chat", "Activated", map[string]interface{}{"thread_key": threadKey})
	return nil
}

func (c *Controller) loadHistory(ctx context.Context, threadKey string) {
	msgs, err := c.messages.ListMessages(ctx, threadKey, c.historyLimit)
	if err != nil {
		c.logger.Warn("Chat", "History fetch failed", map[string]interface{}{"error": err.Error()})
		c.renderer.Status("Failed to load messages")
		return
	}
	c.renderer.ClearMessages()
	for _, m := range msgs {
		c.renderer.RenderMessage(m)
	}
}

func (c *Controller) resolveProfile(ctx context.Context) {
	user, err := c.identity.FetchProfile(ctx)
	switch {
	case errors.Is(err, chaterr.ErrSessionInvalid):
		if cerr := c.sessions.Clear(ctx); cerr != nil {
			c.logger.Error("Chat", "Failed to clear rejected session", map[string]interface{}{"error": cerr.Error()})
		}
		c.renderer.User(nil)
	case err != nil:
		c.logger.Warn("Chat", "Profile check failed", map[string]interface{}{"error": err.Error()})
		c.renderer.Status("Unable to reach the chat server")
		c.sessions.SetUser(nil)
		c.renderer.User(nil)
	default:
		c.renderer.User(user)
	}
}

// Deactivate closes the feed and detaches from it.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	unsubscribe, unwatch := c.unsubscribe, c.unwatch
	c.unsubscribe, c.unwatch = nil, nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if unwatch != nil {
		unwatch()
	}
	c.feed.Close()
}

// Send posts content to the current thread as the signed-in user. Only one
// send may be in flight; the posted message comes back over the feed.
func (c *Controller) Send(ctx context.Context, content string) error {
	err := c.send(ctx, content)
	if err != nil {
		c.renderer.Status(chaterr.Message(err, "Failed to send message"))
	}
	return err
}

func (c *Controller) send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if err := validation.Struct(outgoingMessage{Content: content}); err != nil {
		return err
	}

	user := c.sessions.User()
	if user == nil {
		return chaterr.ErrNotSignedIn
	}

	if !c.sending.CompareAndSwap(false, true) {
		return chaterr.ErrSendInProgress
	}
	defer c.sending.Store(false)

	_, err := c.messages.PostMessage(ctx, dto.CreateMessageRequest{
		ThreadKey: c.ThreadKey(),
		ClientId:  user.DisplayName,
		Content:   content,
	})
	if err != nil {
		c.logger.Warn("Chat", "Send failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (c *Controller) SignIn(ctx context.Context) error {
	user, err := c.identity.SignIn(ctx)
	if err != nil {
		c.renderer.Status(chaterr.Message(err, "Google sign-in failed"))
		return err
	}
	c.renderer.User(user)
	c.renderer.Status("Signed in as " + user.DisplayName)
	return nil
}

func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.identity.SignOut(ctx); err != nil {
		c.renderer.User(c.sessions.User())
		c.renderer.Status(chaterr.Message(err, "Failed to sign out"))
		return err
	}
	c.renderer.User(nil)
	c.renderer.Status("Signed out")
	return nil
}

func (c *Controller) UpdateDisplayName(ctx context.Context, name string) error {
	user, err := c.identity.UpdateDisplayName(ctx, name)
	if err != nil {
		c.renderer.Status(chaterr.Message(err, "Failed to update nickname"))
		return err
	}
	c.renderer.User(user)
	c.renderer.Status("Nickname updated")
	return nil
}

func (c *Controller) SetPreferences(ctx context.Context, prefs session.Preferences) error {
	if err := c.sessions.SavePreferences(ctx, prefs); err != nil {
		c.renderer.Status("Failed to save preferences")
		return err
	}
	c.mu.Lock()
	c.prefs = prefs
	c.mu.Unlock()
	c.renderer.Status("Preferences saved")
	return nil
}

func (c *Controller) onMessage(msg dto.Message) {
	c.renderer.RenderMessage(msg)

	n, ok := notify.Evaluate(msg, c.sessions.User(), c.Preferences())
	if !ok {
		return
	}
	if err := c.notifier.Notify(context.Background(), n); err != nil {
		c.logger.Warn("Chat", "Notification failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Controller) onState(s feed.State) {
	switch s {
	case feed.Open:
		c.renderer.ConnectionState("connected")
	case feed.Reconnecting:
		c.renderer.ConnectionState("reconnecting")
	case feed.Closed:
		c.renderer.ConnectionState("offline")
	}
}
