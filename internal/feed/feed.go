// Package feed keeps one live websocket connection to a thread's message
// feed and reconnects with a bounded linear backoff when it drops.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
)

type State int

const (
	Closed State = iota
	Connecting
	Open
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Reconnecting:
		return "reconnecting"
	default:
		return "closed"
	}
}

const (
	baseDelay = 3 * time.Second
	stepDelay = time.Second
	maxDelay  = 10 * time.Second
)

// ReconnectDelay is the wait before reconnect attempt n (1-based).
func ReconnectDelay(attempt int) time.Duration {
	d := baseDelay + time.Duration(attempt)*stepDelay
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// Conn is one established feed connection. ReadMessage blocks until a data
// frame arrives or the connection fails.
type Conn interface {
	ReadMessage() ([]byte, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context, threadKey, clientID string) (Conn, error)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Client owns at most one connection and at most one pending reconnect
// timer. Every connection is tagged with a generation; callbacks from an
// older generation are ignored.
type Client struct {
	dialer    Dialer
	scheduler Scheduler
	logger    logger.ILogger

	mu         sync.Mutex
	state      State
	attempts   int
	generation uint64
	conn       Conn
	timer      Timer
	threadKey  string
	clientID   string

	nextID      int
	subscribers map[int]func(dto.Message)
	watchers    map[int]func(State)

	// beforeDial runs between starting a generation and dialing it. Tests
	// use it to interleave Close.
	beforeDial func()
}

func NewClient(dialer Dialer, log logger.ILogger) *Client {
	return NewClientWithScheduler(dialer, clockScheduler{}, log)
}

func NewClientWithScheduler(dialer Dialer, scheduler Scheduler, log logger.ILogger) *Client {
	return &Client{
		dialer:      dialer,
		scheduler:   scheduler,
		logger:      log,
		subscribers: make(map[int]func(dto.Message)),
		watchers:    make(map[int]func(State)),
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Subscribe registers fn for every inbound chat message. The returned func
// removes it.
func (c *Client) Subscribe(fn func(dto.Message)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Client) OnStateChange(fn func(State)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// Connect replaces any existing connection with a new one for threadKey.
// A failed dial schedules a reconnect and returns a *chaterr.TransportError.
func (c *Client) Connect(ctx context.Context, threadKey, clientID string) error {
	c.mu.Lock()
	stale := c.teardownLocked()
	c.threadKey = threadKey
	c.clientID = clientID
	gen := c.generation
	changes := c.setStateLocked(Connecting)
	c.mu.Unlock()
	closeConn(stale)
	c.emit(changes)

	return c.dial(ctx, gen, threadKey, clientID)
}

// Close cancels any pending reconnect and closes the connection. Calling it
// again is a no-op.
func (c *Client) Close() {
	c.mu.Lock()
	stale := c.teardownLocked()
	changes := c.setStateLocked(Closed)
	c.mu.Unlock()
	closeConn(stale)
	c.emit(changes)
}

// dial runs outside the lock. Its result is dropped if gen was superseded
// while it was in flight.
func (c *Client) dial(ctx context.Context, gen uint64, threadKey, clientID string) error {
	if c.beforeDial != nil {
		c.beforeDial()
	}
	if !c.isCurrent(gen) {
		return nil
	}

	conn, err := c.dialer.Dial(ctx, threadKey, clientID)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeConn(conn)
		return nil
	}
	if err != nil {
		changes := c.setStateLocked(Closed)
		changes = append(changes, c.scheduleReconnectLocked()...)
		attempt := c.attempts
		c.mu.Unlock()
		c.emit(changes)

		c.logger.Warn("Feed", "Connect failed", map[string]interface{}{
			"thread_key": threadKey,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		return &chaterr.TransportError{Op: "connect feed", Cause: err}
	}

	c.conn = conn
	c.attempts = 0
	changes := c.setStateLocked(Open)
	c.mu.Unlock()
	c.emit(changes)

	c.logger.Info("Feed", "Connected", map[string]interface{}{"thread_key": threadKey})
	go c.readLoop(gen, conn)
	return nil
}

// teardownLocked bumps the generation and detaches the current connection.
// The caller closes the returned conn after releasing the lock.
func (c *Client) teardownLocked() Conn {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	return conn
}

func closeConn(conn Conn) {
	if conn != nil {
		conn.Close()
	}
}

func (c *Client) scheduleReconnectLocked() []State {
	if c.timer != nil {
		return nil
	}
	c.attempts++
	delay := ReconnectDelay(c.attempts)
	gen := c.generation
	c.timer = c.scheduler.AfterFunc(delay, func() { c.reconnect(gen) })

	c.logger.Debug("Feed", "Reconnect scheduled", map[string]interface{}{
		"attempt":  c.attempts,
		"delay_ms": delay.Milliseconds(),
	})
	return c.setStateLocked(Reconnecting)
}

// reconnect checks gen and starts the next generation in one critical
// section, so a Close that lands after the timer fired still wins.
func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	stale := c.teardownLocked()
	next := c.generation
	threadKey, clientID := c.threadKey, c.clientID
	changes := c.setStateLocked(Connecting)
	c.mu.Unlock()
	closeConn(stale)
	c.emit(changes)

	// The error is already logged and a retry scheduled.
	_ = c.dial(context.Background(), next, threadKey, clientID)
}

func (c *Client) readLoop(gen uint64, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if gen != c.generation {
				c.mu.Unlock()
				return
			}
			c.conn = nil
			changes := c.setStateLocked(Closed)
			changes = append(changes, c.scheduleReconnectLocked()...)
			c.mu.Unlock()
			conn.Close()
			c.emit(changes)

			c.logger.Info("Feed", "Connection lost", map[string]interface{}{"error": err.Error()})
			return
		}

		if !c.isCurrent(gen) {
			return
		}
		c.dispatch(data)
	}
}

func (c *Client) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// dispatch is the only path from the wire to subscribers.
func (c *Client) dispatch(raw []byte) {
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("Feed", "Dropped malformed frame", map[string]interface{}{"error": err.Error()})
		return
	}
	if env.Type != dto.EnvelopeTypeMessage {
		c.logger.Debug("Feed", "Ignored envelope", map[string]interface{}{"type": env.Type})
		return
	}

	var msg dto.Message
	if err := json.Unmarshal(env.Data, &msg); err != nil {
		c.logger.Warn("Feed", "Dropped malformed message", map[string]interface{}{"error": err.Error()})
		return
	}

	c.mu.Lock()
	subs := make([]func(dto.Message), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}

func (c *Client) setStateLocked(s State) []State {
	if c.state == s {
		return nil
	}
	c.state = s
	return []State{s}
}

func (c *Client) emit(changes []State) {
	if len(changes) == 0 {
		return
	}
	c.mu.Lock()
	watchers := make([]func(State), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	c.mu.Unlock()

	for _, s := range changes {
		for _, fn := range watchers {
			fn(s)
		}
	}
}
