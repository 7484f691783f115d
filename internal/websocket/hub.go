package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"url-chatroom/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "urlchat:thread_events"

// Hub tracks the live sockets of every thread and fans frames out to them.
// With Redis configured, frames are also relayed to hubs on other instances.
type Hub struct {
	// Registered clients: thread key -> set of sockets.
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type clusterFrame struct {
	Origin    string          `json:"origin"`
	ThreadKey string          `json:"thread_key"`
	Message   json.RawMessage `json:"message"`
}

// NewHub returns a hub. rdb may be nil for a single-instance deployment.
func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled, then closes every socket.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.ThreadKey]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.ThreadKey] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("Hub", "Client registered", map[string]interface{}{
				"thread_key": client.ThreadKey,
				"client_id":  client.ClientID,
			})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[client.ThreadKey]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.clients, client.ThreadKey)
		h.logger.Debug("Hub", "Thread has no listeners", map[string]interface{}{"thread_key": client.ThreadKey})
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for key, set := range h.clients {
		for client := range set {
			close(client.Send)
		}
		delete(h.clients, key)
	}
	h.mu.Unlock()
	close(h.done)
}

// Count reports how many sockets are listening on a thread.
func (h *Hub) Count(threadKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[threadKey])
}

// Broadcast sends payload to every socket of threadKey on this instance and
// relays it to other instances.
func (h *Hub) Broadcast(threadKey string, payload []byte) {
	h.deliverLocal(threadKey, payload)

	if h.rdb == nil {
		return
	}
	data, err := json.Marshal(clusterFrame{Origin: h.instanceID, ThreadKey: threadKey, Message: payload})
	if err != nil {
		return
	}
	if err := h.rdb.Publish(context.Background(), clusterChannel, data).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to relay frame", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) deliverLocal(threadKey string, payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients[threadKey] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping socket", map[string]interface{}{
			"thread_key": threadKey,
			"client_id":  client.ClientID,
		})
		go h.drop(client)
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) drop(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame clusterFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				h.logger.Warn("Hub", "Redis frame parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Frames from this instance were already delivered locally.
			if frame.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(frame.ThreadKey, frame.Message)
		}
	}
}
