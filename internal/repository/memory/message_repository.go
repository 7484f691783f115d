package memory

import (
	"context"
	"sync"
	"time"

	"url-chatroom/internal/entity"
	"url-chatroom/internal/repository/contract"
)

type MessageRepository struct {
	mu      sync.RWMutex
	nextID  int64
	threads map[string][]entity.Message
}

func NewMessageRepository() contract.MessageRepository {
	return &MessageRepository{threads: make(map[string][]entity.Message)}
}

func (r *MessageRepository) Create(_ context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	msg.Id = r.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	r.threads[msg.ThreadKey] = append(r.threads[msg.ThreadKey], *msg)
	return nil
}

func (r *MessageRepository) ListRecent(_ context.Context, threadKey string, limit int) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.threads[threadKey]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}
	out := make([]*entity.Message, 0, len(all)-start)
	for i := start; i < len(all); i++ {
		m := all[i]
		out = append(out, &m)
	}
	return out, nil
}
