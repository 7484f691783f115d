package contract

import (
	"context"

	"url-chatroom/internal/entity"
)

type MessageRepository interface {
	// Create stores msg under msg.ThreadKey, creating the thread on first use.
	Create(ctx context.Context, msg *entity.Message) error
	// ListRecent returns the newest limit messages of a thread, oldest first.
	// An unknown thread yields an empty slice.
	ListRecent(ctx context.Context, threadKey string, limit int) ([]*entity.Message, error)
}
