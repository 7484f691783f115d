package notify

import (
	"context"

	"url-chatroom/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NatsNotifier publishes notifications as CHAT_NOTIFICATION events for
// desktop integrations listening on the bus.
type NatsNotifier struct {
	publisher EventPublisher
	clientID  string
}

func NewNatsNotifier(publisher EventPublisher, clientID string) *NatsNotifier {
	return &NatsNotifier{publisher: publisher, clientID: clientID}
}

func (n *NatsNotifier) Notify(ctx context.Context, note Notification) error {
	return n.publisher.Publish(ctx, events.NewEvent(events.ChatNotification, map[string]interface{}{
		"client_id":  n.clientID,
		"kind":       string(note.Kind),
		"title":      note.Title,
		"body":       note.Body,
		"thread_key": note.Message.ThreadKey,
		"message_id": note.Message.Id,
		"sender":     note.Message.ClientId,
	}))
}
