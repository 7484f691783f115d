package service

import (
	"context"
	"encoding/json"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Broadcaster delivers a ready-to-send frame to every socket of a thread.
type Broadcaster interface {
	Broadcast(threadKey string, payload []byte)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       Broadcaster
	events    EventPublisher
	logger    logger.ILogger
}

// NewConsumerService fans stored messages out to websocket subscribers.
// events may be nil; when set, every message is also mirrored to the bus.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub Broadcaster,
	events EventPublisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		events:    events,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.Message
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
		// Malformed payloads can never succeed.
		msg.Ack()
		return
	}

	frame, err := EncodeEnvelope(dto.EnvelopeTypeMessage, payload)
	if err != nil {
		msg.Ack()
		return
	}
	cs.hub.Broadcast(payload.ThreadKey, frame)

	if cs.events != nil {
		err := cs.events.Publish(ctx, events.NewEvent(events.MessageCreated, map[string]interface{}{
			"id":         payload.Id,
			"thread_key": payload.ThreadKey,
			"client_id":  payload.ClientId,
			"content":    payload.Content,
			"created_at": payload.CreatedAt,
		}))
		if err != nil {
			cs.logger.Warn("ConsumerService", "Failed to mirror message to bus", map[string]interface{}{
				"message_id": payload.Id,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}

// EncodeEnvelope wraps data in a {type, data} feed frame.
func EncodeEnvelope(envelopeType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dto.Envelope{Type: envelopeType, Data: raw})
}
