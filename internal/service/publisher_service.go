package service

import (
	"context"
	"encoding/json"

	"url-chatroom/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishMessage(ctx context.Context, msg dto.Message) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishMessage(ctx context.Context, msg dto.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	out := message.NewMessage(watermill.NewUUID(), payload)
	out.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, out)
}
