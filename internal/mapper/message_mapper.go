package mapper

import (
	"url-chatroom/internal/dto"
	"url-chatroom/internal/entity"
	"url-chatroom/internal/model"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message, threadKey string) *entity.Message {
	if msg == nil {
		return nil
	}
	return &entity.Message{
		Id:        msg.Id,
		ThreadKey: threadKey,
		ClientId:  msg.ClientId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message, threadID int64) *model.Message {
	return &model.Message{
		Id:        msg.Id,
		ThreadId:  threadID,
		ClientId:  msg.ClientId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) ToResponse(msg *entity.Message) dto.Message {
	return dto.Message{
		Id:        msg.Id,
		ThreadKey: msg.ThreadKey,
		ClientId:  msg.ClientId,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *MessageMapper) ToResponses(msgs []*entity.Message) []dto.Message {
	out := make([]dto.Message, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.ToResponse(msg))
	}
	return out
}
