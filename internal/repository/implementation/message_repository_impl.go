package implementation

import (
	"context"
	"errors"

	"url-chatroom/internal/entity"
	"url-chatroom/internal/mapper"
	"url-chatroom/internal/model"
	"url-chatroom/internal/repository/contract"
	"url-chatroom/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MessageMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewMessageMapper(),
	}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, msg *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread model.Thread
		err := tx.Where(model.Thread{ThreadKey: msg.ThreadKey}).FirstOrCreate(&thread).Error
		if err != nil {
			return err
		}

		modelMsg := r.mapper.ToModel(msg, thread.Id)
		if err := tx.Create(modelMsg).Error; err != nil {
			return err
		}
		*msg = *r.mapper.ToEntity(modelMsg, thread.ThreadKey)
		return nil
	})
}

func (r *MessageRepositoryImpl) ListRecent(ctx context.Context, threadKey string, limit int) ([]*entity.Message, error) {
	var thread model.Thread
	err := applySpecifications(r.db.WithContext(ctx), specification.ByThreadKey{ThreadKey: threadKey}).First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []*entity.Message{}, nil
		}
		return nil, err
	}

	var rows []*model.Message
	query := applySpecifications(r.db.WithContext(ctx),
		specification.ByThreadID{ThreadID: thread.Id},
		specification.NewestFirst{},
		specification.Limit{N: limit},
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = r.mapper.ToEntity(row, thread.ThreadKey)
	}
	return out, nil
}
