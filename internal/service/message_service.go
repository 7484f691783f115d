package service

import (
	"context"
	"strconv"
	"strings"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/entity"
	"url-chatroom/internal/mapper"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/pkg/serverutils"
	"url-chatroom/internal/repository/contract"
	"url-chatroom/pkg/urlnorm"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type RateLimiter interface {
	Allow(key string) bool
}

type IMessageService interface {
	List(ctx context.Context, threadKey string, limit int) ([]dto.Message, error)
	Create(ctx context.Context, userID int64, remoteIP string, req *dto.CreateMessageRequest) (*dto.Message, error)
}

type messageService struct {
	messages  contract.MessageRepository
	users     contract.UserRepository
	limiter   RateLimiter
	publisher IPublisherService
	mapper    *mapper.MessageMapper
	logger    logger.ILogger
}

func NewMessageService(
	messages contract.MessageRepository,
	users contract.UserRepository,
	limiter RateLimiter,
	publisher IPublisherService,
	log logger.ILogger,
) IMessageService {
	return &messageService{
		messages:  messages,
		users:     users,
		limiter:   limiter,
		publisher: publisher,
		mapper:    mapper.NewMessageMapper(),
		logger:    log,
	}
}

// List returns the newest limit messages of a thread, oldest first.
func (s *messageService) List(ctx context.Context, threadKey string, limit int) ([]dto.Message, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, serverutils.NewError(fiber.StatusUnprocessableEntity, "limit must be between 1 and "+strconv.Itoa(MaxHistoryLimit))
	}
	key, err := urlnorm.NormalizeThreadKey(threadKey)
	if err != nil {
		return nil, serverutils.BadRequest(err.Error())
	}

	rows, err := s.messages.ListRecent(ctx, key, limit)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponses(rows), nil
}

// Create stores a message on behalf of the signed-in user and hands it to
// the broadcast pipeline. The sender label is always the user's display name.
func (s *messageService) Create(ctx context.Context, userID int64, remoteIP string, req *dto.CreateMessageRequest) (*dto.Message, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.Unauthorized("user not found")
	}

	key, err := urlnorm.NormalizeThreadKey(req.ThreadKey)
	if err != nil {
		return nil, serverutils.BadRequest(err.Error())
	}

	if !s.limiter.Allow(strconv.FormatInt(user.Id, 10) + ":" + remoteIP) {
		return nil, serverutils.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, serverutils.NewError(fiber.StatusUnprocessableEntity, "content cannot be empty")
	}

	msg := &entity.Message{
		ThreadKey: key,
		ClientId:  user.DisplayName,
		Content:   content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	res := s.mapper.ToResponse(msg)
	if err := s.publisher.PublishMessage(ctx, res); err != nil {
		// The message is stored; live subscribers will see it on their next history load.
		s.logger.Error("MessageService", "Failed to publish message", map[string]interface{}{
			"message_id": msg.Id,
			"error":      err.Error(),
		})
	}
	return &res, nil
}
