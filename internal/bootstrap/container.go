package bootstrap

import (
	"context"
	"net/http"
	"time"

	"url-chatroom/internal/config"
	"url-chatroom/internal/controller"
	"url-chatroom/internal/handler"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/repository/contract"
	"url-chatroom/internal/repository/implementation"
	"url-chatroom/internal/repository/memory"
	"url-chatroom/internal/service"
	"url-chatroom/internal/websocket"
	pktNats "url-chatroom/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container holds the wired components of the development backend.
type Container struct {
	AuthController    controller.IAuthController
	MessageController controller.IMessageController
	FeedHandler       *handler.FeedHandler
	Tokens            service.ITokenService

	// Background services, started by Start.
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	closers []func()
}

// NewContainer wires the backend. A nil db selects the in-memory repositories.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, log logger.ILogger) *Container {
	var (
		users    contract.UserRepository
		messages contract.MessageRepository
	)
	if db != nil {
		users = implementation.NewUserRepository(db)
		messages = implementation.NewMessageRepository(db)
	} else {
		log.Warn("Container", "No database configured, using in-memory repositories", nil)
		users = memory.NewUserRepository()
		messages = memory.NewMessageRepository()
	}
	limiter := memory.NewRateLimitRepository(cfg.Server.RateLimitMax, cfg.Server.RateLimitWindow)

	c := &Container{}

	// Event bus between the REST write path and the socket fan-out.
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { pubSub.Close() })

	var rdb *redis.Client
	if cfg.Server.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.Server.RedisURL)
		if err != nil {
			log.Warn("Container", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{Addr: cfg.Server.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Container", "Failed to connect to Redis, relaying disabled", map[string]interface{}{"error": err.Error()})
			rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { rdb.Close() })
		}
	}

	var bus service.EventPublisher
	if cfg.Notify.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.Notify.NatsURL)
		if err != nil {
			log.Warn("Container", "Failed to connect to NATS publisher", map[string]interface{}{"error": err.Error()})
		} else {
			bus = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	c.WebSocketHub = websocket.NewHub(rdb, log)
	c.Tokens = service.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)

	verifier := service.NewGoogleVerifier(
		cfg.Server.GoogleUserInfoURL,
		cfg.Server.GoogleTokenInfoURL,
		cfg.Server.GoogleClientID,
		&http.Client{Timeout: 10 * time.Second},
	)
	publisher := service.NewPublisherService(cfg.Server.EventTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Server.EventTopic, c.WebSocketHub, bus, log)

	authService := service.NewAuthService(users, verifier, c.Tokens, log)
	messageService := service.NewMessageService(messages, users, limiter, publisher, log)

	c.AuthController = controller.NewAuthController(authService)
	c.MessageController = controller.NewMessageController(messageService)
	c.FeedHandler = handler.NewFeedHandler(c.WebSocketHub, log)

	return c
}

// Start launches the hub and the broadcast consumer. Both stop with ctx.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
