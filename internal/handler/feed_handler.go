package handler

import (
	"net/url"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/service"
	internalWS "url-chatroom/internal/websocket"
	"url-chatroom/pkg/urlnorm"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const anonymousClient = "anonymous"

// FeedHandler upgrades /ws/{thread_key} requests into live message feeds.
type FeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{hub: hub, logger: log}
}

func (h *FeedHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/ws/*", h.ServeWs)
}

// ServeWs accepts the socket first so an invalid thread key can be reported
// in-band before closing with a policy violation.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	// Routing runs on the raw path, so the key arrives still escaped.
	rawKey, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		rawKey = c.Params("*")
	}
	clientID := c.Query("client_id")
	if clientID == "" {
		clientID = anonymousClient
	}

	return websocket.New(func(conn *websocket.Conn) {
		threadKey, err := urlnorm.NormalizeThreadKey(rawKey)
		if err != nil {
			frame, _ := service.EncodeEnvelope(dto.EnvelopeTypeError, dto.ErrorResponse{Detail: err.Error()})
			internalWS.Reject(conn, frame, websocket.ClosePolicyViolation, err.Error())
			return
		}

		welcome, _ := service.EncodeEnvelope(dto.EnvelopeTypeSystem, dto.SystemEvent{
			ClientId: clientID,
			Status:   "connected",
		})

		h.logger.Info("FeedHandler", "Starting feed session", map[string]interface{}{
			"thread_key": threadKey,
			"client_id":  clientID,
		})
		internalWS.ServeWs(h.hub, conn, threadKey, clientID, welcome)
		h.logger.Info("FeedHandler", "Feed session ended", map[string]interface{}{
			"thread_key": threadKey,
			"client_id":  clientID,
		})
	})(c)
}
