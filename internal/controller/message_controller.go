package controller

import (
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/serverutils"
	"url-chatroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IMessageService
}

func NewMessageController(service service.IMessageService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/messages", c.List)
	r.Post("/messages", auth, c.Create)
}

func (c *messageController) List(ctx *fiber.Ctx) error {
	threadKey := ctx.Query("thread_key")
	if threadKey == "" {
		return serverutils.NewError(fiber.StatusUnprocessableEntity, "thread_key is required")
	}

	res, err := c.service.List(ctx.UserContext(), threadKey, ctx.QueryInt("limit", service.DefaultHistoryLimit))
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *messageController) Create(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.UserContext(), userID, ctx.IP(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
