package controller

import (
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/serverutils"
	"url-chatroom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	VerifyGoogle(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
	UpdateMe(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/auth")
	h.Post("/google/verify", c.VerifyGoogle)
	h.Get("/me", auth, c.Me)
	h.Patch("/me", auth, c.UpdateMe)
}

func (c *authController) VerifyGoogle(ctx *fiber.Ctx) error {
	var req dto.GoogleVerifyRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.VerifyGoogle(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Me(ctx.UserContext(), userID)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *authController) UpdateMe(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := serverutils.ValidateRequest(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.UpdateMe(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
