package serverutils

import (
	"errors"

	"url-chatroom/internal/chaterr"
	"url-chatroom/internal/dto"
	"url-chatroom/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// HTTPError is a failure with a status code and a user-facing detail.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string { return e.Detail }

func NewError(status int, detail string) *HTTPError {
	return &HTTPError{Status: status, Detail: detail}
}

func Unauthorized(detail string) *HTTPError {
	return NewError(fiber.StatusUnauthorized, detail)
}

func BadRequest(detail string) *HTTPError {
	return NewError(fiber.StatusBadRequest, detail)
}

// ErrorHandler renders every error as {"detail": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	detail := "internal server error"

	var httpErr *HTTPError
	var fiberErr *fiber.Error
	var valErr *chaterr.ValidationError
	switch {
	case errors.As(err, &httpErr):
		status, detail = httpErr.Status, httpErr.Detail
	case errors.As(err, &valErr):
		status, detail = fiber.StatusUnprocessableEntity, valErr.Message
	case errors.As(err, &fiberErr):
		status, detail = fiberErr.Code, fiberErr.Message
	}

	return c.Status(status).JSON(dto.ErrorResponse{Detail: detail})
}

// ValidateRequest parses the JSON body into req and checks its validate tags.
func ValidateRequest(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return NewError(fiber.StatusUnprocessableEntity, "invalid request body")
	}
	return validation.Struct(req)
}
