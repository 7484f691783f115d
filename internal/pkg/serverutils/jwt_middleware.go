package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const LocalUserID = "user_id"

type TokenParser interface {
	ParseUserID(token string) (int64, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", Unauthorized("missing authorization header")
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", Unauthorized("invalid authorization header")
	}
	return token, nil
}

// JwtMiddleware rejects requests without a valid session token and stores
// the caller's user id in Locals.
func JwtMiddleware(tokens TokenParser) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr, err := BearerToken(ctx.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		userID, err := tokens.ParseUserID(tokenStr)
		if err != nil {
			return err
		}

		ctx.Locals(LocalUserID, userID)
		return ctx.Next()
	}
}

func UserID(ctx *fiber.Ctx) (int64, error) {
	id, ok := ctx.Locals(LocalUserID).(int64)
	if !ok {
		return 0, Unauthorized("missing authorization header")
	}
	return id, nil
}
