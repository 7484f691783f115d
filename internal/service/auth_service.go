package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"url-chatroom/internal/dto"
	"url-chatroom/internal/entity"
	"url-chatroom/internal/mapper"
	"url-chatroom/internal/pkg/logger"
	"url-chatroom/internal/pkg/serverutils"
	"url-chatroom/internal/repository/contract"

	"github.com/gofiber/fiber/v2"
)

const maxDisplayName = 64

type IAuthService interface {
	VerifyGoogle(ctx context.Context, req *dto.GoogleVerifyRequest) (*dto.SessionResponse, error)
	Me(ctx context.Context, userID int64) (*dto.User, error)
	UpdateMe(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.User, error)
}

type authService struct {
	users    contract.UserRepository
	verifier IGoogleVerifier
	tokens   ITokenService
	mapper   *mapper.UserMapper
	logger   logger.ILogger
	now      func() time.Time
}

func NewAuthService(users contract.UserRepository, verifier IGoogleVerifier, tokens ITokenService, log logger.ILogger) IAuthService {
	return &authService{
		users:    users,
		verifier: verifier,
		tokens:   tokens,
		mapper:   mapper.NewUserMapper(),
		logger:   log,
		now:      time.Now,
	}
}

// VerifyGoogle signs a user in with a Google access token. Users are matched
// by Google subject first, then by email; unknown users are created.
func (s *authService) VerifyGoogle(ctx context.Context, req *dto.GoogleVerifyRequest) (*dto.SessionResponse, error) {
	info, err := s.verifier.Verify(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(info.Email)
	requested := strings.TrimSpace(req.DisplayName)
	fallback := strings.TrimSpace(info.Name)
	if fallback == "" {
		fallback = deriveDisplayName(email)
	}
	fallback = truncateRunes(fallback, maxDisplayName)

	user, err := s.users.FindByGoogleSub(ctx, info.Sub)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	switch {
	case user != nil:
		user.LastLoginAt = &now
		err = s.users.Update(ctx, user)
	default:
		user, err = s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			name := requested
			if name == "" {
				name = fallback
			}
			user = &entity.User{
				Email:       email,
				DisplayName: truncateRunes(name, maxDisplayName),
				GoogleSub:   info.Sub,
				LastLoginAt: &now,
			}
			err = s.users.Create(ctx, user)
		} else {
			user.GoogleSub = info.Sub
			if user.DisplayName == "" {
				if requested != "" {
					user.DisplayName = truncateRunes(requested, maxDisplayName)
				} else {
					user.DisplayName = fallback
				}
			}
			user.LastLoginAt = &now
			err = s.users.Update(ctx, user)
		}
	}
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("AuthService", "Google sign-in", map[string]interface{}{"user_id": user.Id})
	return &dto.SessionResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        s.mapper.ToResponse(user),
	}, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*dto.User, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := s.mapper.ToResponse(user)
	return &res, nil
}

func (s *authService) UpdateMe(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.User, error) {
	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.DisplayName)
	if utf8.RuneCountInString(name) < 2 {
		return nil, serverutils.NewError(fiber.StatusUnprocessableEntity, "display_name must be at least 2 characters")
	}

	user.DisplayName = truncateRunes(name, maxDisplayName)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	res := s.mapper.ToResponse(user)
	return &res, nil
}

func (s *authService) currentUser(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.Unauthorized("user not found")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func deriveDisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "user"
	}
	return truncateRunes(local, maxDisplayName)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
