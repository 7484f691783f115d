package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"url-chatroom/internal/entity"
	"url-chatroom/internal/pkg/serverutils"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the claims of a backend session token.
type SessionClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	jwt.RegisteredClaims
}

type ITokenService interface {
	Issue(user *entity.User) (string, time.Time, error)
	ParseUserID(token string) (int64, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) ITokenService {
	return &tokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *tokenService) Issue(user *entity.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	claims := SessionClaims{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.Id, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *tokenService) ParseUserID(tokenStr string) (int64, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, serverutils.Unauthorized("token expired")
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return 0, serverutils.Unauthorized("invalid token signature")
		}
		return 0, serverutils.Unauthorized("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, serverutils.Unauthorized("invalid token payload")
	}
	return userID, nil
}
