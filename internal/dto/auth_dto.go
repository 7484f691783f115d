// FILE: internal/dto/auth_dto.go
package dto

import "time"

type User struct {
	Id          int64      `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

type GoogleVerifyRequest struct {
	AccessToken string `json:"access_token" validate:"required,min=20,max=4096"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,min=2,max=64"`
}

// SessionResponse carries the backend-issued session credential, which is
// distinct from the provider access token sent in GoogleVerifyRequest.
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=64"`
}
