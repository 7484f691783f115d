package contract

import (
	"context"

	"url-chatroom/internal/entity"
)

// Find methods return nil, nil when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByGoogleSub(ctx context.Context, sub string) (*entity.User, error)
}
