package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"url-chatroom/internal/entity"
	"url-chatroom/internal/repository/contract"
)

var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository keeps users in process memory for development runs.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]entity.User
}

func NewUserRepository() contract.UserRepository {
	return &UserRepository{users: make(map[int64]entity.User)}
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	r.nextID++
	user.Id = r.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.users[user.Id] = *user
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Id]; !ok {
		return errors.New("user not found")
	}
	r.users[user.Id] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Id == id }), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email }), nil
}

func (r *UserRepository) FindByGoogleSub(_ context.Context, sub string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return sub != "" && u.GoogleSub == sub }), nil
}

func (r *UserRepository) find(match func(entity.User) bool) *entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			out := u
			return &out
		}
	}
	return nil
}
