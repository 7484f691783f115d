package mapper

import (
	"url-chatroom/internal/dto"
	"url-chatroom/internal/entity"
	"url-chatroom/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	e := &entity.User{
		Id:          u.Id,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
	if u.GoogleSub != nil {
		e.GoogleSub = *u.GoogleSub
	}
	return e
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	out := &model.User{
		Id:          u.Id,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
	if u.GoogleSub != "" {
		sub := u.GoogleSub
		out.GoogleSub = &sub
	}
	return out
}

func (m *UserMapper) ToResponse(u *entity.User) dto.User {
	return dto.User{
		Id:          u.Id,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
