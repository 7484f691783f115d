package entity

import "time"

type User struct {
	Id          int64
	Email       string
	DisplayName string
	GoogleSub   string
	CreatedAt   time.Time
	LastLoginAt *time.Time
}
