package model

import "time"

type User struct {
	Id          int64      `gorm:"primaryKey;autoIncrement"`
	Email       string     `gorm:"type:varchar(320);uniqueIndex;not null"`
	DisplayName string     `gorm:"type:varchar(64);not null"`
	GoogleSub   *string    `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	LastLoginAt *time.Time `gorm:"type:timestamptz"`
}

func (User) TableName() string {
	return "users"
}
