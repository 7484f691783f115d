package model

import "time"

type Thread struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	ThreadKey string    `gorm:"type:varchar(1024);uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Thread) TableName() string {
	return "threads"
}

type Message struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	ThreadId  int64     `gorm:"not null;index:ix_messages_thread_created,priority:1"`
	ClientId  string    `gorm:"type:varchar(128);not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:ix_messages_thread_created,priority:2"`
}

func (Message) TableName() string {
	return "messages"
}

// All returns every model the schema migration must create.
func All() []interface{} {
	return []interface{}{&User{}, &Thread{}, &Message{}}
}
