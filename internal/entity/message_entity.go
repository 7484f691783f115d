package entity

import "time"

type Message struct {
	Id        int64
	ThreadKey string
	ClientId  string
	Content   string
	CreatedAt time.Time
}
