// FILE: internal/dto/chat_dto.go
package dto

import (
	"encoding/json"
	"time"
)

// Envelope is the frame pushed over the message feed.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	EnvelopeTypeMessage = "message"
	EnvelopeTypeSystem  = "system"
	EnvelopeTypeError   = "error"
)

type Message struct {
	Id        int64     `json:"id"`
	ThreadKey string    `json:"thread_key"`
	ClientId  string    `json:"client_id"` // sender display name
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateMessageRequest struct {
	ThreadKey string `json:"thread_key" validate:"required,min=1,max=1200"`
	ClientId  string `json:"client_id" validate:"required,min=1,max=128"`
	Content   string `json:"content" validate:"required,min=1,max=1000"`
}

type SystemEvent struct {
	ClientId string `json:"client_id"`
	Status   string `json:"status"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
