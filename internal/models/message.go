package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a directed edge between two users. Rows are immutable once
// created; the only mutation is administrator deletion.
type Message struct {
	BaseModel
	SenderID    uuid.UUID `json:"remitente_id" gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID `json:"destinatario_id" gorm:"type:uuid;not null;index"`
	Content     string    `json:"contenido" gorm:"type:text;not null"`
	SentAt      time.Time `json:"fecha_envio" gorm:"not null;index"`

	Sender    User `json:"-" gorm:"foreignKey:SenderID;references:ID"`
	Recipient User `json:"-" gorm:"foreignKey:RecipientID;references:ID"`
}

func (Message) TableName() string {
	return "mensajes"
}

// MessageWithNames is the conversation row shape: a message joined with the
// display names of both endpoints.
type MessageWithNames struct {
	Message
	SenderName    string `json:"remitente_nombre" gorm:"column:remitente_nombre"`
	RecipientName string `json:"destinatario_nombre" gorm:"column:destinatario_nombre"`
}

// SenderGroup is one bucket of the grouped-inbox view: a sender and how many
// messages the current user received from them.
type SenderGroup struct {
	SenderID   uuid.UUID `json:"remitente_id" gorm:"column:remitente_id"`
	SenderName string    `json:"remitente_nombre" gorm:"column:remitente_nombre"`
	Total      int64     `json:"total_mensajes" gorm:"column:total_mensajes"`
}
