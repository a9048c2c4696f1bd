package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message. It is written once and only its read state changes.
type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_messages_pair,priority:1" json:"senderId"`
	ReceiverID uuid.UUID  `gorm:"type:uuid;not null;index:idx_messages_pair,priority:2;index" json:"receiverId"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Read       bool       `gorm:"not null;default:false" json:"read"`
	ReadAt     *time.Time `json:"readAt"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Counterparty returns the other participant of m as seen by userID.
func (m *Message) Counterparty(userID uuid.UUID) uuid.UUID {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ChatSummary is the derived latest state of one conversation.
type ChatSummary struct {
	OtherUserID     uuid.UUID `json:"otherUserId"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}
