package domain

import "time"

const (
	MessageKindText = "text"
	// MessageKindFile is representable in the schema but unsupported: the
	// transport renders such messages as a placeholder body.
	MessageKindFile = "file"
)

// ChatMessage is one append-only entry in a channel log. Timestamp is
// assigned server-side at write time and defines the total order within a
// channel (message id breaks exact ties). Messages are never updated or
// deleted.
type ChatMessage struct {
	ID        MessageID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID string    `gorm:"type:text;not null;index:idx_messages_channel_ts,priority:1" json:"channelId"`
	SenderID  UserID    `gorm:"type:uuid;not null" json:"senderId"`
	Kind      string    `gorm:"type:text;not null;default:'text'" json:"kind"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Timestamp time.Time `gorm:"not null;index:idx_messages_channel_ts,priority:2" json:"timestamp"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
