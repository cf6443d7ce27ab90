package dto

import "time"

// UnsupportedMessageBody replaces the text of non-text messages; file and
// attachment kinds are representable in storage but not supported.
const UnsupportedMessageBody = "[File message type not supported]"

type ChatMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type SendMessageRequest struct {
	ChannelID string `json:"channelId"`
	Text      string `json:"text"`
}
