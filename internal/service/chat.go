package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"linkup/internal/domain"
	"linkup/internal/dto"
	"linkup/internal/observability/metrics"
	"linkup/internal/realtime"
	"linkup/internal/store"
)

type ChatService struct {
	store  *store.Store
	broker realtime.Broker
	now    func() time.Time
}

func NewChatService(st *store.Store, broker realtime.Broker) *ChatService {
	return &ChatService{store: st, broker: broker, now: time.Now}
}

// Send appends one text message to a channel log. The timestamp is assigned
// here, server-side, and is what orders the channel. The sender must be one
// of the two participants encoded in the channel id.
func (c *ChatService) Send(ctx context.Context, channelID string, sender domain.UserID, text string) (*dto.ChatMessage, error) {
	result := "success"
	defer func() { metrics.MessagesSentTotal.WithLabelValues(result).Inc() }()

	if strings.TrimSpace(text) == "" {
		result = "invalid"
		return nil, domain.ErrEmptyMessage
	}
	if _, _, err := domain.ChannelMembers(channelID); err != nil {
		result = "invalid"
		return nil, err
	}
	if !domain.IsChannelMember(channelID, sender) {
		result = "forbidden"
		return nil, domain.ErrNotParticipant
	}

	msg := &domain.ChatMessage{
		ChannelID: channelID,
		SenderID:  sender,
		Kind:      domain.MessageKindText,
		Text:      text,
		Timestamp: c.now().UTC(),
	}
	if err := c.store.Messages().Append(ctx, msg); err != nil {
		result = "failure"
		return nil, err
	}

	out := messageDTO(msg)
	payload, err := json.Marshal(out)
	if err == nil {
		topic := realtime.ChatTopic(channelID)
		if err := c.broker.Publish(ctx, realtime.Event{Topic: topic, Kind: realtime.KindMessage, Payload: payload}); err != nil {
			slog.Warn("publish chat message", "topic", topic, "error", err)
		}
	}
	return &out, nil
}

// History returns the whole channel log in (timestamp, id) order.
func (c *ChatService) History(ctx context.Context, channelID string) ([]dto.ChatMessage, error) {
	if _, _, err := domain.ChannelMembers(channelID); err != nil {
		return nil, err
	}
	msgs, err := c.store.Messages().ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ChatMessage, 0, len(msgs))
	for i := range msgs {
		out = append(out, messageDTO(&msgs[i]))
	}
	return out, nil
}

// Open yields the full history followed by a live stream of new messages.
// The subscription is taken out before the history read, so nothing written
// in between is lost; the returned filter function drops live events already
// covered by the history (same message delivered both ways). The caller owns
// the subscription and must Cancel it when done or superseded.
func (c *ChatService) Open(ctx context.Context, channelID string) ([]dto.ChatMessage, *realtime.Subscription, error) {
	if _, _, err := domain.ChannelMembers(channelID); err != nil {
		return nil, nil, err
	}

	sub, err := c.broker.Subscribe(realtime.ChatTopic(channelID))
	if err != nil {
		return nil, nil, err
	}
	history, err := c.History(ctx, channelID)
	if err != nil {
		sub.Cancel()
		return nil, nil, err
	}
	return history, sub, nil
}

// AfterHistory reports whether a live message extends past the given
// history, i.e. was not already delivered in the initial snapshot.
func AfterHistory(history []dto.ChatMessage, msg *dto.ChatMessage) bool {
	if len(history) == 0 {
		return true
	}
	last := history[len(history)-1]
	if msg.Timestamp.After(last.Timestamp) {
		return true
	}
	if msg.Timestamp.Equal(last.Timestamp) {
		return msg.ID > last.ID
	}
	return false
}

func messageDTO(m *domain.ChatMessage) dto.ChatMessage {
	text := m.Text
	if m.Kind != domain.MessageKindText {
		text = dto.UnsupportedMessageBody
	}
	return dto.ChatMessage{
		ID:        m.ID.String(),
		ChannelID: m.ChannelID,
		SenderID:  m.SenderID.String(),
		Text:      text,
		Timestamp: m.Timestamp,
	}
}
