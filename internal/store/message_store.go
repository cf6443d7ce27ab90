package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkup/internal/domain"
)

type MessageStore struct{ db *gorm.DB }

func (s *Store) Messages() *MessageStore { return &MessageStore{db: s.DB} }

func (m *MessageStore) Append(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	err := m.db.WithContext(ctx).Create(msg).Error
	return errors.Wrap(err, "messageStore.Append")
}

// ListByChannel returns the full channel history ordered by
// (timestamp, id) ascending; the id breaks exact timestamp ties so the
// order is total and stable across reads.
func (m *MessageStore) ListByChannel(ctx context.Context, channelID string) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	err := m.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("timestamp asc").
		Order("id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, errors.Wrap(err, "messageStore.ListByChannel")
	}
	return msgs, nil
}
