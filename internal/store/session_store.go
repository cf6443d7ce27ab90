package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkup/internal/domain"
)

type SessionStore struct{ db *gorm.DB }

func (s *Store) Sessions() *SessionStore { return &SessionStore{db: s.DB} }

func (ss *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	if sess.RefreshID == uuid.Nil {
		sess.RefreshID = uuid.New()
	}
	err := ss.db.WithContext(ctx).Create(sess).Error
	return errors.Wrap(err, "sessionStore.Create")
}

func (ss *SessionStore) GetByRefreshID(ctx context.Context, rid uuid.UUID) (*domain.Session, error) {
	var sess domain.Session
	if err := ss.db.WithContext(ctx).First(&sess, "refresh_id = ?", rid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "sessionStore.GetByRefreshID")
	}
	return &sess, nil
}

func (ss *SessionStore) Revoke(ctx context.Context, id domain.SessionID, at time.Time) error {
	err := ss.db.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("revoked_at", at).Error
	return errors.Wrap(err, "sessionStore.Revoke")
}
