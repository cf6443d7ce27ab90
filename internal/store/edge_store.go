package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"linkup/internal/domain"
)

type EdgeStore struct{ db *gorm.DB }

func (s *Store) Edges() *EdgeStore { return &EdgeStore{db: s.DB} }

// Upsert writes one direction of a friendship. A conflict on the
// (owner_id, friend_id) key is ignored so a retried accept leaves the
// original snapshot untouched.
func (e *EdgeStore) Upsert(ctx context.Context, edge *domain.FriendEdge) error {
	err := e.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "friend_id"}},
		DoNothing: true,
	}).Create(edge).Error
	return errors.Wrap(err, "edgeStore.Upsert")
}

// Exists is the single keyed existence check behind isFriend.
func (e *EdgeStore) Exists(ctx context.Context, owner, friend domain.UserID) (bool, error) {
	var n int64
	err := e.db.WithContext(ctx).Model(&domain.FriendEdge{}).
		Where("owner_id = ? AND friend_id = ?", owner, friend).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "edgeStore.Exists")
	}
	return n > 0, nil
}

func (e *EdgeStore) ListByOwner(ctx context.Context, owner domain.UserID) ([]domain.FriendEdge, error) {
	var edges []domain.FriendEdge
	err := e.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("name asc").
		Find(&edges).Error
	if err != nil {
		return nil, errors.Wrap(err, "edgeStore.ListByOwner")
	}
	return edges, nil
}
