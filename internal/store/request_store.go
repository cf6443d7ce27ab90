package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkup/internal/domain"
)

type RequestStore struct{ db *gorm.DB }

func (s *Store) Requests() *RequestStore { return &RequestStore{db: s.DB} }

// ErrDuplicatePair reports a violation of the (from_id, to_id) unique index.
// Callers treat it as "request already sent", not as a failure.
var ErrDuplicatePair = errors.New("pending request already exists for pair")

func (r *RequestStore) Create(ctx context.Context, req *domain.FriendRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePair
		}
		return errors.Wrap(err, "requestStore.Create")
	}
	return nil
}

func (r *RequestStore) GetByID(ctx context.Context, id domain.RequestID) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "requestStore.GetByID")
	}
	return &req, nil
}

// PendingExists checks one ordered (from, to) pair for an open request.
func (r *RequestStore) PendingExists(ctx context.Context, from, to domain.UserID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.FriendRequest{}).
		Where("from_id = ? AND to_id = ? AND status = ?", from, to, domain.RequestStatusPending).
		Count(&n).Error
	if err != nil {
		return false, errors.Wrap(err, "requestStore.PendingExists")
	}
	return n > 0, nil
}

// GetPending returns the open request for one ordered (from, to) pair.
func (r *RequestStore) GetPending(ctx context.Context, from, to domain.UserID) (*domain.FriendRequest, error) {
	var req domain.FriendRequest
	err := r.db.WithContext(ctx).
		First(&req, "from_id = ? AND to_id = ? AND status = ?", from, to, domain.RequestStatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "requestStore.GetPending")
	}
	return &req, nil
}

func (r *RequestStore) ListIncoming(ctx context.Context, to domain.UserID) ([]domain.FriendRequest, error) {
	var reqs []domain.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_id = ? AND status = ?", to, domain.RequestStatusPending).
		Order("created_at asc").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "requestStore.ListIncoming")
	}
	return reqs, nil
}

func (r *RequestStore) ListOutgoing(ctx context.Context, from domain.UserID) ([]domain.FriendRequest, error) {
	var reqs []domain.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_id = ? AND status = ?", from, domain.RequestStatusPending).
		Order("created_at asc").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "requestStore.ListOutgoing")
	}
	return reqs, nil
}

func (r *RequestStore) CountIncoming(ctx context.Context, to domain.UserID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.FriendRequest{}).
		Where("to_id = ? AND status = ?", to, domain.RequestStatusPending).
		Count(&n).Error
	if err != nil {
		return 0, errors.Wrap(err, "requestStore.CountIncoming")
	}
	return n, nil
}

// Delete is idempotent: deleting an already-deleted request is not an error.
func (r *RequestStore) Delete(ctx context.Context, id domain.RequestID) error {
	err := r.db.WithContext(ctx).Delete(&domain.FriendRequest{}, "id = ?", id).Error
	return errors.Wrap(err, "requestStore.Delete")
}
