package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"linkup/internal/domain"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return u.db.WithContext(ctx).Create(usr).Error
}

func (u *UserStore) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "userStore.GetByID")
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "userStore.GetByEmail")
	}
	return &user, nil
}

// GetByIDs resolves a batch of identities to profiles in one query. Unknown
// ids are silently absent from the result.
func (u *UserStore) GetByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]*domain.User, error) {
	out := make(map[domain.UserID]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := u.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "userStore.GetByIDs")
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// SearchByNamePrefix runs the name-prefix range query over the lowered
// search key: name_lower in [term, term+U+F8FF]. The sentinel is the
// highest codepoint the original index used as an inclusive upper bound.
func (u *UserStore) SearchByNamePrefix(ctx context.Context, term string, limit int) ([]domain.User, error) {
	var users []domain.User
	tx := u.db.WithContext(ctx).
		Where("name_lower >= ? AND name_lower <= ?", term, term+"\uf8ff").
		Order("name_lower asc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "userStore.SearchByNamePrefix")
	}
	return users, nil
}

// UpdateName writes the display name and its lowered search key together so
// the name_lower == lower(name) invariant holds at every point in time.
func (u *UserStore) UpdateName(ctx context.Context, id domain.UserID, name, nameLower string) error {
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       name,
			"name_lower": nameLower,
			"updated_at": time.Now().UTC(),
		}).Error
	return errors.Wrap(err, "userStore.UpdateName")
}

func (u *UserStore) SetDisabled(ctx context.Context, id domain.UserID, disabled bool) error {
	err := u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("is_disabled", disabled).Error
	return errors.Wrap(err, "userStore.SetDisabled")
}
