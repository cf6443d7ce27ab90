package store

import (
	"context"

	"gorm.io/gorm"

	"linkup/internal/domain"
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.PasswordCredential{},
		&domain.Session{},
		&domain.FriendRequest{},
		&domain.FriendEdge{},
		&domain.ChatMessage{},
	)
}
