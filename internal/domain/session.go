package domain

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID        SessionID  `gorm:"type:uuid;primaryKey"`
	UserID    UserID     `gorm:"type:uuid;index"`
	RefreshID uuid.UUID  `gorm:"type:uuid;uniqueIndex:ux_sessions_refreshid"`
	ExpiresAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time
	CreatedAt time.Time  `gorm:"not null"`
	IP        string     `gorm:"type:text"`
	UserAgent string     `gorm:"type:text"`
}

func (Session) TableName() string { return "sessions" }
