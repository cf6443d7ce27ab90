package domain

import (
	"strings"
	"time"
)

// User is the profile record for one identity. NameLower is the search key
// and must always equal strings.ToLower(Name); it is recomputed on every
// rename, never edited directly.
type User struct {
	ID          UserID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	NameLower   string    `gorm:"type:text;not null;index:idx_users_name_lower" json:"-"`
	Email       string    `gorm:"type:text;uniqueIndex:ux_users_email;not null" json:"email"`
	DateOfBirth string    `gorm:"type:text" json:"dateOfBirth,omitempty"`
	Gender      string    `gorm:"type:text" json:"gender,omitempty"`
	IsDisabled  bool      `gorm:"not null;default:false" json:"isDisabled"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// SetName updates the display name and keeps the lowered search key in sync.
func (u *User) SetName(name string) {
	u.Name = name
	u.NameLower = strings.ToLower(name)
}

type PasswordCredential struct {
	ID          CredentialID `gorm:"type:uuid;primaryKey"`
	UserID      UserID       `gorm:"type:uuid;uniqueIndex:ux_pwd_user"`
	Algo        string       `gorm:"type:text;not null"`
	Hash        []byte       `gorm:"type:bytea;not null"`
	Salt        []byte       `gorm:"type:bytea;not null"`
	ParamsJSON  []byte       `gorm:"type:jsonb;not null"`
	PasswordVer int          `gorm:"not null;default:1"`
	CreatedAt   time.Time    `gorm:"not null"`
	UpdatedAt   time.Time    `gorm:"not null"`
}

func (PasswordCredential) TableName() string { return "password_credentials" }

func (p *PasswordCredential) GetAlgo() string       { return p.Algo }
func (p *PasswordCredential) GetHash() []byte       { return p.Hash }
func (p *PasswordCredential) GetSalt() []byte       { return p.Salt }
func (p *PasswordCredential) GetParamsJSON() []byte { return p.ParamsJSON }
func (p *PasswordCredential) GetPasswordVer() int   { return p.PasswordVer }
