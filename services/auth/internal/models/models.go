package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"   json:"id"`
	FirstName    string    `gorm:"not null"               json:"first_name"`
	LastName     string    `gorm:"not null"               json:"last_name"`
	Email        string    `gorm:"uniqueIndex;not null"   json:"email"`
	PasswordHash string    `gorm:"not null"               json:"-"`
	Roles        Roles     `gorm:"not null"               json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	RevokedByRotation  = "rotated"
	RevokedByLogout    = "logout"
	RevokedByUser      = "revoked"
	RevokedByReuse     = "reuse_detected"
	RevokedByLogoutAll = "logout_all"

	RevokedByPasswordChange = "password_changed"
	RevokedByAccountDeleted = "account_deleted"
)

// RefreshToken is the stored side of an opaque refresh token. Only the
// sha256 of the token is kept. Rows are revoked, never deleted.
type RefreshToken struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"        json:"id"`
	TokenHash     string     `gorm:"uniqueIndex;not null"        json:"-"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null"    json:"user_id"`
	FamilyID      uuid.UUID  `gorm:"type:uuid;index;not null"    json:"family_id"`
	CreatedAt     time.Time  `gorm:"not null"                    json:"created_at"`
	ExpiresAt     time.Time  `gorm:"not null"                    json:"expires_at"`
	Revoked       bool       `gorm:"not null;default:false"      json:"revoked"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
	RevokedReason string     `gorm:"not null;default:''"         json:"revoked_reason,omitempty"`
	ReplacedByID  *uuid.UUID `gorm:"type:uuid"                   json:"replaced_by_id,omitempty"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

func All() []any {
	return []any{&User{}, &RefreshToken{}}
}
