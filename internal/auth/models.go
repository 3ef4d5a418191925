package auth

import "time"

// Session is one successful password entry. The dashboard has no user
// accounts, so a session only carries the role it grants.
type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	Role      string    `gorm:"not null;default:'Admin'" json:"role"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string { return "app_auth.sessions" }
