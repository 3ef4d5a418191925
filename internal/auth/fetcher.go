package auth

import (
	"errors"
	"time"

	"github.com/geotenants/geo-tenants-backend/internal/utils"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists dashboard sessions.
type SessionStore interface {
	Create(s Session) error
	Find(id string) (Session, error)
	Delete(id string) error
	DeleteExpired(now time.Time) (int64, error)
}

// GormSessionStore keeps sessions in app_auth.sessions.
type GormSessionStore struct {
	DB *gorm.DB
}

func (g GormSessionStore) Create(s Session) error {
	return g.DB.Create(&s).Error
}

func (g GormSessionStore) Find(id string) (Session, error) {
	var s Session
	err := g.DB.First(&s, "session_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

func (g GormSessionStore) Delete(id string) error {
	res := g.DB.Delete(&Session{}, "session_id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (g GormSessionStore) DeleteExpired(now time.Time) (int64, error) {
	res := g.DB.Where("expires_at < ?", now).Delete(&Session{})
	return res.RowsAffected, res.Error
}

// SessionInfo adapts a SessionStore to middleware.SessionFetcher.
type SessionInfo struct {
	Store SessionStore
}

func (si SessionInfo) FindSessionByID(id string) (utils.SessionData, error) {
	session, err := si.Store.Find(id)
	if err != nil {
		return utils.SessionData{}, err
	}

	return utils.SessionData{
		SessionID: session.SessionID,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
