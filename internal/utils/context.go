package utils

import (
	"context"
	"time"
)

type contextKey string

const (
	ContextSessionIDKey contextKey = "sessionID"
	ContextRoleKey      contextKey = "role"
)

// RoleAdmin is the only role the shared dashboard secret grants.
const RoleAdmin = "Admin"

type SessionData struct {
	SessionID string
	Role      string
	ExpiresAt time.Time
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextRoleKey).(string)
	return role, ok
}

func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextSessionIDKey).(string)
	return id, ok
}
