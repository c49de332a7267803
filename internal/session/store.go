package session

import (
	"context"
	"time"

	"github.com/killerx1411/access-control-hub/internal/rbac"
)

// Session is an authenticated principal plus the role snapshot taken at
// sign-in. The snapshot is deliberately never refreshed in place: a
// role change by an admin becomes visible to its subject only on the
// subject's next sign-in. That staleness window is a documented
// property of the system, not a bug.
type Session struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store defines how sessions are persisted. Implementations hold
// opaque state only; no auth decisions live here.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
