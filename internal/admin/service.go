package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/killerx1411/access-control-hub/internal/db"
	"github.com/killerx1411/access-control-hub/internal/rbac"
)

// UserWithRole is one row of the admin listing: a profile joined with
// its resolved role.
type UserWithRole struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Service implements privileged administration of role assignments.
// The HTTP layer gates it behind the manage-users capability; the role
// store additionally re-checks the actor on every write.
type Service struct {
	db    *db.DB
	roles rbac.Store
}

func NewService(db *db.DB, roles rbac.Store) *Service {
	return &Service{db: db, roles: roles}
}

// ListUsersWithRoles joins two independent reads, profiles and role
// assignments, by user id. A profile without an assignment row is kept
// and reported with the default role, matching the resolver's rule.
func (s *Service) ListUsersWithRoles(ctx context.Context) ([]UserWithRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, created_at
		FROM profiles
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("admin: profile listing failed: %w", err)
	}
	defer rows.Close()

	var users []UserWithRole
	for rows.Next() {
		var u UserWithRole
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("admin: profile scan failed: %w", err)
		}
		u.Role = rbac.DefaultRole
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("admin: profile listing failed: %w", err)
	}

	assignments, err := s.roles.ListAllRoles(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if role, ok := assignments[users[i].ID]; ok {
			users[i].Role = role
		}
	}

	return users, nil
}

// SetRole reassigns a user's role on behalf of the acting admin. The
// change reaches the subject's own session only at their next sign-in;
// there is no push to live sessions.
func (s *Service) SetRole(ctx context.Context, actorID, userID string, role rbac.Role) error {
	return s.roles.SetRole(ctx, actorID, userID, role)
}
