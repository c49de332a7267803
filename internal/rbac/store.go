package rbac

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/killerx1411/access-control-hub/internal/db"
	"github.com/killerx1411/access-control-hub/internal/logger"
)

var (
	// ErrPermissionDenied is returned when the store-side admin check
	// rejects a role write. The UI gate is a UX optimization; this
	// check is the boundary.
	ErrPermissionDenied = errors.New("permission denied")

	ErrInvalidRole = errors.New("invalid role")
)

// Store is the external role-assignment store of the workspace.
type Store interface {
	// GetRole returns the stored role for userID. found is false when
	// no assignment row exists; the returned role is then DefaultRole.
	GetRole(ctx context.Context, userID string) (role Role, found bool, err error)

	// ListAllRoles returns every explicit assignment keyed by user id.
	ListAllRoles(ctx context.Context) (map[string]Role, error)

	// SetRole reassigns userID's role on behalf of actorID. The admin
	// check on actorID runs inside the statement itself so a caller
	// that skipped the UI gate still cannot write.
	SetRole(ctx context.Context, actorID, userID string, role Role) error
}

// SQLStore keeps role assignments in the user_roles table.
type SQLStore struct {
	db *db.DB
}

func NewSQLStore(db *db.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetRole(ctx context.Context, userID string) (Role, bool, error) {
	var stored string
	err := s.db.QueryRowContext(ctx, `
		SELECT role FROM user_roles
		WHERE user_id = $1
	`, userID).Scan(&stored)

	if err == sql.ErrNoRows {
		return DefaultRole, false, nil
	}
	if err != nil {
		return DefaultRole, false, fmt.Errorf("rbac: role lookup failed: %w", err)
	}

	role, ok := Parse(stored)
	if !ok {
		// A value outside the enum means the row was tampered with
		// out-of-band; resolve toward least privilege and surface it.
		logger.Warn("malformed role row, defaulting", map[string]any{
			"user_id": userID,
			"role":    stored,
		})
	}
	return role, true, nil
}

func (s *SQLStore) ListAllRoles(ctx context.Context) (map[string]Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, role FROM user_roles
	`)
	if err != nil {
		return nil, fmt.Errorf("rbac: role listing failed: %w", err)
	}
	defer rows.Close()

	assignments := make(map[string]Role)
	for rows.Next() {
		var userID, stored string
		if err := rows.Scan(&userID, &stored); err != nil {
			return nil, fmt.Errorf("rbac: role listing scan failed: %w", err)
		}
		role, _ := Parse(stored)
		assignments[userID] = role
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: role listing failed: %w", err)
	}

	return assignments, nil
}

func (s *SQLStore) SetRole(ctx context.Context, actorID, userID string, role Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	// The actor's own assignment must say admin at write time. A
	// non-admin actor matches zero rows and nothing is written.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role)
		SELECT $2, $3
		WHERE EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role = 'admin'
		)
		ON CONFLICT (user_id)
		DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
	`, actorID, userID, role.String())
	if err != nil {
		return fmt.Errorf("rbac: role write failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rbac: role write failed: %w", err)
	}
	if affected == 0 {
		return ErrPermissionDenied
	}
	return nil
}
