package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/killerx1411/access-control-hub/internal/db"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the workspace project data store. The authorization core
// treats it as opaque; capability checks happen before any call here.
type Store interface {
	List(ctx context.Context) ([]Project, error)
	Create(ctx context.Context, p Project) (*Project, error)
	Update(ctx context.Context, id, name, description, code string) (*Project, error)
	Delete(ctx context.Context, id string) error
}

type SQLStore struct {
	db *db.DB
}

func NewSQLStore(db *db.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, code, owner_id, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("projects: listing failed: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Code,
			&p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("projects: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projects: listing failed: %w", err)
	}

	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, p Project) (*Project, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, code, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Code, p.OwnerID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("projects: create failed: %w", err)
	}

	return &p, nil
}

func (s *SQLStore) Update(ctx context.Context, id, name, description, code string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx, `
		UPDATE projects
		SET name = $2, description = $3, code = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, code, owner_id, created_at, updated_at
	`, id, name, description, code).Scan(
		&p.ID, &p.Name, &p.Description, &p.Code,
		&p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("projects: update failed: %w", err)
	}

	return &p, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM projects WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("projects: delete failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("projects: delete failed: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
