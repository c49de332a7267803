package credentials

import (
	"context"
	"database/sql"
	"time"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/db"

	"github.com/google/uuid"
)

// Service is the password credential provider: sign-up and sign-in
// against the profiles and credentials tables. It makes no role or
// session decisions.
type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register creates a profile with password credentials. Validation is
// local and runs before any store call; on validation failure nothing
// is written or even queried. A freshly registered user gets no role
// row: the resolver's default covers them until an admin assigns one.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
	displayName string,
) (*auth.Identity, error) {

	if verr := auth.ValidateSignUp(email, password); verr != nil {
		return nil, verr
	}

	// 1. Find or create profile by email
	var (
		userID    uuid.UUID
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM profiles
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&userID, &createdAt)

	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO profiles (email, display_name, email_verified)
			VALUES ($1, $2, false)
			RETURNING id, created_at
		`, email, displayName).Scan(&userID, &createdAt)
	}

	if err != nil {
		return nil, err
	}

	// 2. A profile that already has credentials is already registered
	var exists bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE user_id = $1
		)
	`, userID).Scan(&exists)

	if err != nil {
		return nil, err
	}

	if exists {
		return nil, auth.ErrAlreadyRegistered
	}

	// 3. Hash password
	hash, version, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 4. Insert credentials
	cred := Credential{
		UserID:       userID.String(),
		PasswordHash: hash,
		HashVersion:  version,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, cred.UserID, cred.PasswordHash, cred.HashVersion)

	if err != nil {
		return nil, err
	}

	return &auth.Identity{
		UserID:      userID.String(),
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}, nil
}

// Authenticate verifies email/password and returns the identity. Any
// lookup failure collapses into ErrInvalidCredentials so callers cannot
// probe which emails exist.
func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*auth.Identity, error) {

	var (
		userID      uuid.UUID
		storedEmail string
		displayName string
		createdAt   time.Time
		cred        Credential
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.email, p.display_name, p.created_at, c.password_hash, c.hash_version
		FROM profiles p
		JOIN credentials c ON c.user_id = p.id
		WHERE LOWER(p.email) = LOWER($1)
	`, email).Scan(&userID, &storedEmail, &displayName, &createdAt, &cred.PasswordHash, &cred.HashVersion)

	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}

	return &auth.Identity{
		UserID:      userID.String(),
		Email:       storedEmail,
		DisplayName: displayName,
		CreatedAt:   createdAt,
	}, nil
}
