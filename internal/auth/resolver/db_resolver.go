package resolver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/db"

	"github.com/google/uuid"
)

// DBResolver maps provider identities onto profiles: existing mapping,
// then email-based linking, then a fresh profile. New profiles get no
// role row; the role resolver's default covers them.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.ProviderIdentity,
) (string, error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return userID.String(), nil
	}

	if err != sql.ErrNoRows {
		return "", err
	}

	// 2. Try email-based linking (existing profile, new provider)
	err = r.db.QueryRowContext(ctx, `
		SELECT id
		FROM profiles
		WHERE LOWER(email) = LOWER($1)
	`,
		identity.Email,
	).Scan(&userID)

	if err == nil {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO identities (user_id, provider, provider_user_id)
			VALUES ($1, $2, $3)
		`,
			userID,
			identity.Provider,
			identity.ProviderUserID,
		)
		if err != nil {
			return "", err
		}

		return userID.String(), nil
	}

	if err != sql.ErrNoRows {
		return "", err
	}

	// 3. Create new profile
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO profiles (email, display_name, email_verified)
		VALUES ($1, $2, $3)
		RETURNING id
	`,
		identity.Email,
		identity.DisplayName,
		identity.EmailVerified,
	).Scan(&userID)

	if err != nil {
		return "", err
	}

	// 4. Create identity mapping
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)

	if err != nil {
		return "", err
	}

	return userID.String(), nil
}
