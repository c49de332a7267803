package rbac

import "context"

// Resolver is the single source of truth for "what can this user do".
// Capability checks derive from a resolved role, never from anything
// a client holds.
type Resolver interface {
	ResolveRole(ctx context.Context, userID string) (Role, error)
}

// StoreResolver resolves roles through the assignment store, applying
// the absent-row default exactly once, here.
type StoreResolver struct {
	store Store
}

func NewStoreResolver(store Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// ResolveRole returns the stored role, or DefaultRole when the user has
// no assignment row. An authenticated but unprovisioned identity must
// keep baseline read access, so absence is never an error.
func (r *StoreResolver) ResolveRole(ctx context.Context, userID string) (Role, error) {
	role, _, err := r.store.GetRole(ctx, userID)
	if err != nil {
		return DefaultRole, err
	}
	return role, nil
}
