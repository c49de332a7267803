package rbac

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killerx1411/access-control-hub/internal/db"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewSQLStore(&db.DB{DB: sqlDB}), mock
}

func TestGetRole_AbsentRowDefaultsToUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, found, err := store.GetRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, RoleUser, role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRole_StoredRole(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("developer"))

	role, found, err := store.GetRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, RoleDeveloper, role)
}

func TestGetRole_MalformedRowDefaultsToUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("superuser"))

	role, found, err := store.GetRole(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, RoleUser, role, "tampered value must not elevate")
}

func TestListAllRoles(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT user_id, role FROM user_roles`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role"}).
			AddRow("u1", "admin").
			AddRow("u2", "developer"))

	got, err := store.ListAllRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]Role{"u1": RoleAdmin, "u2": RoleDeveloper}, got)
}

func TestSetRole_NonAdminActorDenied(t *testing.T) {
	store, mock := newMockStore(t)

	// The guard subquery matches nothing, so zero rows are written.
	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("actor", "target", "developer").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetRole(context.Background(), "actor", "target", RoleDeveloper)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRole_AdminActor(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO user_roles`).
		WithArgs("admin1", "target", "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetRole(context.Background(), "admin1", "target", RoleAdmin)
	assert.NoError(t, err)
}

func TestSetRole_InvalidRoleRejectedLocally(t *testing.T) {
	store, mock := newMockStore(t)

	// No expectations: an invalid role never reaches the store.
	err := store.SetRole(context.Background(), "admin1", "target", Role("root"))
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreResolver_DefaultsOnAbsence(t *testing.T) {
	store, mock := newMockStore(t)
	resolver := NewStoreResolver(store)

	mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := resolver.ResolveRole(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, DefaultRole, role)
}
