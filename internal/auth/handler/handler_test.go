package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killerx1411/access-control-hub/internal/auth/credentials"
	"github.com/killerx1411/access-control-hub/internal/auth/provider"
	"github.com/killerx1411/access-control-hub/internal/auth/resolver"
	"github.com/killerx1411/access-control-hub/internal/db"
	"github.com/killerx1411/access-control-hub/internal/rbac"
	"github.com/killerx1411/access-control-hub/internal/session"
)

type testEnv struct {
	router   *gin.Engine
	mock     sqlmock.Sqlmock
	sessions session.Store
}

func newTestEnv(t *testing.T, oauthProviders ...provider.OAuthProvider) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	wrapped := &db.DB{DB: sqlDB}

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	sessions := session.NewRedisStore(redisClient)

	h := NewHandler(
		credentials.NewService(wrapped),
		provider.NewRegistry(oauthProviders...),
		resolver.NewDBResolver(wrapped),
		sessions,
		rbac.NewStoreResolver(rbac.NewSQLStore(wrapped)),
		"/signed-out",
	)

	router := gin.New()
	h.RegisterRoutes(router)

	return &testEnv{router: router, mock: mock, sessions: sessions}
}

func (e *testEnv) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	res := w.Result()
	for _, c := range res.Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

func TestSignUp_InvalidInputNeverReachesStore(t *testing.T) {
	env := newTestEnv(t)

	// No sqlmock expectations: validation failures stay local.
	w := env.do(http.MethodPost, "/auth/signup",
		`{"email":"not-an-email","password":"abc","display_name":""}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_failed", body.Error)
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestSignUp_DoesNotAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	env.mock.ExpectQuery(`SELECT id, created_at FROM profiles`).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))
	env.mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs("a@b.com", "Ann").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(userID, time.Now()))
	env.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	env.mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(userID.String(), sqlmock.AnyArg(), credentials.HashVersionBcrypt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(http.MethodPost, "/auth/signup",
		`{"email":"a@b.com","password":"secret1","display_name":"Ann"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, sessionCookie(w), "signup must not issue a session")
}

func expectAuthenticate(env *testEnv, t *testing.T, userID uuid.UUID, password string) {
	t.Helper()
	hash, _, err := credentials.HashPassword(password)
	require.NoError(t, err)

	env.mock.ExpectQuery(`SELECT p.id, p.email, p.display_name, p.created_at, c.password_hash`).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "display_name", "created_at", "password_hash", "hash_version"},
		).AddRow(userID, "a@b.com", "Ann", time.Now(), hash, credentials.HashVersionBcrypt))
}

func TestSignIn_NewUserResolvesDefaultRole(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	expectAuthenticate(env, t, userID, "secret1")
	env.mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	w := env.do(http.MethodPost, "/auth/signin",
		`{"email":"a@b.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, sessionCookie(w))

	var body struct {
		Role         rbac.Role         `json:"role"`
		Capabilities rbac.Capabilities `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, rbac.RoleUser, body.Role)
	assert.True(t, body.Capabilities.CanView)
	assert.False(t, body.Capabilities.CanEdit)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	env.mock.ExpectQuery(`SELECT p.id, p.email, p.display_name, p.created_at, c.password_hash`).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "email", "display_name", "created_at", "password_hash", "hash_version"},
		))

	w := env.do(http.MethodPost, "/auth/signin",
		`{"email":"a@b.com","password":"wrong1"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")
	assert.Nil(t, sessionCookie(w))
}

func TestSignIn_RoleFetchFailureRevertsToDefault(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	expectAuthenticate(env, t, userID, "secret1")
	env.mock.ExpectQuery(`SELECT role FROM user_roles`).
		WithArgs(userID.String()).
		WillReturnError(errors.New("connection reset"))

	w := env.do(http.MethodPost, "/auth/signin",
		`{"email":"a@b.com","password":"secret1"}`)

	// Still authenticated, but never at an elevated role.
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Role rbac.Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, rbac.RoleUser, body.Role)
}

func TestSessionRestore(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now()
	sess := session.Session{
		SessionID: "sid-restore",
		UserID:    "u1",
		Email:     "a@b.com",
		Role:      rbac.RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, env.sessions.Create(context.Background(), sess))

	w := env.do(http.MethodGet, "/auth/session", "",
		&http.Cookie{Name: session.CookieName, Value: "sid-restore"})

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Role         rbac.Role         `json:"role"`
		Capabilities rbac.Capabilities `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, rbac.RoleAdmin, body.Role)
	assert.True(t, body.Capabilities.CanManageUsers)
}

func TestSessionRestore_NoCredentialDegradesToUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/auth/session", "",
		&http.Cookie{Name: session.CookieName, Value: "gone"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignOut_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	now := time.Now()
	require.NoError(t, env.sessions.Create(context.Background(), session.Session{
		SessionID: "sid-out",
		UserID:    "u1",
		Role:      rbac.RoleUser,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}))

	cookie := &http.Cookie{Name: session.CookieName, Value: "sid-out"}

	first := env.do(http.MethodPost, "/auth/signout", "", cookie)
	assert.Equal(t, http.StatusNoContent, first.Code)

	// Session is gone; the restore path confirms.
	w := env.do(http.MethodGet, "/auth/session", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Signing out again, with or without the dead cookie, is a no-op
	// with the same terminal state.
	second := env.do(http.MethodPost, "/auth/signout", "", cookie)
	assert.Equal(t, http.StatusNoContent, second.Code)

	third := env.do(http.MethodPost, "/auth/signout", "")
	assert.Equal(t, http.StatusNoContent, third.Code)
}
