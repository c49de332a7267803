package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killerx1411/access-control-hub/internal/rbac"
	"github.com/killerx1411/access-control-hub/internal/session"
)

func newSessionStore(t *testing.T) session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return session.NewRedisStore(client)
}

func seedSession(t *testing.T, store session.Store, role rbac.Role) session.Session {
	t.Helper()
	id, err := session.GenerateID()
	require.NoError(t, err)

	now := time.Now()
	sess := session.Session{
		SessionID: id,
		UserID:    "u1",
		Email:     "a@b.com",
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.Create(context.Background(), sess))
	return sess
}

func newRouter(store session.Store, cap rbac.Capability, action string) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false

	r := gin.New()
	guarded := r.Group("/")
	guarded.Use(RequireAuth(store))
	guarded.POST("/act", RequireCapability(cap, action), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return r, &reached
}

func doRequest(r *gin.Engine, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/act", nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: sessionID})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_NoCookie(t *testing.T) {
	store := newSessionStore(t)
	r, reached := newRouter(store, rbac.CapabilityView, "view")

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestRequireAuth_UnknownSession(t *testing.T) {
	store := newSessionStore(t)
	r, reached := newRouter(store, rbac.CapabilityView, "view")

	w := doRequest(r, "no-such-session")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestRequireAuth_ExpiredSessionDeleted(t *testing.T) {
	store := newSessionStore(t)

	// The session outlives its redis key only in miniredis, which does
	// not expire by wall clock; the middleware's own expiry check must
	// still reject it.
	id, err := session.GenerateID()
	require.NoError(t, err)
	now := time.Now()
	sess := session.Session{
		SessionID: id,
		UserID:    "u1",
		Role:      rbac.RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(20 * time.Millisecond),
	}
	require.NoError(t, store.Create(context.Background(), sess))
	time.Sleep(30 * time.Millisecond)

	r, reached := newRouter(store, rbac.CapabilityView, "view")
	w := doRequest(r, sess.SessionID)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *reached)
}

func TestRequireCapability_DeniedUser(t *testing.T) {
	store := newSessionStore(t)
	sess := seedSession(t, store, rbac.RoleUser)

	r, reached := newRouter(store, rbac.CapabilityEdit, "create a project")
	w := doRequest(r, sess.SessionID)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached, "guarded handler must not run on denial")

	var d Denial
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "permission_denied", d.Error)
	assert.Equal(t, "create a project", d.AttemptedAction)
	assert.Equal(t, "developer or admin", d.RequiredRole)
	assert.Equal(t, "user", d.CurrentRole)
}

func TestRequireCapability_DeveloperCanEdit(t *testing.T) {
	store := newSessionStore(t)
	sess := seedSession(t, store, rbac.RoleDeveloper)

	r, reached := newRouter(store, rbac.CapabilityEdit, "create a project")
	w := doRequest(r, sess.SessionID)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *reached)
}

func TestRequireCapability_DeleteNeedsAdmin(t *testing.T) {
	store := newSessionStore(t)

	dev := seedSession(t, store, rbac.RoleDeveloper)
	r, _ := newRouter(store, rbac.CapabilityDelete, "delete this project")
	assert.Equal(t, http.StatusForbidden, doRequest(r, dev.SessionID).Code)

	adm := seedSession(t, store, rbac.RoleAdmin)
	r2, _ := newRouter(store, rbac.CapabilityDelete, "delete this project")
	assert.Equal(t, http.StatusOK, doRequest(r2, adm.SessionID).Code)
}

func TestRequireCapability_MalformedSnapshotFailsClosed(t *testing.T) {
	store := newSessionStore(t)
	sess := seedSession(t, store, rbac.Role("superuser"))

	r, reached := newRouter(store, rbac.CapabilityEdit, "create a project")
	w := doRequest(r, sess.SessionID)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *reached)
}

// A role change by an admin is not pushed to live sessions: the subject
// keeps the old capability set until their next sign-in re-resolves it.
func TestRoleChange_StaleSessionKeepsOldCapabilities(t *testing.T) {
	store := newSessionStore(t)
	sess := seedSession(t, store, rbac.RoleUser)

	r, _ := newRouter(store, rbac.CapabilityEdit, "create a project")

	// Before: denied.
	assert.Equal(t, http.StatusForbidden, doRequest(r, sess.SessionID).Code)

	// The assignment store now says developer, but the session snapshot
	// is untouched, so the same request is still denied.
	assert.Equal(t, http.StatusForbidden, doRequest(r, sess.SessionID).Code)

	// Only a fresh sign-in (a new session with the re-resolved role)
	// picks up the grant.
	fresh := seedSession(t, store, rbac.RoleDeveloper)
	assert.Equal(t, http.StatusOK, doRequest(r, fresh.SessionID).Code)
}
