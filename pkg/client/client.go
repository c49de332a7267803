// Package client is the workspace SDK used by UI consumers. It owns
// the client's view of the session: lifecycle state, the current
// identity, and the capability predicates every mutating surface must
// consult before acting.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/killerx1411/access-control-hub/internal/auth"
	"github.com/killerx1411/access-control-hub/internal/rbac"
)

// State is the session lifecycle as seen by this client.
type State int

const (
	// StateLoading holds from construction until Restore completes.
	// Capability checks made in this window answer false.
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// User is the identity subset the client holds.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Denial mirrors the structured permission-denied payload the server
// emits for gated routes, for rendering as a blocking dialog.
type Denial struct {
	Error           string `json:"error"`
	AttemptedAction string `json:"attempted_action"`
	RequiredRole    string `json:"required_role"`
	CurrentRole     string `json:"current_role"`
}

// Client holds the session state. It is the only writer of that state;
// readers go through the accessor methods. Each auth operation bumps
// an epoch before its network call and applies its result only if the
// epoch is still current, so an older in-flight resolution can never
// overwrite the outcome of a newer user action. In particular a slow
// "authenticated" response arriving after a sign-out is discarded.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.Mutex
	epoch uint64
	state State
	user  *User
	role  *rbac.Role
}

// New builds a client for the given server base URL. The client starts
// in the loading state; call Restore to leave it.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		state: StateLoading,
	}, nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the authenticated identity, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Role returns the resolved role. ok is false while no role is known;
// callers must treat that as the most restrictive answer.
func (c *Client) Role() (rbac.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == nil {
		return rbac.DefaultRole, false
	}
	return *c.role, true
}

// capabilities is fail-closed: the zero set until a role is resolved.
func (c *Client) capabilities() rbac.Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated || c.role == nil {
		return rbac.Capabilities{}
	}
	return rbac.CapabilitiesOf(*c.role)
}

// CanView is true for any authenticated session regardless of role.
func (c *Client) CanView() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAuthenticated
}

func (c *Client) CanEdit() bool   { return c.capabilities().CanEdit }
func (c *Client) CanDelete() bool { return c.capabilities().CanDelete }

func (c *Client) IsAdmin() bool {
	role, ok := c.Role()
	return ok && role == rbac.RoleAdmin
}

func (c *Client) IsDeveloper() bool {
	role, ok := c.Role()
	return ok && role == rbac.RoleDeveloper
}

// begin marks the start of a user-initiated auth operation and returns
// its epoch. Any operation begun earlier becomes stale immediately.
func (c *Client) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

// apply installs an operation's outcome unless a newer operation has
// begun since. Returns whether the result was accepted.
func (c *Client) apply(epoch uint64, state State, user *User, role *rbac.Role) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return false
	}
	c.state = state
	c.user = user
	c.role = role
	return true
}

type sessionPayload struct {
	User User      `json:"user"`
	Role rbac.Role `json:"role"`
}

// Restore checks the server for an existing valid session. Any failure,
// network errors included, lands in the unauthenticated state: restore
// degrades, it never guesses toward access.
func (c *Client) Restore(ctx context.Context) error {
	epoch := c.begin()

	resp, err := c.get(ctx, "/auth/session")
	if err != nil {
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return nil
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return err
	}

	role, _ := rbac.Parse(payload.Role.String())
	c.apply(epoch, StateAuthenticated, &payload.User, &role)
	return nil
}

// SignUp registers a new account. Validation runs locally first; on a
// validation failure the provider is never contacted. The resulting
// session is not authenticated; call SignIn afterwards.
func (c *Client) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	if verr := auth.ValidateSignUp(email, password); verr != nil {
		return "", verr
	}

	resp, err := c.post(ctx, "/auth/signup", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", err
		}
		return body.UserID, nil
	case http.StatusConflict:
		return "", auth.ErrAlreadyRegistered
	default:
		return "", fmt.Errorf("sign up failed: %s", readError(resp.Body))
	}
}

// SignIn authenticates and, on success, moves the client to the
// authenticated state with the role the server resolved.
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	epoch := c.begin()

	resp, err := c.post(ctx, "/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload sessionPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			c.apply(epoch, StateUnauthenticated, nil, nil)
			return err
		}
		role, _ := rbac.Parse(payload.Role.String())
		c.apply(epoch, StateAuthenticated, &payload.User, &role)
		return nil
	case http.StatusUnauthorized:
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return auth.ErrInvalidCredentials
	default:
		c.apply(epoch, StateUnauthenticated, nil, nil)
		return fmt.Errorf("sign in failed: %s", readError(resp.Body))
	}
}

// SignOut clears local state unconditionally and tells the server
// best-effort. Calling it without an active session is a no-op with
// the same terminal state, not an error.
func (c *Client) SignOut(ctx context.Context) error {
	epoch := c.begin()

	resp, err := c.post(ctx, "/auth/signout", nil)
	if err == nil {
		resp.Body.Close()
	}

	c.apply(epoch, StateUnauthenticated, nil, nil)
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.httpc.Do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpc.Do(req)
}

func readError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil || body.Error == "" {
		return "unexpected response"
	}
	return body.Error
}

// ParseDenial extracts the structured denial from a 403 response body.
func ParseDenial(r io.Reader) (*Denial, error) {
	var d Denial
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	if d.Error != "permission_denied" {
		return nil, errors.New("not a permission denial")
	}
	return &d, nil
}
