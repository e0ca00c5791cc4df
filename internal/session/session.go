// Package session holds the bearer token and the signed-in user's profile.
//
// The token is opaque to the console: it is attached to requests and never
// validated locally. Claims decodes it for display only.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store keys
const (
	KeyToken   = "token"
	KeyProfile = "user"
)

// Landing views
const (
	ViewDashboard = "dashboard"
	ViewCatalog   = "catalog"
)

// RoleAdmin is the role that lands on the dashboard.
const RoleAdmin = "admin"

// Profile is the signed-in user as reported by the backend.
type Profile struct {
	ID     int64  `json:"id"`
	Name   string `json:"nama"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Avatar string `json:"avatar,omitempty"`
}

// IsAdmin reports whether the profile has the admin role.
func (p Profile) IsAdmin() bool {
	return strings.EqualFold(p.Role, RoleAdmin)
}

// LandingView returns the view a user starts on after login. It is advisory;
// the backend enforces access.
func LandingView(p Profile) string {
	if p.IsAdmin() {
		return ViewDashboard
	}
	return ViewCatalog
}

// Context is the read/write boundary over the session store.
type Context struct {
	mu    sync.RWMutex
	store Store
}

// New wraps a store
func New(store Store) *Context {
	return &Context{store: store}
}

// NewMemory returns a session context backed by memory, mostly for tests.
func NewMemory() *Context {
	return New(NewMemoryStore())
}

// Token returns the bearer token, if any.
func (c *Context) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tok, ok := c.store.Get(KeyToken)
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

// Profile returns the stored profile, if any.
func (c *Context) Profile() (Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.store.Get(KeyProfile)
	if !ok || raw == "" {
		return Profile{}, false
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, false
	}
	return p, true
}

// Set stores a fresh token and profile after login.
func (c *Context) Set(token string, p Profile) error {
	if token == "" {
		return errors.New("empty token")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, hadToken := c.store.Get(KeyToken)
	if err := c.store.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := c.setProfileLocked(p); err != nil {
		// Never leave the new token without its profile.
		var rollback error
		if hadToken {
			rollback = c.store.Set(KeyToken, prev)
		} else {
			rollback = c.store.Delete(KeyToken)
		}
		return errors.Join(err, rollback)
	}
	return nil
}

// UpdateProfile replaces the profile and keeps the token.
func (c *Context) UpdateProfile(p Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setProfileLocked(p)
}

func (c *Context) setProfileLocked(p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := c.store.Set(KeyProfile, string(data)); err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// Clear removes token and profile.
func (c *Context) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return errors.Join(c.store.Delete(KeyToken), c.store.Delete(KeyProfile))
}

// Claims is the subset of token claims shown by whoami.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry in the past. Nothing
// acts on it; the backend is the authority.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Claims decodes the token payload without verifying the signature.
func (c *Context) Claims() (Claims, error) {
	tok, ok := c.Token()
	if !ok {
		return Claims{}, errors.New("no session token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return Claims{}, fmt.Errorf("token is not a JWT: %w", err)
	}

	var out Claims
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		out.Subject = sub
	} else if id, ok := claims["user_id"]; ok {
		out.Subject = fmt.Sprint(id)
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
