// Package auth signs users in and out and keeps the session profile in sync
// with the backend.
package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/oarkflow/mebel/internal/apiclient"
	"github.com/oarkflow/mebel/internal/apierror"
	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/session"
)

// Messages
const (
	MsgBadCredentials = "Email atau password salah"
	MsgProfileFailed  = "Gagal memuat profil pengguna"
	MsgLoginSuccess   = "Login berhasil"
)

// Login is the outcome of a successful sign-in.
type Login struct {
	Profile session.Profile
	// Landing is the view the user starts on; advisory only.
	Landing string
}

// Service is implemented by Live and Mock.
type Service interface {
	Login(ctx context.Context, email, password string) result.Result[Login]
	Me(ctx context.Context) result.Result[session.Profile]
	Logout() error
}

// Live authenticates against /auth/login and /auth/me.
type Live struct {
	client  *apiclient.Client
	session *session.Context
}

// NewLive creates the HTTP auth service
func NewLive(client *apiclient.Client, sess *session.Context) *Live {
	return &Live{client: client, session: sess}
}

type loginResponse struct {
	AccessToken string      `json:"access_token"`
	User        gateway.Row `json:"user"`
}

func (a *Live) Login(ctx context.Context, email, password string) result.Result[Login] {
	resp, err := a.client.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		JSON:   map[string]string{"email": strings.TrimSpace(email), "password": password},
	})
	if err != nil {
		return result.Fail[Login](err)
	}
	if !resp.OK() {
		return result.Fail[Login](resp.Err(MsgBadCredentials))
	}

	var body loginResponse
	if err := resp.Decode(&body); err != nil {
		return result.Fail[Login](err)
	}
	if body.AccessToken == "" {
		return result.Failure[Login]("Login gagal: server tidak mengirim token")
	}

	profile := session.Profile{
		ID:    body.User.Int("id"),
		Name:  body.User.String("nama", "name"),
		Email: body.User.String("email"),
		Role:  body.User.String("role"),
	}
	if err := a.session.Set(body.AccessToken, profile); err != nil {
		return result.Fail[Login](err)
	}

	log.Info("Signed in", "email", profile.Email, "role", profile.Role)
	return result.Success(Login{Profile: profile, Landing: session.LandingView(profile)}, MsgLoginSuccess)
}

func (a *Live) Me(ctx context.Context) result.Result[session.Profile] {
	token, ok := a.session.Token()
	if !ok {
		return result.Fail[session.Profile](apierror.AuthError{Msg: apierror.MsgNoTokenList})
	}

	resp, err := a.client.Do(ctx, apiclient.Request{Method: http.MethodGet, Path: "/auth/me", Token: token})
	if err != nil {
		return result.Fail[session.Profile](err)
	}
	if !resp.OK() {
		return result.Fail[session.Profile](resp.Err(MsgProfileFailed))
	}

	var row gateway.Row
	if err := resp.Decode(&row); err != nil {
		return result.Fail[session.Profile](err)
	}
	profile := ProfileFromRow(row)
	if err := a.session.UpdateProfile(profile); err != nil {
		return result.Fail[session.Profile](err)
	}
	return result.Success(profile, "")
}

func (a *Live) Logout() error {
	return a.session.Clear()
}

// ProfileFromRow maps a /auth/me body, defaulting role and status.
func ProfileFromRow(row gateway.Row) session.Profile {
	p := session.Profile{
		ID:     row.Int("id"),
		Name:   row.String("nama", "name"),
		Email:  row.String("email"),
		Role:   row.String("role"),
		Status: row.String("status_user"),
		Avatar: row.String("photo_profile"),
	}
	if p.Role == "" {
		p.Role = gateway.RoleUser
	}
	if p.Status == "" {
		p.Status = string(gateway.StatusActive)
	}
	return p
}

// Mock signs in against development accounts and issues real HS256 tokens,
// so that whoami and the development server agree on their shape.
type Mock struct {
	session *session.Context
	secret  []byte
	ttl     time.Duration

	mu       sync.RWMutex
	accounts map[string]account
}

type account struct {
	hash []byte
	user gateway.User
}

// NewMock creates a mock auth service. Passwords are hashed on the way in.
func NewMock(sess *session.Context, secret []byte, users []gateway.User, accounts []gateway.Account) (*Mock, error) {
	byID := make(map[int64]gateway.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	m := &Mock{session: sess, secret: secret, ttl: 24 * time.Hour, accounts: make(map[string]account)}
	for _, a := range accounts {
		u, ok := byID[a.UserID]
		if !ok {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		m.accounts[strings.ToLower(a.Email)] = account{hash: hash, user: u}
	}
	return m, nil
}

func (m *Mock) Login(_ context.Context, email, password string) result.Result[Login] {
	m.mu.RLock()
	acct, ok := m.accounts[strings.ToLower(strings.TrimSpace(email))]
	m.mu.RUnlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return result.Fail[Login](apierror.ServerError{Status: http.StatusUnauthorized, Message: MsgBadCredentials})
	}
	if acct.user.Status != gateway.StatusActive {
		return result.Fail[Login](apierror.ServerError{Status: http.StatusForbidden, Message: "Akun tidak aktif"})
	}

	token, err := IssueToken(m.secret, acct.user.ID, acct.user.Role, m.ttl)
	if err != nil {
		return result.Fail[Login](err)
	}
	profile := profileOf(acct.user)
	if err := m.session.Set(token, profile); err != nil {
		return result.Fail[Login](err)
	}
	return result.Success(Login{Profile: profile, Landing: session.LandingView(profile)}, MsgLoginSuccess)
}

func (m *Mock) Me(context.Context) result.Result[session.Profile] {
	token, ok := m.session.Token()
	if !ok {
		return result.Fail[session.Profile](apierror.AuthError{Msg: apierror.MsgNoTokenList})
	}
	claims, err := ParseToken(m.secret, token)
	if err != nil {
		return result.Fail[session.Profile](apierror.ServerError{Status: http.StatusUnauthorized, Message: "Token tidak valid"})
	}

	profile, found := m.profile(claims.UserID)
	if !found {
		return result.Fail[session.Profile](apierror.ServerError{Status: http.StatusNotFound, Message: MsgProfileFailed})
	}
	if err := m.session.UpdateProfile(profile); err != nil {
		return result.Fail[session.Profile](err)
	}
	return result.Success(profile, "")
}

func (m *Mock) profile(id int64) (session.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acct := range m.accounts {
		if acct.user.ID == id {
			return profileOf(acct.user), true
		}
	}
	return session.Profile{}, false
}

func (m *Mock) Logout() error {
	return m.session.Clear()
}

func profileOf(u gateway.User) session.Profile {
	return session.Profile{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Status: string(u.Status),
		Avatar: u.Avatar,
	}
}
