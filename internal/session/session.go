// Package session holds the authenticated identity and its lifecycle:
// init from a persisted credential, login, register, logout. The session is
// handed to the domain store by injection; there is no package-level state.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"parkdeck/internal/client"
	"parkdeck/internal/entities"
	"parkdeck/internal/normalize"
)

type Session struct {
	mu      sync.RWMutex
	client  *client.Client
	tokens  TokenStore
	user    *entities.User
	loading bool
}

func New(c *client.Client, tokens TokenStore) *Session {
	return &Session{client: c, tokens: tokens}
}

// Init validates a persisted credential against the profile endpoint. An
// expired or rejected credential is cleared rather than left as stale
// identity; a missing credential is not an error.
func (s *Session) Init(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		return nil
	}

	if expired(token, time.Now()) {
		logrus.Info("persisted credential is expired, clearing session")
		s.tokens.Clear()
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	raw, err := s.client.Profile(ctx)
	if err != nil {
		s.tokens.Clear()
		s.setUser(nil)
		return fmt.Errorf("credential validation failed: %w", err)
	}
	user, err := normalize.User(*raw)
	if err != nil {
		s.tokens.Clear()
		return fmt.Errorf("credential validation failed: %w", err)
	}
	s.setUser(&user)
	return nil
}

// Login authenticates and populates the identity.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	res, err := s.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	if res.Token == "" || res.User == nil {
		return fmt.Errorf("invalid response from server")
	}

	user, err := normalize.User(*res.User)
	if err != nil {
		return err
	}
	if err := s.tokens.Save(res.Token); err != nil {
		logrus.Warnf("could not persist credential: %v", err)
	}
	s.setUser(&user)
	return nil
}

// Register creates an account then authenticates with the new credentials.
// Registration defaults to the customer role.
func (s *Session) Register(ctx context.Context, req client.RegisterUserRequest) error {
	s.setLoading(true)

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = string(entities.RoleCustomer)
	}
	req.Role = strings.ToUpper(req.Role)

	user, err := s.client.RegisterUser(ctx, req)
	s.setLoading(false)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("registration failed, please try again")
	}
	return s.Login(ctx, req.Email, req.Password)
}

// Logout clears the identity and the persisted credential.
func (s *Session) Logout() {
	s.tokens.Clear()
	s.setUser(nil)
}

// Current returns the authenticated user, if any.
func (s *Session) Current() (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return entities.User{}, false
	}
	return *s.user, true
}

// Role returns the current role, empty when logged out.
func (s *Session) Role() entities.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setUser(u *entities.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// expired checks the token's exp claim locally, without verifying the
// signature; verification is the backend's job. Tokens without a readable
// exp claim are left for the profile call to judge.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
