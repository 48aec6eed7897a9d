// Package auth defines the session capability the CLI injects into
// components that need an operator identity. The donor backend performs no
// real authentication; implementations here only decide who the local
// operator claims to be.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"almoner/internal/config"
)

// Session identifies the operator driving the CLI.
type Session struct {
	Email string
	Name  string
	Role  string
}

// Provider supplies the current operator session. Implementations must be
// safe for concurrent use.
type Provider interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Logout(ctx context.Context) error
	Current() (Session, bool)
}

// Static sources its session from configuration. An empty operator email
// means no session.
type Static struct {
	mu      sync.Mutex
	session Session
	active  bool
}

// NewStatic builds a Static provider seeded from the operator config
// section. A configured email counts as an already-established session.
func NewStatic(op config.Operator) *Static {
	s := &Static{}
	if strings.TrimSpace(op.Email) != "" {
		s.session = Session{Email: op.Email, Name: op.Name, Role: op.Role}
		s.active = true
	}
	return s
}

// Login establishes a session for the supplied email. The password is
// accepted unchecked; there is no credential store behind this provider.
func (s *Static) Login(_ context.Context, email, _ string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, errors.New("auth: email is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{Email: email}
	s.active = true
	return s.session, nil
}

// Logout clears the current session.
func (s *Static) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	s.active = false
	return nil
}

// Current reports the active session, if any.
func (s *Static) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.active
}
