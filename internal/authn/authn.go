// Package authn implements the login flow: user records are plain JSON
// files in the backend, passwords are bcrypt-compared against the stored
// hash, and a successful login issues a bearer credential.
package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/backend"
	"github.com/designsystemsinternational/react-admin-github/internal/token"
)

// User is the persisted user record, one JSON file per user.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
	Hash     string `json:"hash"`
}

// Session is the payload returned to a successfully logged-in client.
// The client keeps the token; there is no server-side session state.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	ID            string `json:"id,omitempty"`
	FullName      string `json:"fullName,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// Service validates credentials against user files in the backend.
type Service struct {
	store    backend.Provider
	usersDir string
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an authn service reading user records from usersDir.
func NewService(store backend.Provider, usersDir string, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		usersDir: usersDir,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Login reads <usersDir>/<username>.json, compares password against its
// bcrypt hash, and issues a credential on success. Every failure mode
// collapses into the same ErrUnauthorized so the response never reveals
// whether the user exists.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	content, _, err := s.store.Read(ctx, path.Join(s.usersDir, username+".json"))
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}

	var user User
	if err := json.Unmarshal(content, &user); err != nil || user.Hash == "" {
		return nil, apperr.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return nil, apperr.ErrUnauthorized
	}

	subject := user.ID
	if subject == "" {
		subject = username
	}
	t, err := token.IssueCredential(subject, user.FullName, s.secret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	return &Session{
		Authenticated: true,
		Token:         t,
		ID:            subject,
		FullName:      user.FullName,
		Avatar:        user.Avatar,
	}, nil
}
