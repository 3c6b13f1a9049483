// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/model"
)

// Session keys. KeyAdminToken is the single durable credential; the identity
// keys are written and cleared together with it.
const (
	KeyAdminToken = "admin_token"
	KeyAdminID    = "admin_id"
	KeyAdminName  = "admin_name"
	KeyAdminEmail = "admin_email"
	KeyAdminRole  = "admin_role"

	KeyMemberToken = "member_token"
	KeyMemberName  = "member_name"
	KeyMemberEmail = "member_email"
)

// State is the resolution state of the admin session for a request.
type State int

const (
	// StateChecking means the session has not been loaded for this request yet.
	StateChecking State = iota
	// StateUnauthenticated means no token is stored.
	StateUnauthenticated
	// StateAuthenticated means a token is stored. It is not verified with the backend.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrNotAdmin is returned by Login when the credentials are valid but the
// account does not hold the admin role.
var ErrNotAdmin = &apiclient.Error{
	Kind:     apiclient.KindForbidden,
	Method:   http.MethodPost,
	Endpoint: "/auth/login",
	Message:  "Access denied. Admin privileges required.",
}

// ErrNoToken is returned when the backend accepts an account but issues no
// token for it.
var ErrNoToken = errors.New("login response carried no token")

// noTokenError reports a login response without a token as a decode failure.
func noTokenError() error {
	return &apiclient.Error{
		Kind:     apiclient.KindDecode,
		Method:   http.MethodPost,
		Endpoint: "/auth/login",
		Err:      ErrNoToken,
	}
}

// Authenticator exchanges credentials for a token and identity.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.LoginResponse, error)
}

// Store reads and writes identities in the scs session.
type Store struct {
	sm   *scs.SessionManager
	auth Authenticator
}

// NewStore creates a Store backed by sm that authenticates through auth.
func NewStore(sm *scs.SessionManager, auth Authenticator) *Store {
	return &Store{sm: sm, auth: auth}
}

// Manager returns the underlying session manager.
func (s *Store) Manager() *scs.SessionManager {
	return s.sm
}

type resolvedKey struct{}

// Resolve marks the session as loaded for the rest of the chain.
// It must run inside the session manager's LoadAndSave middleware.
func (s *Store) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), resolvedKey{}, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MarkResolved returns a copy of ctx flagged as carrying loaded session data.
func MarkResolved(ctx context.Context) context.Context {
	return context.WithValue(ctx, resolvedKey{}, true)
}

func resolved(ctx context.Context) bool {
	ok, _ := ctx.Value(resolvedKey{}).(bool)
	return ok
}

// State reports whether an admin token is present for this request.
func (s *Store) State(ctx context.Context) State {
	if !resolved(ctx) {
		return StateChecking
	}
	if s.sm.GetString(ctx, KeyAdminToken) == "" {
		return StateUnauthenticated
	}
	return StateAuthenticated
}

// Token returns the stored admin token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) string {
	if !resolved(ctx) {
		return ""
	}
	return s.sm.GetString(ctx, KeyAdminToken)
}

// Admin returns the stored admin identity, or nil when no token is stored.
func (s *Store) Admin(ctx context.Context) *model.AdminUser {
	if s.Token(ctx) == "" {
		return nil
	}
	return &model.AdminUser{
		ID:    s.sm.GetString(ctx, KeyAdminID),
		Name:  s.sm.GetString(ctx, KeyAdminName),
		Email: s.sm.GetString(ctx, KeyAdminEmail),
		Role:  s.sm.GetString(ctx, KeyAdminRole),
	}
}

// Login authenticates against the backend and, if the account is an admin,
// stores the token and identity together. Nothing is stored on failure.
func (s *Store) Login(ctx context.Context, email, password string) (model.AdminUser, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return model.AdminUser{}, err
	}
	if !resp.User.IsAdmin() {
		return model.AdminUser{}, ErrNotAdmin
	}
	if resp.Token == "" {
		return model.AdminUser{}, noTokenError()
	}

	if err := s.sm.RenewToken(ctx); err != nil {
		return model.AdminUser{}, fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, KeyAdminToken, resp.Token)
	s.sm.Put(ctx, KeyAdminID, resp.User.ID)
	s.sm.Put(ctx, KeyAdminName, resp.User.Name)
	s.sm.Put(ctx, KeyAdminEmail, resp.User.Email)
	s.sm.Put(ctx, KeyAdminRole, resp.User.Role)
	return resp.User, nil
}

// Logout destroys the session, clearing the admin token and identity.
func (s *Store) Logout(ctx context.Context) error {
	return s.sm.Destroy(ctx)
}

// ClearAdmin removes the admin token and identity but keeps the session,
// so a flash message can still be shown.
func (s *Store) ClearAdmin(ctx context.Context) {
	for _, k := range []string{KeyAdminToken, KeyAdminID, KeyAdminName, KeyAdminEmail, KeyAdminRole} {
		s.sm.Remove(ctx, k)
	}
}

// Member returns the signed-in member, or nil.
func (s *Store) Member(ctx context.Context) *model.AdminUser {
	if !resolved(ctx) || s.sm.GetString(ctx, KeyMemberToken) == "" {
		return nil
	}
	return &model.AdminUser{
		Name:  s.sm.GetString(ctx, KeyMemberName),
		Email: s.sm.GetString(ctx, KeyMemberEmail),
	}
}

// LoginMember authenticates a member. Any role is accepted and the identity
// is kept apart from the admin keys, so it never opens the admin panel.
func (s *Store) LoginMember(ctx context.Context, email, password string) (model.AdminUser, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return model.AdminUser{}, err
	}
	if resp.Token == "" {
		return model.AdminUser{}, noTokenError()
	}
	if err := s.StartMember(ctx, resp); err != nil {
		return model.AdminUser{}, err
	}
	return resp.User, nil
}

// StartMember stores a member identity from a login or registration response.
func (s *Store) StartMember(ctx context.Context, resp model.LoginResponse) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, KeyMemberToken, resp.Token)
	s.sm.Put(ctx, KeyMemberName, resp.User.Name)
	s.sm.Put(ctx, KeyMemberEmail, resp.User.Email)
	return nil
}

// LogoutMember removes the member identity.
func (s *Store) LogoutMember(ctx context.Context) {
	for _, k := range []string{KeyMemberToken, KeyMemberName, KeyMemberEmail} {
		s.sm.Remove(ctx, k)
	}
}
