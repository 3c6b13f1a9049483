// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// Login error messages.
const (
	msgInvalidCredentials = "Invalid email or password"
	msgAccessDenied       = "Access denied. Admin privileges required."
)

// AuthHandler handles admin and member sign-in.
type AuthHandler struct {
	renderer        *render.Renderer
	sessions        *session.Store
	backend         *backend.Backend
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		renderer:        renderer,
		sessions:        sessions,
		backend:         b,
		loginProtection: lp,
	}
}

// LoginData holds data for the login forms.
type LoginData struct {
	Email string
}

// loginFailure picks the message and status for a failed login.
func loginFailure(err error) (string, int) {
	switch {
	case errors.Is(err, session.ErrNotAdmin):
		return msgAccessDenied, http.StatusForbidden
	case apiclient.IsKind(err, apiclient.KindUnauthorized), apiclient.IsKind(err, apiclient.KindValidation):
		return msgInvalidCredentials, http.StatusUnauthorized
	case apiclient.IsKind(err, apiclient.KindTransport):
		return msgUnreachable, http.StatusBadGateway
	default:
		return apiclient.MessageOf(err, "Login failed. Please try again."), http.StatusBadGateway
	}
}

// lockedMessage describes an account lockout.
func lockedMessage(d time.Duration) string {
	return fmt.Sprintf("Too many failed login attempts. Try again in %d minutes.", int(d.Minutes())+1)
}

// =============================================================================
// ADMIN
// =============================================================================

// LoginForm handles GET /admin/login.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, r, "auth/login", render.TemplateData{
		Title: "Admin Login",
		Data:  LoginData{},
	})
}

func (h *AuthHandler) loginError(w http.ResponseWriter, r *http.Request, status int, email, message string) {
	h.renderer.RenderPageStatus(w, r, status, "auth/login", render.TemplateData{
		Title:     "Admin Login",
		Data:      LoginData{Email: email},
		Flash:     message,
		FlashType: render.FlashError,
	})
}

// Login handles POST /admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteAdminLogin) {
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")
	clientIP := middleware.GetClientIP(r)

	if email == "" || password == "" {
		h.loginError(w, r, http.StatusUnprocessableEntity, email, "Email and password are required")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.Locked(email); locked {
			slog.Warn("login attempt on locked account",
				logging.AttrCategory, model.EventCategoryAuth,
				logging.AttrActor, email,
				logging.AttrIP, clientIP)
			h.loginError(w, r, http.StatusTooManyRequests, email, lockedMessage(remaining))
			return
		}
	}

	user, err := h.sessions.Login(r.Context(), email, password)
	if err != nil {
		if canceled(r, err) {
			return
		}
		message, status := loginFailure(err)
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			slog.Warn("failed admin login",
				"reason", apiclient.KindOf(err),
				logging.AttrCategory, model.EventCategoryAuth,
				logging.AttrActor, email,
				logging.AttrIP, clientIP)
			// Only bad credentials count toward a lockout, not a rejected role.
			if h.loginProtection != nil && status == http.StatusUnauthorized {
				if locked, d := h.loginProtection.RecordFailure(email); locked {
					message = lockedMessage(d)
					status = http.StatusTooManyRequests
				}
			}
		} else {
			slog.Error("admin login failed", "kind", apiclient.KindOf(err), "error", err)
		}
		h.loginError(w, r, status, email, message)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Reset(email)
	}
	slog.Info("admin logged in",
		logging.AttrCategory, model.EventCategoryAuth,
		logging.AttrActor, user.Email,
		logging.AttrIP, clientIP)

	flashSuccess(w, r, h.renderer, redirectAdminDashboard, "Welcome back, "+user.Name+"!")
}

// Logout handles POST /admin/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	email := middleware.GetAdminEmail(r)
	if err := h.sessions.Logout(r.Context()); err != nil {
		logAndInternalError(w, "failed to destroy session", "error", err)
		return
	}
	slog.Info("admin logged out", logging.AttrCategory, model.EventCategoryAuth, logging.AttrActor, email)
	flashSuccess(w, r, h.renderer, RouteAdminLogin, "You have been logged out.")
}

// Loading renders the page shown while the session is still being resolved.
func (h *AuthHandler) Loading(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, r, "auth/loading", render.TemplateData{
		Title: "Loading",
	})
}

// =============================================================================
// MEMBERS
// =============================================================================

// MemberLoginForm handles GET /login.
func (h *AuthHandler) MemberLoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, r, "public/login", render.TemplateData{
		Title: "Sign In",
		Data:  LoginData{},
	})
}

// MemberLogin handles POST /login. Any account role may sign in here.
func (h *AuthHandler) MemberLogin(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteLogin) {
		return
	}

	email := formValue(r, "email")
	password := r.FormValue("password")
	fail := func(status int, message string) {
		h.renderer.RenderPageStatus(w, r, status, "public/login", render.TemplateData{
			Title: "Sign In",
			Data:  LoginData{Email: email},
			Modal: uikit.ErrorModal("Sign in failed", message),
		})
	}

	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, "Email and password are required")
		return
	}
	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.Locked(email); locked {
			fail(http.StatusTooManyRequests, lockedMessage(remaining))
			return
		}
	}

	user, err := h.sessions.LoginMember(r.Context(), email, password)
	if err != nil {
		if canceled(r, err) {
			return
		}
		message, status := loginFailure(err)
		if status == http.StatusUnauthorized && h.loginProtection != nil {
			h.loginProtection.RecordFailure(email)
		}
		fail(status, message)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.Reset(email)
	}
	slog.Info("member logged in", logging.AttrCategory, model.EventCategoryAuth, logging.AttrActor, user.Email)
	flashSuccess(w, r, h.renderer, RouteRoot, "Welcome, "+user.Name+"!")
}

// RegisterForm handles GET /register.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, r, "public/register", render.TemplateData{
		Title: "Create an Account",
		Data:  FormPage[model.RegisterDraft]{},
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteRegister) {
		return
	}

	draft := model.RegisterDraft{
		Name:            formValue(r, "name"),
		Email:           formValue(r, "email"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}
	// Passwords are never echoed back into the form.
	page := FormPage[model.RegisterDraft]{Draft: model.RegisterDraft{Name: draft.Name, Email: draft.Email}}
	fail := func(status int, modal uikit.Modal) {
		h.renderer.RenderPageStatus(w, r, status, "public/register", render.TemplateData{
			Title: "Create an Account",
			Data:  page,
			Modal: modal,
		})
	}

	if page.Errors = draft.Validate(); page.HasErrors() {
		fail(http.StatusUnprocessableEntity, uikit.ErrorModal("Check your details", msgFixFields))
		return
	}

	resp, err := h.backend.Register(r.Context(), draft)
	if err != nil {
		if canceled(r, err) {
			return
		}
		slog.Warn("member registration failed", "kind", apiclient.KindOf(err), "error", err)
		fail(submitStatus(err), uikit.ErrorModal("Registration failed", userMessage(err, "Could not create your account. Please try again.")))
		return
	}
	if resp.Token == "" {
		flashSuccess(w, r, h.renderer, RouteLogin, "Your account was created. Please sign in.")
		return
	}
	if err := h.sessions.StartMember(r.Context(), resp); err != nil {
		logAndInternalError(w, "failed to start member session", "error", err)
		return
	}

	slog.Info("member registered", logging.AttrCategory, model.EventCategoryAuth, logging.AttrActor, resp.User.Email)
	flashSuccess(w, r, h.renderer, RouteRoot, "Welcome, "+resp.User.Name+"! Your account is ready.")
}

// MemberLogout handles POST /logout.
func (h *AuthHandler) MemberLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.LogoutMember(r.Context())
	flashSuccess(w, r, h.renderer, RouteRoot, "You have been signed out.")
}
