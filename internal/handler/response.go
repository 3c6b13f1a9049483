// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
)

// Messages shown when the backend gives no usable reason.
const (
	msgGenericError   = "Something went wrong. Please try again."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgUnreachable    = "Unable to reach the server. Please try again."
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST/PUT/DELETE redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, render.FlashSuccess)
}

// parseFormOrRedirect parses the request form and redirects with an error message on failure.
// Returns true if parsing succeeded, false if it failed (and redirect was performed).
func parseFormOrRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, redirectURL string) bool {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, renderer, redirectURL, "Invalid form data")
		return false
	}
	return true
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, message string, statusCode int, logMsg string, args ...any) {
	slog.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logMsg string, args ...any) {
	logAndHTTPError(w, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// canceled reports whether the client went away. Handlers stop without
// writing anything once it has.
func canceled(r *http.Request, err error) bool {
	return errors.Is(err, context.Canceled) || r.Context().Err() != nil
}

// userMessage picks the text shown in an error dialog for err.
func userMessage(err error, fallback string) string {
	if apiclient.IsKind(err, apiclient.KindTransport) {
		return msgUnreachable
	}
	return apiclient.MessageOf(err, fallback)
}

// logFetchError records a failed backend read. The page still renders its
// empty state afterwards.
func logFetchError(r *http.Request, what string, err error) {
	slog.Warn("backend fetch failed",
		"what", what,
		"kind", apiclient.KindOf(err),
		"error", err,
		logging.AttrPath, middleware.GetRequestPath(r.Context()))
}

// adminError handles a failed admin call. A rejected token clears the stale
// admin identity and sends the browser to the login page; anything else is
// logged and flashed on redirectURL.
func adminError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, sessions *session.Store, err error, redirectURL, fallback string) {
	if canceled(r, err) {
		return
	}
	if apiclient.IsKind(err, apiclient.KindUnauthorized) {
		slog.Warn("admin token rejected by backend",
			logging.AttrCategory, "auth",
			logging.AttrActor, middleware.GetAdminEmail(r),
			logging.AttrPath, r.URL.Path)
		sessions.ClearAdmin(r.Context())
		flashError(w, r, renderer, middleware.AdminLoginPath, msgSessionExpired)
		return
	}
	slog.Error("admin backend call failed",
		"kind", apiclient.KindOf(err),
		"error", err,
		logging.AttrActor, middleware.GetAdminEmail(r),
		logging.AttrPath, r.URL.Path)
	flashError(w, r, renderer, redirectURL, userMessage(err, fallback))
}
