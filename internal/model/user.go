// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the backend records and form drafts exchanged with the
// organisation's REST API, along with the local event log entry.
package model

// RoleAdmin is the role the backend assigns to back-office users.
const RoleAdmin = "admin"

// AdminUser is the identity returned by the backend on login.
type AdminUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin returns true if the user has admin role.
func (u *AdminUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// LoginResponse is the payload of POST /auth/login and POST /auth/register.
type LoginResponse struct {
	Token string    `json:"token"`
	User  AdminUser `json:"user"`
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
