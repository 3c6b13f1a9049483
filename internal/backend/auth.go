// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"fmt"

	"github.com/olegiv/ngo-portal/internal/model"
)

// Login exchanges credentials for a token and identity. The response is
// returned as decoded; the caller decides whether the role and token suffice.
func (b *Backend) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	err := b.api.Post(ctx, "/auth/login", model.Credentials{Email: email, Password: password}, &resp)
	if err != nil {
		return model.LoginResponse{}, err
	}
	return resp, nil
}

// Register creates a member account. The backend answers with a token and
// identity in the same shape as Login.
func (b *Backend) Register(ctx context.Context, d model.RegisterDraft) (model.LoginResponse, error) {
	var resp model.LoginResponse
	if err := b.api.Post(ctx, "/auth/register", d, &resp); err != nil {
		return model.LoginResponse{}, fmt.Errorf("registering member: %w", err)
	}
	return resp, nil
}
