// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/url"

	"github.com/olegiv/ngo-portal/internal/model"
)

type statusBody struct {
	Status string `json:"status"`
}

func statusQuery(status string) url.Values {
	if status == "" {
		return nil
	}
	return url.Values{"status": {status}}
}

// SubmitVolunteer records a volunteer application.
func (b *Backend) SubmitVolunteer(ctx context.Context, d model.VolunteerDraft) error {
	return b.api.Post(ctx, "/volunteers", d, nil)
}

// ListVolunteers returns applications, optionally filtered by status.
func (b *Backend) ListVolunteers(ctx context.Context, status string) ([]model.Volunteer, error) {
	return list[model.Volunteer](ctx, b, nil, "", "/volunteers", statusQuery(status))
}

// GetVolunteer returns the application with the given ID.
func (b *Backend) GetVolunteer(ctx context.Context, id string) (model.Volunteer, error) {
	var out model.Volunteer
	err := b.api.Get(ctx, "/volunteers/"+escape(id), nil, &out)
	return out, err
}

// SetVolunteerStatus moves an application to status.
func (b *Backend) SetVolunteerStatus(ctx context.Context, id, status string) error {
	return b.api.Patch(ctx, "/volunteers/"+escape(id)+"/status", statusBody{Status: status}, nil)
}

// DeleteVolunteer deletes the application with the given ID.
func (b *Backend) DeleteVolunteer(ctx context.Context, id string) error {
	return b.api.Delete(ctx, "/volunteers/"+escape(id))
}

// SubmitContact records a contact-form message.
func (b *Backend) SubmitContact(ctx context.Context, d model.ContactDraft) error {
	return b.api.Post(ctx, "/contacts", d, nil)
}

// ListContacts returns all contact messages.
func (b *Backend) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return list[model.Contact](ctx, b, nil, "", "/contacts", nil)
}

// GetContact returns the message with the given ID.
func (b *Backend) GetContact(ctx context.Context, id string) (model.Contact, error) {
	var out model.Contact
	err := b.api.Get(ctx, "/contacts/"+escape(id), nil, &out)
	return out, err
}

// MarkContactRead flags a message as read.
func (b *Backend) MarkContactRead(ctx context.Context, id string) error {
	return b.api.Patch(ctx, "/contacts/"+escape(id)+"/read", nil, nil)
}

// DeleteContact deletes the message with the given ID.
func (b *Backend) DeleteContact(ctx context.Context, id string) error {
	return b.api.Delete(ctx, "/contacts/"+escape(id))
}
