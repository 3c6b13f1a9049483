// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/url"
	"strings"

	"github.com/olegiv/ngo-portal/internal/model"
)

// CreateDonationOrder asks the backend to open a payment order for a donation.
func (b *Backend) CreateDonationOrder(ctx context.Context, d model.DonationDraft) (model.PaymentOrder, error) {
	var out model.PaymentOrder
	err := b.api.Post(ctx, "/donations/create-order", d, &out)
	return out, err
}

// VerifyDonationPayment confirms a completed donation payment with the backend.
func (b *Backend) VerifyDonationPayment(ctx context.Context, c model.PaymentConfirmation) error {
	return b.api.Post(ctx, "/donations/verify-payment", c, nil)
}

// DonationFilter narrows the admin donation list.
type DonationFilter struct {
	Status string // Payment status
	From   string // Inclusive start date, YYYY-MM-DD
	To     string // Inclusive end date, YYYY-MM-DD
	Query  string // Free-text search over donor name and email
}

// Values returns the filter as query parameters, omitting empty fields.
func (f DonationFilter) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(k, val)
		}
	}
	set("status", f.Status)
	set("from", f.From)
	set("to", f.To)
	set("q", f.Query)
	return v
}

// IsZero reports whether no filter field is set.
func (f DonationFilter) IsZero() bool {
	return len(f.Values()) == 0
}

// ListDonations returns donations matching f.
func (b *Backend) ListDonations(ctx context.Context, f DonationFilter) ([]model.Donation, error) {
	return list[model.Donation](ctx, b, nil, "", "/donations", f.Values())
}

// GetDonation returns the donation with the given ID.
func (b *Backend) GetDonation(ctx context.Context, id string) (model.Donation, error) {
	var out model.Donation
	err := b.api.Get(ctx, "/donations/"+escape(id), nil, &out)
	return out, err
}

// DeleteDonation deletes the donation with the given ID.
func (b *Backend) DeleteDonation(ctx context.Context, id string) error {
	return b.api.Delete(ctx, "/donations/"+escape(id))
}

// CreateMembershipOrder asks the backend to open a payment order for a membership.
func (b *Backend) CreateMembershipOrder(ctx context.Context, d model.MembershipDraft) (model.PaymentOrder, error) {
	var out model.PaymentOrder
	err := b.api.Post(ctx, "/memberships/create-order", d, &out)
	return out, err
}

// VerifyMembershipPayment confirms a completed membership payment with the backend.
func (b *Backend) VerifyMembershipPayment(ctx context.Context, c model.PaymentConfirmation) error {
	return b.api.Post(ctx, "/memberships/verify-payment", c, nil)
}

// ListMemberships returns memberships, optionally filtered by status.
func (b *Backend) ListMemberships(ctx context.Context, status string) ([]model.Membership, error) {
	return list[model.Membership](ctx, b, nil, "", "/memberships", statusQuery(status))
}

// GetMembership returns the membership with the given ID.
func (b *Backend) GetMembership(ctx context.Context, id string) (model.Membership, error) {
	var out model.Membership
	err := b.api.Get(ctx, "/memberships/"+escape(id), nil, &out)
	return out, err
}

// SetMembershipStatus moves a membership to status.
func (b *Backend) SetMembershipStatus(ctx context.Context, id, status string) error {
	return b.api.Patch(ctx, "/memberships/"+escape(id)+"/status", statusBody{Status: status}, nil)
}

// DeleteMembership deletes the membership with the given ID.
func (b *Backend) DeleteMembership(ctx context.Context, id string) error {
	return b.api.Delete(ctx, "/memberships/"+escape(id))
}
