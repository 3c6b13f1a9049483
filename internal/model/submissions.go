// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Review statuses for volunteer applications and memberships.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
	ReviewActive   = "active"
	ReviewExpired  = "expired"
)

// Payment statuses reported by the backend.
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// VolunteerStatuses lists the statuses an admin can assign to an application.
var VolunteerStatuses = []string{ReviewPending, ReviewApproved, ReviewRejected}

// MembershipStatuses lists the statuses an admin can assign to a membership.
var MembershipStatuses = []string{ReviewPending, ReviewActive, ReviewExpired, ReviewRejected}

// Volunteer is a submitted volunteer application.
type Volunteer struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	Interests    []string  `json:"interests"`
	Availability string    `json:"availability"`
	Skills       string    `json:"skills"`
	Motivation   string    `json:"motivation"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Contact is a message sent through the contact form.
type Contact struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership is a paid membership record.
type Membership struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Plan          string    `json:"plan"`
	Amount        float64   `json:"amount"`
	PaymentStatus string    `json:"paymentStatus"`
	Status        string    `json:"status"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Donation is a recorded donation.
type Donation struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	PAN           string    `json:"pan"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Purpose       string    `json:"purpose"`
	PaymentStatus string    `json:"paymentStatus"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaymentOrder is a gateway order created by the backend for a checkout.
type PaymentOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	KeyID    string  `json:"keyId"`
	Receipt  string  `json:"receipt"`
}

// PaymentConfirmation is the gateway callback forwarded to the backend for verification.
type PaymentConfirmation struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// MembershipPlan is a selectable membership tier.
type MembershipPlan struct {
	Key    string
	Name   string
	Amount float64
	Perks  []string
}

// MembershipPlans are the tiers offered on the membership page.
var MembershipPlans = []MembershipPlan{
	{Key: "basic", Name: "Supporter", Amount: 500, Perks: []string{"Quarterly newsletter", "Annual impact report"}},
	{Key: "standard", Name: "Friend", Amount: 2000, Perks: []string{"Quarterly newsletter", "Annual impact report", "Event invitations"}},
	{Key: "premium", Name: "Patron", Amount: 10000, Perks: []string{"Quarterly newsletter", "Annual impact report", "Event invitations", "Field visit with the team"}},
}

// FindPlan returns the plan with the given key.
func FindPlan(key string) (MembershipPlan, bool) {
	for _, p := range MembershipPlans {
		if p.Key == key {
			return p, true
		}
	}
	return MembershipPlan{}, false
}
