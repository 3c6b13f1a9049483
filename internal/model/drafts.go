// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"math"
	"net/mail"
	"strings"
	"unicode"
)

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// required records a "is required" message when value is blank.
func (fe FieldErrors) required(field, label, value string) bool {
	if strings.TrimSpace(value) == "" {
		fe[field] = label + " is required"
		return false
	}
	return true
}

func (fe FieldErrors) email(field, value string) {
	if !fe.required(field, "Email", value) {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		fe[field] = "Invalid email format"
	}
}

func (fe FieldErrors) phone(field, value string, mandatory bool) {
	if strings.TrimSpace(value) == "" {
		if mandatory {
			fe[field] = "Phone is required"
		}
		return
	}
	digits := 0
	for _, r := range value {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			fe[field] = "Invalid phone number"
			return
		}
	}
	if digits < 7 || digits > 15 {
		fe[field] = "Invalid phone number"
	}
}

// VolunteerDraft is the volunteer application form.
type VolunteerDraft struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	Interests    []string `json:"interests"`
	Availability string   `json:"availability"`
	Skills       string   `json:"skills"`
	Motivation   string   `json:"motivation"`
}

// Validate checks required fields.
func (d VolunteerDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.email("email", d.Email)
	fe.phone("phone", d.Phone, true)
	if len(d.Interests) == 0 {
		fe["interests"] = "Select at least one area of interest"
	}
	fe.required("availability", "Availability", d.Availability)
	return fe
}

// ContactDraft is the contact form.
type ContactDraft struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks required fields.
func (d ContactDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.email("email", d.Email)
	fe.phone("phone", d.Phone, false)
	fe.required("subject", "Subject", d.Subject)
	fe.required("message", "Message", d.Message)
	return fe
}

// MinDonationAmount is the smallest accepted donation in whole currency units.
const MinDonationAmount = 1

// DonationDraft is the donation form.
type DonationDraft struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	PAN     string  `json:"pan,omitempty"`
	Amount  float64 `json:"amount"`
	Purpose string  `json:"purpose"`
	Receipt string  `json:"receipt"`
}

// Validate checks required fields.
func (d DonationDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.email("email", d.Email)
	fe.phone("phone", d.Phone, true)
	if math.IsNaN(d.Amount) || math.IsInf(d.Amount, 0) || d.Amount < MinDonationAmount {
		fe["amount"] = "Enter a donation amount"
	}
	if d.PAN != "" && !isValidPAN(d.PAN) {
		fe["pan"] = "Invalid PAN format"
	}
	return fe
}

// isValidPAN checks the AAAAA9999A tax identifier layout.
func isValidPAN(pan string) bool {
	pan = strings.ToUpper(strings.TrimSpace(pan))
	if len(pan) != 10 {
		return false
	}
	for i, r := range pan {
		switch {
		case i < 5 || i == 9:
			if r < 'A' || r > 'Z' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// MembershipDraft is the membership sign-up form.
type MembershipDraft struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Plan    string  `json:"plan"`
	Amount  float64 `json:"amount"`
	Receipt string  `json:"receipt"`
}

// Validate checks required fields and resolves the plan amount.
func (d *MembershipDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.email("email", d.Email)
	fe.phone("phone", d.Phone, true)
	plan, ok := FindPlan(d.Plan)
	if !ok {
		fe["plan"] = "Choose a membership plan"
	} else {
		d.Amount = plan.Amount
	}
	return fe
}

// RegisterDraft is the member registration form.
type RegisterDraft struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"-"`
}

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// Validate checks required fields.
func (d RegisterDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.email("email", d.Email)
	switch {
	case d.Password == "":
		fe["password"] = "Password is required"
	case len(d.Password) < MinPasswordLength:
		fe["password"] = "Password must be at least 8 characters"
	case d.Password != d.PasswordConfirm:
		fe["password_confirm"] = "Passwords do not match"
	}
	return fe
}

// BlogDraft is the admin blog editor form.
type BlogDraft struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	ContentFormat string   `json:"contentFormat"`
	Category      string   `json:"category"`
	Author        string   `json:"author"`
	CoverImage    string   `json:"coverImage"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status"`
}

// Validate checks required fields.
func (d BlogDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("title", "Title", d.Title)
	fe.required("content", "Content", d.Content)
	fe.required("category", "Category", d.Category)
	if d.Status != StatusDraft && d.Status != StatusPublished {
		fe["status"] = "Invalid status"
	}
	if d.ContentFormat != FormatHTML && d.ContentFormat != FormatMarkdown {
		fe["contentFormat"] = "Invalid content format"
	}
	return fe
}

// ProgramDraft is the admin program editor form.
type ProgramDraft struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Beneficiaries int      `json:"beneficiaries"`
	Status        string   `json:"status"`
	Order         int      `json:"order"`
}

// Validate checks required fields.
func (d ProgramDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("title", "Title", d.Title)
	fe.required("summary", "Summary", d.Summary)
	if d.Beneficiaries < 0 {
		fe["beneficiaries"] = "Beneficiaries cannot be negative"
	}
	return fe
}

// GalleryDraft is the admin gallery upload form. The image itself travels as a multipart file.
type GalleryDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TakenAt     string `json:"takenAt,omitempty"`
}

// Validate checks required fields.
func (d GalleryDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("title", "Title", d.Title)
	fe.required("category", "Category", d.Category)
	return fe
}

// Fields returns the multipart form fields for the draft.
func (d GalleryDraft) Fields() map[string]string {
	fields := map[string]string{
		"title":       d.Title,
		"description": d.Description,
		"category":    d.Category,
	}
	if d.TakenAt != "" {
		fields["takenAt"] = d.TakenAt
	}
	return fields
}

// BoardMemberDraft is the admin board member editor form.
type BoardMemberDraft struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Bio         string `json:"bio"`
	Photo       string `json:"photo"`
	Email       string `json:"email"`
	LinkedIn    string `json:"linkedin"`
	Order       int    `json:"order"`
}

// Validate checks required fields.
func (d BoardMemberDraft) Validate() FieldErrors {
	fe := FieldErrors{}
	fe.required("name", "Name", d.Name)
	fe.required("designation", "Designation", d.Designation)
	if d.Email != "" {
		if _, err := mail.ParseAddress(d.Email); err != nil {
			fe["email"] = "Invalid email format"
		}
	}
	return fe
}
