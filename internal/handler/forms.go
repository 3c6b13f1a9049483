// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// Choices offered on the volunteer form.
var (
	VolunteerInterests = []string{
		"Education",
		"Healthcare",
		"Environment",
		"Women Empowerment",
		"Community Development",
		"Events",
	}
	VolunteerAvailability = []string{"Weekdays", "Weekends", "Flexible"}
)

// DonationPresets are the suggested donation amounts.
var DonationPresets = []float64{500, 1000, 2500, 5000}

// DonationPurposes are the funds a donor can direct a gift to.
var DonationPurposes = []string{"General", "Education", "Healthcare", "Environment", "Women Empowerment"}

// Receipt ID prefixes.
const (
	receiptDonation   = "don_"
	receiptMembership = "mem_"
)

const msgFixFields = "Please correct the highlighted fields and try again."

// FormPage is the view model of a public form: the draft being edited, its
// field errors and the choices the form offers.
type FormPage[T any] struct {
	Draft   T
	Errors  model.FieldErrors
	Options any
}

// HasErrors reports whether any field failed validation.
func (p FormPage[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// FormsHandler serves the public forms and the payment checkout flows.
type FormsHandler struct {
	renderer *render.Renderer
	backend  *backend.Backend
	payments bool
}

// NewFormsHandler creates a new FormsHandler. When payments is false the
// donate and membership forms explain that online payment is unavailable
// instead of opening a checkout.
func NewFormsHandler(renderer *render.Renderer, b *backend.Backend, payments bool) *FormsHandler {
	return &FormsHandler{
		renderer: renderer,
		backend:  b,
		payments: payments,
	}
}

// submitStatus maps a failed submission to the status the form is re-rendered with.
func submitStatus(err error) int {
	if apiclient.IsKind(err, apiclient.KindValidation) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func (h *FormsHandler) form(w http.ResponseWriter, r *http.Request, status int, name, title string, page any, modal uikit.Modal) {
	h.renderer.RenderPageStatus(w, r, status, name, render.TemplateData{
		Title: title,
		Data:  page,
		Modal: modal,
	})
}

// =============================================================================
// VOLUNTEER
// =============================================================================

type volunteerOptions struct {
	Interests    []string
	Availability []string
}

var volunteerChoices = volunteerOptions{
	Interests:    VolunteerInterests,
	Availability: VolunteerAvailability,
}

// Volunteer handles GET /volunteer.
func (h *FormsHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	h.form(w, r, http.StatusOK, "public/volunteer", "Volunteer", FormPage[model.VolunteerDraft]{
		Options: volunteerChoices,
	}, uikit.Modal{})
}

// SubmitVolunteer handles POST /volunteer.
func (h *FormsHandler) SubmitVolunteer(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteVolunteer) {
		return
	}

	draft := model.VolunteerDraft{
		Name:         formValue(r, "name"),
		Email:        formValue(r, "email"),
		Phone:        formValue(r, "phone"),
		City:         formValue(r, "city"),
		Interests:    formList(r, "interests"),
		Availability: formValue(r, "availability"),
		Skills:       formValue(r, "skills"),
		Motivation:   formValue(r, "motivation"),
	}
	page := FormPage[model.VolunteerDraft]{Draft: draft, Options: volunteerChoices}

	if page.Errors = draft.Validate(); page.HasErrors() {
		h.form(w, r, http.StatusUnprocessableEntity, "public/volunteer", "Volunteer", page,
			uikit.ErrorModal("Check your application", msgFixFields))
		return
	}

	if err := h.backend.SubmitVolunteer(r.Context(), draft); err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("volunteer submission failed", "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/volunteer", "Volunteer", page,
			uikit.ErrorModal("Submission failed", userMessage(err, "Failed to submit application. Please try again.")))
		return
	}

	slog.Info("volunteer application submitted", "email", draft.Email)
	h.form(w, r, http.StatusOK, "public/volunteer", "Volunteer", FormPage[model.VolunteerDraft]{Options: volunteerChoices},
		uikit.SuccessModal("Application received", "Thank you for volunteering! We will get in touch with you soon."))
}

// =============================================================================
// CONTACT
// =============================================================================

// Contact handles GET /contact.
func (h *FormsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.form(w, r, http.StatusOK, "public/contact", "Contact Us", FormPage[model.ContactDraft]{}, uikit.Modal{})
}

// SubmitContact handles POST /contact. The browser may also send the message
// through the email widget; the backend copy is the one the admin panel lists.
func (h *FormsHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteContact) {
		return
	}

	draft := model.ContactDraft{
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
		Phone:   formValue(r, "phone"),
		Subject: formValue(r, "subject"),
		Message: formValue(r, "message"),
	}
	page := FormPage[model.ContactDraft]{Draft: draft}

	if page.Errors = draft.Validate(); page.HasErrors() {
		h.form(w, r, http.StatusUnprocessableEntity, "public/contact", "Contact Us", page,
			uikit.ErrorModal("Check your message", msgFixFields))
		return
	}

	if err := h.backend.SubmitContact(r.Context(), draft); err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("contact submission failed", "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/contact", "Contact Us", page,
			uikit.ErrorModal("Message not sent", userMessage(err, "Failed to send message. Please try again.")))
		return
	}

	h.form(w, r, http.StatusOK, "public/contact", "Contact Us", FormPage[model.ContactDraft]{},
		uikit.SuccessModal("Message sent", "Thank you for reaching out. We will reply as soon as we can."))
}

// =============================================================================
// CHECKOUT
// =============================================================================

// CheckoutData is the view model of the checkout page that opens the
// payment widget.
type CheckoutData struct {
	Order       model.PaymentOrder
	KeyID       string
	Name        string
	Email       string
	Phone       string
	Description string
	VerifyURL   string
	CancelURL   string
}

// AmountLabel formats the order amount for display.
func (c CheckoutData) AmountLabel() string {
	return util.FormatAmount(c.Order.Amount, c.Order.Currency)
}

// newReceipt returns a receipt ID used to trace duplicate submits.
func newReceipt(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// confirmation reads the fields the payment widget posts back.
func confirmation(r *http.Request) (model.PaymentConfirmation, bool) {
	c := model.PaymentConfirmation{
		OrderID:   formValue(r, "orderId"),
		PaymentID: formValue(r, "paymentId"),
		Signature: formValue(r, "signature"),
	}
	return c, c.OrderID != "" && c.PaymentID != "" && c.Signature != ""
}

func (h *FormsHandler) checkout(w http.ResponseWriter, r *http.Request, data CheckoutData) {
	if data.KeyID == "" {
		data.KeyID = data.Order.KeyID
	}
	h.renderer.RenderPage(w, r, "public/checkout", render.TemplateData{
		Title: "Complete your payment",
		Data:  data,
	})
}

// =============================================================================
// DONATE
// =============================================================================

type donateOptions struct {
	Presets  []float64
	Purposes []string
	Currency string
	Payments bool
}

func (h *FormsHandler) donateOptions() donateOptions {
	return donateOptions{
		Presets:  DonationPresets,
		Purposes: DonationPurposes,
		Currency: util.DefaultCurrency,
		Payments: h.payments,
	}
}

// Donate handles GET /donate. ?cancelled=1 is where the widget sends a
// donor who closed it without paying.
func (h *FormsHandler) Donate(w http.ResponseWriter, r *http.Request) {
	var modal uikit.Modal
	if r.URL.Query().Get("cancelled") == "1" {
		modal = uikit.InfoModal("Payment cancelled", "Your payment was not completed. You can try again whenever you are ready.")
	}
	h.form(w, r, http.StatusOK, "public/donate", "Donate", FormPage[model.DonationDraft]{
		Draft:   model.DonationDraft{Amount: DonationPresets[1]},
		Options: h.donateOptions(),
	}, modal)
}

// SubmitDonate handles POST /donate: it opens a payment order and renders the checkout.
func (h *FormsHandler) SubmitDonate(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteDonate) {
		return
	}

	amount := formFloat(r, "custom_amount")
	if amount <= 0 {
		amount = formFloat(r, "amount")
	}
	draft := model.DonationDraft{
		Name:    formValue(r, "name"),
		Email:   formValue(r, "email"),
		Phone:   formValue(r, "phone"),
		PAN:     strings.ToUpper(formValue(r, "pan")),
		Amount:  amount,
		Purpose: formValue(r, "purpose"),
	}
	page := FormPage[model.DonationDraft]{Draft: draft, Options: h.donateOptions()}

	if page.Errors = draft.Validate(); page.HasErrors() {
		h.form(w, r, http.StatusUnprocessableEntity, "public/donate", "Donate", page,
			uikit.ErrorModal("Check your details", msgFixFields))
		return
	}
	if !h.payments {
		h.form(w, r, http.StatusServiceUnavailable, "public/donate", "Donate", page,
			uikit.ErrorModal("Payments unavailable", "Online payments are not available right now. Please try again later."))
		return
	}

	draft.Receipt = newReceipt(receiptDonation)
	order, err := h.backend.CreateDonationOrder(r.Context(), draft)
	if err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("donation order failed", "receipt", draft.Receipt, "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/donate", "Donate", page,
			uikit.ErrorModal("Donation failed", userMessage(err, "Failed to start the payment. Please try again.")))
		return
	}

	slog.Info("donation order created", "receipt", draft.Receipt, "order_id", order.OrderID)
	h.checkout(w, r, CheckoutData{
		Order:       order,
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Description: "Donation",
		VerifyURL:   RouteDonate + RouteSuffixVerify,
		CancelURL:   RouteDonate + "?cancelled=1",
	})
}

// VerifyDonation handles POST /donate/verify, the payment widget's callback.
func (h *FormsHandler) VerifyDonation(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteDonate) {
		return
	}
	page := FormPage[model.DonationDraft]{Options: h.donateOptions()}

	conf, ok := confirmation(r)
	if !ok {
		h.form(w, r, http.StatusBadRequest, "public/donate", "Donate", page,
			uikit.ErrorModal("Payment not confirmed", "The payment confirmation was incomplete."))
		return
	}
	if err := h.backend.VerifyDonationPayment(r.Context(), conf); err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("donation verification failed", "order_id", conf.OrderID, "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/donate", "Donate", page,
			uikit.ErrorModal("Payment verification failed", userMessage(err, "We could not verify your payment. If you were charged, please contact us.")))
		return
	}

	slog.Info("donation payment verified", "order_id", conf.OrderID, "payment_id", conf.PaymentID)
	h.form(w, r, http.StatusOK, "public/donate", "Donate", page,
		uikit.SuccessModal("Thank you!", "Your donation was received. A receipt will be sent to your email."))
}

// =============================================================================
// MEMBERSHIP
// =============================================================================

type membershipOptions struct {
	Plans    []model.MembershipPlan
	Payments bool
}

func (h *FormsHandler) membershipOptions() membershipOptions {
	return membershipOptions{Plans: model.MembershipPlans, Payments: h.payments}
}

// Membership handles GET /membership. ?plan= preselects a tier.
func (h *FormsHandler) Membership(w http.ResponseWriter, r *http.Request) {
	draft := model.MembershipDraft{Plan: model.MembershipPlans[0].Key}
	if plan, ok := model.FindPlan(r.URL.Query().Get("plan")); ok {
		draft.Plan = plan.Key
	}
	var modal uikit.Modal
	if r.URL.Query().Get("cancelled") == "1" {
		modal = uikit.InfoModal("Payment cancelled", "Your membership payment was not completed.")
	}
	h.form(w, r, http.StatusOK, "public/membership", "Membership", FormPage[model.MembershipDraft]{
		Draft:   draft,
		Options: h.membershipOptions(),
	}, modal)
}

// SubmitMembership handles POST /membership.
func (h *FormsHandler) SubmitMembership(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteMembership) {
		return
	}

	draft := model.MembershipDraft{
		Name:  formValue(r, "name"),
		Email: formValue(r, "email"),
		Phone: formValue(r, "phone"),
		Plan:  formValue(r, "plan"),
	}
	errs := draft.Validate()
	page := FormPage[model.MembershipDraft]{Draft: draft, Errors: errs, Options: h.membershipOptions()}

	if page.HasErrors() {
		h.form(w, r, http.StatusUnprocessableEntity, "public/membership", "Membership", page,
			uikit.ErrorModal("Check your details", msgFixFields))
		return
	}
	if !h.payments {
		h.form(w, r, http.StatusServiceUnavailable, "public/membership", "Membership", page,
			uikit.ErrorModal("Payments unavailable", "Online payments are not available right now. Please try again later."))
		return
	}

	draft.Receipt = newReceipt(receiptMembership)
	order, err := h.backend.CreateMembershipOrder(r.Context(), draft)
	if err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("membership order failed", "receipt", draft.Receipt, "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/membership", "Membership", page,
			uikit.ErrorModal("Membership failed", userMessage(err, "Failed to start the payment. Please try again.")))
		return
	}

	plan, _ := model.FindPlan(draft.Plan)
	h.checkout(w, r, CheckoutData{
		Order:       order,
		Name:        draft.Name,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Description: plan.Name + " membership",
		VerifyURL:   RouteMembership + RouteSuffixVerify,
		CancelURL:   RouteMembership + "?cancelled=1",
	})
}

// VerifyMembership handles POST /membership/verify.
func (h *FormsHandler) VerifyMembership(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteMembership) {
		return
	}
	page := FormPage[model.MembershipDraft]{
		Draft:   model.MembershipDraft{Plan: model.MembershipPlans[0].Key},
		Options: h.membershipOptions(),
	}

	conf, ok := confirmation(r)
	if !ok {
		h.form(w, r, http.StatusBadRequest, "public/membership", "Membership", page,
			uikit.ErrorModal("Payment not confirmed", "The payment confirmation was incomplete."))
		return
	}
	if err := h.backend.VerifyMembershipPayment(r.Context(), conf); err != nil {
		if canceled(r, err) {
			return
		}
		slog.Error("membership verification failed", "order_id", conf.OrderID, "kind", apiclient.KindOf(err), "error", err)
		h.form(w, r, submitStatus(err), "public/membership", "Membership", page,
			uikit.ErrorModal("Payment verification failed", userMessage(err, "We could not verify your payment. If you were charged, please contact us.")))
		return
	}

	slog.Info("membership payment verified", "order_id", conf.OrderID, "payment_id", conf.PaymentID)
	h.form(w, r, http.StatusOK, "public/membership", "Membership", page,
		uikit.SuccessModal("Welcome aboard!", "Your membership is now active. Thank you for your support."))
}
