// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/csv"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// DonationsHandler handles the admin donation screens.
type DonationsHandler struct {
	adminBase
}

// NewDonationsHandler creates a new DonationsHandler.
func NewDonationsHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend) *DonationsHandler {
	return &DonationsHandler{adminBase{renderer: renderer, sessions: sessions, backend: b}}
}

// DonationListFilter is the filter form of the donation list plus the total
// of the paid donations it matches.
type DonationListFilter struct {
	backend.DonationFilter
	Statuses  []string
	PaidTotal string
	PaidCount int
}

var donationColumns = []uikit.Column{
	{Header: "Donor", Render: func(row any) template.HTML {
		d := row.(model.Donation)
		return cellLink(redirectAdminDonations+"/"+d.ID, d.Name)
	}},
	{Header: "Email", Key: "Email"},
	{Header: "Amount", Class: "num", Render: func(row any) template.HTML {
		d := row.(model.Donation)
		return template.HTML(template.HTMLEscapeString(util.FormatAmount(d.Amount, d.Currency)))
	}},
	{Header: "Purpose", Key: "Purpose"},
	{Header: "Payment", Render: func(row any) template.HTML { return cellBadge(row.(model.Donation).PaymentStatus) }},
	{Header: "Date", Key: "CreatedAt"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		d := row.(model.Donation)
		return cellActions(redirectAdminDonations+"/"+d.ID, "View", redirectAdminDonations+"/"+d.ID+RouteSuffixDelete,
			"Delete this donation record?")
	}},
}

// parseDonationFilter reads the filter form. Dates that are not YYYY-MM-DD
// are dropped rather than forwarded.
func parseDonationFilter(r *http.Request) backend.DonationFilter {
	q := r.URL.Query()
	f := backend.DonationFilter{
		Status: q.Get("status"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Query:  q.Get("q"),
	}
	if _, err := time.Parse(time.DateOnly, f.From); err != nil {
		f.From = ""
	}
	if _, err := time.Parse(time.DateOnly, f.To); err != nil {
		f.To = ""
	}
	return f
}

// List handles GET /admin/donations. Filters are passed to the backend.
func (h *DonationsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseDonationFilter(r)
	items, err := h.api(r).ListDonations(r.Context(), filter)
	if err != nil && h.fetchFailed(w, r, "donations", err) {
		return
	}
	newestFirst(items, func(d model.Donation) int64 { return d.CreatedAt.UnixNano() })

	var (
		total float64
		paid  int
	)
	for _, d := range items {
		if d.PaymentStatus == model.PaymentPaid {
			total += d.Amount
			paid++
		}
	}

	view := buildList(r, items, donationColumns, redirectAdminDonations, "No donations match these filters.")
	view.ExportURL = redirectAdminDonations + RouteSuffixExport
	if enc := filter.Values().Encode(); enc != "" {
		view.ExportURL += "?" + enc
	}
	view.Filter = DonationListFilter{
		DonationFilter: filter,
		Statuses:       []string{model.PaymentCreated, model.PaymentPaid, model.PaymentFailed},
		PaidTotal:      util.FormatAmount(total, ""),
		PaidCount:      paid,
	}
	h.page(w, r, "admin/donations", "Donations", view)
}

// Donation handles GET /admin/donations/{id}.
func (h *DonationsHandler) Donation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.api(r).GetDonation(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminDonations, "Donation not found")
		return
	}
	h.page(w, r, "admin/donation", "Donation from "+d.Name, ReviewData[model.Donation]{
		Record:    d,
		DeleteURL: redirectAdminDonations + "/" + id + RouteSuffixDelete,
		BackURL:   redirectAdminDonations,
	})
}

// donationCSVHeader is the first row of the export.
var donationCSVHeader = []string{
	"Date", "Name", "Email", "Phone", "PAN", "Amount", "Currency", "Purpose",
	"Payment Status", "Order ID", "Payment ID",
}

// Export handles GET /admin/donations/export, writing the filtered list as CSV.
func (h *DonationsHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := parseDonationFilter(r)
	items, err := h.api(r).ListDonations(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err, redirectAdminDonations, "Failed to export donations")
		return
	}
	newestFirst(items, func(d model.Donation) int64 { return d.CreatedAt.UnixNano() })

	filename := "donations-" + time.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")

	cw := csv.NewWriter(w)
	_ = cw.Write(donationCSVHeader)
	for _, d := range items {
		currency := d.Currency
		if currency == "" {
			currency = util.DefaultCurrency
		}
		_ = cw.Write([]string{
			d.CreatedAt.Format(time.RFC3339),
			csvSafe(d.Name),
			csvSafe(d.Email),
			csvSafe(d.Phone),
			csvSafe(d.PAN),
			strconv.FormatFloat(d.Amount, 'f', 2, 64),
			currency,
			csvSafe(d.Purpose),
			d.PaymentStatus,
			d.OrderID,
			d.PaymentID,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write donations export", "error", err)
		return
	}

	slog.Info("donations exported", "rows", len(items),
		logging.AttrCategory, model.EventCategoryPayment,
		logging.AttrActor, middleware.GetAdminEmail(r))
}

// csvSafe neutralises values a spreadsheet would evaluate as a formula.
func csvSafe(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Delete handles POST /admin/donations/{id}/delete.
func (h *DonationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).DeleteDonation(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminDonations, "Failed to delete donation")
		return
	}
	slog.Info("donation deleted", "id", id,
		logging.AttrCategory, model.EventCategoryPayment,
		logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminDonations, "Donation deleted")
}
