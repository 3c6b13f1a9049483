// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/model"
)

// Count is a collection size that may be unknown because its fetch failed.
type Count struct {
	N  int
	OK bool
}

// Summary is the data shown on the admin dashboard.
type Summary struct {
	Blogs       Count
	Programs    Count
	Gallery     Count
	Board       Count
	Volunteers  Count
	Memberships Count
	Contacts    Count
	Donations   Count

	PendingVolunteers int
	UnreadContacts    int
	DonationTotal     float64

	RecentContacts   []model.Contact
	RecentDonations  []model.Donation
	RecentVolunteers []model.Volunteer

	// Unauthorized is set when the backend rejected the token on any fetch.
	Unauthorized bool
}

// recentLimit is how many recent records of each kind the dashboard shows.
const recentLimit = 5

// Summary fetches every collection concurrently. A failed collection leaves its
// Count unknown instead of failing the whole summary; the only error returned
// is the context's, when it is cancelled.
func (b *Backend) Summary(ctx context.Context) (Summary, error) {
	var (
		s  Summary
		mu sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)

	count := func(name string, dst *Count, fetch func(context.Context) (int, error)) {
		g.Go(func() error {
			n, err := fetch(gctx)
			if err != nil {
				slog.Warn("dashboard fetch failed", "collection", name, "error", err)
				if apiclient.IsKind(err, apiclient.KindUnauthorized) {
					mu.Lock()
					s.Unauthorized = true
					mu.Unlock()
				}
				return nil
			}
			mu.Lock()
			*dst = Count{N: n, OK: true}
			mu.Unlock()
			return nil
		})
	}

	count("blogs", &s.Blogs, func(ctx context.Context) (int, error) {
		items, err := b.ListBlogs(ctx, BlogQuery{})
		return len(items), err
	})
	count("programs", &s.Programs, func(ctx context.Context) (int, error) {
		items, err := b.ListPrograms(ctx)
		return len(items), err
	})
	count("gallery", &s.Gallery, func(ctx context.Context) (int, error) {
		items, err := b.ListGallery(ctx)
		return len(items), err
	})
	count("board", &s.Board, func(ctx context.Context) (int, error) {
		items, err := b.ListBoardMembers(ctx)
		return len(items), err
	})
	count("volunteers", &s.Volunteers, func(ctx context.Context) (int, error) {
		items, err := b.ListVolunteers(ctx, "")
		if err != nil {
			return 0, err
		}
		pending := 0
		for _, v := range items {
			if v.Status == model.ReviewPending || v.Status == "" {
				pending++
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		mu.Lock()
		s.PendingVolunteers = pending
		s.RecentVolunteers = items[:min(recentLimit, len(items))]
		mu.Unlock()
		return len(items), nil
	})
	count("memberships", &s.Memberships, func(ctx context.Context) (int, error) {
		items, err := b.ListMemberships(ctx, "")
		return len(items), err
	})
	count("contacts", &s.Contacts, func(ctx context.Context) (int, error) {
		items, err := b.ListContacts(ctx)
		if err != nil {
			return 0, err
		}
		unread := 0
		for _, c := range items {
			if !c.Read {
				unread++
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		mu.Lock()
		s.UnreadContacts = unread
		s.RecentContacts = items[:min(recentLimit, len(items))]
		mu.Unlock()
		return len(items), nil
	})
	count("donations", &s.Donations, func(ctx context.Context) (int, error) {
		items, err := b.ListDonations(ctx, DonationFilter{})
		if err != nil {
			return 0, err
		}
		var total float64
		for _, d := range items {
			if d.PaymentStatus == model.PaymentPaid {
				total += d.Amount
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		mu.Lock()
		s.DonationTotal = total
		s.RecentDonations = items[:min(recentLimit, len(items))]
		mu.Unlock()
		return len(items), nil
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	return s, nil
}
