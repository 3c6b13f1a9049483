// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/ngo-portal/internal/store"
)

// Job names.
const (
	JobEventRetention = "event-retention"
	JobCacheWarmup    = "cache-warmup"
)

// EventPurger deletes events older than a cutoff.
type EventPurger interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ EventPurger = (*store.Queries)(nil)

// EventRetention returns a job that deletes events older than days.
func EventRetention(p EventPurger, days int, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		if days <= 0 {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -days)
		n, err := p.DeleteEventsBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("purging events: %w", err)
		}
		if n > 0 {
			logger.Info("purged old events", "count", n, "older_than_days", days)
		}
		return nil
	}
}

// Warmer refills caches for public pages.
type Warmer interface {
	Warm(ctx context.Context) error
}

// CacheWarmup returns a job that refills public caches.
func CacheWarmup(w Warmer) JobFunc {
	return func(ctx context.Context) error {
		if err := w.Warm(ctx); err != nil {
			return fmt.Errorf("cache warm-up: %w", err)
		}
		return nil
	}
}
