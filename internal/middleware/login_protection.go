// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// signInThrottledMessage is the body of a 429 from the sign-in throttle.
const signInThrottledMessage = "Too many sign-in attempts from your network. Wait a few seconds and try again."

// Default sign-in limits.
const (
	defaultSignInRate    = 0.5
	defaultSignInBurst   = 5
	defaultFailureLimit  = 5
	defaultLockout       = 15 * time.Minute
	defaultMaxLockout    = 24 * time.Hour
	defaultFailureWindow = 15 * time.Minute

	maxTrackedSignInIPs = 10000
	signInSweepInterval = 10 * time.Minute
	signInRetryAfter    = 2 // seconds
)

// LoginProtectionConfig tunes the sign-in throttle and the account lockout.
// Zero fields take the defaults.
type LoginProtectionConfig struct {
	// IPRateLimit is sign-in POSTs per second allowed from one client IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts bad passwords within AttemptWindow lock the account.
	MaxFailedAttempts int
	AttemptWindow     time.Duration
	// LockoutDuration is the first lockout. Each further lockout doubles it
	// up to MaxLockout.
	LockoutDuration time.Duration
	MaxLockout      time.Duration
}

// DefaultLoginProtectionConfig returns the limits used for admin and member sign-in.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       defaultSignInRate,
		IPBurst:           defaultSignInBurst,
		MaxFailedAttempts: defaultFailureLimit,
		AttemptWindow:     defaultFailureWindow,
		LockoutDuration:   defaultLockout,
		MaxLockout:        defaultMaxLockout,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	d := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = d.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = d.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = d.MaxFailedAttempts
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = d.AttemptWindow
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = d.LockoutDuration
	}
	if c.MaxLockout < c.LockoutDuration {
		c.MaxLockout = max(d.MaxLockout, c.LockoutDuration)
	}
	return c
}

// LoginProtection throttles sign-in POSTs per client IP and locks an email
// address after repeated bad passwords. Admin and member sign-in share one
// instance, so a lockout applies to both forms.
type LoginProtection struct {
	cfg     LoginProtectionConfig
	perIP   *limiterCache[string]
	now     func() time.Time
	mu      sync.Mutex
	byEmail map[string]*signInRecord

	stop     chan struct{}
	stopOnce sync.Once
}

// signInRecord is the failure history of one email address.
type signInRecord struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// NewLoginProtection starts a LoginProtection. Call Stop to end its sweeper.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()
	lp := &LoginProtection{
		cfg:     cfg,
		perIP:   newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		now:     time.Now,
		byEmail: make(map[string]*signInRecord),
		stop:    make(chan struct{}),
	}
	go lp.sweepLoop()
	return lp
}

// Stop ends the background sweeper. It is safe to call more than once.
func (lp *LoginProtection) Stop() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

// emailKey folds case and whitespace so "Admin@Example.org " and
// "admin@example.org" share one record.
func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Locked reports whether email is locked out and for how much longer.
func (lp *LoginProtection) Locked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec := lp.byEmail[emailKey(email)]
	if rec == nil {
		return false, 0
	}
	if left := rec.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailure counts a bad password for email. When the count reaches the
// limit inside the window the account is locked and the lockout returned.
func (lp *LoginProtection) RecordFailure(email string) (bool, time.Duration) {
	key := emailKey(email)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec := lp.byEmail[key]
	if rec == nil {
		rec = &signInRecord{}
		lp.byEmail[key] = rec
	}
	if rec.failures == 0 || now.Sub(rec.windowStart) > lp.cfg.AttemptWindow {
		rec.failures = 0
		rec.windowStart = now
	}
	rec.failures++

	if rec.failures < lp.cfg.MaxFailedAttempts {
		slog.Debug("sign-in failure recorded", "email", key, "failures", rec.failures)
		return false, 0
	}

	lockout := lp.lockoutFor(rec.lockouts)
	rec.lockedUntil = now.Add(lockout)
	rec.lockouts++
	rec.failures = 0
	slog.Warn("account locked after repeated sign-in failures",
		"email", key,
		"lockouts", rec.lockouts,
		"duration", lockout)
	return true, lockout
}

// lockoutFor doubles the base lockout once per earlier lockout.
func (lp *LoginProtection) lockoutFor(earlier int) time.Duration {
	d := lp.cfg.LockoutDuration
	for range earlier {
		d *= 2
		if d >= lp.cfg.MaxLockout {
			return lp.cfg.MaxLockout
		}
	}
	return d
}

// Reset forgets the failure history of email after a successful sign-in.
func (lp *LoginProtection) Reset(email string) {
	lp.mu.Lock()
	delete(lp.byEmail, emailKey(email))
	lp.mu.Unlock()
}

// AttemptsLeft returns how many bad passwords email may still send before a lockout.
func (lp *LoginProtection) AttemptsLeft(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	rec := lp.byEmail[emailKey(email)]
	if rec == nil || lp.now().Sub(rec.windowStart) > lp.cfg.AttemptWindow {
		return lp.cfg.MaxFailedAttempts
	}
	return max(lp.cfg.MaxFailedAttempts-rec.failures, 0)
}

func (lp *LoginProtection) sweepLoop() {
	ticker := time.NewTicker(signInSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			lp.sweep()
		case <-lp.stop:
			return
		}
	}
}

// sweep drops records that are neither locked nor inside a failure window.
func (lp *LoginProtection) sweep() {
	if lp.perIP.clearIfExceeds(maxTrackedSignInIPs) {
		slog.Info("sign-in throttle table reset", "limit", maxTrackedSignInIPs)
	}

	now := lp.now()
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for key, rec := range lp.byEmail {
		if now.After(rec.lockedUntil) && now.Sub(rec.windowStart) > lp.cfg.AttemptWindow {
			delete(lp.byEmail, key)
		}
	}
}

// Middleware throttles POSTs per client IP. Mount it on the sign-in routes.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ip := GetClientIP(r)
			if !lp.perIP.get(ip).Allow() {
				slog.Warn("sign-in throttled", "ip", ip, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(signInRetryAfter))
				http.Error(w, signInThrottledMessage, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
