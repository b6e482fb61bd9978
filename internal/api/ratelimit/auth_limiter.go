// Package ratelimit protects the login endpoint: a per-IP request budget in
// front, escalating per-account lockouts behind it.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	ipRequestsPerWindow = 10
	ipWindow            = time.Minute
	maxFailedAttempts   = 5
	baseLockout         = 15 * time.Minute
	maxLockout          = time.Hour
)

// ipState tracks one source address inside the current window.
type ipState struct {
	requests    int
	windowStart time.Time
}

// accountState tracks consecutive failures for one username. Each lockout
// escalates the next one, capped at maxLockout.
type accountState struct {
	failures    int
	lockouts    int
	lockedUntil time.Time
}

// AuthLimiter rate-limits authentication attempts. All state is in memory;
// a restart clears it, which is acceptable for a single-instance app.
type AuthLimiter struct {
	mu       sync.Mutex
	ips      map[string]*ipState
	accounts map[string]*accountState
	now      func() time.Time
}

// NewAuthLimiter creates a limiter with the default budgets.
func NewAuthLimiter() *AuthLimiter {
	return &AuthLimiter{
		ips:      make(map[string]*ipState),
		accounts: make(map[string]*accountState),
		now:      time.Now,
	}
}

// Middleware rejects requests from addresses that exhausted their window
// budget with 429. Account lockouts are checked by the login handler, which
// knows the username.
func (l *AuthLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}

func (l *AuthLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state := l.ips[ip]
	if state == nil || now.Sub(state.windowStart) >= ipWindow {
		l.ips[ip] = &ipState{requests: 1, windowStart: now}
		return true
	}
	if state.requests >= ipRequestsPerWindow {
		return false
	}
	state.requests++
	return true
}

// IsAccountLocked reports whether the username is currently locked out.
func (l *AuthLimiter) IsAccountLocked(username string) bool {
	return l.GetLockoutRemaining(username) > 0
}

// GetLockoutRemaining returns how long a locked account stays locked, or
// zero when it is not locked.
func (l *AuthLimiter) GetLockoutRemaining(username string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.accounts[username]
	if state == nil {
		return 0
	}
	remaining := state.lockedUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordFailedAttempt counts a failed login. Hitting the failure limit locks
// the account for baseLockout times the number of prior lockouts.
func (l *AuthLimiter) RecordFailedAttempt(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.accounts[username]
	if state == nil {
		state = &accountState{}
		l.accounts[username] = state
	}

	// A fresh burst after an expired lockout starts counting from zero.
	if state.failures >= maxFailedAttempts && l.now().After(state.lockedUntil) {
		state.failures = 0
	}

	state.failures++
	if state.failures >= maxFailedAttempts {
		state.lockouts++
		duration := baseLockout * time.Duration(state.lockouts)
		if duration > maxLockout {
			duration = maxLockout
		}
		state.lockedUntil = l.now().Add(duration)
	}
}

// RecordSuccessfulLogin clears the failure history for the username.
func (l *AuthLimiter) RecordSuccessfulLogin(username string) {
	l.mu.Lock()
	delete(l.accounts, username)
	l.mu.Unlock()
}

// Cleanup drops expired window and lockout state.
func (l *AuthLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip, state := range l.ips {
		if now.Sub(state.windowStart) >= ipWindow {
			delete(l.ips, ip)
		}
	}
	for username, state := range l.accounts {
		if now.After(state.lockedUntil) && state.failures < maxFailedAttempts {
			delete(l.accounts, username)
		}
	}
}

// StartCleanup runs Cleanup on the given interval for the life of the
// process.
func (l *AuthLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			l.Cleanup()
		}
	}()
}
