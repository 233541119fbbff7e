// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// testLoginProtectionConfig returns a config suitable for fast testing.
func testLoginProtectionConfig(maxAttempts int, lockoutDuration, attemptWindow time.Duration) LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: maxAttempts,
		LockoutDuration:   lockoutDuration,
		AttemptWindow:     attemptWindow,
	}
}

func TestDefaultLoginProtectionConfig(t *testing.T) {
	cfg := DefaultLoginProtectionConfig()

	if cfg.IPRateLimit != 0.5 {
		t.Errorf("IPRateLimit = %v, want 0.5", cfg.IPRateLimit)
	}
	if cfg.IPBurst != 5 {
		t.Errorf("IPBurst = %d, want 5", cfg.IPBurst)
	}
	if cfg.MaxFailedAttempts != 5 {
		t.Errorf("MaxFailedAttempts = %d, want 5", cfg.MaxFailedAttempts)
	}
	if cfg.LockoutDuration != 15*time.Minute {
		t.Errorf("LockoutDuration = %v, want 15m", cfg.LockoutDuration)
	}
	if cfg.AttemptWindow != 15*time.Minute {
		t.Errorf("AttemptWindow = %v, want 15m", cfg.AttemptWindow)
	}
}

func TestNewLoginProtectionDefaultValues(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})

	if lp.maxFailedAttempts != 5 {
		t.Errorf("maxFailedAttempts = %d, want 5 (default)", lp.maxFailedAttempts)
	}
	if lp.lockoutDuration != 15*time.Minute {
		t.Errorf("lockoutDuration = %v, want 15m (default)", lp.lockoutDuration)
	}
}

func TestLoginProtectionIsAccountLocked(t *testing.T) {
	cfg := testLoginProtectionConfig(3, 1*time.Second, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	locked, _ := lp.IsAccountLocked(email)
	if locked {
		t.Error("Account should not be locked initially")
	}

	for i := 0; i < cfg.MaxFailedAttempts; i++ {
		lp.RecordFailedAttempt(email)
	}

	locked, remaining := lp.IsAccountLocked(email)
	if !locked {
		t.Error("Account should be locked after max failed attempts")
	}
	if remaining <= 0 {
		t.Error("Remaining lockout time should be positive")
	}

	time.Sleep(cfg.LockoutDuration + 100*time.Millisecond)

	locked, _ = lp.IsAccountLocked(email)
	if locked {
		t.Error("Account should be unlocked after lockout expires")
	}
}

func TestLoginProtectionRecordFailedAttempt(t *testing.T) {
	cfg := testLoginProtectionConfig(3, 1*time.Second, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	locked, _ := lp.RecordFailedAttempt(email)
	if locked {
		t.Error("First attempt should not lock account")
	}

	locked, _ = lp.RecordFailedAttempt(email)
	if locked {
		t.Error("Second attempt should not lock account")
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Error("Third attempt should lock account")
	}
	if duration <= 0 {
		t.Error("Lock duration should be positive")
	}
}

func TestLoginProtectionRecordSuccessfulLogin(t *testing.T) {
	cfg := testLoginProtectionConfig(3, 1*time.Minute, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)

	lp.RecordSuccessfulLogin(email)

	// Counter is reset, so the full attempt budget is available again.
	locked, _ := lp.RecordFailedAttempt(email)
	if locked {
		t.Error("Account should not lock on first attempt after successful login")
	}
}

func TestLoginProtectionExponentialBackoff(t *testing.T) {
	cfg := testLoginProtectionConfig(2, 100*time.Millisecond, 1*time.Minute)
	lp := NewLoginProtection(cfg)
	email := "test@example.com"

	lp.RecordFailedAttempt(email)
	_, duration1 := lp.RecordFailedAttempt(email)

	time.Sleep(duration1 + 10*time.Millisecond)

	lp.RecordFailedAttempt(email)
	_, duration2 := lp.RecordFailedAttempt(email)

	if duration2 <= duration1 {
		t.Errorf("Second lockout duration (%v) should be longer than first (%v)", duration2, duration1)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xForwarded string
		xRealIP    string
		want       string
	}{
		{
			name:       "remote addr fallback",
			remoteAddr: "192.168.1.1:12345",
			want:       "192.168.1.1:12345",
		},
		{
			name:       "X-Forwarded-For",
			remoteAddr: "127.0.0.1:8080",
			xForwarded: "10.0.0.1",
			want:       "10.0.0.1",
		},
		{
			name:       "X-Real-IP takes precedence",
			remoteAddr: "127.0.0.1:8080",
			xForwarded: "10.0.0.1",
			xRealIP:    "10.0.0.5",
			want:       "10.0.0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwarded)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	cfg := testLoginProtectionConfig(5, 1*time.Minute, 1*time.Minute)
	lp := NewLoginProtection(cfg)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := lp.Middleware()(handler)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("GET request status = %d, want %d", rr.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("POST request status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestLoginProtectionRateLimitExceeded(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001,
		IPBurst:           1,
		MaxFailedAttempts: 5,
		LockoutDuration:   1 * time.Minute,
		AttemptWindow:     1 * time.Minute,
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := lp.Middleware()(handler)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Real-IP", "10.1.2.3")
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first POST status = %d, want %d", rr.Code, http.StatusOK)
	}

	rr = httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
}
