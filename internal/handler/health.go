// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
)

// Healthz answers liveness probes. It touches no dependencies so the
// endpoint stays up while the store is misbehaving.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(HeaderContentType, "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
