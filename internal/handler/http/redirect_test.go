package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractIPAddress(t *testing.T) {
	t.Run("x_forwarded_for_first_hop_wins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
		req.Header.Set("X-Real-IP", "198.51.100.2")

		assert.Equal(t, "203.0.113.1", extractIPAddress(req))
	})

	t.Run("x_real_ip_fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.Header.Set("X-Real-IP", "198.51.100.2")

		assert.Equal(t, "198.51.100.2", extractIPAddress(req))
	})

	t.Run("remote_addr_fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/abc", nil)
		req.RemoteAddr = "192.0.2.7:54321"

		assert.Equal(t, "192.0.2.7", extractIPAddress(req))
	})
}

func TestDetectDeviceType_KeywordFallback(t *testing.T) {
	// Global parser is not initialized in tests, so the keyword heuristic runs
	tests := []struct {
		userAgent string
		want      string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "mobile"},
		{"Mozilla/5.0 (Linux; Android 14) Mobile Safari", "mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", "tablet"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome", "desktop"},
		{"", "desktop"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detectDeviceType(tt.userAgent), "user agent %q", tt.userAgent)
	}
}
