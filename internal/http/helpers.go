package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// clientIP extracts the client IP, considering proxies.
func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseFilter extracts the search query and city tab from query parameters.
func parseFilter(r *http.Request) (query, tab string) {
	query = strings.TrimSpace(r.URL.Query().Get("q"))
	tab = strings.TrimSpace(r.URL.Query().Get("tab"))
	return query, tab
}

// parsePositiveInt parses a form value into a positive int, 0 on failure.
func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// barWidth scales a count against the maximum for CSS bar rendering,
// as a rounded percentage clamped to [2, 100] for non-zero counts.
func barWidth(count, max int) int {
	if max <= 0 || count <= 0 {
		return 0
	}
	width := (count*100 + max/2) / max
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
