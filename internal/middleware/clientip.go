package middleware

import (
	"net"
	"net/http"
	"strings"
)

// loopbackIP is the identifier used when no client address can be determined,
// which keeps local tooling working without a proxy in front.
const loopbackIP = "127.0.0.1"

// ClientIP extracts the caller's address: first IP in X-Forwarded-For, then
// X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return loopbackIP
}
