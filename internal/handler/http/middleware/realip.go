package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
)

// TrustedRealIP rewrites RemoteAddr from X-Real-IP or X-Forwarded-For, but
// only when the direct peer is one of the trusted proxies. Other peers keep
// their socket address, so forwarded headers cannot move a caller onto the
// office network.
func TrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(trusted) > 0 && netpolicy.Contains(trusted, r.RemoteAddr) {
				if ip, ok := forwardedClient(r, trusted); ok {
					r.RemoteAddr = ip
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedClient prefers X-Real-IP. Otherwise it walks X-Forwarded-For from
// the right and returns the first hop that is not a trusted proxy.
func forwardedClient(r *http.Request, trusted []netip.Prefix) (string, bool) {
	if v := r.Header.Get("X-Real-IP"); v != "" {
		if addr, err := netpolicy.ParseAddr(v); err == nil {
			return addr.String(), true
		}
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		addr, err := netpolicy.ParseAddr(hops[i])
		if err != nil {
			return "", false
		}
		if !netpolicy.Contains(trusted, addr.String()) {
			return addr.String(), true
		}
	}
	return "", false
}
