package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
)

// NetworkChecker decides whether a client address may record attendance.
type NetworkChecker interface {
	IsAllowed(ip string) bool
}

// RequireAllowedNetwork rejects callers outside the office networks with
// 403 UNAUTHORIZED_LOCATION. Run TrustedRealIP first when behind a proxy.
func RequireAllowedNetwork(checker NetworkChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			if !checker.IsAllowed(ip) {
				slog.Warn("Attendance rejected from unauthorized location", "ip", ip, "path", r.URL.Path)
				response.UnauthorizedLocation(w, ip)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP is the request's remote address without port or zone.
func ClientIP(r *http.Request) string {
	addr, err := netpolicy.ParseAddr(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return addr.String()
}
