package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/litbook/litbook-server/internal/errors"
)

// authRateLimit is a huma middleware that rate limits requests by client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.Header, ctx.RemoteAddr())

	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		ctx.SetHeader("Retry-After", "60")
		msg := "Too many requests. Please try again later."
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, msg, domainerrors.RateLimited(msg))
		return
	}

	next(ctx)
}

// clientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to the
// remote address.
func clientIP(header func(string) string, remoteAddr string) string {
	// X-Forwarded-For may contain multiple IPs; the first is the client.
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
