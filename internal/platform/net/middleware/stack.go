// Package middleware is the request pipeline every API scope runs behind
package middleware

import (
	"compress/flate"
	"net/http"
	"time"

	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// CSP only allows same origin resources, the swagger UI is served from here too
const CSP = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'"

// Options tunes the stack, zero values keep each piece at its default or switch it off
type Options struct {
	// CORSOrigins lists allowed origins, empty lets the cors package apply its own default
	CORSOrigins []string
	RateLimit   RateLimitOptions
	// Timeout bounds every request, it must exceed the longest resolver deadline
	Timeout time.Duration
	// Slow marks access log lines at warn level
	Slow time.Duration
}

// FromConfig reads the API_ scoped knobs
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("API_")
	return Options{
		CORSOrigins: ac.MayCSV("CORS_ORIGINS", nil),
		RateLimit: RateLimitOptions{
			Limit:  ac.MayInt("RATE_LIMIT", 100),
			Window: ac.MayDuration("RATE_WINDOW", time.Hour),
		},
		Timeout: ac.MayDuration("REQUEST_TIMEOUT", 150*time.Second),
		Slow:    ac.MayDuration("SLOW_REQUEST", 5*time.Second),
	}
}

// Stack returns the middleware slice, outermost first
func Stack(o Options) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 150 * time.Second
	}
	return []func(http.Handler) http.Handler{
		requestID,
		chimw.RealIP,

		RecoverJSON,
		secureHeaders,
		chimw.NoCache,

		AccessLogZerolog(AccessLogOptions{Slow: o.Slow}),

		cors(o.CORSOrigins),
		RateLimit(o.RateLimit),

		chimw.NewCompressor(flate.BestSpeed).Handler,
		chimw.Heartbeat("/health"),
		chimw.StripSlashes,
		// resolutions observe the cancellation and answer with a timeout
		chimw.Timeout(o.Timeout),
	}
}

// requestID propagates or mints X-Request-ID, echoes it, and binds it to logger.C
func requestID(next http.Handler) http.Handler {
	return chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimw.GetReqID(r.Context())
		w.Header().Set(chimw.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequest(r.Context(), id, "")))
	}))
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", CSP)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// the API only answers GET and POST
func cors(origins []string) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "Retry-After"},
	})
}
