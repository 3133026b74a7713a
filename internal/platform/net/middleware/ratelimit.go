package middleware

import (
	"math"
	"net"
	stdhttp "net/http"
	"strconv"
	"sync"
	"time"

	perr "magnetinfo/internal/platform/errors"
	phttp "magnetinfo/internal/platform/net/http"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

// RateLimitOptions configures RateLimit
// Limit requests are allowed per Window per client, refilled evenly across the window
type RateLimitOptions struct {
	Limit  int
	Window time.Duration

	// Idle clients are forgotten after this long, defaults to Window
	Idle time.Duration
	// Key identifies a client, defaults to the host part of RemoteAddr (pair with RealIP)
	Key func(*stdhttp.Request) string
	// Clock is swappable for tests
	Clock clock.Clock
}

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

type limiter struct {
	opt   RateLimitOptions
	every rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor
	swept    time.Time
}

// RateLimit rejects clients over their budget with a 429 envelope
// a non positive Limit disables limiting
func RateLimit(o RateLimitOptions) func(stdhttp.Handler) stdhttp.Handler {
	if o.Limit <= 0 {
		return func(next stdhttp.Handler) stdhttp.Handler { return next }
	}
	if o.Window <= 0 {
		o.Window = time.Hour
	}
	if o.Idle <= 0 {
		o.Idle = o.Window
	}
	if o.Key == nil {
		o.Key = clientIP
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	l := &limiter{
		opt:      o,
		every:    rate.Every(o.Window / time.Duration(o.Limit)),
		visitors: map[string]*visitor{},
	}
	return l.handler
}

func (l *limiter) handler(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		now := l.opt.Clock.Now()
		lim := l.get(l.opt.Key(r), now)

		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.opt.Limit))
		if !lim.AllowN(now, 1) {
			wait := (1 - lim.TokensAt(now)) / float64(l.every)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait))))
			writeTooMany(w, r)
			return
		}
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(now))))
		next.ServeHTTP(w, r)
	})
}

func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) >= l.opt.Idle {
		for k, v := range l.visitors {
			if now.Sub(v.seen) >= l.opt.Idle {
				delete(l.visitors, k)
			}
		}
		l.swept = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.every, l.opt.Limit)}
		l.visitors[key] = v
	}
	v.seen = now
	return v.lim
}

// size reports tracked clients
func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func clientIP(r *stdhttp.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeTooMany(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	phttp.RespondError(w, r, perr.TooManyRequestsf("too many requests from this client, please try again later"))
}
