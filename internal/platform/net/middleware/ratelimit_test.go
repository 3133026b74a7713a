package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "magnetinfo/internal/platform/errors"
	phttp "magnetinfo/internal/platform/net/http"

	"github.com/benbjohnson/clock"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/torrents/info", nil)
	req.RemoteAddr = ip + ":5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimit_BudgetPerClient(t *testing.T) {
	mock := clock.NewMock()
	h := RateLimit(RateLimitOptions{Limit: 3, Window: time.Hour, Clock: mock})(okHandler())

	for i := 0; i < 3; i++ {
		if rr := hit(h, "10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rr.Code)
		}
	}
	rr := hit(h, "10.0.0.1")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("over budget status = %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
	var body phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Code != perr.ErrorCodeTooManyRequests || body.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("body = %+v", body)
	}

	// another client has its own budget
	if rr := hit(h, "10.0.0.2"); rr.Code != http.StatusOK {
		t.Fatalf("second client status = %d", rr.Code)
	}
}

func TestRateLimit_Refills(t *testing.T) {
	mock := clock.NewMock()
	h := RateLimit(RateLimitOptions{Limit: 2, Window: time.Minute, Clock: mock})(okHandler())

	hit(h, "10.0.0.1")
	hit(h, "10.0.0.1")
	if rr := hit(h, "10.0.0.1"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
	mock.Add(30 * time.Second)
	if rr := hit(h, "10.0.0.1"); rr.Code != http.StatusOK {
		t.Fatalf("status after refill = %d", rr.Code)
	}
}

func TestRateLimit_EvictsIdleClients(t *testing.T) {
	mock := clock.NewMock()
	l := &limiter{visitors: map[string]*visitor{}}
	l.opt = RateLimitOptions{Limit: 1, Window: time.Minute, Idle: time.Minute, Clock: mock}
	l.every = 1

	l.get("a", mock.Now())
	l.get("b", mock.Now())
	mock.Add(2 * time.Minute)
	l.get("c", mock.Now())

	if n := l.size(); n != 1 {
		t.Fatalf("tracked clients = %d, want 1", n)
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	h := RateLimit(RateLimitOptions{})(okHandler())
	for i := 0; i < 10; i++ {
		if rr := hit(h, "10.0.0.1"); rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}
}
