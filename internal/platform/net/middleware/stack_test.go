package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"magnetinfo/internal/platform/config"
	perr "magnetinfo/internal/platform/errors"
	"magnetinfo/internal/platform/logger"
	phttp "magnetinfo/internal/platform/net/http"
	"magnetinfo/internal/platform/net/middleware"

	chimw "github.com/go-chi/chi/v5/middleware"
)

func chain(o middleware.Options, h http.Handler) http.Handler {
	mws := middleware.Stack(o)
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func TestFromConfig(t *testing.T) {
	o := middleware.FromConfig(config.FromMap(map[string]string{
		"API_CORS_ORIGINS":    "https://a.example, https://b.example",
		"API_RATE_LIMIT":      "7",
		"API_REQUEST_TIMEOUT": "90s",
	}))
	if len(o.CORSOrigins) != 2 || o.RateLimit.Limit != 7 || o.RateLimit.Window != time.Hour || o.Timeout != 90*time.Second {
		t.Fatalf("options %+v", o)
	}
	if o.Slow != 5*time.Second {
		t.Fatalf("slow default %v", o.Slow)
	}
}

func TestStack_HeadersAndRequestID(t *testing.T) {
	var ctxID, logID string
	h := chain(middleware.Options{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = chimw.GetReqID(r.Context())
		logID = logger.RequestID(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strings.Repeat("x", 4<<10)))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/torrents/info/", nil)
	req.Header.Set(chimw.RequestIDHeader, "abc-123")
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if ctxID != "abc-123" || logID != "abc-123" {
		t.Fatalf("ids ctx=%q log=%q", ctxID, logID)
	}
	hd := rec.Header()
	if hd.Get(chimw.RequestIDHeader) != "abc-123" {
		t.Fatalf("echoed id %q", hd.Get(chimw.RequestIDHeader))
	}
	if hd.Get("Content-Security-Policy") != middleware.CSP || hd.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers %v", hd)
	}
	if hd.Get("Cache-Control") == "" || hd.Get("Content-Encoding") != "gzip" {
		t.Fatalf("cache/compress headers %v", hd)
	}
}

func TestStack_Heartbeat(t *testing.T) {
	h := chain(middleware.Options{}, http.NotFoundHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health %d", rec.Code)
	}
}

func TestStack_CORSPreflight(t *testing.T) {
	h := chain(middleware.Options{CORSOrigins: []string{"https://a.example"}}, http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/torrents/info", nil)
	req.Header.Set("Origin", "https://a.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "https://a.example" {
		t.Fatalf("preflight headers %v", rec.Header())
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("allowed methods %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestRecoverJSON_PanicBecomesEnvelope(t *testing.T) {
	h := chain(middleware.Options{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/service", nil)
	req.Header.Set(chimw.RequestIDHeader, "rid-9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("body: %v", err)
	}
	if env.Code != perr.ErrorCodePanic || env.RequestID != "rid-9" {
		t.Fatalf("envelope %+v", env)
	}
}
