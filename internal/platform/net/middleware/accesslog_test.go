package middleware_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"magnetinfo/internal/platform/logger"
	"magnetinfo/internal/platform/net/middleware"
	"magnetinfo/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

// captureLog points the root logger at a buffer for the rest of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	testkit.Serial(t)
	var buf bytes.Buffer
	logger.Init(logger.Options{Level: "info", Format: "json", Writer: &buf})
	t.Cleanup(func() { logger.Init(logger.Options{Level: "error", Format: "json", Writer: io.Discard}) })
	return &buf
}

func accessLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad log line %q: %v", sc.Text(), err)
		}
		if m["message"] == "request done" {
			out = append(out, m)
		}
	}
	return out
}

func TestAccessLogZerolog_LogsRoutePatternNotMagnet(t *testing.T) {
	buf := captureLog(t)

	r := chi.NewRouter()
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{}))
	r.Get("/torrents/{magnet}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hi"))
		_, _ = w.Write([]byte("there"))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/torrents/c12fe1c06bba254a9dc9f519b335aa7c1367a88a", nil))

	if rr.Body.String() != "hithere" {
		t.Fatalf("body = %q", rr.Body.String())
	}
	lines := accessLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("want 1 access line, got %d", len(lines))
	}
	l := lines[0]
	if l["route"] != "/torrents/{magnet}" {
		t.Fatalf("route = %v", l["route"])
	}
	if l["status"] != float64(200) || l["bytes"] != float64(7) || l["level"] != "info" {
		t.Fatalf("line = %v", l)
	}
	if bytes.Contains(buf.Bytes(), []byte("c12fe1c0")) {
		t.Fatalf("info hash leaked into the log: %s", buf.String())
	}
}

func TestAccessLogZerolog_Levels(t *testing.T) {
	cases := []struct {
		name   string
		slow   time.Duration
		status int
		level  string
	}{
		{"settled", 0, http.StatusOK, "info"},
		{"bad magnet", 0, http.StatusBadRequest, "info"},
		{"upstream", 0, http.StatusBadGateway, "error"},
		{"slow", time.Nanosecond, http.StatusGatewayTimeout, "error"},
		{"slow settled", time.Nanosecond, http.StatusOK, "warn"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t)
			mw := middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: tc.slow})
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(50 * time.Microsecond)
				w.WriteHeader(tc.status)
			})

			rr := httptest.NewRecorder()
			mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/torrents/info", nil))

			if rr.Code != tc.status {
				t.Fatalf("status = %d", rr.Code)
			}
			lines := accessLines(t, buf)
			if len(lines) != 1 || lines[0]["level"] != tc.level {
				t.Fatalf("want one %s line, got %v", tc.level, lines)
			}
			if lines[0]["route"] != "/api/v1/torrents/info" {
				t.Fatalf("route without chi should fall back to path: %v", lines[0]["route"])
			}
		})
	}
}

func TestAccessLogZerolog_CarriesRequestID(t *testing.T) {
	buf := captureLog(t)
	mw := middleware.AccessLogZerolog(middleware.AccessLogOptions{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/service", nil)
	req = req.WithContext(logger.WithRequest(req.Context(), "req-42", ""))
	mw(next).ServeHTTP(httptest.NewRecorder(), req)

	lines := accessLines(t, buf)
	if len(lines) != 1 || lines[0]["request_id"] != "req-42" {
		t.Fatalf("request id missing: %v", lines)
	}
	if lines[0]["status"] != float64(200) {
		t.Fatalf("implicit status should log as 200: %v", lines[0]["status"])
	}
}
