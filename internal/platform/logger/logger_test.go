package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"magnetinfo/internal/platform/config"
	"magnetinfo/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line is not json: %q", line)
		}
		out = append(out, m)
	}
	return out
}

func TestLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" INFO ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.DebugLevel,
		"nonsense": zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := level(in); got != want {
			t.Fatalf("level(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromConfig(t *testing.T) {
	c := config.FromMap(map[string]string{
		"LOG_LEVEL":        "warn",
		"LOG_FORMAT":       "JSON",
		"LOG_SERVICE":      "magnetinfo-api",
		"LOG_CALLER":       "true",
		"LOG_SAMPLE_EVERY": "often",
	})
	o := FromConfig(c)
	if o.Level != "warn" || o.Format != "json" || o.Service != "magnetinfo-api" || !o.Caller || o.SampleEvery != 0 {
		t.Fatalf("options = %+v", o)
	}
	if p := c.Problems(); len(p) != 1 || p[0].Key != "LOG_SAMPLE_EVERY" {
		t.Fatalf("problems = %v", p)
	}
}

func TestNew_JSONFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Format: "json", Service: "magnetinfo-api", Component: "swarm", Writer: &buf})

	l.Debug().Msg("hidden")
	l.Info().Int("sessions", 2).Msg("swarm sessions")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("want 1 line at info, got %d: %s", len(lines), buf.String())
	}
	got := lines[0]
	if got["service"] != "magnetinfo-api" || got["component"] != "swarm" || got["message"] != "swarm sessions" {
		t.Fatalf("fields = %v", got)
	}
	if got["sessions"] != float64(2) {
		t.Fatalf("sessions = %v", got["sessions"])
	}
}

func TestC_CarriesRequestAndAttempt(t *testing.T) {
	testkit.Serial(t)
	prev := root.Load()
	t.Cleanup(func() { root.Store(prev) })

	var buf bytes.Buffer
	Init(Options{Format: "json", Writer: &buf})

	ctx := WithRequest(context.Background(), "req-7", "att-abc")
	C(ctx).Info().Msg("settled")
	C(WithRequest(context.Background(), "", "")).Info().Msg("bare")
	Named("resolver").Info().Msg("named")

	lines := decodeLines(t, &buf)
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d", len(lines))
	}
	if lines[0]["request_id"] != "req-7" || lines[0]["attempt_id"] != "att-abc" {
		t.Fatalf("ids missing: %v", lines[0])
	}
	if _, ok := lines[1]["request_id"]; ok {
		t.Fatalf("empty id should be skipped: %v", lines[1])
	}
	if lines[2]["component"] != "resolver" {
		t.Fatalf("component missing: %v", lines[2])
	}
}

func TestGet_ReusesRoot(t *testing.T) {
	testkit.Serial(t)
	if Get() != Get() {
		t.Fatalf("Get should return the same root")
	}
}
