// Package logger owns the process zerolog logger and request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"magnetinfo/internal/platform/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options shape the root logger, FromConfig fills them from LOG_*
type Options struct {
	Level       string // trace debug info warn error, anything else is debug
	Format      string // console or json
	Service     string
	Component   string
	Caller      bool
	SampleEvery int
	Writer      io.Writer // stdout when nil
}

// FromConfig reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_COMPONENT, LOG_CALLER and LOG_SAMPLE_EVERY
func FromConfig(c config.Conf) Options {
	lc := c.Prefix("LOG_")
	return Options{
		Level:       lc.MayString("LEVEL", "debug"),
		Format:      strings.ToLower(lc.MayString("FORMAT", "console")),
		Service:     lc.MayString("SERVICE", ""),
		Component:   lc.MayString("COMPONENT", ""),
		Caller:      lc.MayBool("CALLER", false),
		SampleEvery: lc.MayInt("SAMPLE_EVERY", 0),
	}
}

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New builds a logger from opt without touching the process root
func New(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: opt.Writer != nil}
	}

	ctx := zerolog.New(w).Level(level(opt.Level)).With().Timestamp()
	if opt.Service != "" {
		ctx = ctx.Str("service", opt.Service)
	}
	if opt.Component != "" {
		ctx = ctx.Str("component", opt.Component)
	}
	if opt.Caller {
		ctx = ctx.Caller()
	}
	l := ctx.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

func level(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}

var (
	bootMu sync.Mutex
	root   atomic.Pointer[Logger]
)

// Init replaces the root logger, binaries call it before anything logs
func Init(opt Options) *Logger {
	l := New(opt)
	root.Store(&l)
	return &l
}

// Get returns the root logger, building it from the environment on first use
// LOG_* values that could not be parsed are reported once at warn
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	bootMu.Lock()
	defer bootMu.Unlock()
	if l := root.Load(); l != nil {
		return l
	}
	c := config.New()
	l := Init(FromConfig(c))
	for _, p := range c.Problems() {
		l.Warn().Str("key", p.Key).Str("value", p.Value).Msg("ignored invalid log setting")
	}
	return l
}

// Named returns a child of the root tagged with component
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}

type ctxKey uint8

const (
	requestIDKey ctxKey = iota
	attemptIDKey
)

// WithRequest stores the http request id and the resolution attempt id on ctx, empty ids are skipped
func WithRequest(ctx context.Context, reqID, attemptID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, requestIDKey, reqID)
	}
	if attemptID != "" {
		ctx = context.WithValue(ctx, attemptIDKey, attemptID)
	}
	return ctx
}

// C returns a root child carrying whichever ids ctx holds
func C(ctx context.Context) *Logger {
	b := Get().With()
	if s := RequestID(ctx); s != "" {
		b = b.Str("request_id", s)
	}
	if s, _ := ctx.Value(attemptIDKey).(string); s != "" {
		b = b.Str("attempt_id", s)
	}
	l := b.Logger()
	return &l
}

// RequestID returns the http request id stored by WithRequest
func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}
