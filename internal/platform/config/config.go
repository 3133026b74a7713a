// Package config reads namespaced settings, usually from the process environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Conf is a prefixed view over a settings source
// children made by Prefix or With share the parent's problem log
type Conf struct {
	prefix string
	src    *source
}

type source struct {
	lookup func(key string) (string, bool)
	log    *problemLog
}

type problemLog struct {
	mu   sync.Mutex
	list []Problem
}

// Problem is a value that was present but unusable, the default was applied instead
type Problem struct {
	Key   string
	Value string
	Want  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s=%q is not a valid %s", p.Key, p.Value, p.Want)
}

var envSource = &source{lookup: os.LookupEnv, log: &problemLog{}}

// New reads from the process environment
func New() Conf {
	return Conf{src: &source{lookup: os.LookupEnv, log: &problemLog{}}}
}

// FromMap reads from a fixed set of fully qualified keys
func FromMap(m map[string]string) Conf {
	return Conf{src: &source{
		lookup: func(k string) (string, bool) {
			v, ok := m[k]
			return v, ok
		},
		log: &problemLog{},
	}}
}

// Prefix narrows the view, cfg.Prefix("SWARM_").MayString("DRIVER", ...) reads SWARM_DRIVER
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, src: c.source()} }

// With layers values over the current source, keys are relative to the current prefix
// the CLI turns its flags into settings this way
func (c Conf) With(values map[string]string) Conf {
	base := c.source()
	over := make(map[string]string, len(values))
	for k, v := range values {
		over[c.prefix+k] = v
	}
	return Conf{prefix: c.prefix, src: &source{
		lookup: func(k string) (string, bool) {
			if v, ok := over[k]; ok {
				return v, true
			}
			return base.lookup(k)
		},
		log: base.log,
	}}
}

// Problems lists every unusable value read so far, in read order
func (c Conf) Problems() []Problem {
	l := c.source().log
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Problem(nil), l.list...)
}

func (c Conf) source() *source {
	if c.src == nil {
		return envSource
	}
	return c.src
}

// get returns the qualified key and the trimmed value, empty values count as unset
func (c Conf) get(key string) (string, string, bool) {
	k := c.prefix + key
	v, ok := c.source().lookup(k)
	v = strings.TrimSpace(v)
	return k, v, ok && v != ""
}

func (c Conf) bad(key, value, want string) {
	l := c.source().log
	l.mu.Lock()
	l.list = append(l.list, Problem{Key: key, Value: value, Want: want})
	l.mu.Unlock()
}

// MayString returns the value or def
func (c Conf) MayString(key, def string) string {
	if _, v, ok := c.get(key); ok {
		return v
	}
	return def
}

// MayInt returns the value or def, an unparsable value is recorded and def returned
func (c Conf) MayInt(key string, def int) int {
	k, v, ok := c.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.bad(k, v, "int")
		return def
	}
	return n
}

// MayBool returns the value or def, an unparsable value is recorded and def returned
func (c Conf) MayBool(key string, def bool) bool {
	k, v, ok := c.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.bad(k, v, "bool")
		return def
	}
	return b
}

// MayDuration returns the value or def, an unparsable value is recorded and def returned
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	k, v, ok := c.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.bad(k, v, "duration")
		return def
	}
	return d
}

// MayCSV splits a comma separated value, blanks are dropped
func (c Conf) MayCSV(key string, def []string) []string {
	_, v, ok := c.get(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum matches the value case-insensitively against allowed and returns the allowed spelling
// a value outside allowed is a deployment mistake and panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	k, v, ok := c.get(key)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	panic(fmt.Sprintf("config: %s=%q, want one of %s", k, v, strings.Join(allowed, "|")))
}
