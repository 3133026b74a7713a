// Package testkit holds the few helpers shared by tests across packages
package testkit

import (
	"sync"
	"testing"
)

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

var serial sync.Mutex

// Serial holds a process wide lock until the test ends
// tests that swap the root logger or set env driven config take it
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
