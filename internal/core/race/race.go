// Package race settles the first of several independently arriving signals
//
// A Cell moves from Active to Settled exactly once; every later Settle call is
// reported as rejected and leaves the stored value untouched. First builds on a
// Cell to run N arms concurrently and return whichever one settles first.
package race

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle of a Cell
type State uint32

const (
	// Active means no arm has settled yet
	Active State = iota
	// Settled means a value has been stored and Done is closed
	Settled
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Cell holds at most one settled value
type Cell[T any] struct {
	state atomic.Uint32
	done  chan struct{}
	val   T
}

// NewCell returns an Active cell
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{done: make(chan struct{})}
}

// Settle stores v if the cell is still Active and reports whether it did
func (c *Cell[T]) Settle(v T) bool {
	if !c.state.CompareAndSwap(uint32(Active), uint32(Settled)) {
		return false
	}
	c.val = v
	close(c.done)
	return true
}

// Done is closed once the cell settles
func (c *Cell[T]) Done() <-chan struct{} { return c.done }

// State returns the current state
func (c *Cell[T]) State() State { return State(c.state.Load()) }

// Value returns the settled value, ok is false while the cell is Active
func (c *Cell[T]) Value() (v T, ok bool) {
	select {
	case <-c.done:
		return c.val, true
	default:
		return v, false
	}
}

// Arm waits for one signal and reports it through settle
// it must return promptly once stop is closed
type Arm[T any] func(stop <-chan struct{}, settle func(T) bool)

// First runs every arm and returns the value of the first one to settle
// it returns only after all arms have exited, so no arm goroutine outlives the call
// at least one arm must eventually settle, otherwise First blocks forever
func First[T any](arms ...Arm[T]) T {
	if len(arms) == 0 {
		panic("race: First needs at least one arm")
	}

	cell := NewCell[T]()
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(len(arms))
	for _, arm := range arms {
		go func(a Arm[T]) {
			defer wg.Done()
			a(stop, cell.Settle)
		}(arm)
	}

	<-cell.Done()
	close(stop)
	wg.Wait()

	v, _ := cell.Value()
	return v
}

// Recv is an Arm that settles with fn's result when ch delivers a value
// a closed channel ends the arm without settling
func Recv[E, T any](ch <-chan E, fn func(E) T) Arm[T] {
	return func(stop <-chan struct{}, settle func(T) bool) {
		select {
		case e, ok := <-ch:
			if ok {
				settle(fn(e))
			}
		case <-stop:
		}
	}
}

// Closed is an Arm that settles with fn's result once ch is closed or delivers
// it fits ctx.Done() style channels that never carry a value
func Closed[T any](ch <-chan struct{}, fn func() T) Arm[T] {
	return func(stop <-chan struct{}, settle func(T) bool) {
		select {
		case <-ch:
			settle(fn())
		case <-stop:
		}
	}
}
