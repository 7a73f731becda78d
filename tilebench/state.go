// Copyright 2025 The go-tilebench Authors. SPDX-License-Identifier: Apache-2.0

package tilebench

import (
	"errors"
	"fmt"
	"sync"
)

// State is a stage of the benchmark pipeline.
type State int

const (
	// StateIdle is the state before the sweep starts.
	StateIdle State = iota

	// StateGenerating is entered while a trial builds its input matrices.
	StateGenerating

	// StateComputing is entered while a trial runs the kernel.
	StateComputing

	// StateMeasured is entered once every configuration has been timed.
	StateMeasured

	// StateAnalyzed is entered once metrics have been derived.
	StateAnalyzed

	// StateReported is the terminal state after the report sinks ran.
	StateReported

	// StateFailed is entered from any state when a stage fails.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateComputing:
		return "computing"
	case StateMeasured:
		return "measured"
	case StateAnalyzed:
		return "analyzed"
	case StateReported:
		return "reported"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// next lists the legal successors of each non-failed state. Computing may
// loop back to Generating for the next trial; Idle may skip straight to
// Measured for tables that were imported rather than timed. A configuration
// skipped while Generating hands over to the next one, or ends the sweep.
var next = map[State][]State{
	StateIdle:       {StateGenerating, StateMeasured},
	StateGenerating: {StateComputing, StateGenerating, StateMeasured},
	StateComputing:  {StateGenerating, StateMeasured},
	StateMeasured:   {StateAnalyzed},
	StateAnalyzed:   {StateReported},
}

// Failure records where the pipeline failed and for which configuration.
// Config is the zero Configuration when the failure is not tied to one.
type Failure struct {
	State  State
	Config Configuration
	Err    error
}

func (f *Failure) Error() string {
	if f.Config == (Configuration{}) {
		return fmt.Sprintf("tilebench: failed while %s: %v", f.State, f.Err)
	}
	return fmt.Sprintf("tilebench: failed while %s (%s): %v", f.State, f.Config, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Tracker follows the pipeline through its states. It is safe for
// concurrent use, although the pipeline itself is driven by one goroutine.
type Tracker struct {
	mu      sync.Mutex
	state   State
	failure *Failure
}

// NewTracker returns a tracker in StateIdle.
func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Failure returns the recorded failure, or nil.
func (t *Tracker) Failure() *Failure {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// Transition moves to state to, or returns ErrIllegalTransition.
// Failed and Reported are terminal.
func (t *Tracker) Transition(to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range next[t.state] {
		if s == to {
			t.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.state, to)
}

// Fail moves to StateFailed and returns the *Failure describing it. If err
// already is a *Failure it is recorded unchanged.
func (t *Tracker) Fail(cfg Configuration, err error) *Failure {
	t.mu.Lock()
	defer t.mu.Unlock()
	var f *Failure
	if !errors.As(err, &f) {
		f = &Failure{State: t.state, Config: cfg, Err: err}
	}
	t.state = StateFailed
	t.failure = f
	return f
}
