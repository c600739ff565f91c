package cometd

import "sync/atomic"

// orchestratorState is the lifecycle state of the session orchestrator
// described in SPEC_FULL.md §4.E:
//
//	[Start] -> Handshaking -> Running -> Draining -> [End]
type orchestratorState int32

const (
	stateHandshaking orchestratorState = iota
	stateRunning
	stateDraining
	stateEnded
)

func (s orchestratorState) String() string {
	switch s {
	case stateHandshaking:
		return "HANDSHAKING"
	case stateRunning:
		return "RUNNING"
	case stateDraining:
		return "DRAINING"
	case stateEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// lifecycle tracks the orchestrator's current state with a single atomic
// word, mirroring the way the session primitives track client_id: readers
// (e.g. tests, diagnostics) never need to take a lock to observe it.
type lifecycle struct {
	state atomic.Int32
}

func newLifecycle() *lifecycle {
	l := &lifecycle{}
	l.state.Store(int32(stateHandshaking))
	return l
}

func (l *lifecycle) Current() orchestratorState {
	return orchestratorState(l.state.Load())
}

func (l *lifecycle) transition(to orchestratorState) {
	l.state.Store(int32(to))
}
