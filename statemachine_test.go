package cometd

import "testing"

func TestLifecycleInitialStateIsHandshaking(t *testing.T) {
	l := newLifecycle()
	if got := l.Current(); got != stateHandshaking {
		t.Errorf("Current() = %v, want %v", got, stateHandshaking)
	}
}

func TestLifecycleTransition(t *testing.T) {
	l := newLifecycle()
	l.transition(stateRunning)
	if got := l.Current(); got != stateRunning {
		t.Errorf("Current() = %v, want %v", got, stateRunning)
	}
	l.transition(stateDraining)
	l.transition(stateEnded)
	if got := l.Current(); got != stateEnded {
		t.Errorf("Current() = %v, want %v", got, stateEnded)
	}
}

func TestOrchestratorStateString(t *testing.T) {
	cases := map[orchestratorState]string{
		stateHandshaking:      "HANDSHAKING",
		stateRunning:          "RUNNING",
		stateDraining:         "DRAINING",
		stateEnded:            "ENDED",
		orchestratorState(99): "UNKNOWN",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
