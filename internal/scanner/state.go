package scanner

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// State - lifecycle state of one scan
type State string

// states
const (
	StateReceived      State = "received"
	StateValidating    State = "validating"
	StateChainResolved State = "chain_resolved"
	StateFetching      State = "fetching"
	StateScoring       State = "scoring"
	StatePersisting    State = "persisting"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
	StateTimedOut      State = "timed_out"
)

// Terminal -
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateReceived:      {StateValidating},
	StateValidating:    {StateChainResolved, StateFailed},
	StateChainResolved: {StateFetching, StateCompleted, StateTimedOut},
	StateFetching:      {StateScoring, StateFailed, StateTimedOut},
	StateScoring:       {StatePersisting, StateFailed, StateTimedOut},
	StatePersisting:    {StateCompleted, StateFailed, StateTimedOut},
}

// lifecycle - tracks the state of a single scan and refuses illegal
// transitions. Terminal states are absorbing: any transition attempted
// after one is rejected, which is how work finishing after the
// deadline gets discarded.
type lifecycle struct {
	mx    sync.Mutex
	state State
}

func newLifecycle() *lifecycle {
	return &lifecycle{state: StateReceived}
}

func (l *lifecycle) current() State {
	l.mx.Lock()
	defer l.mx.Unlock()
	return l.state
}

func (l *lifecycle) to(next State) bool {
	l.mx.Lock()
	defer l.mx.Unlock()

	if l.state.Terminal() {
		return false
	}
	for _, allowed := range transitions[l.state] {
		if allowed == next {
			l.state = next
			return true
		}
	}

	log.Error().
		Str("from", string(l.state)).
		Str("to", string(next)).
		Msg("illegal scan state transition")
	return false
}
