package guard

import (
	"sync"

	"startosedge/internal/sessionstate"
)

// Gate tracks the guard state machine for one protected path against
// the live snapshot stream: loading -> granted | redirect | unavailable.
// Every new identity event puts it back into loading until that event's
// resolution lands; resolutions the watcher discarded as stale never
// reach it, so the decision always reflects the latest event only.
type Gate struct {
	path     string
	onChange func(Decision)

	mu       sync.Mutex
	seq      uint64
	decision Decision
	unsub    func()
}

// NewGate subscribes to the watcher. onChange may be nil; if set it is
// called after every state transition.
func NewGate(w *sessionstate.Watcher, path string, onChange func(Decision)) *Gate {
	g := &Gate{
		path:     path,
		onChange: onChange,
		decision: Decision{State: StateLoading},
	}
	g.unsub = w.Subscribe(g.apply)
	return g
}

func (g *Gate) apply(s sessionstate.Snapshot) {
	g.mu.Lock()

	if s.Pending {
		if s.Seq < g.seq {
			g.mu.Unlock()
			return
		}
		g.seq = s.Seq
		g.decision = Decision{State: StateLoading}
	} else {
		if s.Seq != g.seq {
			g.mu.Unlock()
			return
		}
		if s.Err != nil {
			g.decision = Decision{State: StateUnavailable}
		} else {
			g.decision = Evaluate(s.Session, g.path)
		}
	}

	d := g.decision
	fn := g.onChange
	g.mu.Unlock()

	if fn != nil {
		fn(d)
	}
}

// Decision returns the current verdict.
func (g *Gate) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.decision
}

// Close detaches the gate from the watcher.
func (g *Gate) Close() {
	g.unsub()
}
