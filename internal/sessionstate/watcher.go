package sessionstate

import (
	"context"
	"sync"

	"startosedge/internal/identity"
)

// Snapshot is one resolver output delivered to watcher subscribers.
// Every identity event produces first a pending snapshot, then, iff no
// later event has arrived in the meantime, a terminal one carrying the
// Session or a resolution error.
type Snapshot struct {
	Seq     uint64
	Pending bool
	Session Session
	Err     error
}

// Watcher is the process-wide subscription: it listens on the identity
// feed once and fans resolved Sessions out to all consumers. Rapid
// event churn is handled with the sequence numbers stamped by the feed;
// a resolution finishing after a newer event has been dispatched is
// discarded silently, and an event arriving after a newer one has
// already been dispatched is dropped outright, so the highest sequence
// number always wins.
type Watcher struct {
	resolver *Resolver

	mu        sync.Mutex
	latestSeq uint64
	subs      map[int]func(Snapshot)
	nextID    int
	unsub     func()
	cancel    context.CancelFunc
	closed    bool
}

// Watch subscribes the resolver to the feed and starts resolving.
// Callers must Close the watcher on shutdown.
func Watch(ctx context.Context, r *Resolver, feed *identity.Feed) *Watcher {
	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		resolver: r,
		subs:     make(map[int]func(Snapshot)),
		cancel:   cancel,
	}
	w.unsub = feed.Subscribe(func(ev identity.Event) {
		w.dispatch(ctx, ev)
	})
	return w
}

func (w *Watcher) dispatch(ctx context.Context, ev identity.Event) {
	w.mu.Lock()
	if w.closed || ev.Seq <= w.latestSeq {
		// Feed delivery happens outside the feed's lock, so two
		// concurrent publishes can arrive here inverted. An event older
		// than one already dispatched is dead on arrival: advancing
		// latestSeq backwards would discard the newer event's
		// resolution in its favor.
		w.mu.Unlock()
		return
	}
	w.latestSeq = ev.Seq
	w.mu.Unlock()

	w.deliver(Snapshot{Seq: ev.Seq, Pending: true})

	go func() {
		sess, err := w.resolver.Resolve(ctx, ev)

		w.mu.Lock()
		stale := w.closed || ev.Seq != w.latestSeq
		w.mu.Unlock()
		if stale {
			return // overtaken by a later event, result discarded
		}

		w.deliver(Snapshot{Seq: ev.Seq, Session: sess, Err: err})
	}()
}

func (w *Watcher) deliver(s Snapshot) {
	w.mu.Lock()
	fns := make([]func(Snapshot), 0, len(w.subs))
	for i := 0; i < w.nextID; i++ {
		if fn, ok := w.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Subscribe registers a snapshot consumer and returns a cancel func.
func (w *Watcher) Subscribe(fn func(Snapshot)) (cancel func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.subs[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Close tears down the feed subscription and drops all consumers.
func (w *Watcher) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.subs = map[int]func(Snapshot){}
	w.mu.Unlock()

	w.unsub()
	w.cancel()
}
