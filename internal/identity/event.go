package identity

import "sync"

// EventKind discriminates authentication-state changes.
type EventKind int

const (
	SignedOut EventKind = iota
	SignedIn
)

// Event is a single authentication-state change. Seq is assigned by the
// Feed and increases monotonically; consumers use it to discard results
// of resolutions that were overtaken by a later event.
type Event struct {
	Seq       uint64
	Kind      EventKind
	Identity  Identity // zero value when Kind == SignedOut
	SessionID string   // provider session that produced the event, if any
}

// Feed is the process-wide stream of authentication-state changes.
// Sign-in and sign-out handlers publish into it; the session resolver
// holds the single long-lived subscription.
type Feed struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]func(Event)
	closed bool
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]func(Event))}
}

// Publish assigns the next sequence number and delivers the event to all
// subscribers in subscription order. It returns the stamped event.
func (f *Feed) Publish(kind EventKind, id Identity, sessionID string) Event {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Event{}
	}
	f.seq++
	ev := Event{
		Seq:       f.seq,
		Kind:      kind,
		Identity:  id,
		SessionID: sessionID,
	}
	subs := make([]func(Event), 0, len(f.subs))
	for i := 0; i < f.nextID; i++ {
		if fn, ok := f.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return ev
}

// Subscribe registers a callback for future events and returns a cancel
// function. Events published before Subscribe are not replayed.
func (f *Feed) Subscribe(fn func(Event)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.subs[id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Close drops all subscriptions. Further publishes are no-ops.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.subs = map[int]func(Event){}
}
