package guard

import (
	"github.com/gin-gonic/gin"

	"startosedge/internal/sessionstate"
)

// String names the state for wire encodings and logs.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateGranted:
		return "granted"
	case StateRedirect:
		return "redirect"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Stream serves live guard decisions over server-sent events. Each
// connected client gets its own Gate against the process-wide snapshot
// stream, so pages follow sign-ins and sign-outs without polling.
type Stream struct {
	watcher *sessionstate.Watcher
}

func NewStream(w *sessionstate.Watcher) *Stream {
	return &Stream{watcher: w}
}

func (s *Stream) Register(g *gin.RouterGroup) {
	g.GET("/session/events", s.events)
}

func (s *Stream) events(c *gin.Context) {
	path := c.DefaultQuery("path", "/dashboard")

	ch := make(chan Decision, 8)
	gate := NewGate(s.watcher, path, func(d Decision) {
		select {
		case ch <- d:
		default:
			// Slow client: drop, the next transition supersedes this one.
		}
	})
	defer gate.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	// The current decision first, then every transition.
	c.SSEvent("decision", decisionView(gate.Decision()))
	c.Writer.Flush()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case d := <-ch:
			c.SSEvent("decision", decisionView(d))
			c.Writer.Flush()
		}
	}
}

func decisionView(d Decision) gin.H {
	v := gin.H{"state": d.State.String()}
	if d.State == StateRedirect {
		v["target"] = d.Target
		v["reason"] = d.Reason
	}
	return v
}
