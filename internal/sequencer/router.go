package sequencer

import "sync"

// Router fans each trigger out to several sinks, so the synth engine and
// an optional MIDI sender can both follow the same step stream.
type Router struct {
	mu    sync.RWMutex
	sinks []TriggerSink
}

// NewRouter returns a router over the given sinks.
func NewRouter(sinks ...TriggerSink) *Router {
	return &Router{sinks: sinks}
}

// Add registers another sink. Safe to call while the scheduler runs.
func (r *Router) Add(s TriggerSink) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Trigger implements TriggerSink by forwarding to every registered sink
// in registration order.
func (r *Router) Trigger(track int, piece string, velocity float64) {
	r.mu.RLock()
	sinks := r.sinks
	r.mu.RUnlock()
	for _, s := range sinks {
		s.Trigger(track, piece, velocity)
	}
}
