// Package progress implements the progress sink the indexer reports
// through: a rate-limited snapshot stream consumed by an external
// collaborator (CLI, IPC handler, desktop shell).
package progress

import (
	"sync"
	"time"
)

// Phase names an index_root lifecycle stage.
type Phase string

const (
	PhaseDiscovering Phase = "discovering"
	PhaseIndexing    Phase = "indexing"
	PhaseCleaning    Phase = "cleaning"
	PhaseComplete    Phase = "complete"
)

// Snapshot is one point-in-time report of index_root progress.
type Snapshot struct {
	Phase       Phase
	Discovered  int
	Changed     int
	Processed   int
	Updated     int
	Skipped     int
	Removed     int
	Elapsed     time.Duration
	CurrentFile string
}

// Sink receives progress snapshots. Implementations must not block the
// caller for long; the emitter already rate-limits on the producer
// side.
type Sink interface {
	Report(Snapshot)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Snapshot)

func (f SinkFunc) Report(s Snapshot) { f(s) }

// NopSink discards every snapshot.
var NopSink Sink = SinkFunc(func(Snapshot) {})

const minInterval = 120 * time.Millisecond

// Emitter rate-limits snapshots to at most once per 120ms, except at
// phase transitions which are always forced through, per spec §4.E.
type Emitter struct {
	sink Sink

	mu          sync.Mutex
	lastPhase   Phase
	lastEmitAt  time.Time
	everEmitted bool
}

// NewEmitter wraps sink with the indexer's rate-limiting policy. A nil
// sink is replaced with NopSink.
func NewEmitter(sink Sink) *Emitter {
	if sink == nil {
		sink = NopSink
	}
	return &Emitter{sink: sink}
}

// Emit reports s, forcing the report through if it crosses a phase
// boundary or if the minimum interval has elapsed since the last
// report; otherwise it is dropped silently the way a backpressured
// subscriber drops events.
func (e *Emitter) Emit(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	forced := !e.everEmitted || s.Phase != e.lastPhase
	if !forced && time.Since(e.lastEmitAt) < minInterval {
		return
	}

	e.everEmitted = true
	e.lastPhase = s.Phase
	e.lastEmitAt = time.Now()
	e.sink.Report(s)
}

// Force reports s unconditionally, bypassing the rate limit. Used for
// the final "complete" snapshot so callers never miss it.
func (e *Emitter) Force(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.everEmitted = true
	e.lastPhase = s.Phase
	e.lastEmitAt = time.Now()
	e.sink.Report(s)
}
