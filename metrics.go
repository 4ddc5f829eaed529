package filemap

import "sync/atomic"

type counters struct {
	events         atomic.Uint64
	inserts        atomic.Uint64
	updates        atomic.Uint64
	removes        atomic.Uint64
	suppressed     atomic.Uint64
	skipped        atomic.Uint64
	overflows      atomic.Uint64
	errors         atomic.Uint64
	listenerPanics atomic.Uint64
}

// Metrics is a snapshot of watch-loop activity.
type Metrics struct {
	// EventsSeen counts raw filesystem events, including ignored ones.
	EventsSeen uint64
	// Inserts, Updates and Removes count dispatched notifications.
	Inserts uint64
	Updates uint64
	Removes uint64
	// Suppressed counts changes dropped because content was unchanged.
	Suppressed uint64
	// Skipped counts events whose file vanished before it could be read.
	Skipped uint64
	// Overflows counts kernel event-queue overflows. Changes may have been
	// missed while the queue was full.
	Overflows uint64
	// Errors counts unexpected watch and read failures.
	Errors uint64
	// ListenerPanics counts panics recovered from listener callbacks.
	ListenerPanics uint64
}

// Metrics reports current watch-loop stats.
func (m *Map[V]) Metrics() Metrics {
	return Metrics{
		EventsSeen:     m.counters.events.Load(),
		Inserts:        m.counters.inserts.Load(),
		Updates:        m.counters.updates.Load(),
		Removes:        m.counters.removes.Load(),
		Suppressed:     m.counters.suppressed.Load(),
		Skipped:        m.counters.skipped.Load(),
		Overflows:      m.counters.overflows.Load(),
		Errors:         m.counters.errors.Load(),
		ListenerPanics: m.counters.listenerPanics.Load(),
	}
}
