package signalcore

//
// Edge capture
//
// The Go analogue of spec.md Â§4.1's interrupt-context handler: a
// dedicated goroutine that does the minimum possible work per edge and
// never blocks. On a real host there is no portable way to run Go code in
// actual interrupt context, so the edge source (package gpio) delivers
// edges over a small channel fed by its own blocking read loop on the
// kernel's line-event file descriptor, and this
// goroutine is the first and only consumer of that channel - the same
// single-producer/single-consumer discipline the spec requires of every
// stage boundary.
//

// GapWindow bounds the inter-packet idle an override may align to.
// Defaults match spec.md Â§4.1 (160-180ms) but are exposed as a tunable
// per spec.md Â§9 ("empirically observed, not specified").
type GapWindow struct {
	MinMicros uint32
	MaxMicros uint32
}

// DefaultGapWindow is the empirically observed inter-packet idle.
var DefaultGapWindow = GapWindow{MinMicros: 160_000, MaxMicros: 180_000}

// edgeCaptureCounters are the error counters this stage maintains.
type edgeCaptureCounters struct {
	pulseQueueFull counter
}

// edgeCapture runs the edge-capture loop for one line. writer and
// override are nil for an observer-only decoder (the RX line); both are
// non-nil for a bridge decoder (the TX line).
type edgeCapture struct {
	invertIn  bool
	invertOut bool
	gap       GapWindow

	writer   PinWriter // nil unless this line proxies
	override *Override // nil unless this line can be overridden

	lastEdgeCycles uint32
	haveLastEdge   bool
}

// handle processes a single captured edge. It is the only place that
// touches lastEdgeCycles, and it updates it after the gap check but
// before the sample is handed to pulseQ, per spec.md Â§4.1's ordering
// guarantee.
func (e *edgeCapture) handle(raw PulseSample, pulseQ *boundedQueue[PulseSample], logger Logger, counters *edgeCaptureCounters) {
	level := raw.Level
	if e.invertIn {
		level ^= 1
	}

	if e.writer != nil && e.override != nil && !e.override.inFlight.Load() {
		out := level
		if e.invertOut {
			out ^= 1
		}
		e.writer.Set(out)
	}

	if e.override != nil && level == High && e.override.armedAndIdle() {
		if e.haveLastEdge {
			delta := raw.CyclesNow - e.lastEdgeCycles
			if delta > e.gap.MinMicros && delta < e.gap.MaxMicros {
				e.override.release()
			}
		}
	}

	e.lastEdgeCycles = raw.CyclesNow
	e.haveLastEdge = true

	sample := PulseSample{Level: level, CyclesNow: raw.CyclesNow}
	if !pulseQ.trySend(sample) {
		counters.pulseQueueFull.add(1)
		logger.Warnf("signalcore: pulseQ full, dropped sample")
	}
}

// run drains the edge source until it closes or ctx-equivalent shutdown
// happens via the channel closing (callers close the PinReader's
// underlying source to stop this loop).
func (e *edgeCapture) run(edges <-chan PulseSample, pulseQ *boundedQueue[PulseSample], logger Logger, counters *edgeCaptureCounters) {
	for raw := range edges {
		e.handle(raw, pulseQ, logger, counters)
	}
}
