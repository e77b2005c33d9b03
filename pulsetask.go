package signalcore

//
// Pulse -> bit task
//
// Consumes (low, high) edge pairs from a pulse queue and classifies each
// pair as ZERO, ONE, PREAMBLE, or ERROR by duty cycle against a fixed
// symbol table. See spec.md Â§4.2.
//

// SymbolDurationMicros is the nominal duration T of one bit-symbol period.
const SymbolDurationMicros = 600

// symbolWindow is a [lowMin,lowMax] / [highMin,highMax] pair of
// microsecond ranges that a (low, high) pulse pair must fall in.
type symbolWindow struct {
	lowMin, lowMax   uint32
	highMin, highMax uint32
}

func window(lowFrac, highFrac [2]float64) symbolWindow {
	const t = SymbolDurationMicros
	return symbolWindow{
		lowMin:  uint32(lowFrac[0] * t),
		lowMax:  uint32(lowFrac[1] * t),
		highMin: uint32(highFrac[0] * t),
		highMax: uint32(highFrac[1] * t),
	}
}

var (
	zeroWindow = window([2]float64{0.65, 0.85}, [2]float64{0.15, 0.35})
	oneWindow  = window([2]float64{0.15, 0.35}, [2]float64{0.65, 0.85})
)

func (w symbolWindow) matches(lowMicros, highMicros uint32) bool {
	return lowMicros >= w.lowMin && lowMicros <= w.lowMax &&
		highMicros >= w.highMin && highMicros <= w.highMax
}

// isPreamble implements the intended bound from spec.md Â§9: a preamble is
// an oversized high pulse strictly between T and 2T. The original C++'s
// second clause (`SYMBOL_DURATION_US < SYMBOL_DURATION_US*2`) was a
// tautology; this is the fix, not a reproduction of the bug.
func isPreamble(highMicros uint32) bool {
	return highMicros > SymbolDurationMicros && highMicros < 2*SymbolDurationMicros
}

// classifySymbol turns one (low, high) pulse pair into a BitKind.
func classifySymbol(lowMicros, highMicros uint32) BitKind {
	if isPreamble(highMicros) {
		return BitPreamble
	}
	switch {
	case zeroWindow.matches(lowMicros, highMicros):
		return BitZero
	case oneWindow.matches(lowMicros, highMicros):
		return BitOne
	default:
		return BitError
	}
}

// pulseToBitCounters are the error counters this task maintains.
type pulseToBitCounters struct {
	unexpectedPolarity counter
	bitQueueFull       counter
}

// pulseToBitTask consumes pulseQ and publishes BitSymbol values to bitQ.
// It blocks indefinitely on the queue receive, per spec.md Â§5, realigning
// on the next rising edge whenever it sees two edges of the same polarity
// in a row instead of an alternating low/high pair.
func pulseToBitTask(pulses <-chan PulseSample, bitQ *boundedQueue[BitSymbol], logger Logger, counters *pulseToBitCounters, quality *SignalQualityMonitor) {
	var lastEndCycle uint32
	haveLastEnd := false

	for {
		rising, ok := <-pulses
		if !ok {
			return
		}
		if rising.Level != High {
			counters.unexpectedPolarity.add(1)
			continue
		}

		falling, ok := <-pulses
		if !ok {
			return
		}
		if falling.Level != Low {
			counters.unexpectedPolarity.add(1)
			continue
		}

		risingCycle := rising.CyclesNow
		fallingCycle := falling.CyclesNow

		var lowMicros uint32
		if haveLastEnd {
			lowMicros = risingCycle - lastEndCycle
		}
		highMicros := fallingCycle - risingCycle
		startOfLow := lastEndCycle
		lastEndCycle = fallingCycle
		haveLastEnd = true

		kind := classifySymbol(lowMicros, highMicros)

		symbol := BitSymbol{Kind: kind, LowPulseMicros: lowMicros}
		if kind == BitPreamble {
			symbol.StartCycles = risingCycle
		} else {
			symbol.StartCycles = startOfLow
		}

		if quality != nil && (kind == BitZero || kind == BitOne) {
			quality.Observe(lowMicros)
		}

		if !bitQ.trySend(symbol) {
			counters.bitQueueFull.add(1)
			logger.Warnf("signalcore: bitQ full, dropped symbol kind=%d", kind)
		}
	}
}
