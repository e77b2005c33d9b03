package signalcore

//
// Bit -> packet (frame) task
//
// Accumulates 48 bit-symbols into a 6-byte Frame, checks per-byte odd
// parity and the XOR checksum, and publishes one Frame per full
// accumulation. See spec.md Â§4.3.
//

// bitToFrameCounters are the error counters this task maintains.
type bitToFrameCounters struct {
	symbolError    counter
	frameQueueFull counter
}

// frameAccumulator is the mutable state the bit-to-packet task folds
// symbols into. The zero value is an empty, invalid accumulator, which is
// exactly the state continued bit arrival without a preamble should
// observe.
type frameAccumulator struct {
	data          [FrameSizeBytes]byte
	bitsPresent   uint8
	startCycles   uint32
	startMicros   uint64
	startMillis   uint64
	validPreamble bool
}

func (a *frameAccumulator) resetOnPreamble(startCycles uint32, clock monotonicClock) {
	*a = frameAccumulator{
		startCycles:   startCycles,
		startMicros:   clock.nowMicros(),
		startMillis:   clock.nowMillis(),
		validPreamble: true,
	}
}

func (a *frameAccumulator) resetInvalid() {
	*a = frameAccumulator{}
}

func (a *frameAccumulator) addBit(one bool) {
	if one {
		a.data[a.bitsPresent/8] |= 1 << (a.bitsPresent % 8)
	}
	a.bitsPresent++
}

func (a *frameAccumulator) full() bool {
	return a.bitsPresent == BitsInFrame
}

// toFrame finalizes the accumulator into a published Frame, computing the
// parity and checksum validation flags over the accumulated bytes.
func (a *frameAccumulator) toFrame() Frame {
	validParity := true
	for i := 0; i < FrameSizeBytes-1; i++ {
		if !oddParity(a.data[i]) {
			validParity = false
			break
		}
	}
	return Frame{
		Data:          a.data,
		StartCycles:   a.startCycles,
		StartMicros:   a.startMicros,
		StartMillis:   a.startMillis,
		BitsPresent:   a.bitsPresent,
		ValidPreamble: a.validPreamble,
		ValidParity:   validParity,
		ValidChecksum: checksumOK(a.data),
	}
}

// bitToFrameTask consumes bitQ and publishes completed Frames to packetQ.
func bitToFrameTask(symbols <-chan BitSymbol, packetQ *boundedQueue[Frame], logger Logger, clock monotonicClock, counters *bitToFrameCounters) {
	acc := &frameAccumulator{}

	for symbol := range symbols {
		switch symbol.Kind {
		case BitZero:
			acc.addBit(false)
		case BitOne:
			acc.addBit(true)
		case BitPreamble:
			acc.resetOnPreamble(symbol.StartCycles, clock)
			continue
		default: // BitError or anything unrecognized
			counters.symbolError.add(1)
			acc.resetInvalid()
			continue
		}

		if acc.full() {
			frame := acc.toFrame()
			if !packetQ.trySend(frame) {
				counters.frameQueueFull.add(1)
				logger.Warnf("signalcore: packetQ full, dropped frame")
			}
			acc.resetInvalid()
		}
	}
}
