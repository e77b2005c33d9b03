package signalcore

//
// Synthetic waveform encoding
//
// EncodeFrame is the inverse of the pulse->bit and bit->frame tasks
// combined: given a 6-byte frame it produces the ordered PulseSample
// edges a real transmitter would put on the wire. It shares its timing
// constants with the Override actor's bit-bang waveform (override.go)
// since both describe the same wire format from opposite ends. Used by
// this package's own tests and by cmd/simulate to manufacture edge
// streams without real hardware.
//

// preambleHighMicros is a duration strictly between T and 2T, matching
// isPreamble's bound.
const preambleHighMicros = SymbolDurationMicros * 3 / 2

// EncodeFrame returns the edges for one preamble-prefixed frame starting
// at startCycles, and the cycle value of the last (falling) edge.
func EncodeFrame(data [FrameSizeBytes]byte, startCycles uint32) ([]PulseSample, uint32) {
	cur := startCycles
	var edges []PulseSample

	edges = append(edges, PulseSample{Level: High, CyclesNow: cur})
	cur += preambleHighMicros
	edges = append(edges, PulseSample{Level: Low, CyclesNow: cur})

	for bytePos := 0; bytePos < FrameSizeBytes; bytePos++ {
		b := data[bytePos]
		for bit := 0; bit < 8; bit++ {
			one := b&(1<<uint(bit)) != 0

			var lowMicros, highMicros uint32
			if one {
				lowMicros, highMicros = uint32(shortPulse.Microseconds()), uint32(longPulse.Microseconds())
			} else {
				lowMicros, highMicros = uint32(longPulse.Microseconds()), uint32(shortPulse.Microseconds())
			}

			cur += lowMicros
			edges = append(edges, PulseSample{Level: High, CyclesNow: cur})
			cur += highMicros
			edges = append(edges, PulseSample{Level: Low, CyclesNow: cur})
		}
	}

	return edges, cur
}
