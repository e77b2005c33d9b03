package signalcore

import "testing"

func TestClassifySymbol(t *testing.T) {
	cases := []struct {
		name              string
		lowMicros, highMicros uint32
		want              BitKind
	}{
		{"zero", 450, 150, BitZero},
		{"one", 150, 450, BitOne},
		{"preamble", 0, 900, BitPreamble},
		{"error-too-even", 300, 300, BitError},
		{"preamble-just-above-lower-bound", 0, SymbolDurationMicros + 1, BitPreamble},
		{"not-quite-preamble", 0, SymbolDurationMicros, BitError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := classifySymbol(c.lowMicros, c.highMicros); got != c.want {
				t.Errorf("classifySymbol(%d,%d) = %v, want %v", c.lowMicros, c.highMicros, got, c.want)
			}
		})
	}
}

func TestIsPreambleBound(t *testing.T) {
	if isPreamble(SymbolDurationMicros) {
		t.Error("isPreamble(T) = true, want false (exclusive lower bound)")
	}
	if !isPreamble(SymbolDurationMicros + 1) {
		t.Error("isPreamble(T+1) = false, want true")
	}
	if isPreamble(2 * SymbolDurationMicros) {
		t.Error("isPreamble(2T) = true, want false (exclusive upper bound)")
	}
}

func TestPulseToBitTaskRealignsOnRepeatedPolarity(t *testing.T) {
	pulses := make(chan PulseSample, 8)
	bitQ := newBoundedQueue[BitSymbol](8)
	var counters pulseToBitCounters

	// Two rising edges in a row, then a lone falling edge: the task
	// discards mismatched pairs two at a time via its polarity check
	// before recovering on the next properly alternating pair.
	pulses <- PulseSample{Level: High, CyclesNow: 1000}
	pulses <- PulseSample{Level: High, CyclesNow: 2000}
	pulses <- PulseSample{Level: Low, CyclesNow: 2900}
	pulses <- PulseSample{Level: High, CyclesNow: 3000}
	pulses <- PulseSample{Level: Low, CyclesNow: 3900} // highMicros=900 -> preamble
	close(pulses)

	pulseToBitTask(pulses, bitQ, NullLogger{}, &counters, nil)
	bitQ.close()

	if got := counters.unexpectedPolarity.load(); got != 2 {
		t.Fatalf("unexpectedPolarity = %d, want 2", got)
	}

	var got []BitSymbol
	for s := range bitQ.receive() {
		got = append(got, s)
	}
	if len(got) != 1 || got[0].Kind != BitPreamble {
		t.Fatalf("bitQ drained %+v, want one BitPreamble symbol", got)
	}
}

func TestPulseToBitTaskDropsOnFullQueue(t *testing.T) {
	pulses := make(chan PulseSample, 8)
	bitQ := newBoundedQueue[BitSymbol](0) // zero-capacity: every send drops
	var counters pulseToBitCounters

	pulses <- PulseSample{Level: High, CyclesNow: 0}
	pulses <- PulseSample{Level: Low, CyclesNow: 900}
	close(pulses)

	pulseToBitTask(pulses, bitQ, NullLogger{}, &counters, nil)

	if got := counters.bitQueueFull.load(); got != 1 {
		t.Fatalf("bitQueueFull = %d, want 1", got)
	}
}
