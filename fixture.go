package signalcore

//
// In-memory PinReader/PinWriter fixtures, for tests and cmd/simulate.
// Neither touches real hardware; both are goroutine-safe for the single-
// producer/single-consumer pattern the rest of this package assumes.
//

import "sync"

// ChannelPinReader delivers a pre-recorded or externally-fed sequence of
// edges to a Decoder, playing the part of package gpio's InputLine.
type ChannelPinReader struct {
	edges chan PulseSample
}

// NewChannelPinReader creates a reader with the given buffer capacity.
func NewChannelPinReader(capacity int) *ChannelPinReader {
	return &ChannelPinReader{edges: make(chan PulseSample, capacity)}
}

// Edges implements PinReader.
func (r *ChannelPinReader) Edges() <-chan PulseSample {
	return r.edges
}

// Push enqueues one edge. It blocks if the reader's buffer is full,
// unlike the real pipeline's queues, since a test driving this directly
// controls its own pacing.
func (r *ChannelPinReader) Push(sample PulseSample) {
	r.edges <- sample
}

// Close stops delivery; Edges' channel is closed once any buffered edges
// have been drained by the consumer.
func (r *ChannelPinReader) Close() {
	close(r.edges)
}

// RecordingPinWriter captures every level this package writes to an
// output pin, for assertions in tests.
type RecordingPinWriter struct {
	mu      sync.Mutex
	history []PinLevel
}

// NewRecordingPinWriter creates an empty recorder.
func NewRecordingPinWriter() *RecordingPinWriter {
	return &RecordingPinWriter{}
}

// Set implements PinWriter.
func (w *RecordingPinWriter) Set(level PinLevel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.history = append(w.history, level)
}

// History returns a copy of every level written so far, in order.
func (w *RecordingPinWriter) History() []PinLevel {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]PinLevel, len(w.history))
	copy(out, w.history)
	return out
}

// NullLogger discards every message. Used where a test needs a Logger
// but doesn't care what it logs.
type NullLogger struct{}

func (NullLogger) Debugf(format string, v ...any) {}
func (NullLogger) Debug(message string)           {}
func (NullLogger) Infof(format string, v ...any)  {}
func (NullLogger) Info(message string)            {}
func (NullLogger) Warnf(format string, v ...any)  {}
func (NullLogger) Warn(message string)            {}

var _ Logger = NullLogger{}
