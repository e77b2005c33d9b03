package signalcore

import (
	"testing"
	"time"
)

func TestSignalQualityMonitorSnapshotEmpty(t *testing.T) {
	m := NewSignalQualityMonitor()
	got := m.Snapshot()
	if got.Samples != 0 {
		t.Fatalf("Samples = %d, want 0", got.Samples)
	}
}

func TestSignalQualityMonitorSnapshotMean(t *testing.T) {
	m := NewSignalQualityMonitor()
	for _, v := range []uint32{100, 200, 300} {
		m.Observe(v)
	}
	got := m.Snapshot()
	if got.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", got.Samples)
	}
	if got.MeanLowMicros != 200 {
		t.Fatalf("MeanLowMicros = %v, want 200", got.MeanLowMicros)
	}
}

type countingLogger struct {
	warns int
}

func (*countingLogger) Debugf(format string, v ...any) {}
func (*countingLogger) Debug(message string)           {}
func (*countingLogger) Infof(format string, v ...any)  {}
func (*countingLogger) Info(message string)            {}
func (l *countingLogger) Warnf(format string, v ...any) { l.warns++ }
func (l *countingLogger) Warn(message string)           { l.warns++ }

func TestFloodSuppressedLoggerThrottlesWarnings(t *testing.T) {
	inner := &countingLogger{}
	logger := NewFloodSuppressedLogger(inner, 50*time.Millisecond)

	for i := 0; i < 5; i++ {
		logger.Warn("queue full")
	}
	if inner.warns != 1 {
		t.Fatalf("warns = %d, want 1 (burst of 1, rest suppressed)", inner.warns)
	}

	time.Sleep(60 * time.Millisecond)
	logger.Warn("queue full again")
	if inner.warns != 2 {
		t.Fatalf("warns = %d, want 2 after the interval elapsed", inner.warns)
	}
}
