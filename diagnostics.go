package signalcore

//
// Diagnostics
//
// Two small, optional pieces of telemetry layered on top of the core
// pipeline, neither of which the pipeline depends on to function:
//
//   - SignalQuality summarizes jitter in the low-pulse duration that
//     spec.md Â§3 marks as "diagnostic" on every BitSymbol.
//   - FloodSuppressedLogger rate-limits repeated warnings (queue-full
//     under a pulse storm, spec.md Â§8) so a storm doesn't flood the log
//     sink; the underlying counters are never throttled, only the log line.
//

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/time/rate"
)

// signalQualityWindow bounds how many recent low-pulse samples feed into
// a SignalQuality snapshot.
const signalQualityWindow = 256

// SignalQuality is a snapshot of recent symbol timing jitter.
type SignalQuality struct {
	Samples       int
	MeanLowMicros float64
	StdDevMicros  float64
	P95LowMicros  float64
}

// SignalQualityMonitor accumulates recent BitSymbol.LowPulseMicros values
// and computes summary statistics on demand.
type SignalQualityMonitor struct {
	mu      sync.Mutex
	samples []float64
	next    int
	filled  bool
}

// NewSignalQualityMonitor creates an empty monitor.
func NewSignalQualityMonitor() *SignalQualityMonitor {
	return &SignalQualityMonitor{samples: make([]float64, signalQualityWindow)}
}

// Observe records one symbol's low-pulse duration. Safe for concurrent use,
// though in practice only the pulse->bit task calls it.
func (m *SignalQualityMonitor) Observe(lowMicros uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples[m.next] = float64(lowMicros)
	m.next = (m.next + 1) % len(m.samples)
	if m.next == 0 {
		m.filled = true
	}
}

// Snapshot computes mean, population standard deviation, and the 95th
// percentile over the recorded window. It returns the zero SignalQuality
// if no samples have been recorded yet.
func (m *SignalQualityMonitor) Snapshot() SignalQuality {
	m.mu.Lock()
	data := make([]float64, len(m.samples))
	copy(data, m.samples)
	filled := m.filled
	next := m.next
	m.mu.Unlock()

	n := next
	if filled {
		n = len(data)
	}
	if n == 0 {
		return SignalQuality{}
	}
	data = data[:n]

	mean, _ := stats.Mean(data)
	stddev, _ := stats.StandardDeviation(data)
	p95, _ := stats.Percentile(data, 95)

	return SignalQuality{
		Samples:       n,
		MeanLowMicros: mean,
		StdDevMicros:  stddev,
		P95LowMicros:  p95,
	}
}

// FloodSuppressedLogger wraps a Logger and rate-limits Warn/Warnf so a
// sustained pulse storm's repeated queue-full warnings don't flood the
// sink. Debug and Info calls pass through untouched.
type FloodSuppressedLogger struct {
	inner   Logger
	limiter *rate.Limiter
}

// NewFloodSuppressedLogger wraps inner, allowing at most one Warn/Warnf
// call through every interval (burst size 1).
func NewFloodSuppressedLogger(inner Logger, interval time.Duration) *FloodSuppressedLogger {
	return &FloodSuppressedLogger{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (l *FloodSuppressedLogger) Debugf(format string, v ...any) { l.inner.Debugf(format, v...) }
func (l *FloodSuppressedLogger) Debug(message string)           { l.inner.Debug(message) }
func (l *FloodSuppressedLogger) Infof(format string, v ...any)  { l.inner.Infof(format, v...) }
func (l *FloodSuppressedLogger) Info(message string)            { l.inner.Info(message) }

func (l *FloodSuppressedLogger) Warnf(format string, v ...any) {
	if l.limiter.Allow() {
		l.inner.Warnf(format, v...)
	}
}

func (l *FloodSuppressedLogger) Warn(message string) {
	if l.limiter.Allow() {
		l.inner.Warn(message)
	}
}

var _ Logger = &FloodSuppressedLogger{}
