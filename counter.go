package signalcore

import "sync/atomic"

// counter is a monotonically increasing error/event counter, safe to
// increment from any goroutine and to read concurrently for telemetry.
type counter struct {
	value atomic.Uint32
}

func (c *counter) add(n uint32) {
	c.value.Add(n)
}

func (c *counter) load() uint32 {
	return c.value.Load()
}
