package signalcore

//
// Decoder: wires edge capture, the pulse->bit and bit->packet tasks, and
// (for a bridge decoder) the Override actor, into one long-lived pipeline
// per physical line. See spec.md Â§2 and Â§3's queue-sizing invariants.
//

import (
	"context"
	"sync"
	"time"
)

// MaxPacketsInQueue bounds how many in-flight packets the pipeline buffers
// between stages; see spec.md Â§3's invariants for how the other two
// queues are sized off of it.
const MaxPacketsInQueue = 3

// Config holds the per-line construction parameters from spec.md Â§6.
type Config struct {
	// InvertIn XORs every sampled input level.
	InvertIn bool

	// InvertOut XORs every value written to the output pin. Ignored for
	// an observer decoder.
	InvertOut bool

	// Gap is the inter-packet window an override may align to. The zero
	// value is replaced with DefaultGapWindow.
	Gap GapWindow

	// DeliveryBuffer sizes the consumer-facing TaggedPacket channel.
	// Zero selects a small default.
	DeliveryBuffer int

	// WarnFloodInterval throttles repeated queue-full warnings to at most
	// one per interval. Zero selects a 1-second default.
	WarnFloodInterval time.Duration
}

func (c Config) gapOrDefault() GapWindow {
	if c.Gap == (GapWindow{}) {
		return DefaultGapWindow
	}
	return c.Gap
}

func (c Config) deliveryBufferOrDefault() int {
	if c.DeliveryBuffer > 0 {
		return c.DeliveryBuffer
	}
	return MaxPacketsInQueue
}

func (c Config) warnFloodIntervalOrDefault() time.Duration {
	if c.WarnFloodInterval > 0 {
		return c.WarnFloodInterval
	}
	return time.Second
}

// Counters exposes the per-stage error counters named in spec.md Â§4.6.
type Counters struct {
	PulseHandlerErrors uint32
	BitTaskErrors      uint32
	PacketTaskErrors   uint32
}

// Decoder runs the five-stage pipeline for one physical line. Construct
// with NewObserverDecoder (RX, read-only) or NewBridgeDecoder (TX, able
// to proxy and override). The zero value is invalid.
type Decoder struct {
	side LineSide

	pulseQ  *boundedQueue[PulseSample]
	bitQ    *boundedQueue[BitSymbol]
	packetQ *boundedQueue[Frame]

	edge edgeCapture

	override *Override // nil for an observer decoder

	logger Logger
	clock  monotonicClock

	edgeCounters  edgeCaptureCounters
	pulseCounters pulseToBitCounters
	frameCounters bitToFrameCounters
	quality       *SignalQualityMonitor

	delivery chan TaggedPacket

	wg sync.WaitGroup
}

func newDecoder(side LineSide, cfg Config, writer PinWriter, override *Override, logger Logger) *Decoder {
	const pulseCapacity = MaxPacketsInQueue * BitsInFrame * 2
	const bitCapacity = MaxPacketsInQueue * BitsInFrame
	const packetCapacity = MaxPacketsInQueue

	d := &Decoder{
		side:     side,
		pulseQ:   newBoundedQueue[PulseSample](pulseCapacity),
		bitQ:     newBoundedQueue[BitSymbol](bitCapacity),
		packetQ:  newBoundedQueue[Frame](packetCapacity),
		override: override,
		logger:   NewFloodSuppressedLogger(logger, cfg.warnFloodIntervalOrDefault()),
		clock:    newRealClock(),
		quality:  NewSignalQualityMonitor(),
		delivery: make(chan TaggedPacket, cfg.deliveryBufferOrDefault()),
		edge: edgeCapture{
			invertIn:  cfg.InvertIn,
			invertOut: cfg.InvertOut,
			gap:       cfg.gapOrDefault(),
			writer:    writer,
			override:  override,
		},
	}
	return d
}

// NewObserverDecoder constructs a read-only Decoder for a line that is
// only ever watched (the heater's RX line).
func NewObserverDecoder(cfg Config, logger Logger) *Decoder {
	return newDecoder(SideRemote, cfg, nil, nil, logger)
}

// NewBridgeDecoder constructs a Decoder for the panel-facing TX line: it
// proxies the input to writer while idle and owns an Override actor that
// can substitute a replacement frame during a detected inter-packet gap.
func NewBridgeDecoder(cfg Config, writer PinWriter, logger Logger) *Decoder {
	override := newOverride(writer, cfg.InvertOut, time.Duration(cfg.gapOrDefault().MaxMicros-cfg.gapOrDefault().MinMicros)*time.Microsecond, logger)
	return newDecoder(SideLocal, cfg, writer, override, logger)
}

// Start launches the edge-capture, pulse, frame, delivery, and (for a
// bridge decoder) override goroutines. reader is the hardware edge
// source; Start returns immediately and the pipeline runs until ctx is
// canceled and reader's Edges channel is closed.
func (d *Decoder) Start(ctx context.Context, reader PinReader) {
	edges := reader.Edges()
	if d.override != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.override.run(ctx)
		}()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.edge.run(edges, d.pulseQ, d.logger, &d.edgeCounters)
		d.pulseQ.close()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		pulseToBitTask(d.pulseQ.receive(), d.bitQ, d.logger, &d.pulseCounters, d.quality)
		d.bitQ.close()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		bitToFrameTask(d.bitQ.receive(), d.packetQ, d.logger, d.clock, &d.frameCounters)
		d.packetQ.close()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		deliverFrames(d.side, d.packetQ, d.delivery, d.logger)
	}()
}

// Wait blocks until every goroutine started by Start has returned. Call
// after canceling the context passed to Start and closing the edge
// source.
func (d *Decoder) Wait() {
	d.wg.Wait()
}

// Packets returns the channel of classified, source-tagged packets. It is
// closed once the underlying pipeline has fully drained after shutdown.
func (d *Decoder) Packets() <-chan TaggedPacket {
	return d.delivery
}

// SetOverridePacket requests a one-shot replacement frame on this
// decoder's output pin. It is only meaningful for a bridge decoder;
// calling it on an observer decoder always returns ErrOverrideMisarm.
func (d *Decoder) SetOverridePacket(ctx context.Context, data []byte) error {
	if d.override == nil {
		return ErrOverrideMisarm
	}
	return d.override.SetOverridePacket(ctx, data)
}

// SignalQuality returns a snapshot of recent symbol timing jitter.
func (d *Decoder) SignalQuality() SignalQuality {
	return d.quality.Snapshot()
}

// Counters returns a snapshot of the per-stage error counters.
func (d *Decoder) Counters() Counters {
	return Counters{
		PulseHandlerErrors: d.edgeCounters.pulseQueueFull.load(),
		BitTaskErrors:      d.pulseCounters.unexpectedPolarity.load() + d.pulseCounters.bitQueueFull.load(),
		PacketTaskErrors:   d.frameCounters.symbolError.load() + d.frameCounters.frameQueueFull.load(),
	}
}
