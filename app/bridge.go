package app

//
// Bridge wires a heater (RX) decoder and a control (TX) bridge decoder to
// a Publisher and a CommandSource, the way spec.md Â§1 describes: "a thin
// application layer translates decoded packets to and from external
// messages so that a home-automation orchestrator can read temperature /
// on-off state and drive the heater to a target temperature."
//

import (
	"context"
	"time"

	"github.com/rinnai-gateway/signalcore"
)

// overrideArmTimeout bounds how long a single SetOverridePacket call
// waits for a prior override to clear before giving up for this cycle.
const overrideArmTimeout = 250 * time.Millisecond

// Bridge runs the translation between the core pipeline and an external
// Publisher/CommandSource pair. The zero value is invalid; use NewBridge.
type Bridge struct {
	heater  *signalcore.Decoder
	control *signalcore.Decoder

	publisher Publisher
	commands  CommandSource
	logger    signalcore.Logger

	state        HeaterState
	lastControl  [signalcore.FrameSizeBytes]byte
	haveControl  bool
	pendingTempC int
	haveTarget   bool
}

// NewBridge constructs a Bridge. heater observes the RX line; control is
// the TX bridge decoder that also owns the Override actor.
func NewBridge(heater, control *signalcore.Decoder, publisher Publisher, commands CommandSource, logger signalcore.Logger) *Bridge {
	return &Bridge{
		heater:    heater,
		control:   control,
		publisher: publisher,
		commands:  commands,
		logger:    logger,
	}
}

// Run consumes both decoders' packet streams and the command source until
// ctx is canceled. It is meant to run in its own goroutine.
func (b *Bridge) Run(ctx context.Context) {
	heaterPackets := b.heater.Packets()
	controlPackets := b.control.Packets()
	commands := b.commands.Commands()

	for {
		select {
		case <-ctx.Done():
			return

		case tagged, ok := <-heaterPackets:
			if !ok {
				heaterPackets = nil
				continue
			}
			if tagged.Packet.Kind != signalcore.KindHeater {
				continue
			}
			b.state = applyHeater(b.state, tagged.Packet.Heater, time.Now())
			b.publisher.PublishState(b.state)
			b.driveTemperatureTarget(ctx)

		case tagged, ok := <-controlPackets:
			if !ok {
				controlPackets = nil
				continue
			}
			if tagged.Packet.Kind != signalcore.KindControl {
				continue
			}
			b.lastControl = tagged.Packet.Raw.Data
			b.haveControl = true

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			b.handleCommand(ctx, cmd)
		}
	}
}

// handleCommand translates one external Command into an override request
// built from the last-observed control frame, per SPEC_FULL.md Â§6.
func (b *Bridge) handleCommand(ctx context.Context, cmd Command) {
	if !b.haveControl {
		b.logger.Warn("signalcore/app: command received before any control frame was observed, ignoring")
		return
	}

	switch c := cmd.(type) {
	case SetPowerCommand:
		if c.On == b.state.On {
			return
		}
		b.pressButton(ctx, signalcore.SetOnOffPressed)

	case PressPriorityCommand:
		b.pressButton(ctx, signalcore.SetPriorityPressed)

	case SetTemperatureCommand:
		target := clamp(c.Celsius, signalcore.TempCMin, signalcore.TempCMax)
		b.pendingTempC = target
		b.haveTarget = true
		b.driveTemperatureTarget(ctx)
	}
}

// driveTemperatureTarget presses Up or Down once if the known state is
// not yet at the pending target. It is called again every time a new
// Heater frame arrives, so it naturally steps one button press per
// confirmed state update instead of flooding overrides - the debounce
// supplemented from original_source/ (see SPEC_FULL.md Â§9).
func (b *Bridge) driveTemperatureTarget(ctx context.Context) {
	if !b.haveTarget || !b.state.Seen {
		return
	}
	switch {
	case b.state.TemperatureCelsius < b.pendingTempC:
		b.pressButton(ctx, signalcore.SetTemperatureUpPressed)
	case b.state.TemperatureCelsius > b.pendingTempC:
		b.pressButton(ctx, signalcore.SetTemperatureDownPressed)
	default:
		b.haveTarget = false
	}
}

// pressButton builds a replacement control frame from the last-observed
// one, applies mutator to it, and arms it as a one-shot override.
func (b *Bridge) pressButton(ctx context.Context, mutator func(*[signalcore.FrameSizeBytes]byte)) {
	frame := b.lastControl
	mutator(&frame)

	ctx, cancel := context.WithTimeout(ctx, overrideArmTimeout)
	defer cancel()

	if err := b.control.SetOverridePacket(ctx, frame[:]); err != nil {
		b.logger.Warnf("signalcore/app: SetOverridePacket: %s", err.Error())
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
