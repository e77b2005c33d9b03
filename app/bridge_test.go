package app

import (
	"context"
	"testing"
	"time"

	"github.com/rinnai-gateway/signalcore"
)

type fakePublisher struct {
	states []HeaterState
}

func (p *fakePublisher) PublishState(s HeaterState) {
	p.states = append(p.states, s)
}

type fakeCommandSource struct {
	ch chan Command
}

func (f *fakeCommandSource) Commands() <-chan Command { return f.ch }

func validControlFrame() [signalcore.FrameSizeBytes]byte {
	data := [signalcore.FrameSizeBytes]byte{0x00, 0x00, 0x00, 0x00, 0xBF, 0x00}
	signalcore.Reframe(&data)
	return data
}

func validHeaterFrame(tempCode byte) [signalcore.FrameSizeBytes]byte {
	data := [signalcore.FrameSizeBytes]byte{0x07, 0x00, 0x10 | tempCode, 0x00, 0x20, 0x00}
	signalcore.Reframe(&data)
	return data
}

func newTestBridge(t *testing.T) (*Bridge, *fakePublisher, *signalcore.Decoder) {
	t.Helper()
	writer := signalcore.NewRecordingPinWriter()
	control := signalcore.NewBridgeDecoder(signalcore.Config{}, writer, signalcore.NullLogger{})
	heater := signalcore.NewObserverDecoder(signalcore.Config{}, signalcore.NullLogger{})
	pub := &fakePublisher{}
	cmds := &fakeCommandSource{ch: make(chan Command, 4)}
	b := NewBridge(heater, control, pub, cmds, signalcore.NullLogger{})
	return b, pub, control
}

func TestHandleCommandIgnoredBeforeControlFrameObserved(t *testing.T) {
	b, _, control := newTestBridge(t)
	b.handleCommand(context.Background(), SetPowerCommand{On: true})

	if control.Counters() != (signalcore.Counters{}) {
		t.Fatalf("expected no side effects, got counters %+v", control.Counters())
	}
	// Nothing should have armed; a fresh arm must succeed.
	if err := control.SetOverridePacket(context.Background(), make([]byte, signalcore.FrameSizeBytes)); err != nil {
		t.Fatalf("SetOverridePacket: %v, want no prior arm blocking it", err)
	}
}

func TestHandleCommandSetPowerArmsOverride(t *testing.T) {
	b, _, control := newTestBridge(t)
	b.haveControl = true
	b.lastControl = validControlFrame()
	b.state = HeaterState{Seen: true, On: false}

	b.handleCommand(context.Background(), SetPowerCommand{On: true})

	// A second arm attempt while the first is still pending must be
	// rejected, proving the first call actually armed the override.
	err := control.SetOverridePacket(context.Background(), make([]byte, signalcore.FrameSizeBytes))
	if err != signalcore.ErrOverrideMisarm {
		t.Fatalf("second SetOverridePacket err = %v, want ErrOverrideMisarm", err)
	}
}

func TestHandleCommandSetPowerNoOpWhenAlreadyAtTarget(t *testing.T) {
	b, _, control := newTestBridge(t)
	b.haveControl = true
	b.lastControl = validControlFrame()
	b.state = HeaterState{Seen: true, On: true}

	b.handleCommand(context.Background(), SetPowerCommand{On: true})

	// Nothing should have armed; a fresh arm must succeed.
	err := control.SetOverridePacket(context.Background(), make([]byte, signalcore.FrameSizeBytes))
	if err != nil {
		t.Fatalf("SetOverridePacket: %v, want no prior arm blocking it", err)
	}
}

func TestDriveTemperatureTargetStepsOneButtonAtATime(t *testing.T) {
	b, _, control := newTestBridge(t)
	b.haveControl = true
	b.lastControl = validControlFrame()
	b.state = HeaterState{Seen: true, TemperatureCelsius: 40}
	b.pendingTempC = 42
	b.haveTarget = true

	b.driveTemperatureTarget(context.Background())

	if err := control.SetOverridePacket(context.Background(), make([]byte, signalcore.FrameSizeBytes)); err != signalcore.ErrOverrideMisarm {
		t.Fatalf("expected the Up press to have armed an override, got %v", err)
	}
	if !b.haveTarget {
		t.Fatal("haveTarget cleared before target reached")
	}
}

func TestDriveTemperatureTargetStopsAtTarget(t *testing.T) {
	b, _, control := newTestBridge(t)
	b.haveControl = true
	b.lastControl = validControlFrame()
	b.state = HeaterState{Seen: true, TemperatureCelsius: 42}
	b.pendingTempC = 42
	b.haveTarget = true

	b.driveTemperatureTarget(context.Background())

	if b.haveTarget {
		t.Fatal("haveTarget should clear once state matches pendingTempC")
	}
	if err := control.SetOverridePacket(context.Background(), make([]byte, signalcore.FrameSizeBytes)); err != nil {
		t.Fatalf("SetOverridePacket: %v, want no arm attempted once at target", err)
	}
}

func TestRunPublishesStateOnHeaterFrame(t *testing.T) {
	writer := signalcore.NewRecordingPinWriter()
	control := signalcore.NewBridgeDecoder(signalcore.Config{}, writer, signalcore.NullLogger{})
	heater := signalcore.NewObserverDecoder(signalcore.Config{}, signalcore.NullLogger{})
	pub := &fakePublisher{}
	cmds := &fakeCommandSource{ch: make(chan Command)}
	b := NewBridge(heater, control, pub, cmds, signalcore.NullLogger{})

	heaterReader := signalcore.NewChannelPinReader(256)
	controlReader := signalcore.NewChannelPinReader(256)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	heater.Start(ctx, heaterReader)
	control.Start(ctx, controlReader)
	go b.Run(ctx)

	edges, _ := signalcore.EncodeFrame(validHeaterFrame(5), 0)
	for _, e := range edges {
		heaterReader.Push(e)
	}
	heaterReader.Close()
	controlReader.Close()

	deadline := time.After(2 * time.Second)
	for {
		if len(pub.states) > 0 {
			if got := pub.states[0].TemperatureCelsius; got != 42 {
				t.Fatalf("TemperatureCelsius = %d, want 42", got)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a published HeaterState")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
