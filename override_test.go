package signalcore

import (
	"context"
	"testing"
	"time"
)

func TestSetOverridePacketRejectsWrongLength(t *testing.T) {
	o := newOverride(NewRecordingPinWriter(), false, 20*time.Millisecond, NullLogger{})
	err := o.SetOverridePacket(context.Background(), []byte{1, 2, 3})
	if err != ErrOverrideMisarm {
		t.Fatalf("err = %v, want ErrOverrideMisarm", err)
	}
}

func TestSetOverridePacketRejectsDoubleArm(t *testing.T) {
	o := newOverride(NewRecordingPinWriter(), false, 20*time.Millisecond, NullLogger{})
	data := make([]byte, FrameSizeBytes)

	if err := o.SetOverridePacket(context.Background(), data); err != nil {
		t.Fatalf("first SetOverridePacket: %v", err)
	}
	if err := o.SetOverridePacket(context.Background(), data); err != ErrOverrideMisarm {
		t.Fatalf("second SetOverridePacket err = %v, want ErrOverrideMisarm", err)
	}
}

func TestSetOverridePacketReturnsBusyOnTimeout(t *testing.T) {
	o := newOverride(NewRecordingPinWriter(), false, 20*time.Millisecond, NullLogger{})
	o.inFlight.Store(true) // simulate a release already in progress

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := o.SetOverridePacket(ctx, make([]byte, FrameSizeBytes))
	if err != ErrOverrideBusy {
		t.Fatalf("err = %v, want ErrOverrideBusy", err)
	}
}

func TestOverrideEmitDrivesExpectedWaveform(t *testing.T) {
	writer := NewRecordingPinWriter()
	o := newOverride(writer, false, 20*time.Millisecond, NullLogger{})
	o.sleep = func(time.Duration) {} // deterministic, instant

	packet := [FrameSizeBytes]byte{0x01, 0, 0, 0, 0, 0}
	if err := o.SetOverridePacket(context.Background(), packet[:]); err != nil {
		t.Fatalf("SetOverridePacket: %v", err)
	}

	o.emit()

	history := writer.History()
	if len(history) < 3 {
		t.Fatalf("writer recorded %d levels, want at least 3", len(history))
	}
	if history[0] != High || history[1] != Low {
		t.Fatalf("waveform should start High (init pulse) then Low, got %v", history[:2])
	}
	if o.armed.Load() || o.inFlight.Load() {
		t.Fatal("emit() left the actor armed or in flight")
	}
}

func TestOverrideInvertOut(t *testing.T) {
	writer := NewRecordingPinWriter()
	o := newOverride(writer, true, 0, NullLogger{})
	o.sleep = func(time.Duration) {}
	o.drive(High)
	o.drive(Low)

	history := writer.History()
	if history[0] != Low || history[1] != High {
		t.Fatalf("invertOut should flip every level, got %v", history)
	}
}
