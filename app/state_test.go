package app

import (
	"testing"
	"time"

	"github.com/rinnai-gateway/signalcore"
)

func TestApplyHeater(t *testing.T) {
	now := time.Unix(1000, 0)
	h := signalcore.HeaterPacket{
		ActiveID:           2,
		On:                 true,
		InUse:              true,
		TemperatureCelsius: 45,
		StartupState:       1,
	}
	got := applyHeater(HeaterState{}, h, now)

	if !got.Seen {
		t.Fatal("Seen = false, want true")
	}
	if got.TemperatureCelsius != 45 || !got.On || !got.InUse || got.ActiveID != 2 {
		t.Fatalf("got = %+v, want fields copied from HeaterPacket", got)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
}
