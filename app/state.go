// Package app is the thin application layer mentioned in spec.md Â§1: it
// translates decoded packets from the core signalcore pipeline into an
// external HeaterState, and translates external Commands into override
// packets, without itself implementing Wi-Fi, MQTT, or any other
// out-of-scope transport - those remain Non-goals (spec.md Â§1, Â§11).
package app

import (
	"time"

	"github.com/rinnai-gateway/signalcore"
)

// HeaterState is the externally reportable state of the water heater,
// built up from the most recent Heater [signalcore.DecodedPacket].
type HeaterState struct {
	// Seen is false until the first valid Heater frame has been observed.
	Seen bool

	ActiveID           byte
	On                 bool
	InUse              bool
	TemperatureCelsius int
	StartupState       byte

	// UpdatedAt is when this snapshot was built.
	UpdatedAt time.Time
}

// applyHeater builds the next HeaterState from a freshly decoded Heater
// packet. Every field comes from h; the previous state isn't folded in
// since the frame is always a complete snapshot, not a delta.
func applyHeater(_ HeaterState, h signalcore.HeaterPacket, now time.Time) HeaterState {
	return HeaterState{
		Seen:               true,
		ActiveID:           h.ActiveID,
		On:                 h.On,
		InUse:              h.InUse,
		TemperatureCelsius: h.TemperatureCelsius,
		StartupState:       h.StartupState,
		UpdatedAt:          now,
	}
}

// Publisher is the capability this package needs to report state
// upstream. A real implementation (MQTT state topic + Home Assistant
// discovery payload) is deliberately NOT part of this module; see
// discovery.go for the data shaping a real implementation would publish.
type Publisher interface {
	PublishState(HeaterState)
}

// Command is a request from the home-automation orchestrator to change
// heater behavior by simulating a button press on the control panel.
type Command interface {
	isCommand()
}

// SetPowerCommand requests pressing the On/Off button so the heater's on
// state becomes On.
type SetPowerCommand struct {
	On bool
}

func (SetPowerCommand) isCommand() {}

// SetTemperatureCommand requests stepping the target temperature toward
// Celsius, clamped to [signalcore.TempCMin, signalcore.TempCMax].
type SetTemperatureCommand struct {
	Celsius int
}

func (SetTemperatureCommand) isCommand() {}

// PressPriorityCommand requests pressing the Priority button.
type PressPriorityCommand struct{}

func (PressPriorityCommand) isCommand() {}

// CommandSource is the capability this package needs to receive
// Commands. A real implementation (MQTT command topics) is deliberately
// NOT part of this module.
type CommandSource interface {
	Commands() <-chan Command
}
