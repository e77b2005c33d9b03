package signalcore

//
// Protocol decoder: pure, stateless classification and field extraction
// over a validated 6-byte frame. None of these functions touch the
// pipeline, queues, or pins.
//

import (
	"errors"
	"fmt"
)

// PacketKind is the classifier's verdict for a candidate frame.
type PacketKind int

const (
	// KindInvalid failed the parity or checksum check. deliverFrames also
	// uses it for a Heater frame whose temperature code DecodeHeater rejects.
	KindInvalid = PacketKind(iota)

	// KindUnknown passed framing but matched neither the heater nor the
	// control byte-4 signature.
	KindUnknown

	// KindHeater is a status frame emitted by the water heater.
	KindHeater

	// KindControl is a button-state frame emitted by a control panel.
	KindControl
)

func (k PacketKind) String() string {
	switch k {
	case KindHeater:
		return "Heater"
	case KindControl:
		return "Control"
	case KindUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// temperatureTable maps the 4-bit temperature code carried in a Heater
// frame to degrees Celsius. Codes beyond the table's length are invalid.
var temperatureTable = [15]int{37, 38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 50, 55, 60}

// TempCMin and TempCMax bound the user-settable target temperature range.
const (
	TempCMin = 37
	TempCMax = 48
)

// ErrTemperatureCodeOutOfRange is returned by DecodeHeater when the frame's
// temperature nibble has no entry in temperatureTable.
var ErrTemperatureCodeOutOfRange = errors.New("signalcore: temperature code out of range")

// HeaterPacket is the decoded content of a KindHeater frame.
type HeaterPacket struct {
	ActiveID           byte
	On                 bool
	InUse              bool
	TemperatureCode    byte
	TemperatureCelsius int
	StartupState       byte
}

// ControlPacket is the decoded content of a KindControl frame.
type ControlPacket struct {
	MyID                   byte
	OnOffPressed           bool
	PriorityPressed        bool
	TemperatureUpPressed   bool
	TemperatureDownPressed bool
}

// oddParity reports whether b has an odd number of set bits.
func oddParity(b byte) bool {
	count := 0
	for i := 0; i < 8; i++ {
		if b&(1<<uint(i)) != 0 {
			count++
		}
	}
	return count%2 == 1
}

// checksumOK reports whether the XOR of all FrameSizeBytes bytes is zero.
func checksumOK(data [FrameSizeBytes]byte) bool {
	var x byte
	for _, b := range data {
		x ^= b
	}
	return x == 0
}

// framingOK reports whether every one of the first 5 bytes has odd parity
// and the checksum byte closes the XOR to zero. This is the same pair of
// checks the bit-to-frame task performs on the live accumulator; Classify
// re-derives them from raw bytes so it can be used standalone.
func framingOK(data [FrameSizeBytes]byte) bool {
	for i := 0; i < FrameSizeBytes-1; i++ {
		if !oddParity(data[i]) {
			return false
		}
	}
	return checksumOK(data)
}

// Classify inspects a candidate 6-byte frame and returns its PacketKind.
func Classify(data [FrameSizeBytes]byte) PacketKind {
	if !framingOK(data) {
		return KindInvalid
	}
	if data[0]&0x0F == 0x7 && data[4] == 0x20 {
		return KindHeater
	}
	if data[0]&0x0F < 0x7 && data[4] == 0xBF {
		return KindControl
	}
	return KindUnknown
}

// DecodeHeater extracts HeaterPacket fields from a frame already known to
// classify as KindHeater.
func DecodeHeater(data [FrameSizeBytes]byte) (HeaterPacket, error) {
	code := data[2] & 0x0F
	if int(code) >= len(temperatureTable) {
		return HeaterPacket{}, fmt.Errorf("%w: code=%d", ErrTemperatureCodeOutOfRange, code)
	}
	return HeaterPacket{
		ActiveID:           (data[0] >> 4) & 0x7,
		On:                 data[1]&0x40 != 0,
		InUse:              data[2]&0x10 != 0,
		TemperatureCode:    code,
		TemperatureCelsius: temperatureTable[code],
		StartupState:       data[3] & 0x7F,
	}, nil
}

// DecodeControl extracts ControlPacket fields from a frame already known
// to classify as KindControl.
func DecodeControl(data [FrameSizeBytes]byte) ControlPacket {
	return ControlPacket{
		MyID:                   data[0] & 0x0F,
		OnOffPressed:           data[1]&0x01 != 0,
		PriorityPressed:        data[1]&0x04 != 0,
		TemperatureUpPressed:   data[2]&0x01 != 0,
		TemperatureDownPressed: data[2]&0x02 != 0,
	}
}

// reframe recomputes the odd-parity bit of each of the first 5 bytes and
// the checksum byte in place. Every mutator below calls this after OR-ing
// in its button bit, so the result always re-classifies successfully.
func reframe(data *[FrameSizeBytes]byte) {
	for i := 0; i < FrameSizeBytes-1; i++ {
		b := data[i] &^ 0x80 // clear bit 7
		if !oddParity(b) {
			b |= 0x80
		}
		data[i] = b
	}
	var x byte
	for i := 0; i < FrameSizeBytes-1; i++ {
		x ^= data[i]
	}
	data[FrameSizeBytes-1] = x
}

// Reframe recomputes the odd-parity bit of each of the first 5 bytes and
// the checksum byte of data, without setting any button bit. Callers that
// construct a candidate frame from scratch (tests, cmd/simulate) use this
// instead of duplicating the parity/checksum repair every mutator below
// already performs internally.
func Reframe(data *[FrameSizeBytes]byte) {
	reframe(data)
}

// SetOnOffPressed sets the on/off button bit of a control frame and
// restores valid framing.
func SetOnOffPressed(data *[FrameSizeBytes]byte) {
	data[1] |= 0x01
	reframe(data)
}

// SetPriorityPressed sets the priority button bit of a control frame and
// restores valid framing.
func SetPriorityPressed(data *[FrameSizeBytes]byte) {
	data[1] |= 0x04
	reframe(data)
}

// SetTemperatureUpPressed sets the temperature-up button bit of a control
// frame and restores valid framing.
func SetTemperatureUpPressed(data *[FrameSizeBytes]byte) {
	data[2] |= 0x01
	reframe(data)
}

// SetTemperatureDownPressed sets the temperature-down button bit of a
// control frame and restores valid framing.
func SetTemperatureDownPressed(data *[FrameSizeBytes]byte) {
	data[2] |= 0x02
	reframe(data)
}

// Render formats the 6 bytes as upper-case hex, suitable for a log line or
// a telemetry payload, e.g. "77401800204F".
func Render(data [FrameSizeBytes]byte) string {
	const hexDigits = "0123456789ABCDEF"
	out := make([]byte, 0, FrameSizeBytes*2)
	for _, b := range data {
		out = append(out, hexDigits[b>>4], hexDigits[b&0x0F])
	}
	return string(out)
}
