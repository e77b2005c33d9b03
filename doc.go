// Package signalcore decodes the serial link between a Rinnai tankless
// water heater and its wired control panels, and can substitute a single
// panel-originated packet on the control (TX) line with a replacement of
// its own so that a simulated button press reaches the heater.
//
// The wire carries 6-byte packets built from 48 bit-symbols preceded by a
// preamble. A [Decoder] turns raw pin edges into validated [Frame] values
// through three bounded, single-producer/single-consumer stages:
//
//	pulses -> bit symbols -> frames
//
// Use [NewObserverDecoder] for a line you only want to watch (the heater's
// RX line) and [NewBridgeDecoder] for the line you also want to drive (the
// panel-facing TX line); only a bridge decoder owns an [Override] actor and
// an output pin.
//
// The pure byte-level protocol (parity, checksum, field layout, button
// mutators) lives in protocol.go and has no dependency on the pipeline -
// callers can use it directly against any 6-byte buffer.
//
// Real GPIO access lives in the sibling gpio package; the thin adapter
// that turns decoded packets into heater state and turns commands into
// override packets lives in the sibling app package. Neither an MQTT
// client nor Wi-Fi/OTA/telnet services are implemented here - see
// SPEC_FULL.md for the boundary.
package signalcore
