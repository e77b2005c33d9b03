package signalcore

//
// Consumer-facing packet delivery
//
// Drains a decoder's packetQ, drops any frame that failed a validation
// flag, classifies the rest, and tags the result with which physical
// line it came from. See spec.md Â§4.6.
//

// DecodedPacket is the result of running the protocol classifier over a
// validated Frame. Go has no sum types, so Kind tags which of Heater /
// Control is meaningful; Raw is always populated for logging/telemetry.
type DecodedPacket struct {
	Kind    PacketKind
	Heater  HeaterPacket
	Control ControlPacket
	Raw     Frame
}

// TaggedPacket pairs a DecodedPacket with the line it arrived on.
type TaggedPacket struct {
	Side   LineSide
	Packet DecodedPacket
}

// deliverFrames drains packetQ, classifies each framing-valid Frame, and
// sends the tagged result to out. It returns when packetQ's channel is
// closed and drained.
func deliverFrames(side LineSide, packetQ *boundedQueue[Frame], out chan<- TaggedPacket, logger Logger) {
	for frame := range packetQ.receive() {
		if !frame.Valid() {
			logger.Debugf("signalcore: %s: dropping invalid frame (parity=%t checksum=%t preamble=%t)",
				side, frame.ValidParity, frame.ValidChecksum, frame.ValidPreamble)
			continue
		}

		decoded := DecodedPacket{Kind: Classify(frame.Data), Raw: frame}
		switch decoded.Kind {
		case KindHeater:
			heater, err := DecodeHeater(frame.Data)
			if err != nil {
				logger.Warnf("signalcore: %s: %s", side, err.Error())
				decoded.Kind = KindInvalid
			} else {
				decoded.Heater = heater
			}
		case KindControl:
			decoded.Control = DecodeControl(frame.Data)
		}

		out <- TaggedPacket{Side: side, Packet: decoded}
	}
	close(out)
}
