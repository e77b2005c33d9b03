// Command simulate drives a Decoder with a synthetic, all-in-software
// waveform so the pipeline can be exercised and self-tested without real
// GPIO hardware, the same role cmd/calibrate plays for measuring a
// userspace network link.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/apex/log"

	"github.com/rinnai-gateway/signalcore"
)

// sampleHeaterFrame is a representative Heater status frame: active unit
// 0, on, in use, temperature code 5 (42C), startup state 0. Reframed so
// parity and checksum are valid regardless of the literal values chosen
// here.
func sampleHeaterFrame() [signalcore.FrameSizeBytes]byte {
	data := [signalcore.FrameSizeBytes]byte{0x07, 0x40, 0x15, 0x00, 0x20, 0x00}
	signalcore.Reframe(&data)
	return data
}

func main() {
	frameCount := flag.Int("frames", 5, "number of synthetic frames to emit")
	period := flag.Duration("period", 250*time.Millisecond, "wall-clock delay between frames")
	flag.Parse()

	log.SetLevel(log.DebugLevel)

	reader := signalcore.NewChannelPinReader(64)
	decoder := signalcore.NewObserverDecoder(signalcore.Config{}, log.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	decoder.Start(ctx, reader)

	go func() {
		cycles := uint32(0)
		frame := sampleHeaterFrame()
		for i := 0; i < *frameCount; i++ {
			edges, next := signalcore.EncodeFrame(frame, cycles)
			for _, e := range edges {
				reader.Push(e)
			}
			cycles = next + signalcore.DefaultGapWindow.MinMicros + 1000
			time.Sleep(*period)
		}
		reader.Close()
	}()

	for tagged := range decoder.Packets() {
		log.WithFields(log.Fields{
			"side": tagged.Side.String(),
			"kind": tagged.Packet.Kind.String(),
			"raw":  signalcore.Render(tagged.Packet.Raw.Data),
		}).Info("decoded packet")
	}

	decoder.Wait()
	quality := decoder.SignalQuality()
	log.WithFields(log.Fields{
		"samples": quality.Samples,
		"mean_us": quality.MeanLowMicros,
		"p95_us":  quality.P95LowMicros,
	}).Info("signal quality")
}
