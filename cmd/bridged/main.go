// Command bridged runs the Rinnai control-loop bridge against real GPIO
// lines: it observes the heater's status line, proxies and selectively
// overrides the panel's control line, and logs the decoded state. It has
// no MQTT or Wi-Fi client built in - see the app package's doc comment for
// why that stays a Non-goal here.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"

	"github.com/rinnai-gateway/signalcore"
	"github.com/rinnai-gateway/signalcore/app"
	"github.com/rinnai-gateway/signalcore/gpio"
)

// stdoutPublisher logs every HeaterState update instead of publishing it
// to a real MQTT broker, since Wi-Fi/MQTT transport is a Non-goal.
type stdoutPublisher struct{}

func (stdoutPublisher) PublishState(s app.HeaterState) {
	log.WithFields(log.Fields{
		"on":          s.On,
		"in_use":      s.InUse,
		"temperature": s.TemperatureCelsius,
		"active_id":   s.ActiveID,
	}).Info("heater state")
}

// noCommands is a CommandSource that never delivers a command, for
// running the bridge as a pure observer/proxy with no remote control
// wired up yet.
type noCommands struct{}

func (noCommands) Commands() <-chan app.Command {
	ch := make(chan app.Command)
	return ch
}

func main() {
	chipPath := flag.String("chip", "/dev/gpiochip0", "GPIO character device")
	heaterLine := flag.Uint("heater-line", 17, "GPIO offset for the heater RX line")
	controlLine := flag.Uint("control-line", 27, "GPIO offset for the panel TX line")
	invertIn := flag.Bool("invert-in", false, "invert sampled input levels")
	invertOut := flag.Bool("invert-out", false, "invert driven output levels")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	chip, err := gpio.OpenChip(*chipPath)
	if err != nil {
		log.WithError(err).Fatal("gpio.OpenChip")
	}
	defer chip.Close()

	heaterReader, err := chip.RequestInput(uint32(*heaterLine), "rinnai-heater-rx")
	if err != nil {
		log.WithError(err).Fatal("chip.RequestInput(heater)")
	}
	defer heaterReader.Close()

	controlReader, err := chip.RequestInput(uint32(*controlLine), "rinnai-control-rx")
	if err != nil {
		log.WithError(err).Fatal("chip.RequestInput(control)")
	}
	defer controlReader.Close()

	controlWriter, err := chip.RequestOutput(uint32(*controlLine)+1, "rinnai-control-tx", signalcore.Low)
	if err != nil {
		log.WithError(err).Fatal("chip.RequestOutput(control)")
	}
	defer controlWriter.Close()

	cfg := signalcore.Config{InvertIn: *invertIn, InvertOut: *invertOut}

	heaterDecoder := signalcore.NewObserverDecoder(cfg, log.Log)
	controlDecoder := signalcore.NewBridgeDecoder(cfg, controlWriter, log.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	heaterDecoder.Start(ctx, heaterReader)
	controlDecoder.Start(ctx, controlReader)

	bridge := app.NewBridge(heaterDecoder, controlDecoder, stdoutPublisher{}, noCommands{}, log.Log)
	go bridge.Run(ctx)

	<-ctx.Done()
	log.Info("shutting down")

	heaterDecoder.Wait()
	controlDecoder.Wait()
}
