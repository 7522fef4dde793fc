package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"readnfc/internal/adapters/mqtt"
	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/core/version"
	"readnfc/internal/modkit"
	"readnfc/internal/platform/config"
	"readnfc/internal/platform/config/raw"
	perr "readnfc/internal/platform/errors"
	"readnfc/internal/platform/logger"
	cardmod "readnfc/internal/services/cardreader/module"
	"readnfc/internal/services/cardreader/domain"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app        = kingpin.New("readnfc", "Read contactless card UIDs from a PC/SC reader.")
	configPath = app.Flag("config", "YAML file seeding unset environment variables.").Envar("READNFC_CONFIG").String()
	verbose    = app.Flag("verbose", "Log at debug level.").Short('v').Bool()

	readersCmd = app.Command("readers", "List attached readers.")

	readCmd     = app.Command("read", "Wait for a card and print its UID.")
	readReader  = readCmd.Flag("reader", "Reader name or part of it; empty picks the first reader.").String()
	readTimeout = readCmd.Flag("timeout", "How long to wait for a card.").Default("10s").Duration()
	readMode    = readCmd.Flag("mode", "UID trimming: strip drops trailing zero bytes, exact keeps them.").Default("strip").Enum("strip", "exact")

	watchCmd    = app.Command("watch", "Print card insertions and removals until interrupted.")
	watchReader = watchCmd.Flag("reader", "Reader name or part of it; empty picks the first reader.").String()
	watchMQTT   = watchCmd.Flag("mqtt", "Also publish events to the MQTT broker from MQTT_* settings.").Bool()
)

func main() {
	app.Version(version.Info().String())
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *configPath != "" {
		if _, err := raw.LoadFile(*configPath); err != nil {
			app.Fatalf("config file: %v", err)
		}
	}
	initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case readersCmd.FullCommand():
		err = listReaders(ctx)
	case readCmd.FullCommand():
		err = readOnce(ctx)
	case watchCmd.FullCommand():
		err = watch(ctx)
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "readnfc:", err)
		os.Exit(1)
	}
}

// initLogger sends logs to stderr so stdout carries only results
func initLogger() {
	opt := logger.FromEnv()
	opt.Writer = os.Stderr
	if _, set := os.LookupEnv("LOG_LEVEL"); !set {
		opt.Level = "warn"
	}
	if *verbose {
		opt.Level = "debug"
	}
	logger.Init(opt)
}

func newCard(over cardmod.Options) *cardmod.Module {
	return cardmod.New(modkit.Deps{Log: *logger.Get(), Cfg: config.New(), PCSC: pcsc.Establish}, over)
}

func listReaders(ctx context.Context) error {
	ports := newCard(cardmod.Options{}).Ports().(cardmod.Ports)
	readers, err := ports.Discovery.ListReaders(ctx)
	if err != nil {
		return err
	}
	for _, r := range readers {
		fmt.Println(r)
	}
	return nil
}

func readOnce(ctx context.Context) error {
	ports := newCard(cardmod.Options{UIDMode: *readMode}).Ports().(cardmod.Ports)
	id, err := ports.Poller.ReadUIDBlocking(ctx, domain.Reader(*readReader), *readTimeout)
	if err != nil {
		return err
	}
	fmt.Println(id.String())
	return nil
}

func watch(ctx context.Context) error {
	sinks := domain.Sinks{domain.SinkFunc(printEvent)}
	if *watchMQTT {
		pub, err := mqtt.New(mqtt.FromConfig(config.New()), *logger.Named("mqtt"))
		if err != nil {
			return err
		}
		defer pub.Close()
		if !pub.Enabled() {
			return perr.InvalidArgf("--mqtt needs MQTT_HOST")
		}
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = pub.Connect(cctx)
		cancel()
		if err != nil {
			return err
		}
		sinks = append(sinks, pub)
	}

	card := newCard(cardmod.Options{Reader: *watchReader, Sink: sinks})
	lc := card.Ports().(cardmod.Ports).Lifecycle
	if err := lc.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s, ctrl-c to stop\n", card.Ports().(cardmod.Ports).Status.Status().Reader)
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), card.Options().StopTimeout)
	defer cancel()
	return lc.Stop(sctx)
}

func printEvent(_ context.Context, ev domain.PresenceEvent) error {
	line := []string{ev.At.Format(time.RFC3339), ev.Kind.String(), string(ev.Reader)}
	switch {
	case ev.Err != nil:
		line = append(line, ev.Err.Error())
	case ev.UID != "":
		line = append(line, ev.UID)
	}
	fmt.Println(strings.Join(line, "\t"))
	return nil
}
