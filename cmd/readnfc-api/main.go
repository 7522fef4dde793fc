package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"readnfc/internal/adapters/mqtt"
	"readnfc/internal/adapters/pcsc"
	"readnfc/internal/modkit"
	"readnfc/internal/modkit/httpkit"
	"readnfc/internal/modkit/module"
	"readnfc/internal/platform/config"
	"readnfc/internal/platform/logger"
	phttp "readnfc/internal/platform/net/http"

	"readnfc/internal/services/api"
	metahttp "readnfc/internal/services/api/meta/http"
	cardmod "readnfc/internal/services/cardreader/module"
	"readnfc/internal/services/cardreader/domain"
)

func main() {
	// the file only fills variables the environment leaves unset
	if err := config.Load(os.Getenv("READNFC_CONFIG")); err != nil {
		logger.Get().Panic().Err(err).Msg("config file")
	}
	root := config.New()
	apiCfg := root.Prefix("API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pub, err := mqtt.New(mqtt.FromConfig(root), *logger.Named("mqtt"))
	if err != nil {
		l.Panic().Err(err).Msg("mqtt config")
	}
	defer pub.Close()

	var checks []metahttp.Check
	if pub.Enabled() {
		checks = append(checks, metahttp.Check{Name: "mqtt", Pinger: pub})
		cctx, cancel := context.WithTimeout(ctx, root.Prefix("MQTT_").MayDuration("CONNECT_TIMEOUT", 10*time.Second))
		if err := pub.Connect(cctx); err != nil {
			l.Warn().Err(err).Msg("mqtt broker not reachable yet, retrying in background")
		}
		cancel()
	}

	card := cardmod.New(
		modkit.Deps{Log: *l, Cfg: root, PCSC: pcsc.Establish},
		cardmod.Options{Sink: pub},
	)
	lc := module.MustPortsOf[domain.LifecyclePort](card)

	// a missing reader is not fatal: the API keeps answering "No card inserted."
	if err := lc.Start(ctx); err != nil {
		l.Error().Err(err).Msg("card monitor not started")
	}

	srv := phttp.NewServer(root)
	api.Mount(srv.Router(), api.Options{
		Config: root,
		Logger: l,
		Card:   card,
		Checks: checks,
		Stack: httpkit.StackOptions{
			CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			Timeout:     apiCfg.MayDuration("TIMEOUT", 45*time.Second),
			Slow:        apiCfg.MayDuration("SLOW", 2*time.Second),
			SkipSlow:    []string{"/api/v1/nfc/read"},
		},
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
	})

	runErr := srv.Run(ctx)

	sctx, cancel := context.WithTimeout(context.Background(), card.Options().StopTimeout)
	defer cancel()
	if err := lc.Stop(sctx); err != nil {
		l.Error().Err(err).Msg("card monitor stop")
	}
	if runErr != nil {
		l.Error().Err(runErr).Msg("http server stopped")
		pub.Close()
		os.Exit(1)
	}
	l.Info().Msg("bye")
}
