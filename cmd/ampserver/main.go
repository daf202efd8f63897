package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	monoprice "github.com/abates/monoprice-hub"
	"github.com/abates/monoprice-hub/api"
	"github.com/abates/monoprice-hub/config"
	"github.com/abates/monoprice-hub/installation"
	"github.com/abates/monoprice-hub/metrics"
	"github.com/abates/monoprice-hub/poller"
	"github.com/abates/monoprice-hub/registry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shimmeringbee/logwrap"
	"github.com/shimmeringbee/logwrap/impl/golog"
	"github.com/tarm/serial"
)

func main() {
	configPath := flag.String("config", "ampserver.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logwrap.New(golog.Wrap(log.Default()))
	ctx := context.Background()

	s, err := serial.OpenPort(&serial.Config{Name: cfg.Port, Baud: cfg.Baud, ReadTimeout: cfg.ReadTimeout})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	options := []monoprice.Option{monoprice.LoggerOption(logger)}
	if cfg.Verbose {
		options = append(options, monoprice.VerboseOption())
	}
	amp := monoprice.New(s, options...)
	defer amp.Close()

	reg, err := registry.Open(cfg.Database)
	if err != nil {
		log.Fatalf("registry error: %v", err)
	}
	defer reg.Close()

	metrics.Init(nil)

	logger.LogInfo(ctx, "Amp is setup, loading zones.", logwrap.Datum("port", cfg.Port))
	inst, err := installation.New(ctx, installation.Options{
		Driver:    amp,
		Sources:   cfg.Sources,
		MaxVolume: cfg.MaxVolume,
		Registry:  reg,
		Logger:    &logger,
	})
	if err != nil {
		log.Fatalf("installation error: %v", err)
	}

	p, err := poller.New(inst, cfg.PollSchedule, &logger)
	if err != nil {
		log.Fatalf("poller error: %v", err)
	}
	p.Start()
	defer p.Stop()

	router := api.New(inst, &logger)
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	srv := &http.Server{
		Handler:           router,
		Addr:              cfg.Listen,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.LogError(ctx, "Shutdown error.", logwrap.Err(err))
		}
	}()

	logger.LogInfo(ctx, "Listening.", logwrap.Datum("addr", cfg.Listen), logwrap.Datum("zones", len(inst.Zones())))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.LogError(ctx, "Server error.", logwrap.Err(err))
	}
}
