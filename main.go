package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/probekit/envprobe/config"
	"github.com/probekit/envprobe/heartbeat"
	"github.com/probekit/envprobe/logger"
	"github.com/probekit/envprobe/metrics"
	"github.com/probekit/envprobe/report"
	"github.com/probekit/envprobe/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "envprobe: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the report and heartbeat bytes; all logging goes to stderr.
	logger.InitLogger(cfg.LogLevel, os.Stderr)

	reg := metrics.InitMetrics()

	snap, err := report.Capture()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to capture environment snapshot")
	}
	metrics.ObserveSnapshot(snap.SetCount(), len(snap.Variables)-snap.SetCount(), snap.TakenAt)

	// os.Stdout is unbuffered; every line below hits the fd as it is written,
	// so an observer tailing the output sees the full report immediately.
	if err := snap.Write(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	beat := heartbeat.New(os.Stdout, cfg.HeartbeatInterval, cfg.HeartbeatMark)

	if cfg.Listen != "" {
		srv := server.New(cfg, os.Stderr, reg, snap, beat)
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Error().Err(err).Msg("diagnostics server stopped with error")
			}
		}()
	}

	// Idle until interrupted, marking liveness on stdout.
	if err := beat.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("heartbeat loop failed")
	}
}
