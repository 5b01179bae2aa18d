package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"LiveBoard/internal/board"
	"LiveBoard/internal/config"
	lbnet "LiveBoard/internal/net"
	"LiveBoard/internal/ui"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		logger.Info("shutting down")
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("liveboard stopped", "mode", cfg.Mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("starting", "mode", cfg.Mode)
	switch cfg.Mode {
	case config.ModeRelay:
		return runRelay(ctx, cfg, logger)
	case config.ModeHost:
		return runHost(ctx, cfg, logger)
	case config.ModeDiscover:
		addr, err := lbnet.Discover(cfg.DiscoverTimeout)
		if err != nil {
			return err
		}
		logger.Info("found relay", "addr", addr)
		return runClient(ctx, cfg, addr, "", logger)
	default:
		return runClient(ctx, cfg, cfg.RelayAddr, "", logger)
	}
}

func advertise(cfg config.Config, logger *slog.Logger) func() {
	if !cfg.Advertise {
		return func() {}
	}
	server, err := lbnet.Advertise(cfg.Port)
	if err != nil {
		// boards can still join with the share link
		logger.Warn("mDNS advertisement failed", "error", err)
		return func() {}
	}
	logger.Info("advertising relay", "service", lbnet.ServiceType, "port", cfg.Port)
	return func() { server.Shutdown() }
}

func runRelay(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	stop := advertise(cfg, logger)
	defer stop()
	relay := lbnet.NewRelay(logger)
	return relay.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
}

func runHost(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	relay := lbnet.NewRelay(logger)
	relayErr := make(chan error, 1)
	go func() {
		relayErr <- relay.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Port))
		cancel()
	}()
	stop := advertise(cfg, logger)
	defer stop()

	link := lbnet.ShareLink(lbnet.GetOutgoingIP(), cfg.Port)
	logger.Info("share this link to join", "link", link)

	err := runClient(ctx, cfg, fmt.Sprintf("127.0.0.1:%d", cfg.Port), link, logger)
	cancel()
	return errors.Join(err, <-relayErr)
}

func runClient(ctx context.Context, cfg config.Config, addr, shareLink string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := lbnet.NewClient(addr, logger)
	go client.Run(ctx)

	opts := board.DefaultOptions()
	opts.FlushInterval = cfg.FlushInterval
	opts.OutboxLimit = cfg.MaxQueued
	opts.Tool = cfg.Tool
	opts.Logger = logger
	b := board.New(opts, client)

	return ui.RunApp(ctx, b, shareLink, logger)
}
