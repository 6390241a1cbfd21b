// Package main is the entry point for the voxelworld client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelworld/internal/config"
	"github.com/Faultbox/voxelworld/internal/game"
	"github.com/Faultbox/voxelworld/internal/logger"
	"github.com/Faultbox/voxelworld/internal/metrics"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	random := cfg.World.Seed == 0
	seed := cfg.ResolveSeed()
	logger.Info("=== voxelworld ===", zap.Uint64("seed", seed), zap.Bool("random_seed", random))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		addr, err := m.Serve(ctx, cfg.Metrics.Listen, logger.Named("metrics"))
		if err != nil {
			logger.Error("failed to start metrics listener", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("metrics listening", zap.Stringer("addr", addr))
	}

	g, err := game.New(cfg, seed, m)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(ctx); err != nil {
		logger.Error("game error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("game closed normally")
}
