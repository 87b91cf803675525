package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"

	"github.com/hackur/holdemd/internal/config"
	"github.com/hackur/holdemd/internal/server"
)

// ServeCmd runs the HTTP server with the configured tables.
type ServeCmd struct {
	Config   string  `kong:"default='holdemd.hcl',help='Path to HCL configuration file'"`
	Addr     string  `kong:"help='Listen address, overrides the config file'"`
	LogLevel string  `kong:"default='',help='Log level: debug, info, warn, error'"`
	Seed     *uint64 `kong:"help='Deterministic shuffle seed (optional)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.Server.LogLevel
	if c.LogLevel != "" {
		level = c.LogLevel
	}
	logger := setupLogger(level)

	var seed uint64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = uint64(time.Now().UnixNano())
	}

	manager, err := server.NewManager(logger, cfg, quartz.NewReal(), seed)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.RunTicker(ctx, 250*time.Millisecond)

	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}
	srv := server.NewServer(addr, manager, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Stop(shutdownCtx)
	}()

	return srv.Start()
}
