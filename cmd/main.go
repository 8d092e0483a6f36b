package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"zmq_listener/internal/app"
	"zmq_listener/internal/config"
	dLog "zmq_listener/internal/domain/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.MustLoad()

	a, err := app.Build(cfg, os.Stdout)
	if err != nil {
		log.Print(err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.Logger.Error("close failed", dLog.Err(err))
		}
	}()

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("listener stopped", dLog.Err(err))
		return 1
	}
	a.Logger.Info("shutting down...")
	return 0
}
