package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aq2208/tableorder/cmd/tableorder/app"
	"github.com/aq2208/tableorder/configs"
	"github.com/aq2208/tableorder/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | test | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}
	lg := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	if cfg.Payment.SimulateWithoutURL {
		lg.Warn("payments without a gateway url will be reported as paid", "env", env, "delay", cfg.Payment.SimulateDelay)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.InitWithConfig(ctx, cfg)
	if err != nil {
		lg.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	lg.Info("tableorder listening", "env", env, "addr", cfg.App.HTTPAddr)
	if err := a.Run(ctx); err != nil {
		lg.Error("stopped with error", "err", err)
		cleanup()
		os.Exit(1)
	}
	lg.Info("shutdown complete")
}
