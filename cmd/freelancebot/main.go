package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"freelancebot/internal/api"
	"freelancebot/internal/auth"
	"freelancebot/internal/bootstrap"
	"freelancebot/internal/bot"
	"freelancebot/internal/config"
	"freelancebot/internal/logger"
	"freelancebot/internal/session"
	tg "freelancebot/internal/telegram"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	boot, err := bootstrap.Run(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()
	defer boot.DB.Close()

	sessions := session.NewStore(time.Duration(cfg.Sessions.TTLMinutes) * time.Minute)
	defer sessions.Close()

	backend := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	accounts := auth.NewRepository(boot.DB)

	app, err := bot.New(cfg, backend, accounts, sessions)
	if err != nil {
		return err
	}

	reg := tg.NewRegistry()
	routes := app.Routes(reg)

	startedAt := time.Now()
	opts := tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			logger.L.With("component", "app").Info("app ready",
				slog.String("event", "ready"),
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			logger.L.With("component", "app").Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			return nil
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return tg.RunTelegram(ctx, opts)
}
