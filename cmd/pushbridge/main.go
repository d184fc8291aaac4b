package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/app"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bridge, err := app.NewBridge(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init push bridge: %v", err)
	}

	if err := bridge.Run(ctx); err != nil {
		log.Printf("push bridge stopped: %v", err)
		os.Exit(1)
	}
}
