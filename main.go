// main.go
//
// Entry point for the scratcher server and CLI.
// Loads .env (if present) before the command tree so SCRATCHER_* variables
// from the file feed flag defaults.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const releaseVersion = "0.1.0"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("scratcher")
		stop()
		os.Exit(1)
	}
}
