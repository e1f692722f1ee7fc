package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"foodmemories/internal/client"
	"foodmemories/internal/config"
	"foodmemories/internal/facilitator"
	"foodmemories/internal/logging"
	"foodmemories/internal/otel"
	"foodmemories/internal/workshop"
)

func main() {
	cfg := config.Load()

	fs := flag.NewFlagSet("facilitator", flag.ExitOnError)
	apiURL := fs.String("api", cfg.Facilitator.APIBaseURL, "base URL of the Food Memories API")
	stateDir := fs.String("state", cfg.Facilitator.StateDir, "directory for the saved checklist")
	_ = fs.Parse(os.Args[1:])

	// diagnostics go to stderr so they never interleave with the console
	log := logging.New(os.Stderr, cfg.Location()).With(slog.String("component", "facilitator"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, *apiURL, *stateDir, cfg.Upload.MaxBytes); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, apiURL, stateDir string, maxBytes int64) error {
	shutdownTracing, err := otel.Init(ctx, log, otel.WithServiceName("foodmemories-facilitator"))
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	checklist, err := workshop.LoadChecklist(workshop.FileStore{Dir: stateDir})
	if err != nil {
		return err
	}

	api := client.New(apiURL, client.WithMaxUploadBytes(maxBytes))
	session := facilitator.NewSession(api, checklist, log)
	defer session.Close()

	console := facilitator.NewConsole(session, os.Stdout)
	fmt.Printf("Food Memories facilitator console (%s). Type \"help\" for commands.\n", apiURL)

	go func() {
		if err := session.RefreshAll(ctx); err != nil {
			log.Warn("initial_refresh_failed", logging.Err(err))
		}
	}()

	return console.Run(ctx, os.Stdin)
}
