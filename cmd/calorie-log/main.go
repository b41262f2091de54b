// cmd/calorie-log/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"calorie-log/internal/logger"
	"calorie-log/internal/server"
	"calorie-log/internal/utils"
)

var (
	host    = flag.String("host", utils.GetEnv("CALORIE_LOG_HOST", "127.0.0.1"), "Host address")
	port    = flag.Int("port", utils.GetEnvAsInt("CALORIE_LOG_PORT", 8787), "Port for the HTTP server")
	dataDir = flag.String("data-dir", utils.GetEnv("CALORIE_LOG_DATA_DIR", "data"), "Directory holding entries.jsonl")
	siteDir = flag.String("site-dir", utils.GetEnv("CALORIE_LOG_SITE_DIR", "site"), "Directory holding dashboard assets")
	mode    = flag.String("mode", utils.GetEnv("CALORIE_LOG_MODE", "dev"), "Run mode: dev or prod")
	version = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("calorie-log version 1.0.0")
		os.Exit(0)
	}

	logg, err := logger.New(*mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logg.Sync()

	config := &server.Config{
		Host:    *host,
		Port:    *port,
		DataDir: *dataDir,
		SiteDir: *siteDir,
		Mode:    *mode,
	}

	srv, err := server.NewServer(config, logg)
	if err != nil {
		logg.Fatal("failed to create server", "error", err)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logg.Info("serving", "dashboard", fmt.Sprintf("http://%s:%d/", *host, *port),
			"paste_log", fmt.Sprintf("http://%s:%d/log", *host, *port))
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		logg.Info("received shutdown signal")
	case err := <-errCh:
		logg.Error("server error", "error", err)
	}

	logg.Info("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		logg.Error("error during shutdown", "error", err)
	}
}
