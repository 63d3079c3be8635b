package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/homedger-dev/homedger/internal/router"
	"github.com/homedger-dev/homedger/internal/setup"
	"github.com/homedger-dev/homedger/shared/config"
	"github.com/homedger-dev/homedger/shared/logger"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	// Local development secrets; missing .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Storage.Cleanup()

	if interval := cfg.Public.BlobGCInterval.Std(); interval > 0 {
		deps.GC.StartBackgroundCleanup(ctx, interval)
	}

	r := router.New(deps)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	server := &http.Server{Addr: ":" + httpPort, Handler: r}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	logger.Log.Info("server started", "port", httpPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
