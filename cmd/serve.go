package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/devpath/resourced/internal/api"
	"github.com/devpath/resourced/internal/config"
	"github.com/devpath/resourced/internal/snapshot"
)

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()
	applyEnvOverrides()

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	svc, store, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := snapshot.NewScheduler(svc, cfg.RefreshDuration(), log)
	go sched.Run(ctx)

	addr := cfg.Addr()
	if flagAddr != "" {
		addr = flagAddr
	}
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(svc),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	}
}

func applyEnvOverrides() {
	if flagConfig == "" {
		flagConfig = os.Getenv("RESOURCED_CONFIG")
	}
	if flagDB == "" {
		flagDB = os.Getenv("RESOURCED_DB")
	}
	if flagAddr == "" {
		flagAddr = os.Getenv("RESOURCED_ADDR")
	}
}

func dbPath() string {
	if flagDB != "" {
		return flagDB
	}
	return config.DBPath()
}
