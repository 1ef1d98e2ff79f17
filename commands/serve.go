package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cityguard/auth"
	"cityguard/config"
	"cityguard/db"
	"cityguard/handlers"

	"github.com/apex/log"
	"github.com/spf13/cobra"
)

const (
	sessionSweepInterval = time.Hour
	shutdownTimeout      = 15 * time.Second
)

// ServeCommand returns the serve command
func ServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long:  `Run the CityGuard API server. It stops gracefully on SIGINT or SIGTERM.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initialise(true); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := net.JoinHostPort(config.AppConfig.ListenIP, fmt.Sprint(config.AppConfig.ListenPort))
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("could not listen on %s: %w", addr, err)
			}
			return serve(ctx, ln)
		},
	}
}

// serve runs the API on ln until ctx is cancelled.
func serve(ctx context.Context, ln net.Listener) error {
	cfg := config.AppConfig

	if err := db.InitDB(cfg.DBDriver, cfg.DBDSN); err != nil {
		ln.Close()
		return fmt.Errorf("initialising database: %w", err)
	}
	defer db.DB.Close()

	auth.InitStore()
	auth.InitJWT()

	if cfg.RedisAddr != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			ln.Close()
			return err
		}
		defer rdb.Close()
		handlers.UseRedisLimiters(rdb)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweepSessions(workerCtx, sessionSweepInterval)
	}()
	// The sweeper must be gone before the database closes.
	defer func() {
		workerCancel()
		<-sweeperDone
	}()

	server := &http.Server{
		Handler:      handlers.NewRouter(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{"addr": ln.Addr().String(), "app": cfg.AppName}).Info("server starting")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
