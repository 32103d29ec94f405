package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"KanbanService/handlers"
	"KanbanService/server"
	"KanbanService/store"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the task service",
		Long: `Run the task service.

Examples:
  kanban serve --port 3000
  kanban serve --db-driver sqlite3 --db-path kanban.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	addServerFlags(cmd)
	cmd.Flags().Int("port", 0, "port to listen on (PORT)")
	cmd.Flags().Float64("rate-limit", 0, "requests per second (RATE_LIMIT)")
	cmd.Flags().Int("rate-burst", 0, "burst size of the rate limiter (RATE_BURST)")
	return cmd
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-driver", "", "database driver, mysql or sqlite3 (DB_DRIVER)")
	cmd.Flags().String("db-path", "", "database file of the sqlite3 driver (DB_PATH)")
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, a.cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// serve runs the task service until ctx is cancelled, then drains open requests.
func (a *app) serve(ctx context.Context) error {
	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	router := server.New(handlers.New(st, a.log), server.NewMetrics(), server.Options{
		RateLimit: rate.Limit(a.cfg.RateLimit),
		Burst:     a.cfg.RateBurst,
		Log:       a.log,
		Health:    st.Ping,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		a.log.Info("Server listening on port " + strconv.Itoa(a.cfg.Port))
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
