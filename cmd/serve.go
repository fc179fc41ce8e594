package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/srslogics/datasentinel/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipelines over HTTP",
	Long: `Serve exposes normalization, profiling, drift, conversion, column
listing and validation as HTTP endpoints, the surface the dashboard talks to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newStore()
		if err != nil {
			return err
		}
		addr := serveAddr
		var origins []string
		if cfg != nil {
			if addr == "" {
				addr = cfg.ListenAddr
			}
			origins = cfg.CORSOrigins
		}
		if addr == "" {
			addr = ":8000"
		}
		psi, alpha := driftThresholds()
		handler := server.New(server.Options{
			Store:        store,
			Pipeline:     pipelineConfig(),
			PSIThreshold: psi,
			KSAlpha:      alpha,
			CORSOrigins:  origins,
			Logger:       log.Default(),
		})

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf("✓ Listening on %s\n", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
}
