package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/internal/cli"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/monitor"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [FILE]",
	Short: "Serve the editor over HTTP",
	Long: `Starts an HTTP API over one editor. The current tree is also published
as a websocket feed on /monitor, which "arbor monitor --url" can follow.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		streams := httpAdapter.NewStreamManager()
		relay := cli.NewRelay(nil)
		session, err := openSession(cmd, streams.Hooks(), relay.Hooks())
		if err != nil {
			return err
		}
		defer session.Close()
		logger := session.Logger

		if len(args) == 1 {
			if err := session.Editor.LoadFile(args[0]); err != nil {
				return err
			}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		pub := monitor.NewPublisher(logger)
		defer pub.Close()
		go relay.Run(ctx, session.Editor, pub)

		api := httpAdapter.NewHandler(session.Editor,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(promhttp.HandlerFor(session.Registry, promhttp.HandlerOpts{})),
		)
		r := chi.NewRouter()
		r.Handle("/monitor", pub)
		r.Mount("/", api)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("Starting arbor server", "address", srv.Addr)
		return serve(ctx, srv, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx *cli.SignalContext, srv *http.Server, logger *slog.Logger) error {
	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server", "signal", ctx.Signal())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("Server stopped gracefully")
		return nil
	}
}
