package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codegraph/internal/analysis"
	"codegraph/internal/server"
	"codegraph/internal/snippet"
)

var errStdioClosed = errors.New("stdio session closed")

var (
	httpAddr string
	noStdio  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve graph queries over MCP (stdio) and optionally HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if httpAddr == "" {
			httpAddr = cfg.Server.HTTPAddr
		}

		// 1. Components
		store := openStore()
		engine := analysis.NewEngine()
		reader, err := snippet.NewReader(cfg.Project.Root)
		if err != nil {
			return err
		}
		srv := server.New(engine, store, reader, server.Options{
			MaxDiffBytes: cfg.Server.MaxDiffBytes,
			Logger:       logger,
		})

		// 2. Initial load; queries report NO_GRAPH until one succeeds
		if _, err := srv.Reload(ctx, "startup"); err != nil {
			logger.Warn("starting without a graph", slog.Any("error", err))
		}

		g, gctx := errgroup.WithContext(ctx)

		// 3. Reload on SIGHUP
		g.Go(func() error {
			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-hup:
					_, _ = srv.Reload(gctx, "signal")
				}
			}
		})

		if cfg.Server.Watch {
			g.Go(func() error {
				if err := srv.WatchSnapshot(gctx, store.Location()); err != nil {
					logger.Warn("snapshot watch disabled", slog.Any("error", err))
				}
				return nil
			})
		}

		if httpAddr != "" {
			g.Go(func() error {
				return serveHTTP(gctx, httpAddr, srv)
			})
		}

		if !noStdio {
			g.Go(func() error {
				if err := srv.RunStdio(gctx); err != nil && gctx.Err() == nil {
					return err
				}
				// Client disconnect ends the whole server.
				return errStdioClosed
			})
		}

		err = g.Wait()
		if errors.Is(err, errStdioClosed) {
			return nil
		}
		return err
	},
}

func serveHTTP(ctx context.Context, addr string, srv *server.Server) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", slog.String("addr", addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	}
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "http", "", "Also serve the HTTP API on this address, e.g. :8088")
	serveCmd.Flags().BoolVar(&noStdio, "no-stdio", false, "Disable the MCP stdio transport (HTTP only)")
}
