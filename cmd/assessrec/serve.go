package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/poiesic/assessrec/server"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func serveCommand() *cli.Command {
	flags := withFlags(
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "addr",
			Usage:   "Listen address",
			Value:   ":8000",
			EnvVars: []string{"ASSESSREC_ADDR"},
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "request-timeout",
			Usage:   "Maximum time to answer one request",
			Value:   server.DefaultTimeout,
			EnvVars: []string{"ASSESSREC_REQUEST_TIMEOUT"},
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:    "shutdown-timeout",
			Usage:   "Grace period for in-flight requests on shutdown",
			Value:   10 * time.Second,
			EnvVars: []string{"ASSESSREC_SHUTDOWN_TIMEOUT"},
		}),
	)
	return &cli.Command{
		Name:   "serve",
		Usage:  "Build the recommender and serve POST /recommend",
		Flags:  flags,
		Before: loadConfigFile(flags),
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec, err := buildRecommender(ctx, c)
	if err != nil {
		return err
	}
	defer rec.Close()

	handler, err := server.New(rec, server.WithTimeout(c.Duration("request-timeout")))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
