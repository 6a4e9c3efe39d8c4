package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/actor"
	"github.com/comalice/statechart/httpapi"
	"github.com/comalice/statechart/internal/logging"
	"github.com/comalice/statechart/metrics"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <chart>",
		Short: "Run a chart as an actor behind an HTTP API",
		Long: `Starts the chart on the async runtime and exposes it over HTTP: POST /events,
GET /state, /table, /graph, /actors and Prometheus metrics on /metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			d, err := loadDescriptor(args[0], logger)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			met, err := metrics.New(reg)
			if err != nil {
				return err
			}

			m, err := statechart.New(d, statechart.NewVars(d.InitialContext()),
				statechart.WithObserver(statechart.Observers{
					logging.NewObserver(logger, d),
					met.Observer(d.ID()),
				}))
			if err != nil {
				return err
			}
			tracker := httpapi.NewTracker(m)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sys := actor.NewSystem(ctx, actor.WithLogger(logger), actor.WithMetrics(met))
			addr, err := actor.Spawn[statechart.Event](sys, tracker, cfg.MailboxCapacity, actor.WithName(d.ID()))
			if err != nil {
				return err
			}
			defer addr.Close()

			srv := &http.Server{
				Addr: cfg.HTTPAddr,
				Handler: httpapi.NewHandler(httpapi.Options{
					Sender:   addr,
					Target:   tracker,
					Actors:   sys.Actors,
					Gatherer: reg,
					Logger:   logger,
				}),
				ReadHeaderTimeout: shutdownTimeout,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info("starting server", "addr", srv.Addr, "chart", d.ID(), "version", d.Version())
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				_ = sys.Shutdown()
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				_ = srv.Close()
			}
			if err := sys.Shutdown(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}
