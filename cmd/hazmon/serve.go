package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/adapter/httpapi"
	"github.com/ospreycove/hazmon/internal/escalate"
	"github.com/ospreycove/hazmon/internal/monitor"
	"github.com/ospreycove/hazmon/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor loop and HTTP API",
	Long:  "serve starts the periodic hazard checks, the escalation poller, and the local HTTP control surface, and runs until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		clock := clockwork.NewRealClock()
		metrics := observability.NewMetrics()

		sink := rt.buildSink()
		if sink != nil {
			rt.logger.Info("kafka report sink enabled", "topic", rt.cfg.Kafka.Topic)
			defer func() {
				if err := sink.Close(); err != nil {
					rt.logger.Error("kafka writer close error", "error", err)
				}
			}()
		}

		agg := rt.buildAggregator(metrics, sink, clock)
		poller := escalate.NewPoller(rt.store, rt.cfg.Escalation.Threshold.Std(), rt.cfg.Escalation.Contact, clock)

		mon := monitor.New(agg, rt.store, rt.buildNotifier(), metrics, monitor.Config{
			CheckInterval: rt.cfg.CheckInterval.Std(),
			PollInterval:  rt.cfg.PollInterval.Std(),
			Threshold:     rt.cfg.Escalation.Threshold.Std(),
			Contact:       rt.cfg.Escalation.Contact,
			RepeatEvery:   rt.cfg.Escalation.RepeatEvery.Std(),
			Logger:        rt.logger,
			Clock:         clock,
		})

		srv := httpapi.NewServer(rt.cfg.HTTPAddr, rt.store, agg, poller, rt.logger, clock)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("http server error", "error", err)
			}
		}()

		if err := mon.Start(ctx); err != nil {
			rt.logger.Error("monitor error", "error", err)
		}

		rt.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout.Std())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.logger.Error("http server shutdown error", "error", err)
		}

		rt.logger.Info("shutdown complete")
		return nil
	},
}
