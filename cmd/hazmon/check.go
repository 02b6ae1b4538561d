package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/ospreycove/hazmon/internal/monitor"
	"github.com/ospreycove/hazmon/internal/observability"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one hazard check and print the report",
	Long:  "check runs a single aggregation cycle, raising the pending alert and notifying when the verdict warrants it, then prints the resulting report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}

		if _, ok, err := rt.store.Location(); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("no location on file; set one with 'hazmon location set <lat> <lon>'")
		}

		clock := clockwork.NewRealClock()
		metrics := observability.NewMetrics()
		sink := rt.buildSink()
		if sink != nil {
			defer sink.Close() //nolint:errcheck
		}
		agg := rt.buildAggregator(metrics, sink, clock)

		mon := monitor.New(agg, rt.store, rt.buildNotifier(), metrics, monitor.Config{
			Threshold:   rt.cfg.Escalation.Threshold.Std(),
			Contact:     rt.cfg.Escalation.Contact,
			RepeatEvery: rt.cfg.Escalation.RepeatEvery.Std(),
			Logger:      rt.logger,
			Clock:       clock,
		})

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*rt.cfg.AdapterTimeout.Std())
		defer cancel()
		mon.RunCheckCycle(ctx)

		report, err := rt.store.LatestReport()
		if err != nil {
			return err
		}
		if report == nil {
			return fmt.Errorf("check produced no report")
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Println(report.Summary())
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the full report as JSON")
}
