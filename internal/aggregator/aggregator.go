// Package aggregator runs all feed adapters concurrently and merges
// their results into one SafetyReport. Adapters are independent: a slow
// or failing upstream affects only its own slot, converted to the
// fail-open default on timeout.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/observability"
	"github.com/ospreycove/hazmon/internal/state"
)

// ErrNoLocation is returned when no location fix is on file. It is a
// hard precondition failure, distinct from any verdict: without a
// location there is no meaningful report and the caller must not read
// the run as ALL_CLEAR.
var ErrNoLocation = errors.New("no location on file")

// FeedAdapter is one hazard source. Check never panics past its
// boundary and never returns an error: failures become fail-open
// results.
type FeedAdapter interface {
	Source() domain.Source
	Check(ctx context.Context, loc domain.Location) domain.CheckResult
}

// ReportSink receives each completed report, e.g. the Kafka publisher.
type ReportSink interface {
	Publish(ctx context.Context, report *domain.SafetyReport) error
}

// Aggregator fans out to the configured adapters and assembles reports.
type Aggregator struct {
	adapters []FeedAdapter
	store    state.Store
	sink     ReportSink // optional
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	ready    atomic.Bool
}

// New creates an Aggregator. sink may be nil; a nil clock means real
// time.
func New(adapters []FeedAdapter, store state.Store, sink ReportSink, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Aggregator{
		adapters: adapters,
		store:    store,
		sink:     sink,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once at least one check run has completed.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no check run has completed yet")
	}
	return nil
}

// RunCheck executes one aggregation cycle: load the location, query
// every adapter concurrently, apply any live override, derive the
// verdict, persist and publish the report.
func (a *Aggregator) RunCheck(ctx context.Context) (*domain.SafetyReport, error) {
	start := time.Now()

	loc, ok, err := a.store.Location()
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	if !ok {
		return nil, ErrNoLocation
	}

	results := a.fanOut(ctx, loc)
	a.applyOverride(results)

	checks := make(map[domain.Source]domain.CheckResult, len(results))
	for src, res := range results {
		checks[src] = res
	}
	report := domain.NewReport(loc, checks)

	if err := a.store.AppendReport(report); err != nil {
		// History is diagnostic; the verdict still stands.
		a.logger.Error("append report failed", "error", err)
	}
	if a.sink != nil {
		if err := a.sink.Publish(ctx, report); err != nil {
			a.logger.Error("publish report failed", "error", err)
		} else {
			a.metrics.ReportsPublished.Inc()
		}
	}

	a.metrics.ChecksTotal.Inc()
	a.metrics.CheckDuration.Observe(time.Since(start).Seconds())
	a.ready.Store(true)

	a.logger.Info("check complete",
		"verdict", report.Verdict,
		"sources", len(report.Checks),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return report, nil
}

// fanOut queries every adapter in parallel. Each goroutine owns one
// slot in the result map, keyed by source, so no two writers share
// state; the barrier joins them before the report is built.
func (a *Aggregator) fanOut(ctx context.Context, loc domain.Location) map[domain.Source]domain.CheckResult {
	results := make(map[domain.Source]domain.CheckResult, len(a.adapters))
	slots := make([]domain.CheckResult, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter FeedAdapter) {
			defer wg.Done()
			slots[i] = a.checkOne(ctx, adapter, loc)
		}(i, adapter)
	}
	wg.Wait()

	for i, adapter := range a.adapters {
		results[adapter.Source()] = slots[i]
	}
	return results
}

// checkOne runs a single adapter under the per-adapter timeout. A
// timed-out call's eventual result is discarded; its slot gets the
// fail-open default, identical to a caught error.
func (a *Aggregator) checkOne(ctx context.Context, adapter FeedAdapter, loc domain.Location) domain.CheckResult {
	src := adapter.Source()
	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan domain.CheckResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("adapter panic", "source", src, "panic", r)
				done <- domain.FailedResult(src, fmt.Errorf("adapter panic: %v", r))
			}
		}()
		done <- adapter.Check(cctx, loc)
	}()

	var result domain.CheckResult
	select {
	case result = <-done:
	case <-cctx.Done():
		result = domain.FailedResult(src, fmt.Errorf("timed out after %s", a.timeout))
	}

	a.metrics.AdapterDuration.WithLabelValues(string(src)).Observe(time.Since(start).Seconds())
	if result.Error != "" {
		a.metrics.AdapterErrors.WithLabelValues(string(src)).Inc()
	}
	return result
}

// applyOverride substitutes whole per-source results from a live
// override. Expired or corrupt override records are treated as absent.
func (a *Aggregator) applyOverride(results map[domain.Source]domain.CheckResult) {
	override, err := a.store.Override()
	if err != nil {
		a.logger.Warn("override read failed, ignoring", "error", err)
		a.metrics.OverrideActive.Set(0)
		return
	}
	if !override.Active(a.clock.Now()) {
		a.metrics.OverrideActive.Set(0)
		return
	}

	a.metrics.OverrideActive.Set(1)
	for src, substitute := range override.Substitutes {
		if _, configured := results[src]; !configured {
			continue
		}
		substitute.Source = src
		results[src] = substitute
		a.logger.Info("override applied", "scenario", override.Scenario, "source", src)
	}
}
