package main

import (
	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/adapter/airquality"
	kafkaadapter "github.com/ospreycove/hazmon/internal/adapter/kafka"
	"github.com/ospreycove/hazmon/internal/adapter/news"
	"github.com/ospreycove/hazmon/internal/adapter/seismic"
	"github.com/ospreycove/hazmon/internal/adapter/sysinfo"
	"github.com/ospreycove/hazmon/internal/adapter/weather"
	"github.com/ospreycove/hazmon/internal/aggregator"
	"github.com/ospreycove/hazmon/internal/newsfilter"
	"github.com/ospreycove/hazmon/internal/notifier"
	"github.com/ospreycove/hazmon/internal/observability"
)

// buildAdapters assembles one feed adapter per hazard source from the
// configuration.
func (rt *runtime) buildAdapters(clock clockwork.Clock) []aggregator.FeedAdapter {
	cfg := rt.cfg
	filter := newsfilter.New(cfg.News.LocationKeywords, cfg.News.MaxAge.Std(), cfg.News.MaxItems, clock)

	return []aggregator.FeedAdapter{
		weather.NewClient(cfg.Weather.BaseURL, rt.logger),
		seismic.NewClient(cfg.Seismic.BaseURL, cfg.Seismic.RadiusKM, cfg.Seismic.MinMagnitude, cfg.Seismic.Window.Std(), rt.logger, clock),
		airquality.NewClient(cfg.AirQuality.BaseURL, cfg.AirQuality.ClearThreshold, rt.logger),
		news.NewClient(cfg.News.Feeds, filter, rt.logger, clock),
		sysinfo.NewChecker(cfg.System.DiskPath, cfg.System.ProbeAddr, sysinfo.DefaultProbes(), rt.logger),
	}
}

// buildSink returns the Kafka report sink when brokers are configured,
// nil otherwise. The caller owns Close.
func (rt *runtime) buildSink() *kafkaadapter.Writer {
	if !rt.cfg.Kafka.Enabled() {
		return nil
	}
	return kafkaadapter.NewWriter(rt.cfg.Kafka.Brokers, rt.cfg.Kafka.Topic, rt.logger)
}

// buildAggregator wires adapters, state, and the optional sink.
func (rt *runtime) buildAggregator(metrics *observability.Metrics, sink *kafkaadapter.Writer, clock clockwork.Clock) *aggregator.Aggregator {
	// A nil *Writer must not reach the interface value or the sink
	// nil-check stops working.
	var reportSink aggregator.ReportSink
	if sink != nil {
		reportSink = sink
	}
	return aggregator.New(rt.buildAdapters(clock), rt.store, reportSink, rt.cfg.AdapterTimeout.Std(), rt.logger, metrics, clock)
}

// buildNotifier returns the Pushover notifier when credentials are
// present, a no-op otherwise.
func (rt *runtime) buildNotifier() notifier.Notifier {
	p := rt.cfg.Pushover
	if p.Token() == "" || p.User() == "" {
		rt.logger.Warn("pushover credentials missing, notifications disabled")
		return notifier.Nop{}
	}
	return notifier.Pushover{
		Token:             p.Token(),
		UserKey:           p.User(),
		EscalationUserKey: p.EscalationUser(),
	}
}
