// Package sysinfo checks the health of the host the monitor runs on.
// Five independent sub-checks (disk, memory, temperature, uptime,
// network) each contribute zero or one alert at their own severity; the
// source is clear iff no alert ranks above info. A probe that cannot
// read its metric is skipped, keeping the adapter fail-open.
package sysinfo

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/sensors"

	"github.com/ospreycove/hazmon/internal/domain"
)

// Threshold pairs: warning at the first bound, critical at the second.
const (
	diskWarnPercent = 90.0
	diskCritPercent = 97.0
	memWarnPercent  = 90.0
	memCritPercent  = 97.0
	tempWarnC       = 80.0
	tempCritC       = 95.0

	// A host up this long has unapplied kernel updates pending; worth a
	// nudge but never an emergency.
	uptimeWarn = 120 * 24 * time.Hour

	probeTimeout = 3 * time.Second
)

// Probes supplies the raw readings. Production uses gopsutil and a TCP
// dial; tests substitute fixed values.
type Probes struct {
	DiskUsedPercent func(ctx context.Context, path string) (float64, error)
	MemUsedPercent  func(ctx context.Context) (float64, error)
	MaxTemperature  func(ctx context.Context) (float64, error)
	Uptime          func(ctx context.Context) (time.Duration, error)
	NetworkReach    func(ctx context.Context, addr string) error
}

// DefaultProbes returns the gopsutil-backed probe set.
func DefaultProbes() Probes {
	return Probes{
		DiskUsedPercent: func(ctx context.Context, path string) (float64, error) {
			usage, err := disk.UsageWithContext(ctx, path)
			if err != nil {
				return 0, err
			}
			return usage.UsedPercent, nil
		},
		MemUsedPercent: func(ctx context.Context) (float64, error) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return vm.UsedPercent, nil
		},
		MaxTemperature: func(ctx context.Context) (float64, error) {
			readings, err := sensors.TemperaturesWithContext(ctx)
			if err != nil {
				return 0, err
			}
			var maxT float64
			for _, r := range readings {
				if r.Temperature > maxT {
					maxT = r.Temperature
				}
			}
			return maxT, nil
		},
		Uptime: func(ctx context.Context) (time.Duration, error) {
			seconds, err := host.UptimeWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return time.Duration(seconds) * time.Second, nil
		},
		NetworkReach: func(ctx context.Context, addr string) error {
			d := net.Dialer{Timeout: probeTimeout}
			conn, err := d.DialContext(ctx, "tcp", addr)
			if err != nil {
				return err
			}
			return conn.Close()
		},
	}
}

// Checker implements the system-health feed adapter.
type Checker struct {
	diskPath  string
	probeAddr string
	probes    Probes
	logger    *slog.Logger
}

// NewChecker creates a host-health checker. Pass DefaultProbes() in
// production.
func NewChecker(diskPath, probeAddr string, probes Probes, logger *slog.Logger) *Checker {
	return &Checker{
		diskPath:  diskPath,
		probeAddr: probeAddr,
		probes:    probes,
		logger:    logger,
	}
}

func (c *Checker) Source() domain.Source { return domain.SourceSystem }

// Check runs every sub-check. The location is unused: this source
// monitors the host, not the subject's surroundings.
func (c *Checker) Check(ctx context.Context, _ domain.Location) domain.CheckResult {
	var alerts []domain.HazardAlert

	if pct, err := c.probes.DiskUsedPercent(ctx, c.diskPath); err != nil {
		c.logger.Warn("disk probe failed", "error", err)
	} else if sev := thresholdSeverity(pct, diskWarnPercent, diskCritPercent); sev != domain.SeverityInfo {
		alerts = append(alerts, systemAlert(domain.SystemDisk, sev,
			fmt.Sprintf("disk %.0f%% full at %s", pct, c.diskPath)))
	}

	if pct, err := c.probes.MemUsedPercent(ctx); err != nil {
		c.logger.Warn("memory probe failed", "error", err)
	} else if sev := thresholdSeverity(pct, memWarnPercent, memCritPercent); sev != domain.SeverityInfo {
		alerts = append(alerts, systemAlert(domain.SystemMemory, sev,
			fmt.Sprintf("memory %.0f%% used", pct)))
	}

	if temp, err := c.probes.MaxTemperature(ctx); err != nil {
		c.logger.Warn("temperature probe failed", "error", err)
	} else if sev := thresholdSeverity(temp, tempWarnC, tempCritC); sev != domain.SeverityInfo {
		alerts = append(alerts, systemAlert(domain.SystemTemperature, sev,
			fmt.Sprintf("sensor at %.0f°C", temp)))
	}

	if up, err := c.probes.Uptime(ctx); err != nil {
		c.logger.Warn("uptime probe failed", "error", err)
	} else if up >= uptimeWarn {
		alerts = append(alerts, systemAlert(domain.SystemUptime, domain.SeverityWarning,
			fmt.Sprintf("up %d days without reboot", int(up.Hours()/24))))
	}

	if c.probeAddr != "" {
		if err := c.probes.NetworkReach(ctx, c.probeAddr); err != nil {
			alerts = append(alerts, systemAlert(domain.SystemNetwork, domain.SeverityCritical,
				fmt.Sprintf("cannot reach %s: %v", c.probeAddr, err)))
		}
	}

	return domain.ResultFromAlerts(domain.SourceSystem, alerts)
}

func thresholdSeverity(value, warn, crit float64) domain.Severity {
	switch {
	case value >= crit:
		return domain.SeverityCritical
	case value >= warn:
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}

func systemAlert(kind domain.SystemCheckKind, sev domain.Severity, message string) domain.HazardAlert {
	return domain.HazardAlert{
		Source:   domain.SourceSystem,
		Severity: sev,
		System:   &domain.SystemAlert{Kind: kind, Message: message},
	}
}
