// Package domain models the hazard-monitoring data: the subject's
// location, per-source check results, the aggregate safety report, and
// the pending-alert record the escalation logic reads.
//
// # Sources
//
// Five feed sources are monitored, identified by the closed [Source]
// enum: weather, seismic, air_quality, news, and system. Each source's
// adapter normalizes its provider payload into a [CheckResult]; the
// per-source alert payloads differ and are modeled as one struct per
// variant on [HazardAlert], tagged by Source.
//
// # Fail-open convention
//
// A source that cannot be reached reports no hazard. Adapter failures
// become CheckResult{Clear: true, Error: "..."} so that infrastructure
// trouble never raises a false alarm; the Error field exists only for
// diagnostics. By construction Clear is true exactly when Alerts is
// empty — the only way to get a result where the two disagree is
// operator-supplied override data.
//
// # Severity
//
// Alert severities order info < warning < critical. Provider scales are
// mapped onto that three-tier rank; "severe" and "extreme" (NWS
// vocabulary) rank with critical. The rank drives verdict computation
// only: any critical-ranked alert upgrades a report's verdict from
// ALERTS_FOUND to CRITICAL.
//
// # Air quality tiers
//
// US AQI thresholds follow the EPA breakpoints relevant here:
//
//	≤50   Good
//	≤100  Moderate
//	≤150  Unhealthy for Sensitive Groups
//	>150  Unhealthy
//
// Only the two Unhealthy tiers (index > 100) mark the air-quality
// check not-clear; Moderate is reported in the reading but stays clear.
//
// # Seismic thresholds
//
// Only events with magnitude ≥ 2.5, within the configured radius, and
// within the last 24 hours count. Smaller or older events are dropped
// during normalization.
//
// # Time
//
// All domain timestamps come from a package-level clockwork time source
// so tests can freeze time via [SetClock].
package domain
