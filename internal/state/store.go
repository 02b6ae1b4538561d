// Package state persists the monitor's small mutable state: the latest
// location fix, the pending alert, any live test override, and the
// append-only report history. The Store interface exists so tests can
// substitute an in-memory implementation for the file-backed one.
package state

import (
	"github.com/ospreycove/hazmon/internal/domain"
)

// Store is the durable state boundary. Readers treat corrupt or
// unreadable records as absent: under-reporting state is acceptable (a
// later cycle re-detects the hazard) but the check loop must never
// crash on bad state.
type Store interface {
	// Location returns the latest fix; ok is false when none is on file.
	Location() (loc domain.Location, ok bool, err error)
	SetLocation(domain.Location) error

	// PendingAlert returns nil when no alert is outstanding.
	PendingAlert() (*domain.PendingAlert, error)
	SavePendingAlert(*domain.PendingAlert) error
	ClearPendingAlert() error

	// Override returns nil when no override record exists. Expiry is
	// the caller's concern; the store only persists the record.
	Override() (*domain.TestOverride, error)
	SaveOverride(*domain.TestOverride) error
	ClearOverride() error

	// AppendReport durably adds one report to the run history.
	AppendReport(*domain.SafetyReport) error
	// LatestReport returns the most recent report, nil when the
	// history is empty.
	LatestReport() (*domain.SafetyReport, error)
}
