package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ospreycove/hazmon/internal/domain"
)

const (
	locationFile = "location.json"
	alertFile    = "pending_alert.json"
	overrideFile = "override.json"
	reportsDir   = "reports"
)

// FileStore keeps each record as a JSON file under a state directory
// and the report history as one timestamp-named file per run. The
// deployment runs at most one check cycle at a time, so a process-local
// mutex is sufficient; there is no cross-process locking.
type FileStore struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates the state directory (and reports subdirectory)
// if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state dir is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, reportsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

func (s *FileStore) Location() (domain.Location, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loc domain.Location
	ok, err := s.readJSON(locationFile, &loc)
	if err != nil || !ok {
		return domain.Location{}, false, err
	}
	if loc.CapturedAt.IsZero() {
		// Corrupt or hand-edited record: no usable fix.
		s.logger.Warn("location record invalid, treating as absent")
		return domain.Location{}, false, nil
	}
	return loc, true, nil
}

func (s *FileStore) SetLocation(loc domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(locationFile, loc)
}

func (s *FileStore) PendingAlert() (*domain.PendingAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alert domain.PendingAlert
	ok, err := s.readJSON(alertFile, &alert)
	if err != nil || !ok {
		return nil, err
	}
	if alert.RaisedAt.IsZero() {
		s.logger.Warn("pending alert record invalid, treating as absent")
		return nil, nil
	}
	return &alert, nil
}

func (s *FileStore) SavePendingAlert(alert *domain.PendingAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(alertFile, alert)
}

func (s *FileStore) ClearPendingAlert() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(alertFile)
}

func (s *FileStore) Override() (*domain.TestOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var o domain.TestOverride
	ok, err := s.readJSON(overrideFile, &o)
	if err != nil || !ok {
		return nil, err
	}
	if o.ExpiresAt.IsZero() {
		s.logger.Warn("override record invalid, treating as absent")
		return nil, nil
	}
	return &o, nil
}

func (s *FileStore) SaveOverride(o *domain.TestOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(overrideFile, o)
}

func (s *FileStore) ClearOverride() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(overrideFile)
}

// AppendReport writes one timestamp-named file per run. This is the
// system's only durable history; retention is left to the deployment.
func (s *FileStore) AppendReport(report *domain.SafetyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := filepath.Join(reportsDir,
		report.GeneratedAt.UTC().Format("2006-01-02T15-04-05Z")+".json")
	return s.writeJSON(name, report)
}

// LatestReport picks the newest history file by name; the timestamp
// naming scheme sorts lexicographically. A corrupt latest report is
// treated as absent like any other record.
func (s *FileStore) LatestReport() (*domain.SafetyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, reportsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var newest string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		if name > newest {
			newest = name
		}
	}
	if newest == "" {
		return nil, nil
	}

	var report domain.SafetyReport
	ok, err := s.readJSON(filepath.Join(reportsDir, newest), &report)
	if err != nil || !ok {
		return nil, err
	}
	return &report, nil
}

// readJSON decodes the named record. Corrupt records are logged and
// reported as absent rather than failing the caller.
func (s *FileStore) readJSON(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("state record unreadable, treating as absent", "file", name, "error", err)
		return false, nil
	}
	return true, nil
}

// writeJSON writes atomically via a temp file rename so a crash never
// leaves a half-written record.
func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
