package state

import (
	"sync"

	"github.com/ospreycove/hazmon/internal/domain"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	location *domain.Location
	alert    *domain.PendingAlert
	override *domain.TestOverride
	reports  []*domain.SafetyReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Location() (domain.Location, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.location == nil {
		return domain.Location{}, false, nil
	}
	return *s.location, true, nil
}

func (s *MemoryStore) SetLocation(loc domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &loc
	return nil
}

func (s *MemoryStore) PendingAlert() (*domain.PendingAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alert == nil {
		return nil, nil
	}
	cp := *s.alert
	return &cp, nil
}

func (s *MemoryStore) SavePendingAlert(alert *domain.PendingAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *alert
	s.alert = &cp
	return nil
}

func (s *MemoryStore) ClearPendingAlert() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = nil
	return nil
}

func (s *MemoryStore) Override() (*domain.TestOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override == nil {
		return nil, nil
	}
	cp := *s.override
	return &cp, nil
}

func (s *MemoryStore) SaveOverride(o *domain.TestOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.override = &cp
	return nil
}

func (s *MemoryStore) ClearOverride() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = nil
	return nil
}

func (s *MemoryStore) AppendReport(report *domain.SafetyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *MemoryStore) LatestReport() (*domain.SafetyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reports) == 0 {
		return nil, nil
	}
	return s.reports[len(s.reports)-1], nil
}

// Reports returns the appended history for assertions.
func (s *MemoryStore) Reports() []*domain.SafetyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.SafetyReport(nil), s.reports...)
}
