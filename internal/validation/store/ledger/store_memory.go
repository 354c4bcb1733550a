package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"veripass/internal/claims"
	"veripass/internal/sentinel"
	"veripass/internal/validation/models"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entry does not exist
// - Return ErrAlreadyUsed when a passport number is already recorded
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps validation records in memory, keyed by passport
// number. The key bounds lookup cost; equivalence on lookup is still the
// full nine-field comparison, matching the observable behavior of a linear
// scan.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.ValidationRecord
}

// NewInMemory constructs an empty in-memory ledger.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*models.ValidationRecord)}
}

// Exists reports whether an equivalent claim has already been confirmed.
// Equivalence reuses the comparator rules, not passport-number equality
// alone, so a previously validated identity is detected even when queried
// with different casing in the prose fields.
func (s *InMemoryStore) Exists(_ context.Context, claim *claims.Record) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[claim.PassportNumber]
	if !ok {
		return false, nil
	}
	return rec.Claim.Matches(claim), nil
}

// Record appends a confirmed claim. The one-record-per-passport-number
// invariant surfaces as a conflict, never as a silent overwrite.
func (s *InMemoryStore) Record(_ context.Context, rec *models.ValidationRecord) error {
	if rec == nil {
		return fmt.Errorf("validation record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := rec.Claim.PassportNumber
	if _, ok := s.records[key]; ok {
		return fmt.Errorf("passport number already recorded: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *rec
	s.records[key] = &cp
	return nil
}

// DeleteByPassportNumber removes the entry for the passport number. Absence
// is observable to callers via ErrNotFound.
func (s *InMemoryStore) DeleteByPassportNumber(_ context.Context, passportNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[passportNumber]; !ok {
		return fmt.Errorf("validation record not found: %w", sentinel.ErrNotFound)
	}
	delete(s.records, passportNumber)
	return nil
}

// ListAll returns a snapshot of all records ordered by validation time.
func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.ValidationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ValidationRecord, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidatedAt.Before(out[j].ValidatedAt) })
	return out, nil
}
