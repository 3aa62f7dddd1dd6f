package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/audit"
)

type AuditRepository struct {
	mu      sync.RWMutex
	records []audit.Record
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, record audit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
	return nil
}

func (r *AuditRepository) CountSince(_ context.Context, provider audit.Provider, apiKey string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.records {
		if rec.Provider == provider && rec.APIKey == apiKey && !rec.RequestedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *AuditRepository) Latest(_ context.Context, provider audit.Provider, apiKey string) (audit.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest audit.Record
	found := false
	for _, rec := range r.records {
		if rec.Provider != provider || rec.APIKey != apiKey {
			continue
		}
		if !found || rec.RequestedAt.After(latest.RequestedAt) {
			latest = rec
			found = true
		}
	}
	return latest, found, nil
}

// Records returns a snapshot of every stored record.
func (r *AuditRepository) Records() []audit.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]audit.Record(nil), r.records...)
}
