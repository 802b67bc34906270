// Package memstore provides in-memory admin and user stores. They back the
// engine's test suites and local development wiring; nothing persists across
// process restarts.
package memstore

import (
	"context"
	"sync"

	"github.com/fixacareer/fixauth"
)

// AdminStore is a mutex-guarded in-memory [fixauth.AdminStore].
type AdminStore struct {
	mu      sync.RWMutex
	records map[string]*fixauth.AdminRecord // keyed by record ID
	order   []string                        // insertion order of record IDs
}

// NewAdminStore returns an empty store.
func NewAdminStore() *AdminStore {
	return &AdminStore{records: make(map[string]*fixauth.AdminRecord)}
}

// GetByEmail implements [fixauth.AdminStore].
func (s *AdminStore) GetByEmail(_ context.Context, email string) (*fixauth.AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Email == email {
			return cloneAdmin(rec), nil
		}
	}
	return nil, fixauth.ErrPrincipalNotFound
}

// GetByID implements [fixauth.AdminStore].
func (s *AdminStore) GetByID(_ context.Context, recordID string) (*fixauth.AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, fixauth.ErrPrincipalNotFound
	}
	return cloneAdmin(rec), nil
}

// LastInserted implements [fixauth.AdminStore].
func (s *AdminStore) LastInserted(_ context.Context) (*fixauth.AdminRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, fixauth.ErrPrincipalNotFound
	}
	return cloneAdmin(s.records[s.order[len(s.order)-1]]), nil
}

// Create implements [fixauth.AdminStore].
func (s *AdminStore) Create(_ context.Context, record *fixauth.AdminRecord) (*fixauth.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneAdmin(record)
	s.records[stored.RecordID] = stored
	s.order = append(s.order, stored.RecordID)
	return cloneAdmin(stored), nil
}

// Update implements [fixauth.AdminStore].
func (s *AdminStore) Update(_ context.Context, recordID string, update fixauth.AdminUpdate) (*fixauth.AdminRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, fixauth.ErrPrincipalNotFound
	}
	if update.SecondFactorMethod != nil {
		rec.SecondFactorMethod = *update.SecondFactorMethod
	}
	if update.IsFirstLogin != nil {
		rec.IsFirstLogin = *update.IsFirstLogin
	}
	if update.PasswordHash != nil {
		rec.PasswordHash = *update.PasswordHash
	}
	if update.Permissions != nil {
		rec.Permissions = append([]string(nil), update.Permissions...)
	}
	if update.LastUpdatedBy != nil {
		rec.LastUpdatedBy = *update.LastUpdatedBy
	}
	return cloneAdmin(rec), nil
}

// UserStore is a mutex-guarded in-memory [fixauth.UserStore].
type UserStore struct {
	mu      sync.RWMutex
	records map[string]*fixauth.UserRecord
	order   []string
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{records: make(map[string]*fixauth.UserRecord)}
}

// GetByEmail implements [fixauth.UserStore].
func (s *UserStore) GetByEmail(_ context.Context, email string) (*fixauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.Email == email {
			return cloneUser(rec), nil
		}
	}
	return nil, fixauth.ErrPrincipalNotFound
}

// GetByID implements [fixauth.UserStore].
func (s *UserStore) GetByID(_ context.Context, recordID string) (*fixauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordID]
	if !ok {
		return nil, fixauth.ErrPrincipalNotFound
	}
	return cloneUser(rec), nil
}

// LastInserted implements [fixauth.UserStore].
func (s *UserStore) LastInserted(_ context.Context) (*fixauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, fixauth.ErrPrincipalNotFound
	}
	return cloneUser(s.records[s.order[len(s.order)-1]]), nil
}

// Create implements [fixauth.UserStore].
func (s *UserStore) Create(_ context.Context, record *fixauth.UserRecord) (*fixauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneUser(record)
	s.records[stored.RecordID] = stored
	s.order = append(s.order, stored.RecordID)
	return cloneUser(stored), nil
}

func cloneAdmin(rec *fixauth.AdminRecord) *fixauth.AdminRecord {
	out := *rec
	out.Permissions = append([]string(nil), rec.Permissions...)
	return &out
}

func cloneUser(rec *fixauth.UserRecord) *fixauth.UserRecord {
	out := *rec
	return &out
}
