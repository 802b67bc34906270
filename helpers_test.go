package fixauth

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockAdminStore struct {
	mu     sync.Mutex
	admins map[string]*AdminRecord // keyed by record ID
	order  []string

	getErr    error
	createErr error
	updateErr error

	updateCalls int
}

func newMockAdminStore() *mockAdminStore {
	return &mockAdminStore{admins: make(map[string]*AdminRecord)}
}

func (m *mockAdminStore) GetByEmail(_ context.Context, email string) (*AdminRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, rec := range m.admins {
		if rec.Email == email {
			out := *rec
			return &out, nil
		}
	}
	return nil, ErrPrincipalNotFound
}

func (m *mockAdminStore) GetByID(_ context.Context, recordID string) (*AdminRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.admins[recordID]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	out := *rec
	return &out, nil
}

func (m *mockAdminStore) Create(_ context.Context, record *AdminRecord) (*AdminRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	stored := *record
	m.admins[stored.RecordID] = &stored
	m.order = append(m.order, stored.RecordID)
	out := stored
	return &out, nil
}

func (m *mockAdminStore) Update(_ context.Context, recordID string, update AdminUpdate) (*AdminRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	rec, ok := m.admins[recordID]
	if !ok {
		return nil, ErrPrincipalNotFound
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
	out := *rec
	return &out, nil
}

func (m *mockAdminStore) LastInserted(_ context.Context) (*AdminRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return nil, ErrPrincipalNotFound
	}
	out := *m.admins[m.order[len(m.order)-1]]
	return &out, nil
}

func (m *mockAdminStore) put(rec *AdminRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	m.admins[stored.RecordID] = &stored
	m.order = append(m.order, stored.RecordID)
}

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*UserRecord
	order []string

	getErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*UserRecord)}
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, rec := range m.users {
		if rec.Email == email {
			out := *rec
			return &out, nil
		}
	}
	return nil, ErrPrincipalNotFound
}

func (m *mockUserStore) GetByID(_ context.Context, recordID string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.users[recordID]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	out := *rec
	return &out, nil
}

func (m *mockUserStore) Create(_ context.Context, record *UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *record
	m.users[stored.RecordID] = &stored
	m.order = append(m.order, stored.RecordID)
	out := stored
	return &out, nil
}

func (m *mockUserStore) LastInserted(_ context.Context) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.order) == 0 {
		return nil, ErrPrincipalNotFound
	}
	out := *m.users[m.order[len(m.order)-1]]
	return &out, nil
}

func (m *mockUserStore) put(rec *UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	m.users[stored.RecordID] = &stored
	m.order = append(m.order, stored.RecordID)
}

type sentMail struct {
	kind string // "otp", "temp", "welcome"
	to   string
	body string // code or temporary password
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail

	otpErr     error
	tempErr    error
	welcomeErr error
}

func (f *fakeMailer) SendOTP(_ context.Context, admin *AdminRecord, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.otpErr != nil {
		return f.otpErr
	}
	f.sent = append(f.sent, sentMail{kind: "otp", to: admin.Email, body: code})
	return nil
}

func (f *fakeMailer) SendTemporaryPassword(_ context.Context, admin *AdminRecord, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tempErr != nil {
		return f.tempErr
	}
	f.sent = append(f.sent, sentMail{kind: "temp", to: admin.Email, body: password})
	return nil
}

func (f *fakeMailer) SendWelcome(_ context.Context, user *UserRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.welcomeErr != nil {
		return f.welcomeErr
	}
	f.sent = append(f.sent, sentMail{kind: "welcome", to: user.Email})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	cfg.Seed.Key = bytes.Repeat([]byte{0x24}, 32)
	// lower the cost so the suite stays fast
	cfg.Password.Cost = 4
	return cfg
}

type engineFixture struct {
	engine *Engine
	admins *mockAdminStore
	users  *mockUserStore
	mailer *fakeMailer
}

func newTestEngine(t *testing.T, rdb *redis.Client) *engineFixture {
	t.Helper()

	admins := newMockAdminStore()
	users := newMockUserStore()
	mailer := &fakeMailer{}

	builder := New().
		WithConfig(newTestConfig()).
		WithAdminStore(admins).
		WithUserStore(users).
		WithMailer(mailer)
	if rdb != nil {
		builder = builder.WithRedis(rdb)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)

	return &engineFixture{engine: engine, admins: admins, users: users, mailer: mailer}
}

const testSeed = "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"

// seedAdmin inserts an admin with password "secret1" and the fixture TOTP
// seed encrypted under the test key.
func (f *engineFixture) seedAdmin(t *testing.T, mutate func(*AdminRecord)) *AdminRecord {
	t.Helper()

	hash, err := f.engine.hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	encrypted, err := f.engine.seeds.Encrypt(testSeed)
	if err != nil {
		t.Fatalf("encrypt seed: %v", err)
	}

	rec := &AdminRecord{
		RecordID:      "rec-adm-1",
		ID:            "ADM-1001",
		FirstName:     "Ada",
		LastName:      "Admin",
		Email:         "a@x.com",
		PasswordHash:  hash,
		EncryptedSeed: encrypted,
		IsFirstLogin:  false,
	}
	if mutate != nil {
		mutate(rec)
	}
	f.admins.put(rec)
	return rec
}

func (f *engineFixture) seedUser(t *testing.T, mutate func(*UserRecord)) *UserRecord {
	t.Helper()

	hash, err := f.engine.hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	rec := &UserRecord{
		RecordID:     "rec-usr-1",
		ID:           "USR-1001",
		FirstName:    "Uma",
		LastName:     "User",
		Email:        "u@x.com",
		PasswordHash: hash,
	}
	if mutate != nil {
		mutate(rec)
	}
	f.users.put(rec)
	return rec
}
