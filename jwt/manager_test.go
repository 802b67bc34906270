package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		AccessSecret:    []byte("access-secret"),
		RefreshSecret:   []byte("refresh-secret"),
		AccessTTL:       24 * time.Hour,
		AdminRefreshTTL: 7 * 24 * time.Hour,
		UserRefreshTTL:  30 * 24 * time.Hour,
		Issuer:          "fixacareer-test",
		Now:             clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	token, err := m.IssueAccess("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if claims.RecordID != "rec-1" || claims.Subject != "ADM-1001" || claims.Email != "a@x.com" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "fixacareer-test" {
		t.Fatalf("issuer: %s", claims.Issuer)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	access, err := m.IssueAccess("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := m.IssueRefresh("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token must fail refresh parsing, got %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must fail access parsing, got %v", err)
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	token, err := m.IssueAccess("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	clock.now = clock.now.Add(24*time.Hour - time.Minute)
	if _, err := m.ParseAccess(token); err != nil {
		t.Fatalf("token must still parse one minute before expiry: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Minute)
	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must fail, got %v", err)
	}
}

func TestRefreshLifetimeDependsOnRole(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	adminToken, err := m.IssueRefresh("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueRefresh admin: %v", err)
	}
	userToken, err := m.IssueRefresh("rec-2", "USR-1001", "u@x.com", RoleUser)
	if err != nil {
		t.Fatalf("IssueRefresh user: %v", err)
	}

	adminClaims, err := m.ParseRefresh(adminToken)
	if err != nil {
		t.Fatalf("ParseRefresh admin: %v", err)
	}
	userClaims, err := m.ParseRefresh(userToken)
	if err != nil {
		t.Fatalf("ParseRefresh user: %v", err)
	}

	adminTTL := adminClaims.ExpiresAt.Sub(clock.now)
	userTTL := userClaims.ExpiresAt.Sub(clock.now)
	if adminTTL != 7*24*time.Hour {
		t.Fatalf("admin refresh TTL: %v", adminTTL)
	}
	if userTTL != 30*24*time.Hour {
		t.Fatalf("user refresh TTL: %v", userTTL)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	other, err := NewManager(Config{
		AccessSecret:    []byte("access-secret"),
		RefreshSecret:   []byte("refresh-secret"),
		AccessTTL:       time.Hour,
		AdminRefreshTTL: time.Hour,
		UserRefreshTTL:  time.Hour,
		Issuer:          "someone-else",
		Now:             clock.Now,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := other.IssueAccess("rec-1", "ADM-1001", "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong issuer must fail, got %v", err)
	}
}

func TestParseRejectsUnknownRole(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	// hand-craft a token with a role outside the closed set
	claims := Claims{
		RecordID: "rec-1",
		Email:    "a@x.com",
		Role:     "root",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "ADM-1001",
			Issuer:    "fixacareer-test",
			IssuedAt:  jwtlib.NewNumericDate(clock.now),
			ExpiresAt: jwtlib.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unknown role must fail, got %v", err)
	}
}

func TestParseRejectsAlgorithmSubstitution(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	m := newTestManager(t, clock)

	claims := Claims{
		RecordID: "rec-1",
		Role:     RoleAdmin,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "fixacareer-test",
			ExpiresAt: jwtlib.NewNumericDate(clock.now.Add(time.Hour)),
		},
	}
	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims)
	token, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf(`"none" token must fail, got %v`, err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	base := Config{
		AccessSecret:    []byte("a"),
		RefreshSecret:   []byte("b"),
		AccessTTL:       time.Hour,
		AdminRefreshTTL: time.Hour,
		UserRefreshTTL:  time.Hour,
	}

	missing := base
	missing.AccessSecret = nil
	if _, err := NewManager(missing); err == nil {
		t.Fatal("missing secret must fail")
	}

	same := base
	same.RefreshSecret = same.AccessSecret
	if _, err := NewManager(same); err == nil {
		t.Fatal("identical secrets must fail")
	}

	zero := base
	zero.AccessTTL = 0
	if _, err := NewManager(zero); err == nil {
		t.Fatal("zero TTL must fail")
	}
}
