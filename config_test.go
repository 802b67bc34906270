package fixauth

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigPolicy(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != 24*time.Hour {
		t.Fatalf("access TTL: %v", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.AdminRefreshTTL != 7*24*time.Hour || cfg.JWT.UserRefreshTTL != 30*24*time.Hour {
		t.Fatalf("refresh TTLs: %v / %v", cfg.JWT.AdminRefreshTTL, cfg.JWT.UserRefreshTTL)
	}
	if cfg.TOTP.Period != 30 || cfg.TOTP.Skew != 5 || cfg.TOTP.Digits != 6 {
		t.Fatalf("totp policy: %+v", cfg.TOTP)
	}
	if cfg.Password.Cost != 10 || cfg.Password.GeneratedLength != 10 {
		t.Fatalf("password policy: %+v", cfg.Password)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := newTestConfig()
	if err := valid.validate(); err != nil {
		t.Fatalf("test config must validate: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing secrets", func(c *Config) { c.JWT.AccessSecret = nil }, "secrets"},
		{"identical secrets", func(c *Config) { c.JWT.RefreshSecret = c.JWT.AccessSecret }, "differ"},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }, "TTL"},
		{"short seed key", func(c *Config) { c.Seed.Key = []byte("short") }, "32 bytes"},
		{"totp digits", func(c *Config) { c.TOTP.Digits = 4 }, "digits"},
		{"negative skew", func(c *Config) { c.TOTP.Skew = -1 }, "skew"},
		{"bcrypt cost", func(c *Config) { c.Password.Cost = 99 }, "cost"},
		{"short generated", func(c *Config) { c.Password.GeneratedLength = 4 }, "8 characters"},
	}

	for _, tc := range cases {
		cfg := newTestConfig()
		tc.mutate(&cfg)
		err := cfg.validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.wantMsg)
		}
	}
}

func TestCloneConfigIsolatesKeyMaterial(t *testing.T) {
	cfg := newTestConfig()
	clone := cloneConfig(cfg)

	cfg.JWT.AccessSecret[0] ^= 0xff
	cfg.Seed.Key[0] ^= 0xff

	if bytes.Equal(clone.JWT.AccessSecret, cfg.JWT.AccessSecret) {
		t.Fatal("clone shares the access secret backing array")
	}
	if bytes.Equal(clone.Seed.Key, cfg.Seed.Key) {
		t.Fatal("clone shares the seed key backing array")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().
		WithConfig(newTestConfig()).
		WithAdminStore(newMockAdminStore()).
		WithUserStore(newMockUserStore()).
		WithMailer(&fakeMailer{})

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second build must fail")
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().WithConfig(newTestConfig()).Build(); err == nil {
		t.Fatal("build without stores must fail")
	}
	if _, err := New().
		WithConfig(newTestConfig()).
		WithAdminStore(newMockAdminStore()).
		WithUserStore(newMockUserStore()).
		Build(); err == nil {
		t.Fatal("build without mailer must fail")
	}
}
