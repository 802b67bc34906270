// Package jwt issues and verifies the FixACareer session tokens: short-lived
// HS256 access tokens and longer-lived refresh tokens signed with a distinct
// secret. There is no revocation list; a token stays valid until expiry.
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role strings carried in token claims. They mirror the engine's Role type
// but live here as plain strings to keep this package dependency-free.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	// ErrInvalidToken covers expiry, signature mismatch, malformed payloads,
	// and algorithm substitution.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the signed claim set: record id, sequential id, email, and role,
// plus the registered expiry/issued-at fields.
type Claims struct {
	RecordID string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Config configures a [Manager]. AccessSecret and RefreshSecret must be
// non-empty and distinct. Now is an injectable clock for tests; nil means
// time.Now.
type Config struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	AccessTTL       time.Duration
	AdminRefreshTTL time.Duration
	UserRefreshTTL  time.Duration
	Issuer          string
	Now             func() time.Time
}

// Manager signs and parses both token kinds. Instances are immutable after
// construction and safe for concurrent use.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("jwt secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.AdminRefreshTTL <= 0 || cfg.UserRefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{config: cfg, now: now}, nil
}

// IssueAccess signs an access token for the given principal.
func (m *Manager) IssueAccess(recordID, seqID, email, role string) (string, error) {
	return m.sign(recordID, seqID, email, role, m.config.AccessSecret, m.config.AccessTTL)
}

// IssueRefresh signs a refresh token. The lifetime depends on the role:
// admins get the shorter policy, end users the longer one.
func (m *Manager) IssueRefresh(recordID, seqID, email, role string) (string, error) {
	ttl := m.config.AdminRefreshTTL
	if role == RoleUser {
		ttl = m.config.UserRefreshTTL
	}
	return m.sign(recordID, seqID, email, role, m.config.RefreshSecret, ttl)
}

// ParseAccess verifies a token against the access secret.
func (m *Manager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, m.config.AccessSecret)
}

// ParseRefresh verifies a token against the refresh secret.
func (m *Manager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, m.config.RefreshSecret)
}

func (m *Manager) sign(recordID, seqID, email, role string, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RecordID: recordID,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   seqID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) parse(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RoleAdmin && claims.Role != RoleUser {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
