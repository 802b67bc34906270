package fixauth

import (
	"context"
	"log/slog"
	"time"

	"github.com/fixacareer/fixauth/jwt"
	"github.com/fixacareer/fixauth/password"
)

// Engine is the authentication orchestrator. It composes the password
// hasher, seed cipher, TOTP engine, and token issuer into the login,
// second-factor, refresh, and password flows. Construct through
// [Builder.Build]; methods are safe for concurrent use.
type Engine struct {
	config      Config
	admins      AdminStore
	users       UserStore
	mailer      Mailer
	tokens      *jwt.Manager
	hasher      *password.Hasher
	totp        *totpManager
	seeds       *seedCipher
	totpLimiter *totpLimiter
	audit       *auditDispatcher
	metrics     *Metrics
	logger      *slog.Logger

	// test hook; nil means time.Now
	nowFunc func() time.Time
}

func (e *Engine) now() time.Time {
	if e.nowFunc != nil {
		return e.nowFunc()
	}
	return time.Now()
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// MetricsSnapshot returns a copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were shed under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, principalID string, role Role, cause error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp:   e.now(),
		EventType:   eventType,
		PrincipalID: principalID,
		Role:        string(role),
		IP:          clientIPFromContext(ctx),
		Success:     success,
		Metadata:    metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) issueAdminTokens(admin *AdminRecord) (TokenPair, error) {
	access, err := e.tokens.IssueAccess(admin.RecordID, admin.ID, admin.Email, jwt.RoleAdmin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.tokens.IssueRefresh(admin.RecordID, admin.ID, admin.Email, jwt.RoleAdmin)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (e *Engine) issueUserTokens(user *UserRecord) (TokenPair, error) {
	access, err := e.tokens.IssueAccess(user.RecordID, user.ID, user.Email, jwt.RoleUser)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.tokens.IssueRefresh(user.RecordID, user.ID, user.Email, jwt.RoleUser)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authorize validates a bearer access token, checks its role claim against
// the route requirement, and loads the principal with credential fields
// stripped. [ErrUnauthorized] covers every verification failure;
// [ErrStoreUnavailable] is reserved for infrastructure faults so callers
// can answer 503 instead of 401.
func (e *Engine) Authorize(ctx context.Context, token string, required Role) (*Principal, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseAccess(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	role := Role(claims.Role)
	if required != RoleAny && role != required {
		return nil, ErrUnauthorized
	}

	switch role {
	case RoleAdmin:
		admin, err := e.admins.GetByID(ctx, claims.RecordID)
		if err != nil {
			return nil, authorizeLoadError(err)
		}
		return &Principal{
			RecordID:  admin.RecordID,
			ID:        admin.ID,
			Email:     admin.Email,
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			Role:      RoleAdmin,
		}, nil
	case RoleUser:
		user, err := e.users.GetByID(ctx, claims.RecordID)
		if err != nil {
			return nil, authorizeLoadError(err)
		}
		return &Principal{
			RecordID:  user.RecordID,
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      RoleUser,
		}, nil
	default:
		return nil, ErrUnauthorized
	}
}

func authorizeLoadError(err error) error {
	if isNotFound(err) {
		return ErrUnauthorized
	}
	return err
}
