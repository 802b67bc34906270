package fixauth

import (
	"context"
	"strings"
)

// AdminLogin verifies an administrator's password. On success it returns
// the minimal profile the client needs to drive the second-factor stage;
// no tokens are issued yet. Unknown emails and wrong passwords produce the
// same [ErrInvalidCredentials] so callers cannot probe for accounts.
func (e *Engine) AdminLogin(ctx context.Context, email, plaintext string) (*AdminLoginResult, error) {
	if e == nil || e.admins == nil {
		return nil, ErrEngineNotReady
	}

	admin, err := e.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", RoleAdmin, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !e.hasher.Compare(plaintext, admin.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, admin.RecordID, RoleAdmin, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, admin.RecordID, RoleAdmin, nil, map[string]string{
		"stage": "password",
	})

	return &AdminLoginResult{
		RecordID:     admin.RecordID,
		ID:           admin.ID,
		Email:        admin.Email,
		IsFirstLogin: admin.IsFirstLogin,
	}, nil
}

// UserLogin verifies an end user's password and, unlike the admin flow,
// mints tokens immediately: users carry no second factor.
func (e *Engine) UserLogin(ctx context.Context, email, plaintext string) (*AuthenticatedUser, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", RoleUser, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !e.hasher.Compare(plaintext, user.PasswordHash) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.RecordID, RoleUser, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	pair, err := e.issueUserTokens(user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.RecordID, RoleUser, nil, nil)

	return &AuthenticatedUser{
		RecordID:     user.RecordID,
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
