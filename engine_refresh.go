package fixauth

import (
	"context"
)

// Refresh verifies a refresh token against the refresh secret, re-resolves
// the principal, and mints a fresh access/refresh pair (rotation). The old
// refresh token is not revoked: there is no server-side token state, so a
// leaked refresh token stays usable until its natural expiry. Rotation
// narrows the replay window, it does not close it.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, "", "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	var pair TokenPair
	switch Role(claims.Role) {
	case RoleAdmin:
		admin, err := e.admins.GetByID(ctx, claims.RecordID)
		if err != nil {
			return nil, e.failRefresh(ctx, claims.RecordID, RoleAdmin, err)
		}
		pair, err = e.issueAdminTokens(admin)
		if err != nil {
			return nil, err
		}
	case RoleUser:
		user, err := e.users.GetByID(ctx, claims.RecordID)
		if err != nil {
			return nil, e.failRefresh(ctx, claims.RecordID, RoleUser, err)
		}
		pair, err = e.issueUserTokens(user)
		if err != nil {
			return nil, err
		}
	default:
		return nil, e.failRefresh(ctx, claims.RecordID, Role(claims.Role), ErrRefreshInvalid)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, claims.RecordID, Role(claims.Role), nil, nil)
	return &pair, nil
}

func (e *Engine) failRefresh(ctx context.Context, recordID string, role Role, cause error) error {
	e.metricInc(MetricRefreshFailure)
	if isNotFound(cause) {
		// principal deleted since issuance: same signal as a bad token
		cause = ErrRefreshInvalid
	}
	e.emitAudit(ctx, auditEventRefreshFailure, false, recordID, role, cause, nil)
	return cause
}
