package fixauth

import (
	"context"
	"fmt"

	"github.com/fixacareer/fixauth/password"
)

// ChangePassword replaces an admin's password after verifying the current
// one against the stored hash. The new password is hashed before it ever
// reaches the store.
func (e *Engine) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	if e == nil || e.admins == nil {
		return ErrEngineNotReady
	}

	admin, err := e.admins.GetByID(ctx, adminID)
	if err != nil {
		return err
	}

	if !e.hasher.Compare(currentPassword, admin.PasswordHash) {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChanged, false, admin.RecordID, RoleAdmin, ErrInvalidCurrentPassword, nil)
		return ErrInvalidCurrentPassword
	}

	hashed, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if _, err := e.admins.Update(ctx, adminID, AdminUpdate{
		PasswordHash:  &hashed,
		LastUpdatedBy: &adminID,
	}); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChanged, true, admin.RecordID, RoleAdmin, nil, nil)
	return nil
}

// ForgotPassword generates a fresh temporary password, persists its hash,
// and emails the plaintext to the admin. Two long-standing properties of
// this flow are kept on purpose: the route confirms account existence via
// [ErrPrincipalNotFound], and the plaintext travels over email. Dispatch
// failure fails the whole operation; the stored hash has already changed,
// so the admin must retry.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e == nil || e.admins == nil {
		return ErrEngineNotReady
	}

	admin, err := e.admins.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	temp, err := password.Generate(e.config.Password.GeneratedLength)
	if err != nil {
		return err
	}
	hashed, err := e.hasher.Hash(temp)
	if err != nil {
		return err
	}

	if _, err := e.admins.Update(ctx, admin.RecordID, AdminUpdate{
		PasswordHash:  &hashed,
		LastUpdatedBy: &admin.RecordID,
	}); err != nil {
		return err
	}

	if err := e.mailer.SendTemporaryPassword(ctx, admin, temp); err != nil {
		e.metricInc(MetricEmailDispatchFailure)
		e.emitAudit(ctx, auditEventPasswordReset, false, admin.RecordID, RoleAdmin, err, nil)
		return fmt.Errorf("%w: %v", ErrEmailDispatch, err)
	}

	e.metricInc(MetricPasswordReset)
	e.emitAudit(ctx, auditEventPasswordReset, true, admin.RecordID, RoleAdmin, nil, nil)
	return nil
}
