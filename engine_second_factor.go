package fixauth

import (
	"context"
	"errors"
)

// SecondFactorStatus reports where the admin stands in the second-factor
// state machine. First login returns {isFirstTime:true} and the client is
// expected to call [Engine.ChooseSecondFactorMethod] next. For an enrolled
// admin on the email method, a one-time code is proactively dispatched;
// dispatch failures are logged and swallowed so a flaky mail relay cannot
// lock admins out.
func (e *Engine) SecondFactorStatus(ctx context.Context, adminID string) (*SecondFactorStatusResult, error) {
	if e == nil || e.admins == nil {
		return nil, ErrEngineNotReady
	}

	admin, err := e.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if admin.IsFirstLogin {
		return &SecondFactorStatusResult{IsFirstTime: true}, nil
	}

	if admin.SecondFactorMethod == MethodEmail {
		e.sendCodeByEmail(ctx, admin)
	}

	return &SecondFactorStatusResult{
		IsFirstTime: false,
		Method:      admin.SecondFactorMethod,
	}, nil
}

// ChooseSecondFactorMethod persists the admin's one-time enrollment choice
// and clears the first-login flag. The email method triggers a code send;
// the app method returns the enrollment URI and QR code and sends nothing,
// since the admin derives codes locally after scanning.
func (e *Engine) ChooseSecondFactorMethod(ctx context.Context, adminID string, method SecondFactorMethod) (*ChooseMethodResult, error) {
	if e == nil || e.admins == nil {
		return nil, ErrEngineNotReady
	}
	if method != MethodEmail && method != MethodApp {
		return nil, ErrSecondFactorMethod
	}

	first := false
	updated, err := e.admins.Update(ctx, adminID, AdminUpdate{
		SecondFactorMethod: &method,
		IsFirstLogin:       &first,
		LastUpdatedBy:      &adminID,
	})
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventSecondFactorChosen, true, updated.RecordID, RoleAdmin, nil, map[string]string{
		"method": string(method),
	})

	result := &ChooseMethodResult{Method: method}

	switch method {
	case MethodEmail:
		e.sendCodeByEmail(ctx, updated)
	case MethodApp:
		seed, err := e.seeds.Decrypt(updated.EncryptedSeed)
		if err != nil {
			return nil, ErrTOTPInvalid
		}
		result.EnrollmentURI = e.totp.ProvisionURI(seed, updated.Email)
		qr, err := e.totp.ProvisionQR(seed, updated.Email)
		if err != nil {
			return nil, err
		}
		result.QRCode = qr
	}

	return result, nil
}

// VerifySecondFactor checks a submitted one-time code against the admin's
// decrypted seed within the tolerance window. Success mints the
// access/refresh pair and returns the authenticated profile. Failed
// attempts are counted in Redis when a limiter is configured; the limit is
// a deliberate hardening over the original flow, which allowed unlimited
// tries.
func (e *Engine) VerifySecondFactor(ctx context.Context, adminID, code string) (*AuthenticatedAdmin, error) {
	if e == nil || e.admins == nil {
		return nil, ErrEngineNotReady
	}

	admin, err := e.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	if e.totpLimiter != nil {
		if err := e.totpLimiter.Check(ctx, admin.RecordID); err != nil {
			if errors.Is(err, ErrTOTPRateLimited) {
				e.metricInc(MetricSecondFactorRateLimited)
				e.emitAudit(ctx, auditEventSecondFactorFailure, false, admin.RecordID, RoleAdmin, err, nil)
			}
			return nil, err
		}
	}

	seed, err := e.seeds.Decrypt(admin.EncryptedSeed)
	if err != nil {
		// tampered or unreadable record: an authentication failure, not a crash
		e.metricInc(MetricSecondFactorFailure)
		e.emitAudit(ctx, auditEventSecondFactorFailure, false, admin.RecordID, RoleAdmin, err, nil)
		return nil, ErrTOTPInvalid
	}

	ok, err := e.totp.VerifyCode(seed, code, e.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.failSecondFactorAttempt(ctx, admin)
	}

	if e.totpLimiter != nil {
		if err := e.totpLimiter.Reset(ctx, admin.RecordID); err != nil {
			e.logger.WarnContext(ctx, "totp limiter reset failed", "admin", admin.ID, "err", err)
		}
	}

	pair, err := e.issueAdminTokens(admin)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSecondFactorSuccess)
	e.emitAudit(ctx, auditEventSecondFactorSuccess, true, admin.RecordID, RoleAdmin, nil, nil)

	return &AuthenticatedAdmin{
		RecordID:             admin.RecordID,
		ID:                   admin.ID,
		FirstName:            admin.FirstName,
		LastName:             admin.LastName,
		Gender:               admin.Gender,
		Email:                admin.Email,
		Phone:                admin.Phone,
		Avatar:               admin.Avatar,
		IsFirstLogin:         admin.IsFirstLogin,
		AccessToken:          pair.AccessToken,
		RefreshToken:         pair.RefreshToken,
		SecondFactorVerified: true,
	}, nil
}

func (e *Engine) failSecondFactorAttempt(ctx context.Context, admin *AdminRecord) error {
	e.metricInc(MetricSecondFactorFailure)
	cause := error(ErrTOTPInvalid)
	if e.totpLimiter != nil {
		switch err := e.totpLimiter.RecordFailure(ctx, admin.RecordID); {
		case errors.Is(err, ErrTOTPRateLimited):
			e.metricInc(MetricSecondFactorRateLimited)
			cause = ErrTOTPRateLimited
		case err != nil:
			e.logger.WarnContext(ctx, "totp limiter record failed", "admin", admin.ID, "err", err)
		}
	}
	e.emitAudit(ctx, auditEventSecondFactorFailure, false, admin.RecordID, RoleAdmin, cause, nil)
	return cause
}

// sendCodeByEmail derives the current code from the stored seed and hands
// it to the mailer. Every failure path is non-fatal here: codes are
// idempotently regenerable, and the verify step is the actual gate.
func (e *Engine) sendCodeByEmail(ctx context.Context, admin *AdminRecord) {
	seed, err := e.seeds.Decrypt(admin.EncryptedSeed)
	if err != nil {
		e.logger.ErrorContext(ctx, "seed decrypt failed for otp send", "admin", admin.ID, "err", err)
		return
	}
	code, err := e.totp.Code(seed, e.now())
	if err != nil {
		e.logger.ErrorContext(ctx, "otp derivation failed", "admin", admin.ID, "err", err)
		return
	}
	if err := e.mailer.SendOTP(ctx, admin, code); err != nil {
		e.metricInc(MetricEmailDispatchFailure)
		e.logger.ErrorContext(ctx, "otp email dispatch failed", "admin", admin.ID, "err", err)
	}
}
