package fixauth

import "errors"

var (
	// ErrInvalidCredentials is returned for unknown emails and password
	// mismatches alike; callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCurrentPassword is returned by ChangePassword when the
	// supplied current password does not verify.
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	// ErrTOTPInvalid is returned when a submitted one-time code fails to
	// verify within the tolerance window.
	ErrTOTPInvalid = errors.New("invalid token")
	// ErrTOTPRateLimited is returned after too many failed code attempts.
	ErrTOTPRateLimited = errors.New("totp attempts rate limited")
	// ErrRefreshInvalid is returned when a refresh token is expired,
	// malformed, mis-signed, or its principal no longer exists.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrUnauthorized is the guard middleware's single rejection cause.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPrincipalNotFound is the store-level lookup miss.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrEmailExists rejects account creation with a duplicate email.
	ErrEmailExists = errors.New("email already exists")
	// ErrStoreUnavailable wraps credential-store infrastructure failures.
	// The engine never retries; the failure is surfaced immediately.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrEmailDispatch wraps mail-dispatch failures on the paths where
	// delivery is part of the operation's contract.
	ErrEmailDispatch = errors.New("email dispatch failed")
	// ErrSecondFactorMethod rejects an unknown enrollment method.
	ErrSecondFactorMethod = errors.New("invalid second factor method")
	// ErrSecondFactorPending is returned when a token-issuing operation is
	// attempted before the second factor has been configured.
	ErrSecondFactorPending = errors.New("second factor not configured")
	// ErrEngineNotReady is returned when the engine was not fully built.
	ErrEngineNotReady = errors.New("engine not initialized")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrPrincipalNotFound)
}

