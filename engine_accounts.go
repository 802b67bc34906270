package fixauth

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fixacareer/fixauth/password"
)

const (
	adminIDPrefix   = "ADM"
	userIDPrefix    = "USR"
	firstSequenceID = 1001
)

// CreateAdminResult is returned by [Engine.CreateAdmin]. The temporary
// password is emailed, never returned to the caller.
type CreateAdminResult struct {
	RecordID string `json:"_id"`
	ID       string `json:"id"`
	Email    string `json:"email"`
}

// CreateAdmin provisions an administrator: sequential ADM identifier, a
// generated temporary password (hashed before storage, emailed in
// plaintext), and a fresh TOTP seed encrypted at rest. The admin arrives
// with IsFirstLogin set so the enrollment choice happens on first login.
func (e *Engine) CreateAdmin(ctx context.Context, input CreateAdminInput) (*CreateAdminResult, error) {
	if e == nil || e.admins == nil {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(input.Email)
	if _, err := e.admins.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !isNotFound(err) {
		return nil, err
	}

	seqID, err := e.nextAdminID(ctx)
	if err != nil {
		return nil, err
	}

	temp, err := password.Generate(e.config.Password.GeneratedLength)
	if err != nil {
		return nil, err
	}
	hashed, err := e.hasher.Hash(temp)
	if err != nil {
		return nil, err
	}

	seed, err := e.totp.GenerateSecret()
	if err != nil {
		return nil, err
	}
	encryptedSeed, err := e.seeds.Encrypt(seed)
	if err != nil {
		return nil, err
	}

	record := &AdminRecord{
		RecordID:      uuid.NewString(),
		ID:            seqID,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Gender:        input.Gender,
		Email:         email,
		Phone:         input.Phone,
		Avatar:        input.Avatar,
		PasswordHash:  hashed,
		EncryptedSeed: encryptedSeed,
		IsFirstLogin:  true,
		Permissions:   input.Permissions,
		AddedBy:       input.AddedBy,
		LastUpdatedBy: input.AddedBy,
	}

	created, err := e.admins.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricAdminCreated)
	e.emitAudit(ctx, auditEventAdminCreated, true, created.RecordID, RoleAdmin, nil, map[string]string{
		"id": created.ID,
	})

	if err := e.mailer.SendTemporaryPassword(ctx, created, temp); err != nil {
		// the account exists; the caller must re-issue via ForgotPassword
		e.metricInc(MetricEmailDispatchFailure)
		return nil, fmt.Errorf("%w: %v", ErrEmailDispatch, err)
	}

	return &CreateAdminResult{
		RecordID: created.RecordID,
		ID:       created.ID,
		Email:    created.Email,
	}, nil
}

// RegisterUser self-registers an end user. The welcome email is advisory:
// a dispatch failure is logged without failing registration.
func (e *Engine) RegisterUser(ctx context.Context, input RegisterUserInput) (*AuthenticatedUser, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(input.Email)
	if _, err := e.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !isNotFound(err) {
		return nil, err
	}

	seqID, err := e.nextUserID(ctx)
	if err != nil {
		return nil, err
	}

	hashed, err := e.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	record := &UserRecord{
		RecordID:       uuid.NewString(),
		ID:             seqID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          email,
		Phone:          input.Phone,
		PasswordHash:   hashed,
		EducationLevel: input.EducationLevel,
	}

	created, err := e.users.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := e.mailer.SendWelcome(ctx, created); err != nil {
		e.metricInc(MetricEmailDispatchFailure)
		e.logger.ErrorContext(ctx, "welcome email dispatch failed", "user", created.ID, "err", err)
	}

	pair, err := e.issueUserTokens(created)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricUserRegistered)
	e.emitAudit(ctx, auditEventUserRegistered, true, created.RecordID, RoleUser, nil, map[string]string{
		"id": created.ID,
	})

	return &AuthenticatedUser{
		RecordID:     created.RecordID,
		ID:           created.ID,
		FirstName:    created.FirstName,
		LastName:     created.LastName,
		Email:        created.Email,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (e *Engine) nextAdminID(ctx context.Context) (string, error) {
	last, err := e.admins.LastInserted(ctx)
	if err != nil {
		if isNotFound(err) {
			return sequenceID(adminIDPrefix, firstSequenceID), nil
		}
		return "", err
	}
	return nextSequenceID(adminIDPrefix, last.ID)
}

func (e *Engine) nextUserID(ctx context.Context) (string, error) {
	last, err := e.users.LastInserted(ctx)
	if err != nil {
		if isNotFound(err) {
			return sequenceID(userIDPrefix, firstSequenceID), nil
		}
		return "", err
	}
	return nextSequenceID(userIDPrefix, last.ID)
}

func sequenceID(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}

func nextSequenceID(prefix, lastID string) (string, error) {
	_, numPart, ok := strings.Cut(lastID, "-")
	if !ok {
		return "", fmt.Errorf("malformed sequential id %q", lastID)
	}
	n, err := strconv.Atoi(numPart)
	if err != nil {
		return "", fmt.Errorf("malformed sequential id %q", lastID)
	}
	return sequenceID(prefix, n+1), nil
}
