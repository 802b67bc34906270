package fixauth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestChangePasswordRotatesHash(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	if err := f.engine.ChangePassword(context.Background(), admin.RecordID, "secret1", "new-password-9"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	stored, _ := f.admins.GetByID(context.Background(), admin.RecordID)
	if f.engine.hasher.Compare("secret1", stored.PasswordHash) {
		t.Fatal("old password still verifies")
	}
	if !f.engine.hasher.Compare("new-password-9", stored.PasswordHash) {
		t.Fatal("new password does not verify")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	err := f.engine.ChangePassword(context.Background(), admin.RecordID, "wrong", "new-password-9")
	if !errors.Is(err, ErrInvalidCurrentPassword) {
		t.Fatalf("expected ErrInvalidCurrentPassword, got %v", err)
	}

	stored, _ := f.admins.GetByID(context.Background(), admin.RecordID)
	if !f.engine.hasher.Compare("secret1", stored.PasswordHash) {
		t.Fatal("hash must be untouched after a rejected change")
	}
}

func TestForgotPasswordEmailsTemporaryPassword(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	if err := f.engine.ForgotPassword(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	mail := f.mailer.last(t)
	if mail.kind != "temp" || mail.to != "a@x.com" {
		t.Fatalf("unexpected mail: %+v", mail)
	}
	if len(mail.body) != 10 {
		t.Fatalf("expected a 10-character temporary password, got %d", len(mail.body))
	}
	for _, r := range mail.body {
		if strings.ContainsRune("0Oo1lIi", r) {
			t.Fatalf("temporary password contains ambiguous character %q", r)
		}
	}

	stored, _ := f.admins.GetByID(context.Background(), admin.RecordID)
	if !f.engine.hasher.Compare(mail.body, stored.PasswordHash) {
		t.Fatal("emailed temporary password does not verify against the stored hash")
	}
	if f.engine.hasher.Compare("secret1", stored.PasswordHash) {
		t.Fatal("old password still verifies after reset")
	}
}

// The route intentionally reveals whether an account exists; the original
// behavior is preserved and documented.
func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newTestEngine(t, nil)

	if err := f.engine.ForgotPassword(context.Background(), "nobody@x.com"); !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestForgotPasswordDispatchFailure(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)
	f.mailer.tempErr = errors.New("relay down")

	err := f.engine.ForgotPassword(context.Background(), "a@x.com")
	if !errors.Is(err, ErrEmailDispatch) {
		t.Fatalf("expected ErrEmailDispatch, got %v", err)
	}

	// the hash has already rotated; the old password must be dead
	stored, _ := f.admins.GetByID(context.Background(), admin.RecordID)
	if f.engine.hasher.Compare("secret1", stored.PasswordHash) {
		t.Fatal("old password must not verify after a failed dispatch")
	}
}
