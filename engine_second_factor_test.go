package fixauth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSecondFactorStatusFirstLogin(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.IsFirstLogin = true
	})

	status, err := f.engine.SecondFactorStatus(context.Background(), admin.RecordID)
	if err != nil {
		t.Fatalf("SecondFactorStatus failed: %v", err)
	}
	if !status.IsFirstTime {
		t.Fatal("expected isFirstTime true")
	}
	if status.Method != MethodUnset {
		t.Fatalf("expected no method, got %q", status.Method)
	}
	if f.mailer.count() != 0 {
		t.Fatal("first-login status must not send mail")
	}
}

func TestSecondFactorStatusEmailMethodSendsCurrentCode(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.SecondFactorMethod = MethodEmail
	})

	status, err := f.engine.SecondFactorStatus(context.Background(), admin.RecordID)
	if err != nil {
		t.Fatalf("SecondFactorStatus failed: %v", err)
	}
	if status.IsFirstTime || status.Method != MethodEmail {
		t.Fatalf("unexpected status: %+v", status)
	}

	mail := f.mailer.last(t)
	if mail.kind != "otp" || mail.to != "a@x.com" {
		t.Fatalf("unexpected mail: %+v", mail)
	}

	ok, err := f.engine.totp.VerifyCode(testSeed, mail.body, time.Now())
	if err != nil || !ok {
		t.Fatalf("emailed code must verify, ok=%v err=%v", ok, err)
	}
}

func TestSecondFactorStatusSwallowsMailFailure(t *testing.T) {
	f := newTestEngine(t, nil)
	f.mailer.otpErr = errors.New("relay down")
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.SecondFactorMethod = MethodEmail
	})

	if _, err := f.engine.SecondFactorStatus(context.Background(), admin.RecordID); err != nil {
		t.Fatalf("mail failure must not fail the status call: %v", err)
	}

	snap := f.engine.MetricsSnapshot()
	if snap.Counters[MetricEmailDispatchFailure] != 1 {
		t.Fatalf("expected dispatch failure counted, got %d", snap.Counters[MetricEmailDispatchFailure])
	}
}

func TestChooseMethodRejectsUnknown(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	if _, err := f.engine.ChooseSecondFactorMethod(context.Background(), admin.RecordID, "sms"); !errors.Is(err, ErrSecondFactorMethod) {
		t.Fatalf("expected ErrSecondFactorMethod, got %v", err)
	}
}

func TestChooseMethodEmailClearsFirstLoginAndSendsCode(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.IsFirstLogin = true
	})

	result, err := f.engine.ChooseSecondFactorMethod(context.Background(), admin.RecordID, MethodEmail)
	if err != nil {
		t.Fatalf("ChooseSecondFactorMethod failed: %v", err)
	}
	if result.Method != MethodEmail || result.QRCode != "" || result.EnrollmentURI != "" {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, _ := f.admins.GetByID(context.Background(), admin.RecordID)
	if stored.IsFirstLogin {
		t.Fatal("expected first-login flag cleared")
	}
	if stored.SecondFactorMethod != MethodEmail {
		t.Fatalf("expected email method persisted, got %q", stored.SecondFactorMethod)
	}
	if mail := f.mailer.last(t); mail.kind != "otp" {
		t.Fatalf("expected otp mail, got %+v", mail)
	}
}

func TestChooseMethodAppReturnsEnrollmentMaterial(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.IsFirstLogin = true
	})

	result, err := f.engine.ChooseSecondFactorMethod(context.Background(), admin.RecordID, MethodApp)
	if err != nil {
		t.Fatalf("ChooseSecondFactorMethod failed: %v", err)
	}

	if !strings.HasPrefix(result.EnrollmentURI, "otpauth://totp/") {
		t.Fatalf("unexpected enrollment URI: %s", result.EnrollmentURI)
	}
	if !strings.Contains(result.EnrollmentURI, "secret="+testSeed) {
		t.Fatal("enrollment URI must carry the decrypted seed")
	}
	if !strings.HasPrefix(result.QRCode, "data:image/png;base64,") {
		t.Fatalf("expected PNG data URL, got prefix %.40s", result.QRCode)
	}
	if f.mailer.count() != 0 {
		t.Fatal("app method must not send mail")
	}
}

func TestVerifySecondFactorMintsTokens(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.SecondFactorMethod = MethodApp
	})

	code, err := f.engine.totp.Code(testSeed, time.Now())
	if err != nil {
		t.Fatalf("code derivation: %v", err)
	}

	result, err := f.engine.VerifySecondFactor(context.Background(), admin.RecordID, code)
	if err != nil {
		t.Fatalf("VerifySecondFactor failed: %v", err)
	}
	if !result.SecondFactorVerified {
		t.Fatal("expected isTOTPVerified true")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected tokens after verification")
	}

	claims, err := f.engine.tokens.ParseAccess(result.AccessToken)
	if err != nil {
		t.Fatalf("access token does not parse: %v", err)
	}
	if claims.Role != "admin" || claims.RecordID != admin.RecordID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifySecondFactorRejectsWrongCode(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	if _, err := f.engine.VerifySecondFactor(context.Background(), admin.RecordID, "000000"); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid, got %v", err)
	}
}

// Alignment note: with the verification instant on an exact step boundary,
// a code generated 150 seconds earlier sits exactly at the edge of the
// five-step window and a code one second older falls outside it.
func TestVerifySecondFactorDriftWindow(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, nil)

	verifyAt := time.Unix(1_700_000_100, 0) // multiple of 30
	if verifyAt.Unix()%30 != 0 {
		t.Fatal("fixture error: verification instant must be a step boundary")
	}
	f.engine.nowFunc = func() time.Time { return verifyAt }

	oldCode, err := f.engine.totp.Code(testSeed, verifyAt.Add(-150*time.Second))
	if err != nil {
		t.Fatalf("code derivation: %v", err)
	}
	if _, err := f.engine.VerifySecondFactor(context.Background(), admin.RecordID, oldCode); err != nil {
		t.Fatalf("code aged 150s must verify: %v", err)
	}

	staleCode, err := f.engine.totp.Code(testSeed, verifyAt.Add(-151*time.Second))
	if err != nil {
		t.Fatalf("code derivation: %v", err)
	}
	if _, err := f.engine.VerifySecondFactor(context.Background(), admin.RecordID, staleCode); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("code aged 151s must be rejected, got %v", err)
	}
}

func TestVerifySecondFactorRateLimiting(t *testing.T) {
	_, rdb := newTestRedis(t)
	f := newTestEngine(t, rdb)
	admin := f.seedAdmin(t, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := f.engine.VerifySecondFactor(ctx, admin.RecordID, "000000"); !errors.Is(err, ErrTOTPInvalid) {
			t.Fatalf("attempt %d: expected ErrTOTPInvalid, got %v", i+1, err)
		}
	}

	// fifth failure crosses the limit
	if _, err := f.engine.VerifySecondFactor(ctx, admin.RecordID, "000000"); !errors.Is(err, ErrTOTPRateLimited) {
		t.Fatalf("expected rate limit on fifth failure, got %v", err)
	}

	// even the correct code is refused while limited
	code, err := f.engine.totp.Code(testSeed, time.Now())
	if err != nil {
		t.Fatalf("code derivation: %v", err)
	}
	if _, err := f.engine.VerifySecondFactor(ctx, admin.RecordID, code); !errors.Is(err, ErrTOTPRateLimited) {
		t.Fatalf("expected rate limit with correct code, got %v", err)
	}

	snap := f.engine.MetricsSnapshot()
	if snap.Counters[MetricSecondFactorRateLimited] == 0 {
		t.Fatal("expected rate-limited attempts counted")
	}
}

func TestVerifySecondFactorResetsLimiterOnSuccess(t *testing.T) {
	_, rdb := newTestRedis(t)
	f := newTestEngine(t, rdb)
	admin := f.seedAdmin(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.engine.VerifySecondFactor(ctx, admin.RecordID, "000000"); !errors.Is(err, ErrTOTPInvalid) {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	code, err := f.engine.totp.Code(testSeed, time.Now())
	if err != nil {
		t.Fatalf("code derivation: %v", err)
	}
	if _, err := f.engine.VerifySecondFactor(ctx, admin.RecordID, code); err != nil {
		t.Fatalf("verification under the limit failed: %v", err)
	}

	if n, err := rdb.Exists(ctx, "fixauth:2fa:att:"+admin.RecordID).Result(); err != nil || n != 0 {
		t.Fatalf("expected attempt counter cleared, exists=%d err=%v", n, err)
	}
}

func TestFailedAttemptLogsLimiterOutage(t *testing.T) {
	mr, rdb := newTestRedis(t)

	var logBuf bytes.Buffer
	admins := newMockAdminStore()
	users := newMockUserStore()
	mailer := &fakeMailer{}
	engine, err := New().
		WithConfig(newTestConfig()).
		WithAdminStore(admins).
		WithUserStore(users).
		WithMailer(mailer).
		WithRedis(rdb).
		WithLogger(slog.New(slog.NewTextHandler(&logBuf, nil))).
		Build()
	if err != nil {
		t.Fatalf("engine build: %v", err)
	}
	t.Cleanup(engine.Close)

	f := &engineFixture{engine: engine, admins: admins, users: users, mailer: mailer}
	admin := f.seedAdmin(t, nil)

	// a counter INCR cannot parse breaks the bookkeeping, not the attempt
	if err := mr.Set("fixauth:2fa:att:"+admin.RecordID, "not-a-number"); err != nil {
		t.Fatalf("poison counter: %v", err)
	}

	if err := engine.failSecondFactorAttempt(context.Background(), admin); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid, got %v", err)
	}
	if !strings.Contains(logBuf.String(), "totp limiter record failed") {
		t.Fatalf("expected limiter outage logged, got:\n%s", logBuf.String())
	}
}

func TestVerifySecondFactorTamperedSeed(t *testing.T) {
	f := newTestEngine(t, nil)
	admin := f.seedAdmin(t, func(r *AdminRecord) {
		r.EncryptedSeed = "bm90LXJlYWwtY2lwaGVydGV4dA==" // valid base64, not a valid ciphertext
	})

	if _, err := f.engine.VerifySecondFactor(context.Background(), admin.RecordID, "123456"); !errors.Is(err, ErrTOTPInvalid) {
		t.Fatalf("expected ErrTOTPInvalid for tampered seed, got %v", err)
	}
}
