package fixauth

import (
	"context"
	"time"
)

// Role is the closed set of principal classes known to the engine.
// Route guards express their requirement as a Role value instead of
// comparing claim strings inline.
type Role string

const (
	// RoleAdmin marks administrator principals.
	RoleAdmin Role = "admin"
	// RoleUser marks end-user principals.
	RoleUser Role = "user"
	// RoleAny accepts either principal class on a guarded route.
	RoleAny Role = "any"
)

// SecondFactorMethod is the administrator's chosen second-factor delivery
// channel. The zero value means no choice has been made yet.
type SecondFactorMethod string

const (
	// MethodUnset is the state before the first-login enrollment choice.
	MethodUnset SecondFactorMethod = ""
	// MethodEmail delivers one-time codes to the admin's email address.
	MethodEmail SecondFactorMethod = "email"
	// MethodApp derives codes from an authenticator app enrolled via QR.
	MethodApp SecondFactorMethod = "app"
)

// AdminRecord is the full administrator account record held by the
// credential store. PasswordHash is a bcrypt hash; EncryptedSeed is the
// AES-GCM-encrypted base32 TOTP seed. Neither secret is ever returned to
// clients or stored in plaintext.
type AdminRecord struct {
	RecordID           string
	ID                 string // sequential human-readable identifier, e.g. ADM-1001
	FirstName          string
	LastName           string
	Gender             string
	Email              string
	Phone              string
	Avatar             string
	PasswordHash       string
	EncryptedSeed      string
	SecondFactorMethod SecondFactorMethod
	IsFirstLogin       bool
	Permissions        []string
	AddedBy            string
	LastUpdatedBy      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UserRecord is the end-user account record. Users carry no second factor.
type UserRecord struct {
	RecordID       string
	ID             string // sequential human-readable identifier, e.g. USR-1001
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	PasswordHash   string
	EducationLevel string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AdminUpdate is the mutable subset of an [AdminRecord] the engine is
// allowed to change. Nil fields are left untouched; Permissions, when
// non-nil, replaces the stored list wholesale.
type AdminUpdate struct {
	SecondFactorMethod *SecondFactorMethod
	IsFirstLogin       *bool
	PasswordHash       *string
	Permissions        []string
	LastUpdatedBy      *string
}

// AdminStore is the credential-store contract for administrator records.
// Implementations return [ErrPrincipalNotFound] for lookup misses and wrap
// infrastructure failures in [ErrStoreUnavailable]. The engine never
// mutates records except through Update.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*AdminRecord, error)
	GetByID(ctx context.Context, recordID string) (*AdminRecord, error)
	Create(ctx context.Context, record *AdminRecord) (*AdminRecord, error)
	Update(ctx context.Context, recordID string, update AdminUpdate) (*AdminRecord, error)
	LastInserted(ctx context.Context) (*AdminRecord, error)
}

// UserStore is the credential-store contract for end-user records.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByID(ctx context.Context, recordID string) (*UserRecord, error)
	Create(ctx context.Context, record *UserRecord) (*UserRecord, error)
	LastInserted(ctx context.Context) (*UserRecord, error)
}

// Mailer dispatches the three email kinds the engine produces. OTP sends
// are fire-and-forget from the engine's perspective; temporary-password
// sends are not, and their failure fails the surrounding operation.
type Mailer interface {
	SendOTP(ctx context.Context, admin *AdminRecord, code string) error
	SendTemporaryPassword(ctx context.Context, admin *AdminRecord, password string) error
	SendWelcome(ctx context.Context, user *UserRecord) error
}

// AdminLoginResult is the minimal profile returned by [Engine.AdminLogin].
// No tokens are issued until the second factor verifies.
type AdminLoginResult struct {
	RecordID     string `json:"_id"`
	ID           string `json:"id"`
	Email        string `json:"email"`
	IsFirstLogin bool   `json:"isFirstLogin"`
}

// SecondFactorStatusResult is returned by [Engine.SecondFactorStatus].
type SecondFactorStatusResult struct {
	IsFirstTime bool               `json:"isFirstTime"`
	Method      SecondFactorMethod `json:"choosenOTPMethod,omitempty"`
}

// ChooseMethodResult is returned by [Engine.ChooseSecondFactorMethod].
// QRCode and EnrollmentURI are populated only for the app method.
type ChooseMethodResult struct {
	Method        SecondFactorMethod `json:"choosenMethod"`
	QRCode        string             `json:"qrCode,omitempty"`
	EnrollmentURI string             `json:"enrollmentURI,omitempty"`
}

// AuthenticatedAdmin is the profile-plus-tokens payload returned once the
// second factor verifies. The password hash and seed never appear here.
type AuthenticatedAdmin struct {
	RecordID             string `json:"_id"`
	ID                   string `json:"id"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Gender               string `json:"gender,omitempty"`
	Email                string `json:"email"`
	Phone                string `json:"phone,omitempty"`
	Avatar               string `json:"avatar,omitempty"`
	IsFirstLogin         bool   `json:"isFirstLogin"`
	AccessToken          string `json:"accessToken"`
	RefreshToken         string `json:"refreshToken"`
	SecondFactorVerified bool   `json:"isTOTPVerified"`
}

// AuthenticatedUser is returned by [Engine.UserLogin]; users receive
// tokens immediately, with no second-factor stage.
type AuthenticatedUser struct {
	RecordID     string `json:"_id"`
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPair is a freshly minted access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CreateAdminInput is the input for [Engine.CreateAdmin]. The password is
// generated by the engine, never supplied by the caller.
type CreateAdminInput struct {
	FirstName   string
	LastName    string
	Gender      string
	Email       string
	Phone       string
	Avatar      string
	Permissions []string
	AddedBy     string
}

// RegisterUserInput is the input for [Engine.RegisterUser].
type RegisterUserInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	Phone          string
	EducationLevel string
}

// Principal is the identity the guard middleware attaches to the request
// context after a successful access-token check. It deliberately excludes
// every credential field.
type Principal struct {
	RecordID  string
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
}
