package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MaxFailedAttempts is the shared lockout threshold for password and
// two-factor failures. The counters live on the principal, not the
// employment, so lockout spans all of a user's tenants.
const MaxFailedAttempts = 10

// Principal is an authenticatable identity together with the eagerly
// loaded primary employment used for session resolution.
type Principal struct {
	ID                   string
	Email                string
	Name                 string
	PasswordHash         *string
	IsPasswordTemp       bool
	AcceptedTerms        bool
	IsSystemManager      bool
	IsBlocked            bool
	FailedPasswordCount  int
	FailedTwoFactorCount int
	TwoFactor            TwoFactorState

	// Employment is the active, accepted, primary employment, or nil.
	Employment *Employment
}

type TwoFactorState struct {
	Enabled       bool
	Secret        *string
	VerifiedAt    *time.Time
	ResetRequired bool
}

// Pending reports whether a secret exists that has not been confirmed yet.
func (t TwoFactorState) Pending() bool {
	return !t.Enabled && t.Secret != nil
}

type Employment struct {
	ID                 int64
	TenantID           int64
	TenantName         string
	SubscriptionStatus string
	Role               *Role
}

type Role struct {
	ID          string
	Name        string
	DisplayName string
	Priority    int
	HomePage    string
	Permissions []string
}

// PrincipalStore persists principal records, failure counters and
// two-factor state. Failure recording must be atomic read-modify-write in
// the store so concurrent attempts never under-count (over-counting only
// makes lockout trigger sooner).
type PrincipalStore interface {
	// FindForLogin looks up a principal by normalized email including its
	// primary employment with role, permission grants and tenant. Returns
	// (nil, nil) when no such principal exists.
	FindForLogin(ctx context.Context, email string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
	HasPendingEmployment(ctx context.Context, userID string) (bool, error)

	// RecordPasswordFailure increments the password failure counter and
	// blocks the account once the threshold is reached, in one statement.
	// It reports whether the account is now blocked.
	RecordPasswordFailure(ctx context.Context, userID string) (bool, error)
	ResetPasswordFailures(ctx context.Context, userID string) error
	RecordTwoFactorFailure(ctx context.Context, userID string) (bool, error)
	ResetTwoFactorFailures(ctx context.Context, userID string) error

	UpdatePassword(ctx context.Context, userID, passwordHash string, temporary bool) error

	SetTwoFactorSecret(ctx context.Context, userID, secret string) error
	EnableTwoFactor(ctx context.Context, userID string, verifiedAt time.Time) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

// RegistrationStore covers the self-registration flow. Creating a new
// principal together with its pending employment must be atomic.
type RegistrationStore interface {
	FindUserIDByEmail(ctx context.Context, email string) (string, bool, error)
	HasEmploymentForTenant(ctx context.Context, userID string, tenantID int64) (bool, error)
	CreatePendingEmployment(ctx context.Context, userID string, tenantID int64) (int64, error)
	CreateUserWithEmployment(ctx context.Context, reg NewRegistration) (userID string, employmentID int64, err error)
}

// NewRegistration carries the fields persisted for a brand-new principal.
type NewRegistration struct {
	Name         string
	Email        string
	PasswordHash string
	TenantID     int64
}

// TenantDirectory resolves facility codes to tenants during registration.
type TenantDirectory interface {
	ResolveFacilityCode(ctx context.Context, code string) (tenantID int64, tenantName string, err error)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
