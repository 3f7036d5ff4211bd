package auth

import (
	"context"
	"regexp"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/metrics"
)

// totpOpts pins the code parameters: 6 digits, 30-second period, SHA1,
// with one period of skew tolerated on each side (three valid windows).
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

var totpCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// validTOTPFormat rejects malformed input before the TOTP engine sees it.
func validTOTPFormat(code string) bool {
	return totpCodePattern.MatchString(code)
}

func (s *Service) validateCode(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totpOpts)
	return err == nil && ok
}

// TwoFactorSetup is returned from enrollment: the provisioning URI renders
// as a QR code, the raw secret supports manual entry.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

type TwoFactorStatus struct {
	Enabled       bool   `json:"enabled"`
	Pending       bool   `json:"pending"`
	ResetRequired bool   `json:"resetRequired"`
	VerifiedAt    string `json:"verifiedAt,omitempty"`
}

// SetupTwoFactor starts enrollment: DISABLED or RESET_REQUIRED moves to
// PENDING_VERIFICATION with a fresh secret. An already enabled enrollment
// must be disabled first; the existing secret is never overwritten.
func (s *Service) SetupTwoFactor(ctx context.Context, userID string) (*TwoFactorSetup, error) {
	principal, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("loading user", err)
	}
	if principal == nil {
		return nil, internal.ErrUserNotFound
	}

	if principal.TwoFactor.Enabled && !principal.TwoFactor.ResetRequired {
		return nil, internal.NewConflictError("Two-factor authentication is already enabled", internal.ErrCodeTwoFactorAlreadyEnabled)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.cfg.TOTPIssuer,
		AccountName: principal.Email,
	})
	if err != nil {
		return nil, internal.NewInternalError("generating totp secret", err)
	}

	if err := s.store.SetTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return nil, internal.NewInternalError("storing totp secret", err)
	}

	s.logger.Info("two-factor enrollment started", "user_id", userID)
	return &TwoFactorSetup{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
	}, nil
}

// VerifyTwoFactor confirms a pending enrollment. On mismatch the state
// does not change and the caller may retry against the same secret.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID string, dto TwoFactorCodeDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	principal, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("loading user", err)
	}
	if principal == nil {
		return internal.ErrUserNotFound
	}

	if !principal.TwoFactor.Pending() {
		return internal.NewConflictError("No two-factor enrollment awaiting verification", internal.ErrCodeTwoFactorNotPending)
	}

	if !s.validateCode(*principal.TwoFactor.Secret, dto.Code) {
		metrics.RecordTwoFactorCheck("invalid")
		return internal.ErrTwoFactorInvalid
	}
	metrics.RecordTwoFactorCheck("valid")

	if err := s.store.EnableTwoFactor(ctx, userID, s.now()); err != nil {
		return internal.NewInternalError("enabling two-factor", err)
	}

	s.logger.Info("two-factor enabled", "user_id", userID)
	return nil
}

// DisableTwoFactor requires re-authentication with the current password,
// not a TOTP code, so a stolen session alone cannot weaken the account.
func (s *Service) DisableTwoFactor(ctx context.Context, userID string, dto TwoFactorDisableDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	principal, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("loading user", err)
	}
	if principal == nil || principal.PasswordHash == nil {
		return internal.ErrUserNotFound
	}

	if !principal.TwoFactor.Enabled {
		return internal.NewConflictError("Two-factor authentication is not enabled", internal.ErrCodeTwoFactorNotEnabled)
	}

	if err := VerifyPassword(*principal.PasswordHash, dto.Password); err != nil {
		return internal.ErrInvalidCredentials
	}

	if err := s.store.DisableTwoFactor(ctx, userID); err != nil {
		return internal.NewInternalError("disabling two-factor", err)
	}

	s.logger.Info("two-factor disabled", "user_id", userID)
	return nil
}

// ValidateTwoFactor re-confirms an enabled enrollment mid-session, e.g.
// before a sensitive action. No state transition.
func (s *Service) ValidateTwoFactor(ctx context.Context, userID string, dto TwoFactorCodeDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	principal, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return internal.NewInternalError("loading user", err)
	}
	if principal == nil {
		return internal.ErrUserNotFound
	}

	if !principal.TwoFactor.Enabled || principal.TwoFactor.Secret == nil {
		return internal.NewConflictError("Two-factor authentication is not enabled", internal.ErrCodeTwoFactorNotEnabled)
	}

	if !s.validateCode(*principal.TwoFactor.Secret, dto.Code) {
		metrics.RecordTwoFactorCheck("invalid")
		return internal.ErrTwoFactorInvalid
	}
	metrics.RecordTwoFactorCheck("valid")
	return nil
}

func (s *Service) TwoFactorStatus(ctx context.Context, userID string) (*TwoFactorStatus, error) {
	principal, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("loading user", err)
	}
	if principal == nil {
		return nil, internal.ErrUserNotFound
	}

	status := &TwoFactorStatus{
		Enabled:       principal.TwoFactor.Enabled,
		Pending:       principal.TwoFactor.Pending(),
		ResetRequired: principal.TwoFactor.ResetRequired,
	}
	if principal.TwoFactor.VerifiedAt != nil {
		status.VerifiedAt = principal.TwoFactor.VerifiedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return status, nil
}
