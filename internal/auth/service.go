package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/core/events"
	"github.com/nexthealth/careplatform/internal/metrics"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	Register(ctx context.Context, dto RegisterDTO) (*RegisterResult, error)
	ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) error
	VerifyToken(tokenString string) (*SessionClaims, error)

	SetupTwoFactor(ctx context.Context, userID string) (*TwoFactorSetup, error)
	VerifyTwoFactor(ctx context.Context, userID string, dto TwoFactorCodeDTO) error
	DisableTwoFactor(ctx context.Context, userID string, dto TwoFactorDisableDTO) error
	ValidateTwoFactor(ctx context.Context, userID string, dto TwoFactorCodeDTO) error
	TwoFactorStatus(ctx context.Context, userID string) (*TwoFactorStatus, error)
}

type Service struct {
	store         PrincipalStore
	registrations RegistrationStore
	tenants       TenantDirectory
	tokens        *TokenIssuer
	bus           *events.EventBus
	cfg           internal.AuthConfig
	logger        *slog.Logger
	now           func() time.Time
}

func NewService(
	store PrincipalStore,
	registrations RegistrationStore,
	tenants TenantDirectory,
	tokens *TokenIssuer,
	bus *events.EventBus,
	cfg internal.AuthConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:         store,
		registrations: registrations,
		tenants:       tenants,
		tokens:        tokens,
		bus:           bus,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// LoginResult is the login response surface: the bearer token plus a view
// of the resolved user for the client shell.
type LoginResult struct {
	AccessToken string   `json:"accessToken"`
	User        UserView `json:"user"`
}

type UserView struct {
	ID                     string   `json:"id"`
	Email                  string   `json:"email"`
	Name                   string   `json:"name"`
	IsSystemManager        bool     `json:"isSystemManager"`
	IsPasswordTemp         bool     `json:"isPasswordTemp"`
	AcceptedTerms          bool     `json:"acceptedTerms"`
	TwoFactorEnabled       bool     `json:"twoFactorEnabled"`
	TwoFactorResetRequired bool     `json:"twoFactorResetRequired"`
	TenantID               *int64   `json:"tenantId"`
	TenantName             *string  `json:"tenantName"`
	SubscriptionStatus     *string  `json:"subscriptionStatus"`
	Role                   *string  `json:"role"`
	RoleDisplayName        *string  `json:"roleDisplayName"`
	HomePage               *string  `json:"homePage"`
	Permissions            []string `json:"permissions"`
	Menus                  []string `json:"menus"`
}

// Login runs the credential pipeline. Each step is a hard gate; failure
// short-circuits the rest. The ordering is deliberate: a blocked tenant or
// wrong password must never reach the two-factor prompt, and the
// subscription check precedes credential verification so a revoked tenant
// leaks nothing about whether credentials were correct.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	principal, err := s.store.FindForLogin(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("login lookup failed", err)
	}

	if principal != nil && principal.Employment != nil &&
		principal.Employment.SubscriptionStatus == "BLOCKED" {
		metrics.RecordLogin("subscription_blocked")
		return nil, internal.ErrSubscriptionBlocked
	}

	if principal == nil || principal.PasswordHash == nil {
		metrics.RecordLogin("invalid_credentials")
		return nil, internal.ErrInvalidCredentials
	}

	if principal.IsBlocked {
		metrics.RecordLogin("account_blocked")
		return nil, internal.ErrAccountBlocked
	}

	if err := VerifyPassword(*principal.PasswordHash, dto.Password); err != nil {
		blocked, recErr := s.store.RecordPasswordFailure(ctx, principal.ID)
		if recErr != nil {
			return nil, internal.NewInternalError("recording password failure", recErr)
		}
		if blocked {
			metrics.RecordLockout()
			s.logger.Warn("account blocked after repeated password failures", "user_id", principal.ID)
			metrics.RecordLogin("account_blocked")
			return nil, internal.ErrAccountBlocked
		}
		metrics.RecordLogin("invalid_credentials")
		return nil, internal.ErrInvalidCredentials
	}

	if principal.FailedPasswordCount > 0 {
		if err := s.store.ResetPasswordFailures(ctx, principal.ID); err != nil {
			return nil, internal.NewInternalError("resetting password failures", err)
		}
	}

	if !s.cfg.SkipTwoFactor && principal.TwoFactor.Enabled && principal.TwoFactor.Secret != nil {
		if dto.TwoFactorCode == "" {
			metrics.RecordLogin("two_factor_required")
			return nil, internal.ErrTwoFactorRequired
		}
		if !validTOTPFormat(dto.TwoFactorCode) || !s.validateCode(*principal.TwoFactor.Secret, dto.TwoFactorCode) {
			blocked, recErr := s.store.RecordTwoFactorFailure(ctx, principal.ID)
			if recErr != nil {
				return nil, internal.NewInternalError("recording two-factor failure", recErr)
			}
			if blocked {
				metrics.RecordLockout()
				s.logger.Warn("account blocked after repeated two-factor failures", "user_id", principal.ID)
				metrics.RecordLogin("account_blocked")
				return nil, internal.ErrAccountBlocked
			}
			metrics.RecordTwoFactorCheck("invalid")
			metrics.RecordLogin("two_factor_invalid")
			return nil, internal.ErrTwoFactorInvalid
		}
		metrics.RecordTwoFactorCheck("valid")
		if principal.FailedTwoFactorCount > 0 {
			if err := s.store.ResetTwoFactorFailures(ctx, principal.ID); err != nil {
				return nil, internal.NewInternalError("resetting two-factor failures", err)
			}
		}
	}

	if !principal.IsSystemManager && principal.Employment == nil {
		pending, pendErr := s.store.HasPendingEmployment(ctx, principal.ID)
		if pendErr != nil {
			return nil, internal.NewInternalError("checking pending employment", pendErr)
		}
		if pending {
			metrics.RecordLogin("employment_pending")
			return nil, internal.ErrEmploymentPending
		}
		metrics.RecordLogin("no_employment")
		return nil, internal.ErrNoEmployment
	}

	claims := BuildSessionClaims(principal)
	token, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, internal.NewInternalError("issuing session token", err)
	}

	metrics.RecordLogin("success")
	s.logger.Info("login succeeded", "user_id", principal.ID, "tenant_id", claims.TenantID)

	return &LoginResult{
		AccessToken: token,
		User:        buildUserView(principal, claims),
	}, nil
}

func buildUserView(p *Principal, claims *SessionClaims) UserView {
	view := UserView{
		ID:                     p.ID,
		Email:                  p.Email,
		Name:                   p.Name,
		IsSystemManager:        p.IsSystemManager,
		IsPasswordTemp:         p.IsPasswordTemp,
		AcceptedTerms:          p.AcceptedTerms,
		TwoFactorEnabled:       p.TwoFactor.Enabled,
		TwoFactorResetRequired: p.TwoFactor.ResetRequired,
		Role:                   claims.Role,
		RoleDisplayName:        claims.RoleDisplayName,
		HomePage:               claims.HomePage,
		Permissions:            claims.Permissions,
		Menus:                  claims.Menus,
	}
	if p.Employment != nil {
		tenantID := p.Employment.TenantID
		tenantName := p.Employment.TenantName
		status := p.Employment.SubscriptionStatus
		view.TenantID = &tenantID
		view.TenantName = &tenantName
		view.SubscriptionStatus = &status
	}
	return view
}

// VerifyToken is the inverse of login: it parses and validates a bearer
// token into session claims without any store lookup.
func (s *Service) VerifyToken(tokenString string) (*SessionClaims, error) {
	return s.tokens.Verify(tokenString)
}

// ChangePassword verifies the current password and replaces it. Reusing
// the current password and passwords under 8 characters are rejected
// before any state mutation.
func (s *Service) ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) error {
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

	if err := VerifyPassword(*principal.PasswordHash, dto.CurrentPassword); err != nil {
		return internal.ErrInvalidCredentials
	}

	if VerifyPassword(*principal.PasswordHash, dto.NewPassword) == nil {
		return internal.NewValidationError("New password must differ from the current password", internal.ErrCodePasswordReused)
	}

	hash, err := HashPassword(dto.NewPassword, s.cfg.BCryptCost)
	if err != nil {
		return internal.NewInternalError("hashing password", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, hash, false); err != nil {
		return internal.NewInternalError("updating password", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}
