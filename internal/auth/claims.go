package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nexthealth/careplatform/internal"
)

const (
	systemManagerDisplayName = "System Manager"
	systemManagerHomePage    = "/admin/dashboard"
	defaultHomePage          = "/regulations"
)

// SessionClaims is the signed, self-contained authorization payload issued
// at login. It is the only authorization artifact consulted on subsequent
// requests; permissions are a point-in-time snapshot that refreshes on the
// next login.
type SessionClaims struct {
	Email           string   `json:"email"`
	TenantID        int64    `json:"tenantId"`
	IsSystemManager bool     `json:"isSystemManager"`
	Permissions     []string `json:"permissions"`
	Menus           []string `json:"menus"`
	Role            *string  `json:"role"`
	RoleDisplayName *string  `json:"roleDisplayName"`
	HomePage        *string  `json:"homePage"`
	jwt.RegisteredClaims
}

// HasPermission honors the system-manager wildcard grant.
func (c *SessionClaims) HasPermission(name string) bool {
	for _, p := range c.Permissions {
		if p == "*" || p == name {
			return true
		}
	}
	return false
}

func (c *SessionClaims) HasAnyPermission(names ...string) bool {
	for _, n := range names {
		if c.HasPermission(n) {
			return true
		}
	}
	return false
}

// BuildSessionClaims derives the claim bundle from a principal and its
// resolved employment.
func BuildSessionClaims(p *Principal) *SessionClaims {
	permissions := []string{}
	var role, roleDisplayName, homePage *string
	var tenantID int64

	if p.Employment != nil {
		tenantID = p.Employment.TenantID
		if p.Employment.Role != nil {
			r := p.Employment.Role
			permissions = append(permissions, r.Permissions...)
			role = &r.Name
			displayName := r.DisplayName
			roleDisplayName = &displayName
			if r.HomePage != "" {
				page := r.HomePage
				homePage = &page
			}
		}
	} else if p.IsSystemManager {
		permissions = []string{"*"}
	}

	if roleDisplayName == nil && p.IsSystemManager {
		name := systemManagerDisplayName
		roleDisplayName = &name
	}
	if homePage == nil {
		page := defaultHomePage
		if p.IsSystemManager {
			page = systemManagerHomePage
		}
		homePage = &page
	}

	return &SessionClaims{
		Email:           p.Email,
		TenantID:        tenantID,
		IsSystemManager: p.IsSystemManager,
		Permissions:     permissions,
		Menus:           DeriveMenus(permissions),
		Role:            role,
		RoleDisplayName: roleDisplayName,
		HomePage:        homePage,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: p.ID,
		},
	}
}

// DeriveMenus returns the distinct resource prefixes of all permissions
// whose action is read, view or create. Menu visibility is coarser than
// permission checks: a create-only grant still surfaces the section. The
// wildcard grant carries no resource prefix and yields no menus.
func DeriveMenus(permissions []string) []string {
	seen := make(map[string]struct{})
	for _, name := range permissions {
		resource, action, found := strings.Cut(name, ".")
		if !found {
			continue
		}
		switch action {
		case "read", "view", "create":
			seen[resource] = struct{}{}
		}
	}

	menus := make([]string, 0, len(seen))
	for resource := range seen {
		menus = append(menus, resource)
	}
	sort.Strings(menus)
	return menus
}

// TokenIssuer signs and verifies session tokens. HS256 with a shared
// secret, mirroring the session contract of the platform frontend.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *TokenIssuer) Issue(claims *SessionClaims) (string, error) {
	now := t.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return t.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
