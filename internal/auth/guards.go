package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nexthealth/careplatform/internal"
)

type ctxKey string

// ContextSessionKey holds the verified session claims for the request.
const ContextSessionKey ctxKey = "session"

func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	c, ok := ctx.Value(ContextSessionKey).(*SessionClaims)
	return c, ok
}

func ContextWithSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, ContextSessionKey, claims)
}

// Guard implements the per-request authorization checks. All decisions are
// made from the signed claims alone; no store lookup happens per request.
type Guard struct {
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewGuard(tokens *TokenIssuer, logger *slog.Logger) *Guard {
	return &Guard{tokens: tokens, logger: logger}
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// Authenticate verifies the bearer token and stores the claims in context.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			writeGuardError(w, internal.NewUnauthorizedError("Missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := g.tokens.Verify(token)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				writeGuardError(w, appErr)
			} else {
				writeGuardError(w, internal.ErrInvalidToken)
			}
			return
		}

		ctx := ContextWithSession(r.Context(), claims)
		ctx = internal.ContextWithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTenant gates tenant-scoped operations: a session must be bound to
// a tenant unless it belongs to a system manager.
func (g *Guard) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		if !ok {
			writeGuardError(w, internal.NewUnauthorizedError("Not authenticated", internal.ErrCodeInvalidToken))
			return
		}
		if !claims.IsSystemManager && claims.TenantID == 0 {
			writeGuardError(w, internal.NewForbiddenError("A tenant context is required", internal.ErrCodeTenantRequired))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) RequireSystemManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := SessionFromContext(r.Context())
		if !ok || !claims.IsSystemManager {
			writeGuardError(w, internal.NewForbiddenError("Restricted to system managers", internal.ErrCodeSystemManagerOnly))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermissions passes when the session holds any of the named
// permissions. The system-manager wildcard grant satisfies every check.
func (g *Guard) RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := SessionFromContext(r.Context())
			if !ok {
				writeGuardError(w, internal.NewUnauthorizedError("Not authenticated", internal.ErrCodeInvalidToken))
				return
			}

			if !claims.HasAnyPermission(permissions...) {
				g.logger.Warn("access denied: insufficient permissions",
					"user_id", claims.Subject,
					"required_permissions", permissions)
				writeGuardError(w, internal.NewForbiddenError("Insufficient permissions", internal.ErrCodeInsufficientPerms))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeGuardError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
