package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"avviso/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
// SubscriptionID ties an API caller to the service it owns; Groups carry the
// caller's permission groups.
type JWTClaims struct {
	SubscriptionID string
	Groups         []string
}

// Permission groups for the service management API.
const (
	GroupServiceRead  = "api-service-read"
	GroupServiceWrite = "api-service-write"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's subscription and groups in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithSubscriptionID(ctx, claims.SubscriptionID)
			ctx = requestcontext.WithUserGroups(ctx, claims.Groups)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGroup rejects authenticated callers that lack the given permission
// group. Must run after RequireAuth.
func RequireGroup(group string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !slices.Contains(requestcontext.UserGroups(ctx), group) {
				logger.WarnContext(ctx, "forbidden - missing group",
					"group", group,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
