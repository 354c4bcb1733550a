package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"veripass/pkg/requestcontext"
)

// Context key for storing admin actor identifier.
type contextKeyAdminActorID struct{}

// ContextKeyAdminActorID is exported for use in handlers and tests.
var ContextKeyAdminActorID = contextKeyAdminActorID{}

// Context key marking a request that passed admin authentication.
type contextKeyAdminRequest struct{}

// ContextKeyAdminRequest is exported for use in handlers and tests.
var ContextKeyAdminRequest = contextKeyAdminRequest{}

// IsAdminRequest reports whether the request passed admin token validation.
func IsAdminRequest(ctx context.Context) bool {
	ok, _ := ctx.Value(ContextKeyAdminRequest).(bool)
	return ok
}

// GetAdminActorID retrieves the admin actor identifier from the context.
// Returns empty string if not set or if this is not an admin request.
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyAdminActorID).(string); ok {
		return actorID
	}
	return ""
}

func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				requestID := requestcontext.RequestID(ctx)
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestID,
				)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAdminRequest, true)
			// Capture admin actor identifier for audit attribution.
			// This header identifies which admin performed the action.
			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, ContextKeyAdminActorID, actorID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
