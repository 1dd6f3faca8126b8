package middleware

import (
	"context"
	"net/http"

	"p24-gateway/internal/auth"
	"p24-gateway/internal/logger"
	"p24-gateway/internal/utils"

	"go.uber.org/zap"
)

type contextKey string

const ServiceClaimsKey contextKey = "serviceClaims"

// RequireServiceToken rejects requests without a valid HS256 service token.
func RequireServiceToken(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.ParseServiceToken(secret, auth.ExtractAccessToken(r))
			if err != nil {
				logger.FromCtx(r.Context()).Warn("Rejected service token", zap.Error(err))
				utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ServiceClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServiceFrom returns the calling service name set by RequireServiceToken.
func ServiceFrom(ctx context.Context) string {
	if claims, ok := ctx.Value(ServiceClaimsKey).(*auth.ServiceClaims); ok {
		return claims.Service
	}
	return ""
}
