package middleware

import (
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/infrastructure/config"
	"mindmap-backend/pkg/auth"
	"mindmap-backend/pkg/common"
)

// Authenticate creates the authentication middleware. Inside Lambda the
// API Gateway JWT authorizer has already validated the token and the
// user identity arrives in headers; everywhere else the token is
// validated here.
func Authenticate(cfg *config.Config, logger *zap.Logger) func(next http.Handler) http.Handler {
	if cfg.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		return authenticateForLambda()
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "development-secret-change-in-production"
		logger.Warn("JWT_SECRET not set, using development secret")
	}

	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
	if err != nil {
		logger.Error("JWT validator initialization failed", zap.Error(err))
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication system error")
			})
		}
	}

	ipLimiter := auth.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ipLimiter.Allow(clientIP(r)) {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "rate limit exceeded")
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			ctx := auth.WithUser(r.Context(), auth.UserContext{
				UserID: claims.Subject,
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticateForLambda trusts the identity headers injected by the API
// Gateway authorizer.
func authenticateForLambda() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			if userID == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context from API Gateway")
				return
			}

			ctx := auth.WithUser(r.Context(), auth.UserContext{
				UserID: userID,
				Email:  r.Header.Get("X-User-Email"),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get("authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
