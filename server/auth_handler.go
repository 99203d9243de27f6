package server

import (
	"context"
	"net/http"
	"strings"

	"soundcatalog/core/auth"
	"soundcatalog/logger"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware 校验 Bearer 令牌。secret 为空时直接放行
func AuthMiddleware(secret string, next http.HandlerFunc) http.HandlerFunc {
	if secret == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeMessage(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeMessage(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		subject, err := auth.ParseToken(secret, parts[1])
		if err != nil {
			logger.Warn("Rejected token", logger.String("path", r.URL.Path), logger.ErrorField(err))
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// SubjectFromContext returns the token subject set by AuthMiddleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok
}
