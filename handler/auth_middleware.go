package handler

import (
	"context"
	"database/sql"
	"errors"
	"go-auth-api/common"
	"go-auth-api/service"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

// AuthMiddleware verifies the bearer access token on every request and
// loads the user behind it. Expired token, malformed token, and deleted
// user each fail with their own message.
func AuthMiddleware(authService *service.AuthService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				appErr := common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
				appErr.Send(w)
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
				appErr := common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", nil)
				appErr.Send(w)
				return
			}

			claims, err := authService.ParseToken(headerParts[1])
			if err != nil {
				detail := "Invalid token"
				if errors.Is(err, service.ErrExpiredToken) {
					detail = "Access token has expired"
				}
				appErr := common.NewAppError(http.StatusUnauthorized, detail, nil)
				appErr.Send(w)
				return
			}

			// The user may have been deleted since the token was issued.
			if _, err := userService.GetUserByID(claims.UserID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					appErr := common.NewAppError(http.StatusUnauthorized, "User not found", nil)
					appErr.Send(w)
					return
				}
				appErr := common.NewAppError(http.StatusInternalServerError, "Could not load user", err)
				appErr.Send(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
