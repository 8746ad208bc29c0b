package router

import (
	"go-auth-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-auth-api/docs"
)

func NewRouter(userHandler *handler.UserHandler, authHandler *handler.AuthHandler, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handler.HealthCheck)
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.Handle("/register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("/me", authMiddleware(handler.ErrorHandlingMiddleware(userHandler.Me)))

	return mux
}
