package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims is the payload carried by both access and refresh tokens.
type AppClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
