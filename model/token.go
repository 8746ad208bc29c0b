// file: model/token.go

package model

import "time"

// RefreshToken holds the single active refresh token row for a user.
// The user_id column carries a unique constraint, so issuing a new token
// replaces the previous row instead of accumulating sessions.
type RefreshToken struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"` // The signed token value is not exposed in JSON responses.
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
