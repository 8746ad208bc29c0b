// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Username string `json:"username" validate:"omitempty,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token presented to /refresh and /logout.
// The presence check is done in the handler so the error body matches the
// documented "Refresh token is required" detail.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// UpdateUserRequest defines the partial-update payload for PUT /me.
// Pointer fields distinguish "not provided" from "set to empty".
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=150"`
	Email    *string `json:"email" validate:"omitempty,email"`
}
