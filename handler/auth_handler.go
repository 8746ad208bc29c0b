package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

// AuthHandler holds dependencies for the token lifecycle endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler with its dependencies.
func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Login godoc
// @Summary      Obtain an access/refresh token pair
// @Description  Authenticates the email/password pair and returns a short-lived access token and a long-lived refresh token. The refresh token replaces any previously stored one for the user.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "User credentials"
// @Success      200  {object}  service.TokenPair
// @Failure      401  {object}  common.AppError "Invalid credentials"
// @Failure      404  {object}  common.AppError "User does not exist"
// @Router       /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, "User does not exist", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not log in", err)
		}
	}

	writeJSON(w, http.StatusOK, pair)
	return nil
}

// Refresh godoc
// @Summary      Mint a new access token
// @Description  Verifies the presented refresh token and returns a new access token. The refresh token is not rotated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError "Refresh token is required"
// @Failure      401  {object}  common.AppError "Invalid or expired refresh token"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}
	if req.Refresh == "" {
		return common.NewAppError(http.StatusBadRequest, "Refresh token is required", nil)
	}

	accessToken, err := h.service.Refresh(req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExpiredToken), errors.Is(err, service.ErrMalformedToken):
			return common.NewAppError(http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		case errors.Is(err, service.ErrUserNotFound):
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not refresh token", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": accessToken})
	return nil
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Description  Deletes the stored refresh token. Logging out twice with the same token fails the second time, because the row is already gone.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError "Missing or invalid refresh token"
// @Router       /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return common.NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}
	if req.Refresh == "" {
		return common.NewAppError(http.StatusBadRequest, "Refresh token is required", nil)
	}

	if err := h.service.Logout(req.Refresh); err != nil {
		if errors.Is(err, service.ErrTokenNotFound) {
			return common.NewAppError(http.StatusBadRequest, "Invalid refresh token", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not log out", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"success": "User logged out."})
	return nil
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
