package handler

import (
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/service"
	"net/http"
)

// UserHandler holds dependencies for registration and profile endpoints.
type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type userInfoResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user with a hashed password. No tokens are issued.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "New user"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  common.AppError "Validation error or duplicate email"
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return common.NewAppError(http.StatusBadRequest, "A user with this email already exists", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
	}

	resp := struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	}{user.ID, user.Email}
	writeJSON(w, http.StatusCreated, resp)
	return nil
}

// Me dispatches GET and PUT for the authenticated user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	switch r.Method {
	case http.MethodGet:
		return h.getMe(w, r)
	case http.MethodPut:
		return h.updateMe(w, r)
	default:
		return common.NewAppError(http.StatusMethodNotAllowed, "Method not allowed", nil)
	}
}

// getMe godoc
// @Summary      Get authenticated user information
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  common.AppError
// @Router       /me [get]
func (h *UserHandler) getMe(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not load user", err)
	}

	writeJSON(w, http.StatusOK, userInfoResponse{ID: user.ID, Username: user.Username, Email: user.Email})
	return nil
}

// updateMe godoc
// @Summary      Update authenticated user information
// @Description  Partial update of username and/or email.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user body model.UpdateUserRequest true "Fields to update"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  common.AppError
// @Router       /me [put]
func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	var req model.UpdateUserRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	user, err := h.service.UpdateUser(userID, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return common.NewAppError(http.StatusBadRequest, "A user with this email already exists", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not update user", err)
	}

	writeJSON(w, http.StatusOK, userInfoResponse{ID: user.ID, Username: user.Username, Email: user.Email})
	return nil
}
