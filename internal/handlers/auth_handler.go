package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pennywise/internal/errors"
	"pennywise/internal/middleware"
	"pennywise/internal/models"
	"pennywise/internal/services"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"user@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"password123"`
	FirstName string `json:"first_name" binding:"required" example:"Jane"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RefreshRequest represents the token refresh request body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserResponse represents the user payload in auth responses.
type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse represents a successful authentication response.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// issueTokens generates an access and refresh token pair and persists the
// refresh token hash so refreshes can be validated against the latest issue.
func (h *AuthHandler) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         newUserResponse(user),
	}, nil
}

// Register godoc
// @Summary Register a new user
// @Description Create a new user account and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "REGISTER", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.GetUserByEmail(req.Email)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}
	if !h.userService.VerifyPassword(user, req.Password) {
		respondWithError(c, apperrors.ErrInvalidCredentials)
		return
	}

	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, "LOGIN", "user", user.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary Refresh the token pair
// @Description Exchange a valid refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	storedHash, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil || storedHash == "" || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	// Rotation: issuing a new pair invalidates the presented refresh token.
	resp, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}
