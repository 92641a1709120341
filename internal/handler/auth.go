package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statustrack/backend/internal/model"
	"github.com/statustrack/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Signup godoc
// @Summary Sign up
// @Description Create a new account with email, name, and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SignupRequest true "Email, name, and password"
// @Success 201 {object} model.User
// @Failure 409 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login godoc
// @Summary Login
// @Description Authenticate with email (or username alias) and password; returns token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.TokenPairResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 422 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}

	access, refresh, err := h.svc.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchange a refresh token (bearer header or body) for a new access token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest false "Refresh token"
// @Success 200 {object} model.TokenPairResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		var req model.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	access, err := h.svc.Refresh(c.Request.Context(), token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenPairResponse{AccessToken: access})
}

// Logout godoc
// @Summary Logout
// @Description Revoke the presented access token's session.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.LogoutResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.svc.Logout(c.Request.Context(), claims); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.LogoutResponse{
		Message:   "Logged out",
		RevokedAt: time.Now().UTC(),
	})
}
