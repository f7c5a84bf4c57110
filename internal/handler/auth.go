package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flicky/greenmart/internal/dto"
	"github.com/flicky/greenmart/internal/middleware"
	"github.com/flicky/greenmart/internal/model"
	"github.com/flicky/greenmart/internal/service"
)

const adminHome = "/admin/dashboard"

type AuthHandler struct {
	authService *service.AuthService
	auth        *middleware.Auth
	log         *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, auth *middleware.Auth, log *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth, log: log}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "message": "Signup successful! Please login."})
}

// Login starts a cookie session and also returns a bearer token for API clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user := &model.User{ID: resp.User.ID, Name: resp.User.Name, Email: resp.User.Email, Role: resp.User.Role}
	if err := h.auth.StartSession(c, user); err != nil {
		respondError(c, h.log, err)
		return
	}

	resp.Redirect = "/"
	if user.IsAdmin() {
		resp.Redirect = adminHome
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.EndSession(c); err != nil {
		h.log.Warn("end session", "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.authService.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
