package controllers

import (
	"net/http"

	"blockflow/accounts"
	"blockflow/middleware"
	"blockflow/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	accounts *accounts.Service
}

func NewAuthController(svc *accounts.Service) *AuthController {
	return &AuthController{accounts: svc}
}

func (h *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "User registered successfully", user)
}

func (h *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Login success", resp)
}

// Logout revokes the token the request was authenticated with.
func (h *AuthController) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token required"})
		return
	}
	if err := h.accounts.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// AdminUserController serves the user administration endpoints.
type AdminUserController struct {
	accounts *accounts.Service
}

func NewAdminUserController(svc *accounts.Service) *AdminUserController {
	return &AdminUserController{accounts: svc}
}

func (h *AdminUserController) List(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", users)
}

func (h *AdminUserController) Get(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	user, err := h.accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Fetch success", user)
}

func (h *AdminUserController) MakeAdmin(c *gin.Context) {
	h.setRole(c, models.RoleAdmin, "User promoted to admin")
}

func (h *AdminUserController) RemoveAdmin(c *gin.Context) {
	h.setRole(c, models.RoleUser, "Admin role removed")
}

func (h *AdminUserController) Disable(c *gin.Context) {
	h.setEnabled(c, false, "User account disabled")
}

func (h *AdminUserController) Enable(c *gin.Context) {
	h.setEnabled(c, true, "User account enabled")
}

func (h *AdminUserController) setRole(c *gin.Context, role models.Role, message string) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	user, err := h.accounts.SetRole(c.Request.Context(), id, role)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, message, user)
}

func (h *AdminUserController) setEnabled(c *gin.Context, enabled bool, message string) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	user, err := h.accounts.SetEnabled(c.Request.Context(), id, enabled)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, message, user)
}
