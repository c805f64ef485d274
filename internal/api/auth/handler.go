package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-hierarchy/internal/api/render"
	"property-hierarchy/internal/auth"
	"property-hierarchy/internal/common"
	"property-hierarchy/internal/middleware"
	"property-hierarchy/internal/registry"
)

// Handler exposes registration and login over HTTP.
type Handler struct {
	users  *registry.UserRegistry
	tokens *auth.TokenManager
}

// NewHandler creates a new auth handler
func NewHandler(users *registry.UserRegistry, tokens *auth.TokenManager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

// RegisterRequest is the wire shape for account creation.
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
	IsAdmin              bool   `json:"is_admin"`
}

// LoginRequest is the wire shape for credential checks.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func userPayload(u registry.User) gin.H {
	return gin.H{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	}
}

// Register handles POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "error",
			"message": "Validation failed",
			"errors":  gin.H{"request": err.Error()},
		})
		return
	}

	if req.PasswordConfirmation != "" && req.PasswordConfirmation != req.Password {
		render.Error(c, common.ErrInvalidInputError("password confirmation does not match"))
		return
	}

	user, err := h.users.Register(req.Name, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		render.Error(c, err)
		return
	}

	token, err := h.tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		render.Error(c, common.NewErrorWithCause(common.ErrInternal, "failed to generate token", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "User registered successfully",
		"data": gin.H{
			"user":       userPayload(user),
			"token":      token,
			"token_type": "Bearer",
		},
	})
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "error",
			"message": "Authentication failed",
			"errors":  gin.H{"request": err.Error()},
		})
		return
	}

	user, ok := h.users.Authenticate(req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":  "error",
			"message": "Authentication failed",
			"errors":  gin.H{"email": []string{"The provided credentials are incorrect."}},
		})
		return
	}

	token, err := h.tokens.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		render.Error(c, common.NewErrorWithCause(common.ErrInternal, "failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"user":       userPayload(user),
			"token":      token,
			"token_type": "Bearer",
		},
	})
}

// Logout handles POST /api/logout. Tokens are stateless, so this only
// confirms the client should discard its token.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Successfully logged out",
	})
}

// Me handles GET /api/me
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}

	user, ok := h.users.GetByID(claims.UserID)
	if !ok {
		render.Error(c, common.ErrNotFoundError("user not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": userPayload(user)},
	})
}
