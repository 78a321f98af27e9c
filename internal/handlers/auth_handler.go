package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/paulokalleby/api-vendas/internal/apperr"
	"github.com/paulokalleby/api-vendas/internal/middleware"
	"github.com/paulokalleby/api-vendas/internal/models"
	"github.com/paulokalleby/api-vendas/internal/repository"
	"github.com/paulokalleby/api-vendas/internal/services"
	"github.com/paulokalleby/api-vendas/internal/token"
)

// AuthHandler covers registration, login and the self-service account
// endpoints.
type AuthHandler struct {
	tenants *repository.TenantRepository
	users   *repository.UserRepository
	tokens  *token.Service
	resets  *services.PasswordResetService
}

func NewAuthHandler(tenants *repository.TenantRepository, users *repository.UserRepository, tokens *token.Service, resets *services.PasswordResetService) *AuthHandler {
	return &AuthHandler{
		tenants: tenants,
		users:   users,
		tokens:  tokens,
		resets:  resets,
	}
}

// Register creates a company and its owner account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	tenant, user, err := h.tenants.CreateWithOwner(c.Request.Context(), req.Company, req.Name, req.Email, string(hash))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tenant": tenant, "user": user})
}

// Login checks credentials and issues a device token. Bad email and
// bad password produce the same message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondError(c, apperr.Validation("credentials incorrect"))
			return
		}
		respondError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(c, apperr.Validation("credentials incorrect"))
		return
	}

	if !user.Active {
		respondError(c, apperr.Validation("account is inactive"))
		return
	}

	plaintext, _, err := h.tokens.Issue(c.Request.Context(), user.ID, req.Device)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{User: user, Token: plaintext})
}

// Logout revokes the token the request was authenticated with. Other
// device sessions stay alive.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.SessionFrom(c)

	if err := h.tokens.RevokeByID(c.Request.Context(), session.TokenID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user with roles loaded.
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.SessionFrom(c)

	user, err := h.users.GetInTenant(c.Request.Context(), session.TenantID, session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile lets the authenticated user edit their own name,
// email and password regardless of role permissions.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var passwordHash *string
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(c, err)
			return
		}
		s := string(hash)
		passwordHash = &s
	}

	session := middleware.SessionFrom(c)

	user, err := h.users.UpdateProfile(c.Request.Context(), session.UserID, req.Name, req.Email, passwordHash)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ForgotPassword mails a recovery code to the address, or 404 when
// no account uses it.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.SendCode(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "recovery code sent"})
}

// VerifyCode checks a recovery code without consuming it, so clients
// can validate before showing the new-password form.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.VerifyCode(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "code is valid"})
}

// ResetPassword consumes the code and sets the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.Reset(c.Request.Context(), req.Email, req.Code, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
