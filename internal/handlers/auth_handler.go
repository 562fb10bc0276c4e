package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/middleware"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/security"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/services"
)

type AuthHandler struct {
	userService  services.UserService
	cookieKey    []byte
	cookieSecure bool
}

func NewAuthHandler(userService services.UserService, cookieKey []byte, cookieSecure bool) *AuthHandler {
	return &AuthHandler{userService: userService, cookieKey: cookieKey, cookieSecure: cookieSecure}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"` // user (default) or doctor
}

// @Summary      Register a new account
// @Description  Creates an unverified account and emails a 6-digit verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      handlers.registerRequest  true  "Registration data"
// @Success      201       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role := authz.RoleUser
	if req.Role != "" {
		parsed, ok := authz.Parse(req.Role)
		if !ok || parsed == authz.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role must be user or doctor"})
			return
		}
		role = parsed
	}

	user, err := h.userService.Register(req.Name, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		log.Printf("[auth][register] failed for email=%q: %v", req.Email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Check your email for the verification code.",
		"user":    user,
	})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.VerifyEmail(req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "code expired, please request a new one"})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		default:
			log.Printf("[auth][verify] failed for email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed, try again"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can now log in."})
}

func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.ResendCode(req.Email); err != nil {
		log.Printf("[auth][resend] failed for email=%q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a new code was sent."})
}

// @Summary      Log in
// @Description  Authenticates the user and sets the encrypted identity cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	user, err := h.userService.Login(email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "please verify your email first"})
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Printf("[auth][login] rejected email=%q: %v", email, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		default:
			log.Printf("[auth][login] failed email=%q: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		}
		return
	}

	cookie, err := security.Encode(models.Identity{ID: user.ID, Role: user.Role, Name: user.Name}, h.cookieKey)
	if err != nil {
		log.Printf("[auth][login] cookie encode failed for userID=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	c.SetCookie(middleware.CookieName, cookie, middleware.CookieMaxAge, "/", "", h.cookieSecure, true)

	log.Printf("[auth][login] success userID=%d role=%s", user.ID, user.Role)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user, // PasswordHash is json:"-", never serialized
	})
}

// LoginPage backs the login form; it only reports a pending flash
// message (e.g. after a guard redirect or logout).
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

func (h *AuthHandler) Unauthorized(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"error": "you are not allowed to access this page"})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.cookieSecure, true)
	redirectWithFlash(c, middleware.LoginPath, "You have been logged out.")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.ForgotPassword(req.Email); err != nil {
		log.Printf("[auth][forgot] failed for email=%q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed, try again"})
		return
	}
	// same response whether or not the account exists
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset code was sent."})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.ResetPassword(req.Email, req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "reset code expired, please request a new one"})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reset code"})
		default:
			log.Printf("[auth][reset] failed for email=%q: %v", req.Email, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can now log in."})
}
