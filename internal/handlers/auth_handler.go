package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ishwarchoudhari/FloDo/internal/middleware"
	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
	limiter     services.RateLimitService

	cookieName   string
	cookieMaxAge int
	loginWindow  time.Duration
	loginMax     int
}

func NewAuthHandler(
	userService services.UserService,
	authService services.AuthService,
	limiter services.RateLimitService,
	cookieName string,
	cookieMaxAge int,
	loginWindow time.Duration,
	loginMax int,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		limiter:      limiter,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		loginWindow:  loginWindow,
		loginMax:     loginMax,
	}
}

// @Summary      Create the super-admin account
// @Description  Allowed only while no super-admin exists yet
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Signup data"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      429     {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	key := services.RateKey("ip", c.ClientIP(), "signup")
	if err := h.limiter.CheckAndRecordSlidingWindow(c.Request.Context(), key, h.loginWindow, h.loginMax); err != nil {
		if errors.Is(err, services.ErrThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Try later."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		return
	}

	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userService.CreateSuperAdmin(&req)
	if err != nil {
		if errors.Is(err, services.ErrSuperAdminExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Super-admin already exists."})
			return
		}
		log.Printf("[auth][signup] create failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not create account."})
		return
	}
	log.Printf("[auth][signup] super-admin created id=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Super-admin created. Please log in."})
}

// @Summary      Dashboard login
// @Description  Verifies credentials and issues a fresh session cookie
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Login data"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Failure      429    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Limiter is scoped to IP+username so a noisy neighbor behind NAT
	// does not lock out everyone. Checked before credentials: a correct
	// password does not bypass the window.
	key := services.RateKey("ip", fmt.Sprintf("%s:%s", c.ClientIP(), req.Username), "login")
	if err := h.limiter.CheckAndRecordSlidingWindow(c.Request.Context(), key, h.loginWindow, h.loginMax); err != nil {
		if errors.Is(err, services.ErrThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Try later."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	cc := services.ClientContext{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	session, user, err := h.authService.LoginAdmin(c.Request.Context(), req.Username, req.Password, cc)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
			return
		}
		log.Printf("[auth][login] failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.SetCookie(h.cookieName, session.ID, h.cookieMaxAge, "/", "", false, true)
	log.Printf("[auth][login] ok user_id=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// @Summary      Dashboard logout
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session != nil {
		if err := h.authService.Logout(c.Request.Context(), session.ID); err != nil {
			log.Printf("[auth][logout] failed: %v", err)
		}
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary      Auth status
// @Description  Lightweight endpoint for frontend polling
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/status [get]
func (h *AuthHandler) Status(c *gin.Context) {
	sid, err := c.Cookie(h.cookieName)
	if err != nil || sid == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	if _, err := h.authService.ValidateRequest(c.Request.Context(), sid); err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
