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

type ClientAuthHandler struct {
	clientService services.ClientService
	authService   services.AuthService
	limiter       services.RateLimitService

	cookieName   string
	cookieMaxAge int
	loginWindow  time.Duration
	loginMax     int
}

func NewClientAuthHandler(
	clientService services.ClientService,
	authService services.AuthService,
	limiter services.RateLimitService,
	cookieName string,
	cookieMaxAge int,
	loginWindow time.Duration,
	loginMax int,
) *ClientAuthHandler {
	return &ClientAuthHandler{
		clientService: clientService,
		authService:   authService,
		limiter:       limiter,
		cookieName:    cookieName,
		cookieMaxAge:  cookieMaxAge,
		loginWindow:   loginWindow,
		loginMax:      loginMax,
	}
}

// @Summary      Client portal signup
// @Description  Registers a client and starts a session right away
// @Tags         ClientAuth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.ClientSignupRequest  true  "Signup data"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Failure      429     {object}  map[string]string
// @Router       /client/auth/signup [post]
func (h *ClientAuthHandler) Signup(c *gin.Context) {
	key := services.RateKey("ip", c.ClientIP(), "client_signup")
	if err := h.limiter.CheckAndRecordSlidingWindow(c.Request.Context(), key, h.loginWindow, h.loginMax); err != nil {
		if errors.Is(err, services.ErrThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Try later."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		return
	}

	var req models.ClientSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	client, err := h.clientService.Signup(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFieldsRequired),
			errors.Is(err, services.ErrPhoneRegistered),
			errors.Is(err, services.ErrEmailRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[client-auth][signup] failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Signup failed"})
		}
		return
	}

	// Auto-login so the client lands in the portal without a second step.
	// Goes through the regular login path to claim the active-session slot.
	cc := services.ClientContext{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	session, _, err := h.authService.LoginClient(c.Request.Context(), req.Phone, req.Password, cc)
	if err != nil {
		log.Printf("[client-auth][signup] session failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": true, "client_id": client.ClientID})
		return
	}
	c.SetCookie(h.cookieName, session.ID, h.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "client_id": client.ClientID})
}

// @Summary      Client portal login
// @Description  Identifier may be a phone number or an email address
// @Tags         ClientAuth
// @Accept       json
// @Produce      json
// @Param        login  body      models.ClientLoginRequest  true  "Login data"
// @Success      200    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Failure      429    {object}  map[string]string
// @Router       /client/auth/login [post]
func (h *ClientAuthHandler) Login(c *gin.Context) {
	var req models.ClientLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := services.RateKey("ip", fmt.Sprintf("%s:%s", c.ClientIP(), req.Identifier), "client_login")
	if err := h.limiter.CheckAndRecordSlidingWindow(c.Request.Context(), key, h.loginWindow, h.loginMax); err != nil {
		if errors.Is(err, services.ErrThrottled) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Try later."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	cc := services.ClientContext{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
	session, client, err := h.authService.LoginClient(c.Request.Context(), req.Identifier, req.Password, cc)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
			return
		}
		log.Printf("[client-auth][login] failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.SetCookie(h.cookieName, session.ID, h.cookieMaxAge, "/", "", false, true)
	log.Printf("[client-auth][login] ok client_id=%s", client.ClientID)
	c.JSON(http.StatusOK, gin.H{"success": true, "client": client})
}

// @Summary      Client portal logout
// @Tags         ClientAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /client/auth/logout [post]
func (h *ClientAuthHandler) Logout(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session != nil {
		if err := h.authService.Logout(c.Request.Context(), session.ID); err != nil {
			log.Printf("[client-auth][logout] failed: %v", err)
		}
	}
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
