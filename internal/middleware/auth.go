package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

// Context keys set for downstream handlers.
const (
	CtxSession  = "session"
	CtxUserID   = "user_id"
	CtxUserType = "user_type"
)

func sessionIDFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	// Header fallback for non-browser clients.
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// SessionAuth validates the session id carried by the request. Stale or
// evicted sessions get a 401 and an expired cookie; the client is expected
// to log in again.
func SessionAuth(auth services.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessionIDFrom(c, cookieName)
		if sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		session, err := auth.ValidateRequest(c.Request.Context(), sid)
		if err != nil {
			if errors.Is(err, services.ErrSessionInvalid) {
				c.SetCookie(cookieName, "", -1, "/", "", false, true)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session ended, please log in again"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Authentication check failed"})
			return
		}
		c.Set(CtxSession, session)
		c.Set(CtxUserID, session.UserID)
		c.Set(CtxUserType, session.UserType)
		c.Next()
	}
}

// RequireUserType gates a route group to one identity class.
func RequireUserType(userType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserType) != userType {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the validated session stored by SessionAuth.
func SessionFrom(c *gin.Context) *models.Session {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}
