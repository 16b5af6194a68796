package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ishwarchoudhari/FloDo/internal/middleware"
	"github.com/ishwarchoudhari/FloDo/internal/repositories"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary      Current dashboard user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  models.AdminUser
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
// @Security     SessionCookie
func (h *UserHandler) Me(c *gin.Context) {
	id, err := strconv.Atoi(c.GetString(middleware.CtxUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	user, err := h.userService.GetByID(id)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Promote an admin to super-admin
// @Description  Demotes every other admin in the same transaction so exactly one super-admin remains
// @Tags         Users
// @Produce      json
// @Param        id   path      int  true  "Admin user id"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /users/{id}/promote [post]
// @Security     SessionCookie
func (h *UserHandler) Promote(c *gin.Context) {
	callerID, err := strconv.Atoi(c.GetString(middleware.CtxUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	caller, err := h.userService.GetByID(callerID)
	if err != nil || caller == nil || !caller.IsSuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Super-admin only."})
		return
	}

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	if err := h.userService.PromoteSuperAdmin(targetID); err != nil {
		log.Printf("[users][promote] failed target=%d: %v", targetID, err)
		if errors.Is(err, repositories.ErrInvariantViolation) {
			// Partial multi-row update would leave zero or two super-admins.
			// Fatal, never retried here.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion failed."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Promotion failed."})
		return
	}
	log.Printf("[users][promote] ok by=%d target=%d", callerID, targetID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
