package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ishwarchoudhari/FloDo/internal/services"
)

type PasswordResetHandler struct {
	resetService services.PasswordResetService
}

func NewPasswordResetHandler(resetService services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resetService: resetService}
}

type verifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type confirmResetRequest struct {
	ResetToken  string `json:"reset_token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type clientForgotRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

type clientResetRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// @Summary      Request a super-admin reset code
// @Description  Always answers ok so callers cannot probe whether the account exists
// @Tags         PasswordReset
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/password/forgot [post]
func (h *PasswordResetHandler) RequestSuperAdminReset(c *gin.Context) {
	if err := h.resetService.RequestSuperAdminReset(c.Request.Context(), c.ClientIP()); err != nil {
		// Still answer ok; the response shape never leaks internal state.
		log.Printf("[reset][request] failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Verify a super-admin reset code
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        verify  body      verifyCodeRequest  true  "One-time code"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  map[string]string
// @Router       /auth/password/verify [post]
func (h *PasswordResetHandler) VerifySuperAdminCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, verified, err := h.resetService.VerifySuperAdminCode(c.Request.Context(), req.Code)
	if err != nil {
		log.Printf("[reset][verify] failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}
	if !verified {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid or expired code."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reset_token": token})
}

// @Summary      Set a new super-admin password
// @Description  Requires the reset token handed out by a successful verify
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        confirm  body      confirmResetRequest  true  "Reset token and new password"
// @Success      200      {object}  map[string]bool
// @Failure      400      {object}  map[string]string
// @Router       /auth/password/confirm [post]
func (h *PasswordResetHandler) ConfirmSuperAdminReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.ConfirmSuperAdminReset(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrResetNotVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reset not verified or expired."})
		case errors.Is(err, services.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password is too short."})
		default:
			log.Printf("[reset][confirm] failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Request a client reset link
// @Description  Always answers ok; the link is emailed if the account exists
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        forgot  body      clientForgotRequest  true  "Phone or email"
// @Success      200     {object}  map[string]bool
// @Router       /client/auth/password/forgot [post]
func (h *PasswordResetHandler) RequestClientReset(c *gin.Context) {
	var req clientForgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.RequestClientReset(c.Request.Context(), req.Identifier, c.ClientIP()); err != nil {
		log.Printf("[reset][client-request] failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Reset a client password with an emailed token
// @Tags         PasswordReset
// @Accept       json
// @Produce      json
// @Param        reset  body      clientResetRequest  true  "Token and new password"
// @Success      200    {object}  map[string]bool
// @Failure      400    {object}  map[string]string
// @Router       /client/auth/password/reset [post]
func (h *PasswordResetHandler) ResetClientPassword(c *gin.Context) {
	var req clientResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resetService.ResetClientPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrResetTokenBad):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired link."})
		case errors.Is(err, services.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password is too short."})
		default:
			log.Printf("[reset][client-reset] failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reset failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
