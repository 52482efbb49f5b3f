package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/aureliajewelry/storefront-backend/services/common/errors"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/models"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/repository"
	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/services"
)

// WaitlistAPI is the service surface the controller needs.
type WaitlistAPI interface {
	Join(ctx context.Context, email, magicLink string) error
	Login(ctx context.Context, email, passcode string) (string, error)
	SubscribeNewsletter(ctx context.Context, email string) error
	SendInvoice(ctx context.Context, to string, invoice models.Invoice, senderInfo models.SenderInfo) error
}

type WaitlistController struct {
	service WaitlistAPI
	logger  *zap.Logger
}

func NewWaitlistController(service WaitlistAPI, logger *zap.Logger) *WaitlistController {
	return &WaitlistController{service: service, logger: logger}
}

type joinRequest struct {
	Email     string `json:"email" binding:"required,email"`
	MagicLink string `json:"magicLink"`
}

// Join handles POST /api/waitlist.
func (wc *WaitlistController) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "a valid email is required"})
		return
	}

	if err := wc.service.Join(c.Request.Context(), req.Email, req.MagicLink); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": true, "message": "email already on the waitlist"})
			return
		}
		wc.logger.Error("waitlist signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "failed to join waitlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"email": req.Email}})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Passcode string `json:"passcode" binding:"required,len=6,numeric"`
}

// Login handles POST /api/login.
func (wc *WaitlistController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "email and a 6-digit passcode are required"})
		return
	}

	token, err := wc.service.Login(c.Request.Context(), req.Email, req.Passcode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOnWaitlist):
			c.JSON(http.StatusNotFound, gin.H{"error": true, "message": "email not on the waitlist"})
		case errors.Is(err, services.ErrInvalidPasscode):
			c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": "invalid passcode"})
		case errors.Is(err, apperrors.ErrPasscodeLocked):
			c.JSON(http.StatusForbidden, gin.H{"error": true, "message": "too many failed attempts, try again later"})
		default:
			wc.logger.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"token": token}})
}

type sendEmailRequest struct {
	RecipientEmail string             `json:"recipientEmail"`
	Invoice        *models.Invoice    `json:"invoice"`
	SenderInfo     *models.SenderInfo `json:"senderInfo"`
}

// SendEmail handles POST /api/send-email. recipientEmail and invoice are
// both required; an empty body yields a 400 naming the missing fields.
func (wc *WaitlistController) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: recipientEmail and invoice are required"})
		return
	}
	if req.RecipientEmail == "" || req.Invoice == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: recipientEmail and invoice are required"})
		return
	}

	senderInfo := models.SenderInfo{}
	if req.SenderInfo != nil {
		senderInfo = *req.SenderInfo
	}

	if err := wc.service.SendInvoice(c.Request.Context(), req.RecipientEmail, *req.Invoice, senderInfo); err != nil {
		wc.logger.Error("invoice email failed",
			zap.String("recipient", req.RecipientEmail), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"recipient": req.RecipientEmail}})
}

type newsletterRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Newsletter handles POST /api/newsletter.
func (wc *WaitlistController) Newsletter(c *gin.Context) {
	var req newsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": "a valid email is required"})
		return
	}

	if err := wc.service.SubscribeNewsletter(c.Request.Context(), req.Email); err != nil {
		wc.logger.Error("newsletter signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": true, "message": "failed to subscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"email": req.Email}})
}
