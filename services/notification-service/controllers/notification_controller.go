package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/services"
)

type NotificationController struct {
	service services.NotificationService
	logger  *zap.Logger
}

func NewNotificationController(service services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{service: service, logger: logger}
}

// List handles GET /notifications?type=&unread=&page=&pageSize=
func (nc *NotificationController) List(c *gin.Context) {
	filter := models.NotificationFilter{
		Type: c.Query("type"),
	}
	if s := c.Query("unread"); s != "" {
		unread, err := strconv.ParseBool(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid boolean value for 'unread'"})
			return
		}
		filter.Unread = &unread
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	notifications, total, err := nc.service.List(c.Request.Context(), filter)
	if err != nil {
		nc.logger.Error("failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          filter.Page,
	})
}

// MarkRead handles PATCH /notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	updated, err := nc.service.MarkRead(c.Request.Context(), id)
	if err != nil {
		nc.logger.Error("failed to mark notification read", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}
	if updated == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked read"})
}

// MarkAllRead handles POST /notifications/read-all
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	updated, err := nc.service.MarkAllRead(c.Request.Context())
	if err != nil {
		nc.logger.Error("failed to mark all notifications read", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Dismiss handles DELETE /notifications/:id
func (nc *NotificationController) Dismiss(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	dismissed, err := nc.service.Dismiss(c.Request.Context(), id)
	if err != nil {
		nc.logger.Error("failed to dismiss notification", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to dismiss notification"})
		return
	}
	if dismissed == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dismissed"})
}

// ClearAll handles DELETE /notifications
func (nc *NotificationController) ClearAll(c *gin.Context) {
	cleared, err := nc.service.ClearAll(c.Request.Context())
	if err != nil {
		nc.logger.Error("failed to clear notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}
