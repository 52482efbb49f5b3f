package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
)

// ErrDuplicateActiveAlert means an undismissed alert for the same product
// and type already exists; the partial unique index rejected the insert.
var ErrDuplicateActiveAlert = errors.New("active alert already exists")

type NotificationRepository interface {
	Save(ctx context.Context, n *models.Notification) error
	FindActive(ctx context.Context, productID, alertType string) (*models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id int64) (int64, error)
	MarkAllRead(ctx context.Context) (int64, error)
	Dismiss(ctx context.Context, id int64) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	UpdateEmailStatus(ctx context.Context, id int64, status, emailErr string, retries int) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Save(ctx context.Context, n *models.Notification) error {
	err := r.db.WithContext(ctx).Create(n).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateActiveAlert
	}
	return err
}

// FindActive returns the undismissed alert for a product and type, or nil.
// This is the dedup check: while such a row exists, no new alert is created.
func (r *notificationRepository) FindActive(ctx context.Context, productID, alertType string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND type = ? AND dismissed = ?", productID, alertType, false).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("dismissed = ?", false)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Unread != nil {
		query = query.Where("read = ?", !*filter.Unread)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("read = ? AND dismissed = ?", false, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// Dismiss retires an alert. A later stock dip for the same product creates a
// fresh alert because the dedup query ignores dismissed rows.
func (r *notificationRepository) Dismiss(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("dismissed", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) ClearAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("dismissed = ?", false).
		Update("dismissed", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) UpdateEmailStatus(ctx context.Context, id int64, status, emailErr string, retries int) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email_status": status,
			"email_error":  emailErr,
			"retry_count":  retries,
		}).Error
}
