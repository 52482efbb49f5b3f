package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aureliajewelry/storefront-backend/services/notification-service/models"
	"github.com/aureliajewelry/storefront-backend/services/notification-service/repository"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestSave_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	n := &models.Notification{
		ProductID:   "ring-1",
		Type:        models.TypeLowStock,
		Available:   3,
		Threshold:   5,
		Message:     "Product ring-1 is running low: 3 left.",
		EmailStatus: models.EmailStatusSkipped,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "notifications"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), n)
	assert.NoError(t, err)
}

func TestFindActive_ReturnsNilWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications"`)).
		WithArgs("ring-1", models.TypeOutStock, false, 1).
		WillReturnRows(sqlmock.NewRows([]string{}))

	n, err := repo.FindActive(context.Background(), "ring-1", models.TypeOutStock)
	assert.NoError(t, err)
	assert.Nil(t, n)
}

func TestFindActive_ReturnsExistingAlert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "product_id", "type", "available", "threshold", "read", "dismissed", "created_at", "updated_at"}).
		AddRow(int64(7), "ring-1", models.TypeLowStock, 4, 5, false, false, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "notifications"`)).
		WithArgs("ring-1", models.TypeLowStock, false, 1).
		WillReturnRows(rows)

	n, err := repo.FindActive(context.Background(), "ring-1", models.TypeLowStock)
	assert.NoError(t, err)
	assert.NotNil(t, n)
	assert.Equal(t, int64(7), n.ID)
	assert.Equal(t, models.TypeLowStock, n.Type)
}

func TestDismiss_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dismissed, err := repo.Dismiss(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), dismissed)
}

func TestMarkAllRead_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewNotificationRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "notifications"`)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	updated, err := repo.MarkAllRead(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), updated)
}
