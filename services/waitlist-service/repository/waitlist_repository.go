package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aureliajewelry/storefront-backend/services/waitlist-service/models"
)

var (
	ErrNotFound      = errors.New("waitlist entry not found")
	ErrAlreadyExists = errors.New("email already registered")
)

type WaitlistRepository struct {
	waitlist    *mongo.Collection
	newsletters *mongo.Collection
}

func NewWaitlistRepository(db *mongo.Database) *WaitlistRepository {
	return &WaitlistRepository{
		waitlist:    db.Collection("waitlist"),
		newsletters: db.Collection("newsletters"),
	}
}

// EnsureIndexes creates the unique email indexes on both collections.
func (r *WaitlistRepository) EnsureIndexes(ctx context.Context) error {
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.waitlist.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return err
	}
	_, err := r.newsletters.Indexes().CreateOne(ctx, emailIndex)
	return err
}

func (r *WaitlistRepository) FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.waitlist.FindOne(ctx, bson.M{"email": email}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *WaitlistRepository) Create(ctx context.Context, entry *models.WaitlistEntry) error {
	_, err := r.waitlist.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

// RecordFailedLogin bumps the attempt counter and optionally sets a lock.
func (r *WaitlistRepository) RecordFailedLogin(ctx context.Context, email string, lockedUntil *time.Time) error {
	update := bson.M{
		"$inc": bson.M{"login_attempts": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	if lockedUntil != nil {
		update["$set"].(bson.M)["locked_until"] = *lockedUntil
	}
	_, err := r.waitlist.UpdateOne(ctx, bson.M{"email": email}, update)
	return err
}

// RecordSuccessfulLogin resets the attempt counter and stamps last login.
func (r *WaitlistRepository) RecordSuccessfulLogin(ctx context.Context, email string) error {
	now := time.Now().UTC()
	_, err := r.waitlist.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$set": bson.M{
			"login_attempts": 0,
			"last_login":     now,
			"updated_at":     now,
		},
		"$unset": bson.M{"locked_until": ""},
	})
	return err
}

func (r *WaitlistRepository) AddNewsletterSignup(ctx context.Context, signup *models.NewsletterSignup) error {
	_, err := r.newsletters.InsertOne(ctx, signup)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}
