package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aureliajewelry/storefront-backend/services/cart-service/models"
)

// ErrVersionConflict is returned when a save carries a version that no
// longer matches the stored cart (another tab or device wrote first).
var ErrVersionConflict = errors.New("cart version conflict")

// CartRepository stores one JSON cart document per user in Redis. Saves are
// optimistic: the stored version must match the caller's snapshot, and every
// successful save bumps it by one.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func (r *CartRepository) cartKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *CartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart writes the cart if its version still matches the stored one,
// using WATCH so a concurrent writer aborts the transaction instead of
// being silently overwritten.
func (r *CartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	key := r.cartKey(cart.UserID)

	txn := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err != redis.Nil {
			var current models.Cart
			if uerr := json.Unmarshal([]byte(stored), &current); uerr == nil {
				if current.Version != cart.Version {
					return ErrVersionConflict
				}
			}
		} else if cart.Version != 0 {
			return ErrVersionConflict
		}

		cart.Version++
		cart.UpdatedAt = time.Now()
		data, err := json.Marshal(cart)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrVersionConflict
	}
	return err
}

func (r *CartRepository) DeleteCart(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.cartKey(userID)).Err()
}

// Idempotency helpers for checkout replays.

func (r *CartRepository) idemKey(key string) string {
	return "idem:checkout:" + key
}

// GetIdempotency returns the order id recorded for the key, or "" when the
// key has not been seen.
func (r *CartRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *CartRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.idemKey(key), orderID, ttl).Err()
}

// DeleteIdempotency releases a reserved key so a failed checkout can be
// retried with the same Idempotency-Key.
func (r *CartRepository) DeleteIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.idemKey(key)).Err()
}
