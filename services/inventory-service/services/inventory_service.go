package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	awspkg "github.com/aureliajewelry/storefront-backend/pkg/aws"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/models"
	"github.com/aureliajewelry/storefront-backend/services/inventory-service/repository"
)

// reduceRetries bounds the decrement/clamp loop when stock moves underneath
// a reconciliation step.
const reduceRetries = 3

// InventoryService owns stock records and post-checkout reconciliation.
type InventoryService struct {
	repo          repository.InventoryRepository
	publisher     awspkg.SNSPublisher
	alertTopicArn string
	metrics       *awspkg.MetricsClient
	logger        *zap.Logger
}

func NewInventoryService(
	repo repository.InventoryRepository,
	publisher awspkg.SNSPublisher,
	alertTopicArn string,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		repo:          repo,
		publisher:     publisher,
		alertTopicArn: alertTopicArn,
		metrics:       metrics,
		logger:        logger,
	}
}

// GetStock returns the record with its status recomputed from the stored
// counts, so hand-edited records never report a stale classification.
func (s *InventoryService) GetStock(ctx context.Context, productID string) (*models.Inventory, error) {
	inv, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	inv.Status = models.Classify(inv.Available, inv.Threshold)
	return inv, nil
}

// SetStock creates a record or tops up an existing one.
func (s *InventoryService) SetStock(ctx context.Context, req *models.SetStockRequest) (*models.Inventory, error) {
	existing, err := s.repo.Get(ctx, req.ProductID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing stock: %w", err)
	}

	now := time.Now().UTC()
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = models.DefaultThreshold
	}

	if existing != nil {
		newAvailable := existing.Available + req.Available
		status := models.Classify(newAvailable, threshold)
		updates := map[string]interface{}{
			"available":  newAvailable,
			"threshold":  threshold,
			"status":     string(status),
			"updated_at": now.Format(time.RFC3339),
		}
		if err := s.repo.Update(ctx, req.ProductID, updates); err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
		existing.Available = newAvailable
		existing.Threshold = threshold
		existing.Status = status
		existing.UpdatedAt = now
		s.logger.Info("stock topped up",
			zap.String("product_id", req.ProductID),
			zap.Int("available", newAvailable),
			zap.Int("added", req.Available))
		return existing, nil
	}

	inv := &models.Inventory{
		ProductID: req.ProductID,
		Available: req.Available,
		Threshold: threshold,
		Status:    models.Classify(req.Available, threshold),
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}

	s.logger.Info("stock record created",
		zap.String("product_id", req.ProductID),
		zap.Int("available", req.Available),
		zap.Int("threshold", threshold))
	return inv, nil
}

// UpdateStock partially updates a record and keeps status consistent.
func (s *InventoryService) UpdateStock(ctx context.Context, productID string, req *models.UpdateStockRequest) (*models.Inventory, error) {
	existing, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	available := existing.Available
	threshold := existing.Threshold
	if req.Available != nil {
		available = *req.Available
	}
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	updates := map[string]interface{}{
		"available":  available,
		"threshold":  threshold,
		"status":     string(models.Classify(available, threshold)),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	return s.GetStock(ctx, productID)
}

// CheckStock reports availability for each requested item.
func (s *InventoryService) CheckStock(ctx context.Context, items []models.PurchasedItem) ([]models.StockCheckResult, error) {
	results := make([]models.StockCheckResult, 0, len(items))
	for _, item := range items {
		inv, err := s.repo.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				results = append(results, models.StockCheckResult{
					ProductID: item.ProductID,
					Requested: item.Quantity,
				})
				continue
			}
			return nil, fmt.Errorf("failed to check stock for product=%s: %w", item.ProductID, err)
		}
		results = append(results, models.StockCheckResult{
			ProductID:    item.ProductID,
			Available:    inv.Available,
			Requested:    item.Quantity,
			IsSufficient: inv.Available >= item.Quantity,
		})
	}
	return results, nil
}

// ReduceStock reconciles inventory after a completed checkout. Each line is
// applied with a conditional decrement; when the remaining stock is smaller
// than the purchase it is clamped to zero instead of going negative. Missing
// records are skipped and logged rather than failing the whole batch.
func (s *InventoryService) ReduceStock(ctx context.Context, orderID string, items []models.PurchasedItem) ([]models.ReduceResult, error) {
	results := make([]models.ReduceResult, 0, len(items))

	for _, item := range items {
		before, err := s.repo.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("no inventory record for purchased item",
					zap.String("order_id", orderID),
					zap.String("product_id", item.ProductID))
				continue
			}
			return results, fmt.Errorf("failed to read stock for product=%s: %w", item.ProductID, err)
		}

		res, err := s.reduceOne(ctx, item)
		if err != nil {
			return results, fmt.Errorf("failed to reduce stock for product=%s: %w", item.ProductID, err)
		}

		newStatus := models.Classify(res.Available, before.Threshold)
		res.Status = newStatus
		// Guarded by available = res.Available so a reducer that lost the
		// race cannot overwrite the winner's status with a stale one.
		if err := s.repo.SetStatusIfAvailable(ctx, item.ProductID, string(newStatus), res.Available); err != nil {
			if errors.Is(err, repository.ErrStatusStale) {
				s.logger.Debug("skipped stale status write",
					zap.String("product_id", item.ProductID))
			} else {
				s.logger.Error("failed to persist recomputed status",
					zap.String("product_id", item.ProductID), zap.Error(err))
			}
		}

		oldStatus := models.Classify(before.Available, before.Threshold)
		if newStatus != oldStatus && newStatus != models.StatusInStock {
			s.publishAlert(ctx, item.ProductID, newStatus, res.Available, before.Threshold)
		}
		s.recordReduceMetrics(ctx, res)

		results = append(results, res)
	}

	s.logger.Info("stock reconciled",
		zap.String("order_id", orderID),
		zap.Int("items", len(results)))
	return results, nil
}

func (s *InventoryService) reduceOne(ctx context.Context, item models.PurchasedItem) (models.ReduceResult, error) {
	res := models.ReduceResult{ProductID: item.ProductID, Requested: item.Quantity}

	for attempt := 0; attempt < reduceRetries; attempt++ {
		newAvailable, err := s.repo.Reduce(ctx, item.ProductID, item.Quantity)
		if err == nil {
			res.Reduced = item.Quantity
			res.Available = newAvailable
			return res, nil
		}
		if !errors.Is(err, repository.ErrInsufficientStock) {
			return res, err
		}

		consumed, err := s.repo.ClampToZero(ctx, item.ProductID, item.Quantity)
		if err == nil {
			res.Reduced = consumed
			res.Available = 0
			res.Clamped = true
			return res, nil
		}
		if !errors.Is(err, repository.ErrNothingToClamp) {
			return res, err
		}
		// Stock was already zero, or another writer changed it between the
		// decrement and the clamp; re-read the state via another attempt.
		inv, gerr := s.repo.Get(ctx, item.ProductID)
		if gerr != nil {
			return res, gerr
		}
		if inv.Available <= 0 {
			res.Reduced = 0
			res.Available = inv.Available
			res.Clamped = true
			return res, nil
		}
	}
	return res, fmt.Errorf("gave up after %d attempts (stock changing concurrently)", reduceRetries)
}

func (s *InventoryService) publishAlert(ctx context.Context, productID string, status models.StockStatus, available, threshold int) {
	if s.publisher == nil || s.alertTopicArn == "" {
		return
	}
	alert := models.StockAlert{
		Event:     models.StockAlertEvent,
		ProductID: productID,
		Status:    status,
		Available: available,
		Threshold: threshold,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(alert)
	if err != nil {
		s.logger.Error("failed to marshal stock alert", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.alertTopicArn, payload); err != nil {
		s.logger.Error("failed to publish stock alert",
			zap.String("product_id", productID), zap.Error(err))
		return
	}
	s.logger.Info("stock alert published",
		zap.String("product_id", productID),
		zap.String("status", string(status)),
		zap.Int("available", available))
}

func (s *InventoryService) recordReduceMetrics(ctx context.Context, res models.ReduceResult) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	dims := map[string]string{"Service": "inventory-service"}
	_ = s.metrics.RecordCount(ctx, awspkg.MetricStockReduced, dims)
	if res.Clamped {
		_ = s.metrics.RecordCount(ctx, awspkg.MetricStockClamped, dims)
	}
	switch res.Status {
	case models.StatusLowStock:
		_ = s.metrics.RecordCount(ctx, awspkg.MetricInventoryLow, dims)
	case models.StatusOutOfStock:
		_ = s.metrics.RecordCount(ctx, awspkg.MetricInventoryOut, dims)
	}
}
