package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aureliajewelry/storefront-backend/services/inventory-service/models"
)

var (
	ErrNotFound          = errors.New("inventory record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNothingToClamp    = errors.New("stock changed concurrently, retry")
	ErrStatusStale       = errors.New("available count moved, status not written")
)

// InventoryRepository is the data-access contract for stock records.
type InventoryRepository interface {
	Get(ctx context.Context, productID string) (*models.Inventory, error)
	Put(ctx context.Context, inv *models.Inventory) error
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	// Reduce atomically decrements available by qty, guarded by
	// available >= qty, and returns the post-write available count.
	Reduce(ctx context.Context, productID string, qty int) (int, error)
	// ClampToZero zeroes available, guarded by 0 < available < qty, and
	// returns how much stock was actually consumed by the clamp.
	ClampToZero(ctx context.Context, productID string, qty int) (int, error)
	// SetStatusIfAvailable writes status only while available still equals
	// the count the status was classified from; returns ErrStatusStale when
	// a concurrent writer moved it first.
	SetStatusIfAvailable(ctx context.Context, productID string, status string, available int) error
}

// DynamoInventoryRepository implements InventoryRepository on DynamoDB.
// All stock mutations go through conditional updates so concurrent
// checkouts can never read-modify-write each other's decrements away.
type DynamoInventoryRepository struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoInventoryRepository(client *dynamodb.Client, table string) *DynamoInventoryRepository {
	return &DynamoInventoryRepository{client: client, table: table}
}

type ddbInventory struct {
	ProductID string `dynamodbav:"product_id"`
	Available int    `dynamodbav:"available"`
	Threshold int    `dynamodbav:"threshold"`
	Status    string `dynamodbav:"status"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func (r *DynamoInventoryRepository) key(productID string) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"product_id": productID})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}

func (r *DynamoInventoryRepository) Get(ctx context.Context, productID string) (*models.Inventory, error) {
	key, err := r.key(productID)
	if err != nil {
		return nil, err
	}

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.table,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var di ddbInventory
	if err := attributevalue.UnmarshalMap(out.Item, &di); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}

	inv := &models.Inventory{
		ProductID: di.ProductID,
		Available: di.Available,
		Threshold: di.Threshold,
		Status:    models.StockStatus(di.Status),
	}
	if t, err := time.Parse(time.RFC3339, di.UpdatedAt); err == nil {
		inv.UpdatedAt = t
	}
	return inv, nil
}

func (r *DynamoInventoryRepository) Put(ctx context.Context, inv *models.Inventory) error {
	di := ddbInventory{
		ProductID: inv.ProductID,
		Available: inv.Available,
		Threshold: inv.Threshold,
		Status:    string(inv.Status),
		UpdatedAt: inv.UpdatedAt.Format(time.RFC3339),
	}

	item, err := attributevalue.MarshalMap(di)
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &r.table,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (r *DynamoInventoryRepository) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	expr := "SET "
	exprVals := make(map[string]types.AttributeValue)
	exprNames := make(map[string]string)
	i := 0
	for k, v := range updates {
		ph := fmt.Sprintf(":v%d", i)
		namePh := fmt.Sprintf("#f%d", i)
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("%s = %s", namePh, ph)
		exprNames[namePh] = k
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal update value: %w", err)
		}
		exprVals[ph] = av
		i++
	}

	key, err := r.key(productID)
	if err != nil {
		return err
	}

	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &r.table,
		Key:                       key,
		UpdateExpression:          &expr,
		ExpressionAttributeValues: exprVals,
		ExpressionAttributeNames:  exprNames,
	}); err != nil {
		return fmt.Errorf("update item failed: %w", err)
	}
	return nil
}

func (r *DynamoInventoryRepository) SetStatusIfAvailable(ctx context.Context, productID string, status string, available int) error {
	key, err := r.key(productID)
	if err != nil {
		return err
	}

	expr := "SET #status = :status"
	condExpr := "#avail = :avail"

	statusAV, _ := attributevalue.Marshal(status)
	availAV, _ := attributevalue.Marshal(available)

	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &r.table,
		Key:                 key,
		UpdateExpression:    &expr,
		ConditionExpression: &condExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": statusAV,
			":avail":  availAV,
		},
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
			"#avail":  "available",
		},
	}); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrStatusStale
		}
		return fmt.Errorf("set status failed: %w", err)
	}
	return nil
}

func (r *DynamoInventoryRepository) Reduce(ctx context.Context, productID string, qty int) (int, error) {
	key, err := r.key(productID)
	if err != nil {
		return 0, err
	}

	expr := "SET #avail = #avail - :qty, updated_at = :now"
	condExpr := "#avail >= :qty"

	qtyAV, _ := attributevalue.Marshal(qty)
	nowAV, _ := attributevalue.Marshal(time.Now().UTC().Format(time.RFC3339))

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &r.table,
		Key:                 key,
		UpdateExpression:    &expr,
		ConditionExpression: &condExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty": qtyAV,
			":now": nowAV,
		},
		ExpressionAttributeNames: map[string]string{
			"#avail": "available",
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("reduce failed: %w", err)
	}

	var updated struct {
		Available int `dynamodbav:"available"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("unmarshal updated attributes: %w", err)
	}
	return updated.Available, nil
}

func (r *DynamoInventoryRepository) ClampToZero(ctx context.Context, productID string, qty int) (int, error) {
	key, err := r.key(productID)
	if err != nil {
		return 0, err
	}

	expr := "SET #avail = :zero, updated_at = :now"
	condExpr := "#avail > :zero AND #avail < :qty"

	qtyAV, _ := attributevalue.Marshal(qty)
	zeroAV, _ := attributevalue.Marshal(0)
	nowAV, _ := attributevalue.Marshal(time.Now().UTC().Format(time.RFC3339))

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           &r.table,
		Key:                 key,
		UpdateExpression:    &expr,
		ConditionExpression: &condExpr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qty":  qtyAV,
			":zero": zeroAV,
			":now":  nowAV,
		},
		ExpressionAttributeNames: map[string]string{
			"#avail": "available",
		},
		ReturnValues: types.ReturnValueUpdatedOld,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			// Either already zero or stock was raised concurrently.
			return 0, ErrNothingToClamp
		}
		return 0, fmt.Errorf("clamp failed: %w", err)
	}

	var prev struct {
		Available int `dynamodbav:"available"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &prev); err != nil {
		return 0, fmt.Errorf("unmarshal previous attributes: %w", err)
	}
	return prev.Available, nil
}
