package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// InventoryClient reads stock levels from inventory-service over HTTP. The
// cart only needs reads: the ceiling snapshot at add time and nothing else.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInventoryClient(baseURL string) *InventoryClient {
	return &InventoryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// StockInfo is the response from GET /inventory/:productId.
type StockInfo struct {
	ProductID string    `json:"product_id"`
	Available int       `json:"available"`
	Threshold int       `json:"threshold"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ErrStockNotFound = fmt.Errorf("no inventory record")

// GetStock fetches the current stock level for a product.
func (c *InventoryClient) GetStock(ctx context.Context, productID string) (*StockInfo, error) {
	url := fmt.Sprintf("%s/inventory/%s", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrStockNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory service returned %d", resp.StatusCode)
	}

	var info StockInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
