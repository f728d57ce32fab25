package ebay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.ebay.com"

// Client eBay Sell API 客户端（目标平台）
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient 创建 eBay 客户端，baseURL 为空时用生产环境地址
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	http := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:    http,
		baseURL: baseURL,
	}
}

// Ping 连通性检查
func (c *Client) Ping(ctx context.Context, token string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("limit", "1").
		Get(c.baseURL + "/sell/fulfillment/v1/order")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("ebay ping 失败: %s", resp.Status())
	}
	return nil
}

// ListOrders 拉取 eBay 订单，since 非空时按创建时间增量过滤
func (c *Client) ListOrders(ctx context.Context, token string, since *time.Time) ([]Order, error) {
	var body ordersResponse

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("limit", "200").
		SetResult(&body)
	if since != nil {
		req.SetQueryParam("filter",
			fmt.Sprintf("creationdate:[%s..]", since.UTC().Format("2006-01-02T15:04:05.000Z")))
	}

	resp, err := req.Get(c.baseURL + "/sell/fulfillment/v1/order")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ebay 订单拉取失败: %s", resp.Status())
	}
	return body.Orders, nil
}

// UpdateOfferPrice 按 SKU 更新在售价格（bulk_update_price_quantity 单条用法）
func (c *Client) UpdateOfferPrice(ctx context.Context, token, sku, price, currency string) error {
	payload := map[string]interface{}{
		"requests": []map[string]interface{}{
			{
				"sku": sku,
				"offers": []map[string]interface{}{
					{
						"price": map[string]string{"value": price, "currency": currency},
					},
				},
			},
		},
	}
	return c.bulkUpdate(ctx, token, payload)
}

// UpdateInventoryQuantity 按 SKU 更新可售库存
func (c *Client) UpdateInventoryQuantity(ctx context.Context, token, sku string, quantity int) error {
	payload := map[string]interface{}{
		"requests": []map[string]interface{}{
			{
				"sku": sku,
				"shipToLocationAvailability": map[string]int{
					"quantity": quantity,
				},
			},
		},
	}
	return c.bulkUpdate(ctx, token, payload)
}

func (c *Client) bulkUpdate(ctx context.Context, token string, payload map[string]interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(c.baseURL + "/sell/inventory/v1/bulk_update_price_quantity")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("ebay 批量更新失败: %s", resp.Status())
	}
	return nil
}

// CreateShippingFulfillment 回传发货跟踪号
func (c *Client) CreateShippingFulfillment(ctx context.Context, token, orderID string, tracking Tracking) error {
	payload := map[string]interface{}{
		"trackingNumber":  tracking.TrackingNumber,
		"shippingCarrier": tracking.Carrier,
		"lineItems":       []map[string]string{},
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(fmt.Sprintf("%s/sell/fulfillment/v1/order/%s/shipping_fulfillment", c.baseURL, orderID))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("ebay 履约回传失败: %s", resp.Status())
	}
	return nil
}
