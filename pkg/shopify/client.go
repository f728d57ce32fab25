package shopify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ebay_sync_v1_202608/pkg/fieldpath"
)

const apiVersion = "2024-01"

// Client Shopify Admin REST 客户端（源平台）
type Client struct {
	http       *resty.Client
	shopDomain string // 形如 myshop.myshopify.com
}

// NewClient 创建 Shopify 客户端
func NewClient(shopDomain string) *Client {
	http := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:       http,
		shopDomain: shopDomain,
	}
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.shopDomain, apiVersion)
}

// Ping 连通性检查，GET shop.json
func (c *Client) Ping(ctx context.Context, token string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		Get(c.baseURL() + "/shop.json")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("shopify ping 失败: %s", resp.Status())
	}
	return nil
}

// ListProducts 拉取商品列表，updatedSince 非空时做增量过滤
// 商品保持松散的 map 结构，供映射解析器按路径取值
func (c *Client) ListProducts(ctx context.Context, token string, updatedSince *time.Time) ([]fieldpath.Record, error) {
	var body struct {
		Products []fieldpath.Record `json:"products"`
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetQueryParam("limit", "250").
		SetResult(&body)
	if updatedSince != nil {
		req.SetQueryParam("updated_at_min", updatedSince.Format(time.RFC3339))
	}

	resp, err := req.Get(c.baseURL() + "/products.json")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shopify 商品拉取失败: %s", resp.Status())
	}
	return body.Products, nil
}

// ListShippedOrders 拉取已发货订单（履约同步的数据源）
func (c *Client) ListShippedOrders(ctx context.Context, token string, updatedSince *time.Time) ([]fieldpath.Record, error) {
	var body struct {
		Orders []fieldpath.Record `json:"orders"`
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetQueryParam("fulfillment_status", "shipped").
		SetQueryParam("status", "any").
		SetQueryParam("limit", "250").
		SetResult(&body)
	if updatedSince != nil {
		req.SetQueryParam("updated_at_min", updatedSince.Format(time.RFC3339))
	}

	resp, err := req.Get(c.baseURL() + "/orders.json")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("shopify 订单拉取失败: %s", resp.Status())
	}
	return body.Orders, nil
}

// CreateOrder 把 eBay 订单落到 Shopify（订单导入）
func (c *Client) CreateOrder(ctx context.Context, token string, order map[string]interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetBody(map[string]interface{}{"order": order}).
		Post(c.baseURL() + "/orders.json")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("shopify 订单创建失败: %s", resp.Status())
	}
	return nil
}

// FindOrderBySourceRef 按来源单号查重，避免重复导入
func (c *Client) FindOrderBySourceRef(ctx context.Context, token, sourceRef string) (bool, error) {
	var body struct {
		Orders []fieldpath.Record `json:"orders"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Shopify-Access-Token", token).
		SetQueryParam("name", sourceRef).
		SetQueryParam("status", "any").
		SetResult(&body).
		Get(c.baseURL() + "/orders.json")
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, fmt.Errorf("shopify 订单查询失败: %s", resp.Status())
	}
	return len(body.Orders) > 0, nil
}
