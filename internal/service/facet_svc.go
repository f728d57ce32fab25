package service

import (
	"context"
	"time"

	"ebay_sync_v1_202608/pkg/ebay"
	"ebay_sync_v1_202608/pkg/fieldpath"
)

// ==================== FacetService 默认同步环节实现 ====================

// SourceClient 源平台（Shopify）需要的能力
type SourceClient interface {
	ListProducts(ctx context.Context, token string, updatedSince *time.Time) ([]fieldpath.Record, error)
	ListShippedOrders(ctx context.Context, token string, updatedSince *time.Time) ([]fieldpath.Record, error)
	CreateOrder(ctx context.Context, token string, order map[string]interface{}) error
	FindOrderBySourceRef(ctx context.Context, token, sourceRef string) (bool, error)
}

// TargetClient 目标平台（eBay）需要的能力
type TargetClient interface {
	ListOrders(ctx context.Context, token string, since *time.Time) ([]ebay.Order, error)
	UpdateOfferPrice(ctx context.Context, token, sku, price, currency string) error
	UpdateInventoryQuantity(ctx context.Context, token, sku string, quantity int) error
	CreateShippingFulfillment(ctx context.Context, token, orderID string, tracking ebay.Tracking) error
}

// FacetService 四个同步环节的默认实现：拉取-比对-推送的薄循环
// 编排器只认 SyncStepFunc 契约，换实现不影响编排
type FacetService struct {
	source SourceClient
	target TargetClient
}

// NewFacetService 创建环节服务
func NewFacetService(source SourceClient, target TargetClient) *FacetService {
	return &FacetService{source: source, target: target}
}

// Steps 按编排器契约导出四个环节
func (f *FacetService) Steps() SyncSteps {
	return SyncSteps{
		Orders:       f.SyncOrders,
		Prices:       f.SyncPrices,
		Inventory:    f.SyncInventory,
		Fulfillments: f.SyncFulfillments,
	}
}

// SyncOrders eBay 订单导入 Shopify
// 未付款跳过；按来源单号查重跳过；dry-run 只计数不落单
func (f *FacetService) SyncOrders(ctx context.Context, targetToken, sourceToken string, opts StepOptions) (*StepResult, error) {
	orders, err := f.target.ListOrders(ctx, targetToken, opts.Since)
	if err != nil {
		return nil, err
	}

	result := &StepResult{}
	for _, order := range orders {
		if order.OrderPaymentStatus != "PAID" {
			result.Skipped++
			continue
		}

		exists, err := f.source.FindOrderBySourceRef(ctx, sourceToken, order.OrderID)
		if err != nil {
			result.Failed++
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		if opts.DryRun {
			result.UpdatedOrImported++
			continue
		}

		if err := f.source.CreateOrder(ctx, sourceToken, buildSourceOrder(order)); err != nil {
			result.Failed++
			continue
		}
		result.UpdatedOrImported++
	}
	return result, nil
}

// buildSourceOrder 把 eBay 订单转成 Shopify 订单创建载荷
// source_identifier 带上 eBay 单号，后续查重和履约回传都靠它
func buildSourceOrder(order ebay.Order) map[string]interface{} {
	lineItems := make([]map[string]interface{}, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		lineItems = append(lineItems, map[string]interface{}{
			"title":    li.Title,
			"sku":      li.SKU,
			"quantity": li.Quantity,
			"price":    li.LineTotal.Value,
		})
	}
	return map[string]interface{}{
		"source_identifier":        order.OrderID,
		"source_name":              "ebay",
		"line_items":               lineItems,
		"financial_status":         "paid",
		"note":                     "Imported from eBay order " + order.OrderID,
		"inventory_behaviour":      "decrement_ignoring_policy",
		"send_receipt":             false,
		"send_fulfillment_receipt": false,
	}
}

// SyncPrices Shopify 变体价格推送到 eBay
// 没有 SKU 的变体无法定位到 eBay 库存项，跳过
func (f *FacetService) SyncPrices(ctx context.Context, targetToken, sourceToken string, opts StepOptions) (*StepResult, error) {
	products, err := f.source.ListProducts(ctx, sourceToken, opts.Since)
	if err != nil {
		return nil, err
	}

	result := &StepResult{}
	for _, product := range products {
		for _, variant := range variantsOf(product) {
			sku, _ := fieldpath.Stringify(variant["sku"])
			price, hasPrice := fieldpath.Stringify(variant["price"])
			if sku == "" || !hasPrice {
				result.Skipped++
				continue
			}

			if opts.DryRun {
				result.UpdatedOrImported++
				continue
			}

			if err := f.target.UpdateOfferPrice(ctx, targetToken, sku, price, "USD"); err != nil {
				result.Failed++
				continue
			}
			result.UpdatedOrImported++
		}
	}
	return result, nil
}

// SyncInventory Shopify 变体库存推送到 eBay
func (f *FacetService) SyncInventory(ctx context.Context, targetToken, sourceToken string, opts StepOptions) (*StepResult, error) {
	products, err := f.source.ListProducts(ctx, sourceToken, opts.Since)
	if err != nil {
		return nil, err
	}

	result := &StepResult{}
	for _, product := range products {
		for _, variant := range variantsOf(product) {
			sku, _ := fieldpath.Stringify(variant["sku"])
			qty, hasQty := variant["inventory_quantity"].(float64)
			if sku == "" || !hasQty {
				result.Skipped++
				continue
			}
			if qty < 0 {
				qty = 0
			}

			if opts.DryRun {
				result.UpdatedOrImported++
				continue
			}

			if err := f.target.UpdateInventoryQuantity(ctx, targetToken, sku, int(qty)); err != nil {
				result.Failed++
				continue
			}
			result.UpdatedOrImported++
		}
	}
	return result, nil
}

// SyncFulfillments Shopify 发货信息回传 eBay
// 只处理带 source_identifier（eBay 来源单号）的订单，没跟踪号的跳过
func (f *FacetService) SyncFulfillments(ctx context.Context, targetToken, sourceToken string, opts StepOptions) (*StepResult, error) {
	orders, err := f.source.ListShippedOrders(ctx, sourceToken, opts.Since)
	if err != nil {
		return nil, err
	}

	result := &StepResult{}
	for _, order := range orders {
		ebayOrderID, ok := fieldpath.LookupString(order, "source_identifier")
		if !ok || ebayOrderID == "" {
			result.Skipped++
			continue
		}

		trackingNumber, hasTracking := fieldpath.LookupString(order, "fulfillments[0].tracking_number")
		if !hasTracking || trackingNumber == "" {
			result.Skipped++
			continue
		}
		carrier, _ := fieldpath.LookupString(order, "fulfillments[0].tracking_company")

		if opts.DryRun {
			result.UpdatedOrImported++
			continue
		}

		tracking := ebay.Tracking{TrackingNumber: trackingNumber, Carrier: carrier}
		if err := f.target.CreateShippingFulfillment(ctx, targetToken, ebayOrderID, tracking); err != nil {
			result.Failed++
			continue
		}
		result.UpdatedOrImported++
	}
	return result, nil
}

// variantsOf 从松散商品记录里取变体数组
func variantsOf(product fieldpath.Record) []map[string]interface{} {
	raw, ok := product["variants"].([]interface{})
	if !ok {
		return nil
	}
	variants := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			variants = append(variants, m)
		}
	}
	return variants
}
