package ebay

// ==================== Sell API 响应结构 ====================

type ordersResponse struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

// Order eBay 订单（只保留同步需要的字段）
type Order struct {
	OrderID             string     `json:"orderId"`
	CreationDate        string     `json:"creationDate"`
	OrderFulfillStatus  string     `json:"orderFulfillmentStatus"`
	OrderPaymentStatus  string     `json:"orderPaymentStatus"`
	BuyerUsername       string     `json:"buyerUsername,omitempty"`
	PricingSummaryTotal Amount     `json:"pricingSummaryTotal,omitempty"`
	LineItems           []LineItem `json:"lineItems"`
}

// LineItem 订单行
type LineItem struct {
	LineItemID string `json:"lineItemId"`
	SKU        string `json:"sku"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	LineTotal  Amount `json:"total"`
}

// Amount 金额
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Tracking 发货跟踪信息
type Tracking struct {
	TrackingNumber string
	Carrier        string
}
