package model

import "time"

// ==================== 平台连接 ====================

// Platform 对接的电商平台标识
type Platform string

const (
	PlatformShopify Platform = "shopify"
	PlatformEbay    Platform = "ebay"
)

// PlatformConnection 单个平台的授权凭证
// Token 的获取/刷新由外部授权流程写入，这里只负责存取和过期判断
type PlatformConnection struct {
	BaseModel
	Platform       Platform  `gorm:"size:20;not null;uniqueIndex" json:"platform"`
	AccessToken    string    `gorm:"size:2000" json:"-"`
	RefreshToken   string    `gorm:"size:2000" json:"-"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	ShopDomain     string    `gorm:"size:255" json:"shop_domain"` // Shopify 店铺域名，eBay 留空
	Status         int       `gorm:"default:1" json:"status"`     // 0: 停用, 1: 正常, 2: Token 异常
}

func (PlatformConnection) TableName() string {
	return "platform_connections"
}

// TokenValid 判断凭证当前是否可用
func (c *PlatformConnection) TokenValid() bool {
	if c.AccessToken == "" || c.Status != 1 {
		return false
	}
	// 零值过期时间视为永不过期（如 Shopify 离线 token）
	if c.TokenExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(c.TokenExpiresAt)
}
