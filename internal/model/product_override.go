package model

import "time"

// ==================== 商品级人工覆盖值 ====================

// ProductMappingOverride 针对单个商品的人工维护值
// 唯一键 (shopify_product_id, category, field_name)
// 仅当对应映射规则类型为 edit_in_grid 时才会被读取
// 删除是物理删除，所以不挂软删字段
type ProductMappingOverride struct {
	ID               int64           `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ShopifyProductID string          `gorm:"size:64;not null;uniqueIndex:uniq_product_field" json:"shopify_product_id"`
	Category         MappingCategory `gorm:"size:20;not null;uniqueIndex:uniq_product_field" json:"category"`
	FieldName        string          `gorm:"size:100;not null;uniqueIndex:uniq_product_field" json:"field_name"`
	Value            string          `gorm:"size:1000" json:"value"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (ProductMappingOverride) TableName() string {
	return "product_mapping_overrides"
}
