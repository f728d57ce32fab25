package model

// ==================== 属性映射规则 ====================

// MappingCategory 映射所属分类
type MappingCategory string

const (
	CategorySales    MappingCategory = "sales"
	CategoryListing  MappingCategory = "listing"
	CategoryPayment  MappingCategory = "payment"
	CategoryShipping MappingCategory = "shipping"
)

// MappingType 映射取值方式
type MappingType string

const (
	// MappingConstant 固定值，直接返回 target_value
	MappingConstant MappingType = "constant"
	// MappingShopifyField 从 Shopify 商品记录按路径取值，支持 variants[0].barcode 形式
	MappingShopifyField MappingType = "shopify_field"
	// MappingFormula 公式模板。目前是永久性的透传占位：resolve 原样返回 source_value，
	// 不做任何求值
	MappingFormula MappingType = "formula"
	// MappingEditInGrid 人工在表格里逐品维护，取值走 ProductMappingOverride
	MappingEditInGrid MappingType = "edit_in_grid"
)

// AttributeMapping 一条 (category, field_name) 维度的转换规则
// 不变量：(category, field_name) 唯一，由唯一索引在写入时保证
// 正常运营下不做物理删除，停用走 is_enabled
type AttributeMapping struct {
	BaseModel
	Category         MappingCategory `gorm:"size:20;not null;uniqueIndex:uniq_category_field" json:"category"`
	FieldName        string          `gorm:"size:100;not null;uniqueIndex:uniq_category_field" json:"field_name"`
	MappingType      MappingType     `gorm:"size:20;not null" json:"mapping_type"`
	SourceValue      *string         `gorm:"size:500" json:"source_value"` // 源字段路径或公式模板
	TargetValue      *string         `gorm:"size:500" json:"target_value"` // 常量字面值
	VariationMapping *string         `gorm:"size:500" json:"variation_mapping"`
	IsEnabled        bool            `gorm:"default:true;index" json:"is_enabled"`
	DisplayOrder     int             `gorm:"default:0" json:"display_order"`
}

func (AttributeMapping) TableName() string {
	return "attribute_mappings"
}

// SourceValueOrEmpty 空指针安全取值
func (m *AttributeMapping) SourceValueOrEmpty() string {
	if m.SourceValue == nil {
		return ""
	}
	return *m.SourceValue
}

// TargetValueOrEmpty 空指针安全取值
func (m *AttributeMapping) TargetValueOrEmpty() string {
	if m.TargetValue == nil {
		return ""
	}
	return *m.TargetValue
}
