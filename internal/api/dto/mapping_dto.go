package dto

// ==================== 映射规则请求/响应 ====================

// UpsertMappingRequest 新建/更新规则
type UpsertMappingRequest struct {
	Category         string  `json:"category" binding:"required,oneof=sales listing payment shipping"`
	FieldName        string  `json:"field_name" binding:"required"`
	MappingType      string  `json:"mapping_type" binding:"required,oneof=constant shopify_field formula edit_in_grid"`
	SourceValue      *string `json:"source_value"`
	TargetValue      *string `json:"target_value"`
	VariationMapping *string `json:"variation_mapping"`
	IsEnabled        *bool   `json:"is_enabled"`
	DisplayOrder     int     `json:"display_order"`
}

// PatchMappingRequest 部分更新，nil 字段不动
type PatchMappingRequest struct {
	MappingType      *string `json:"mapping_type" binding:"omitempty,oneof=constant shopify_field formula edit_in_grid"`
	SourceValue      *string `json:"source_value"`
	TargetValue      *string `json:"target_value"`
	VariationMapping *string `json:"variation_mapping"`
	IsEnabled        *bool   `json:"is_enabled"`
	DisplayOrder     *int    `json:"display_order"`
}

// ImportMappingsRequest 批量导入
type ImportMappingsRequest struct {
	Mappings []UpsertMappingRequest `json:"mappings" binding:"required,dive"`
}

// ResolveRequest 调试用：规则 + 松散商品记录做一次解析
type ResolveRequest struct {
	Category  string                 `json:"category" binding:"required"`
	FieldName string                 `json:"field_name" binding:"required"`
	Product   map[string]interface{} `json:"product"`
}

// ==================== 覆盖值请求 ====================

// UpsertOverrideRequest 写入单个覆盖值
type UpsertOverrideRequest struct {
	Category  string `json:"category" binding:"required,oneof=sales listing payment shipping"`
	FieldName string `json:"field_name" binding:"required"`
	Value     string `json:"value"`
}

// BulkOverrideRequest 批量写入覆盖值
type BulkOverrideRequest struct {
	Overrides []UpsertOverrideRequest `json:"overrides" binding:"required,dive"`
}
