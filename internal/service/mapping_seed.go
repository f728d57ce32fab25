package service

import (
	"context"
	"log"

	"ebay_sync_v1_202608/internal/model"
)

// ==================== 默认规则种子 ====================

func strPtr(s string) *string { return &s }

// defaultMappings 首次启动时写入的标准规则集
// 与前端映射配置页的默认行保持一致
var defaultMappings = []model.AttributeMapping{
	{Category: model.CategoryListing, FieldName: "title", MappingType: model.MappingShopifyField, SourceValue: strPtr("title"), IsEnabled: true, DisplayOrder: 1},
	{Category: model.CategoryListing, FieldName: "description", MappingType: model.MappingShopifyField, SourceValue: strPtr("body_html"), IsEnabled: true, DisplayOrder: 2},
	{Category: model.CategoryListing, FieldName: "upc", MappingType: model.MappingShopifyField, SourceValue: strPtr("variants[0].barcode"), IsEnabled: true, DisplayOrder: 3},
	{Category: model.CategoryListing, FieldName: "condition", MappingType: model.MappingConstant, TargetValue: strPtr("Used"), IsEnabled: true, DisplayOrder: 4},
	{Category: model.CategorySales, FieldName: "price", MappingType: model.MappingShopifyField, SourceValue: strPtr("variants[0].price"), IsEnabled: true, DisplayOrder: 1},
	{Category: model.CategorySales, FieldName: "quantity", MappingType: model.MappingShopifyField, SourceValue: strPtr("variants[0].inventory_quantity"), IsEnabled: true, DisplayOrder: 2},
	{Category: model.CategoryPayment, FieldName: "payment_policy", MappingType: model.MappingConstant, TargetValue: strPtr("default"), IsEnabled: true, DisplayOrder: 1},
	{Category: model.CategoryShipping, FieldName: "handling_time", MappingType: model.MappingConstant, TargetValue: strPtr("1"), IsEnabled: true, DisplayOrder: 1},
	{Category: model.CategoryShipping, FieldName: "shipping_policy", MappingType: model.MappingConstant, TargetValue: strPtr("default"), IsEnabled: true, DisplayOrder: 2},
}

// SeedDefaults 规则表为空时写入默认规则集，已有数据时不动
func (s *MappingService) SeedDefaults(ctx context.Context) error {
	existing, err := s.mappingRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	imported, errs := s.mappingRepo.BulkImport(ctx, defaultMappings)
	for _, e := range errs {
		log.Printf("[Mapping] 默认规则写入失败: %v", e)
	}
	log.Printf("[Mapping] 已写入 %d 条默认规则", imported)
	return nil
}
