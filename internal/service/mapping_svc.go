package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
	"ebay_sync_v1_202608/pkg/fieldpath"
)

// ==================== MappingService 属性映射解析 ====================

// MappingService 把映射规则 + 源商品记录解析成目标平台字段值
type MappingService struct {
	mappingRepo  repository.MappingRepository
	overrideRepo repository.OverrideRepository
}

// NewMappingService 创建映射服务
func NewMappingService(mappingRepo repository.MappingRepository, overrideRepo repository.OverrideRepository) *MappingService {
	return &MappingService{
		mappingRepo:  mappingRepo,
		overrideRepo: overrideRepo,
	}
}

// Resolve 纯函数解析：规则 + 源记录 -> 值
// 永不报错，任何缺失/畸形输入都退化为 ok=false
func (s *MappingService) Resolve(mapping *model.AttributeMapping, record fieldpath.Record) (string, bool) {
	if mapping == nil {
		return "", false
	}

	switch mapping.MappingType {
	case model.MappingConstant:
		// 原样返回常量，包括空字符串
		if mapping.TargetValue == nil {
			return "", false
		}
		return *mapping.TargetValue, true

	case model.MappingShopifyField:
		path := mapping.SourceValueOrEmpty()
		if path == "" {
			return "", false
		}
		return fieldpath.LookupString(record, path)

	case model.MappingFormula:
		// 公式类型是永久性的透传占位，不做求值
		if mapping.SourceValue == nil {
			return "", false
		}
		return *mapping.SourceValue, true

	default:
		// edit_in_grid 和未知类型都交给调用方走覆盖值/平台默认值
		return "", false
	}
}

// GetMapping 返回 (category, field_name) 下唯一的启用规则
// 未配置或已停用返回 nil；重复配置在写入时已被拦截，读取不再校验
func (s *MappingService) GetMapping(ctx context.Context, category model.MappingCategory, fieldName string) (*model.AttributeMapping, error) {
	mapping, err := s.mappingRepo.GetEnabled(ctx, category, fieldName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapping, nil
}

// ResolveField 查规则并解析。edit_in_grid 规则走商品级覆盖值
// 返回 ok=false 表示没有可用值，由调用方决定回退
func (s *MappingService) ResolveField(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string, record fieldpath.Record) (string, bool) {
	mapping, err := s.GetMapping(ctx, category, fieldName)
	if err != nil || mapping == nil {
		return "", false
	}

	if mapping.MappingType == model.MappingEditInGrid {
		if shopifyProductID == "" {
			return "", false
		}
		override, err := s.overrideRepo.Get(ctx, shopifyProductID, category, fieldName)
		if err != nil {
			return "", false
		}
		return override.Value, true
	}

	return s.Resolve(mapping, record)
}

// ==================== 规则写入 ====================

// SaveMapping 新建或更新规则，(category, field_name) 冲突时更新
func (s *MappingService) SaveMapping(ctx context.Context, mapping *model.AttributeMapping) error {
	return s.mappingRepo.Upsert(ctx, mapping)
}

// PatchMapping 部分更新
func (s *MappingService) PatchMapping(ctx context.Context, id int64, patch repository.MappingPatch) error {
	return s.mappingRepo.UpdateFields(ctx, id, patch)
}

// ImportMappings 批量导入，返回成功行数和逐行错误
func (s *MappingService) ImportMappings(ctx context.Context, mappings []model.AttributeMapping) (int, []error) {
	return s.mappingRepo.BulkImport(ctx, mappings)
}

// ListMappings category 为空时返回全部
func (s *MappingService) ListMappings(ctx context.Context, category model.MappingCategory) ([]model.AttributeMapping, error) {
	if category == "" {
		return s.mappingRepo.ListAll(ctx)
	}
	return s.mappingRepo.ListByCategory(ctx, category)
}

// ==================== 覆盖值操作 ====================

// GetProductOverrides 返回单个商品的全部覆盖值
func (s *MappingService) GetProductOverrides(ctx context.Context, shopifyProductID string) ([]model.ProductMappingOverride, error) {
	return s.overrideRepo.GetByProduct(ctx, shopifyProductID)
}

// SaveProductOverride 写入/更新单个覆盖值
func (s *MappingService) SaveProductOverride(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName, value string) error {
	return s.overrideRepo.Upsert(ctx, shopifyProductID, category, fieldName, value)
}

// DeleteProductOverride 删除覆盖值，不存在时返回 gorm.ErrRecordNotFound
func (s *MappingService) DeleteProductOverride(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string) error {
	return s.overrideRepo.Delete(ctx, shopifyProductID, category, fieldName)
}

// SaveProductOverrides 批量写入覆盖值
func (s *MappingService) SaveProductOverrides(ctx context.Context, shopifyProductID string, overrides []model.ProductMappingOverride) (int, []error) {
	return s.overrideRepo.BulkUpsert(ctx, shopifyProductID, overrides)
}
