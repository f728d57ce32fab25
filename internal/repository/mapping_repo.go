package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ebay_sync_v1_202608/internal/model"
)

// ==================== 错误定义 ====================

// ErrInvalidMapping 规则缺少 category/field_name，属于配置错误，在写入时拦截
// (category, field_name) 的唯一性由唯一索引 + upsert 保证，重复写入会合并成更新
var ErrInvalidMapping = errors.New("mapping category/field_name must not be empty")

// ==================== 接口定义 ====================

// MappingRepository 属性映射规则仓储接口
type MappingRepository interface {
	// 读取
	GetEnabled(ctx context.Context, category model.MappingCategory, fieldName string) (*model.AttributeMapping, error)
	GetByID(ctx context.Context, id int64) (*model.AttributeMapping, error)
	ListByCategory(ctx context.Context, category model.MappingCategory) ([]model.AttributeMapping, error)
	ListAll(ctx context.Context) ([]model.AttributeMapping, error)

	// 写入
	Upsert(ctx context.Context, mapping *model.AttributeMapping) error
	UpdateFields(ctx context.Context, id int64, patch MappingPatch) error
	BulkImport(ctx context.Context, mappings []model.AttributeMapping) (int, []error)
}

// MappingPatch 部分更新值，nil 字段表示不更新
// 用显式可选字段代替拼接列名列表
type MappingPatch struct {
	MappingType      *model.MappingType
	SourceValue      *string
	TargetValue      *string
	VariationMapping *string
	IsEnabled        *bool
	DisplayOrder     *int
}

func (p MappingPatch) toColumns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.MappingType != nil {
		cols["mapping_type"] = *p.MappingType
	}
	if p.SourceValue != nil {
		cols["source_value"] = *p.SourceValue
	}
	if p.TargetValue != nil {
		cols["target_value"] = *p.TargetValue
	}
	if p.VariationMapping != nil {
		cols["variation_mapping"] = *p.VariationMapping
	}
	if p.IsEnabled != nil {
		cols["is_enabled"] = *p.IsEnabled
	}
	if p.DisplayOrder != nil {
		cols["display_order"] = *p.DisplayOrder
	}
	return cols
}

// ==================== 仓储实现 ====================

type mappingRepo struct {
	db *gorm.DB
}

// NewMappingRepository 创建映射规则仓储
func NewMappingRepository(db *gorm.DB) MappingRepository {
	return &mappingRepo{db: db}
}

func (r *mappingRepo) GetEnabled(ctx context.Context, category model.MappingCategory, fieldName string) (*model.AttributeMapping, error) {
	var mapping model.AttributeMapping
	err := r.db.WithContext(ctx).
		Where("category = ? AND field_name = ? AND is_enabled = ?", category, fieldName, true).
		Order("display_order ASC, id ASC").
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepo) GetByID(ctx context.Context, id int64) (*model.AttributeMapping, error) {
	var mapping model.AttributeMapping
	if err := r.db.WithContext(ctx).First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepo) ListByCategory(ctx context.Context, category model.MappingCategory) ([]model.AttributeMapping, error) {
	var mappings []model.AttributeMapping
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("display_order ASC, id ASC").
		Find(&mappings).Error
	return mappings, err
}

func (r *mappingRepo) ListAll(ctx context.Context) ([]model.AttributeMapping, error) {
	var mappings []model.AttributeMapping
	err := r.db.WithContext(ctx).
		Order("category ASC, display_order ASC, id ASC").
		Find(&mappings).Error
	return mappings, err
}

// Upsert 按 (category, field_name) 插入或更新
// 冲突判定交给唯一索引，insert-or-update 在数据库侧一条语句内完成，
// 并发写同一个键不会产生重复行
func (r *mappingRepo) Upsert(ctx context.Context, mapping *model.AttributeMapping) error {
	if mapping.Category == "" || mapping.FieldName == "" {
		return fmt.Errorf("%w: %q/%q", ErrInvalidMapping, mapping.Category, mapping.FieldName)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "category"},
			{Name: "field_name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"mapping_type", "source_value", "target_value",
			"variation_mapping", "is_enabled", "display_order", "updated_at",
		}),
	}).Create(mapping).Error
}

func (r *mappingRepo) UpdateFields(ctx context.Context, id int64, patch MappingPatch) error {
	cols := patch.toColumns()
	if len(cols) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.AttributeMapping{}).
		Where("id = ?", id).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkImport 批量导入，逐行收集错误，不因单行失败中断整批
// 返回成功行数和每行的错误列表
func (r *mappingRepo) BulkImport(ctx context.Context, mappings []model.AttributeMapping) (int, []error) {
	var (
		imported int
		errs     []error
	)
	for i := range mappings {
		m := mappings[i]
		if err := r.Upsert(ctx, &m); err != nil {
			errs = append(errs, fmt.Errorf("第 %d 行 (%s/%s): %w", i+1, m.Category, m.FieldName, err))
			continue
		}
		imported++
	}
	return imported, errs
}
