package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ebay_sync_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// OverrideRepository 商品级人工覆盖值仓储接口
type OverrideRepository interface {
	GetByProduct(ctx context.Context, shopifyProductID string) ([]model.ProductMappingOverride, error)
	Get(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string) (*model.ProductMappingOverride, error)
	Upsert(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName, value string) error
	Delete(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string) error
	BulkUpsert(ctx context.Context, shopifyProductID string, overrides []model.ProductMappingOverride) (int, []error)
}

// ==================== 仓储实现 ====================

type overrideRepo struct {
	db *gorm.DB
}

// NewOverrideRepository 创建覆盖值仓储
func NewOverrideRepository(db *gorm.DB) OverrideRepository {
	return &overrideRepo{db: db}
}

func (r *overrideRepo) GetByProduct(ctx context.Context, shopifyProductID string) ([]model.ProductMappingOverride, error) {
	var overrides []model.ProductMappingOverride
	err := r.db.WithContext(ctx).
		Where("shopify_product_id = ?", shopifyProductID).
		Order("category ASC, field_name ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *overrideRepo) Get(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string) (*model.ProductMappingOverride, error) {
	var override model.ProductMappingOverride
	err := r.db.WithContext(ctx).
		Where("shopify_product_id = ? AND category = ? AND field_name = ?",
			shopifyProductID, category, fieldName).
		First(&override).Error
	if err != nil {
		return nil, err
	}
	return &override, nil
}

// Upsert 冲突时更新 value（insert-or-update-on-conflict 语义）
func (r *overrideRepo) Upsert(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName, value string) error {
	override := model.ProductMappingOverride{
		ShopifyProductID: shopifyProductID,
		Category:         category,
		FieldName:        fieldName,
		Value:            value,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "shopify_product_id"},
			{Name: "category"},
			{Name: "field_name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&override).Error
}

func (r *overrideRepo) Delete(ctx context.Context, shopifyProductID string, category model.MappingCategory, fieldName string) error {
	result := r.db.WithContext(ctx).
		Where("shopify_product_id = ? AND category = ? AND field_name = ?",
			shopifyProductID, category, fieldName).
		Delete(&model.ProductMappingOverride{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BulkUpsert 批量写入，逐行收集错误并返回成功行数
func (r *overrideRepo) BulkUpsert(ctx context.Context, shopifyProductID string, overrides []model.ProductMappingOverride) (int, []error) {
	var (
		saved int
		errs  []error
	)
	for i := range overrides {
		o := overrides[i]
		if o.Category == "" || o.FieldName == "" {
			errs = append(errs, fmt.Errorf("第 %d 行: category/field_name 不能为空", i+1))
			continue
		}
		if err := r.Upsert(ctx, shopifyProductID, o.Category, o.FieldName, o.Value); err != nil {
			errs = append(errs, fmt.Errorf("第 %d 行 (%s/%s): %w", i+1, o.Category, o.FieldName, err))
			continue
		}
		saved++
	}
	return saved, errs
}
