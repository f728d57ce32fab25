package service

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
	"ebay_sync_v1_202608/pkg/fieldpath"
)

// ==================== 测试辅助 ====================

func setupMappingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.AttributeMapping{}, &model.ProductMappingOverride{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newMappingService(t *testing.T) (*MappingService, *gorm.DB) {
	db := setupMappingTestDB(t)
	svc := NewMappingService(
		repository.NewMappingRepository(db),
		repository.NewOverrideRepository(db),
	)
	return svc, db
}

func mustSave(t *testing.T, svc *MappingService, m *model.AttributeMapping) {
	t.Helper()
	if err := svc.SaveMapping(context.Background(), m); err != nil {
		t.Fatalf("保存规则失败: %v", err)
	}
}

// ==================== Resolve 纯函数 ====================

func TestResolve_NilMapping(t *testing.T) {
	svc, _ := newMappingService(t)

	if _, ok := svc.Resolve(nil, fieldpath.Record{"title": "x"}); ok {
		t.Error("nil 规则应解析为空")
	}
}

func TestResolve_Constant(t *testing.T) {
	svc, _ := newMappingService(t)

	used := "Used"
	mapping := &model.AttributeMapping{MappingType: model.MappingConstant, TargetValue: &used}

	// 任意记录都应返回常量
	for _, record := range []fieldpath.Record{nil, {}, {"title": "x"}} {
		val, ok := svc.Resolve(mapping, record)
		if !ok || val != "Used" {
			t.Errorf("Resolve(constant) = %q, %v, want Used, true", val, ok)
		}
	}
}

func TestResolve_ShopifyFieldArrayPath(t *testing.T) {
	svc, _ := newMappingService(t)

	path := "variants[0].barcode"
	mapping := &model.AttributeMapping{MappingType: model.MappingShopifyField, SourceValue: &path}

	record := fieldpath.Record{
		"variants": []interface{}{map[string]interface{}{"barcode": "123"}},
	}
	val, ok := svc.Resolve(mapping, record)
	if !ok || val != "123" {
		t.Errorf("Resolve(variants[0].barcode) = %q, %v, want 123, true", val, ok)
	}

	// 空数组退化为空值，不报错
	empty := fieldpath.Record{"variants": []interface{}{}}
	if _, ok := svc.Resolve(mapping, empty); ok {
		t.Error("空 variants 应解析为空")
	}
}

func TestResolve_ShopifyFieldEmptyPath(t *testing.T) {
	svc, _ := newMappingService(t)

	mapping := &model.AttributeMapping{MappingType: model.MappingShopifyField}
	if _, ok := svc.Resolve(mapping, fieldpath.Record{"title": "x"}); ok {
		t.Error("source_value 为空时应解析为空")
	}
}

func TestResolve_FormulaPassthrough(t *testing.T) {
	svc, _ := newMappingService(t)

	formula := "{price} * 1.1"
	mapping := &model.AttributeMapping{MappingType: model.MappingFormula, SourceValue: &formula}

	val, ok := svc.Resolve(mapping, fieldpath.Record{"price": 100})
	if !ok || val != "{price} * 1.1" {
		t.Errorf("公式应原样透传，得到 %q", val)
	}
}

func TestResolve_EditInGridAndUnknown(t *testing.T) {
	svc, _ := newMappingService(t)

	for _, mt := range []model.MappingType{model.MappingEditInGrid, "bogus"} {
		mapping := &model.AttributeMapping{MappingType: mt}
		if _, ok := svc.Resolve(mapping, fieldpath.Record{"title": "x"}); ok {
			t.Errorf("类型 %s 应解析为空", mt)
		}
	}
}

// ==================== GetMapping ====================

func TestGetMapping_EnabledOnly(t *testing.T) {
	svc, _ := newMappingService(t)
	ctx := context.Background()

	mustSave(t, svc, &model.AttributeMapping{
		Category: model.CategoryListing, FieldName: "condition",
		MappingType: model.MappingConstant, IsEnabled: false,
	})

	mapping, err := svc.GetMapping(ctx, model.CategoryListing, "condition")
	if err != nil {
		t.Fatalf("GetMapping 报错: %v", err)
	}
	if mapping != nil {
		t.Error("停用的规则不应被返回")
	}
}

func TestGetMapping_Missing(t *testing.T) {
	svc, _ := newMappingService(t)

	mapping, err := svc.GetMapping(context.Background(), model.CategorySales, "price")
	if err != nil || mapping != nil {
		t.Errorf("未配置的规则应返回 nil, nil，得到 %v, %v", mapping, err)
	}
}

// ==================== 唯一性与写入 ====================

func TestSaveMapping_UpsertNoDuplicate(t *testing.T) {
	svc, db := newMappingService(t)
	ctx := context.Background()

	v1 := "title"
	mustSave(t, svc, &model.AttributeMapping{
		Category: model.CategoryListing, FieldName: "title",
		MappingType: model.MappingShopifyField, SourceValue: &v1, IsEnabled: true,
	})

	v2 := "Fixed Title"
	mustSave(t, svc, &model.AttributeMapping{
		Category: model.CategoryListing, FieldName: "title",
		MappingType: model.MappingConstant, TargetValue: &v2, IsEnabled: true,
	})

	// 同 (category, field_name) 只应有一行
	var count int64
	db.Model(&model.AttributeMapping{}).
		Where("category = ? AND field_name = ?", model.CategoryListing, "title").
		Count(&count)
	if count != 1 {
		t.Errorf("规则行数 = %d, want 1", count)
	}

	mapping, _ := svc.GetMapping(ctx, model.CategoryListing, "title")
	if mapping == nil || mapping.MappingType != model.MappingConstant {
		t.Error("更新后的规则类型应为 constant")
	}
}

func TestSaveMapping_EnabledUniqueInvariant(t *testing.T) {
	svc, _ := newMappingService(t)
	ctx := context.Background()

	// 导入多条规则后，启用行里不应出现重复的 (category, field_name)
	v := "1"
	imported, errs := svc.ImportMappings(ctx, []model.AttributeMapping{
		{Category: model.CategoryListing, FieldName: "condition", MappingType: model.MappingConstant, TargetValue: &v, IsEnabled: true},
		{Category: model.CategoryListing, FieldName: "condition", MappingType: model.MappingConstant, TargetValue: &v, IsEnabled: true},
		{Category: model.CategoryShipping, FieldName: "handling_time", MappingType: model.MappingConstant, TargetValue: &v, IsEnabled: true},
	})
	if imported != 3 || len(errs) != 0 {
		t.Fatalf("导入结果 %d 行, %d 错误", imported, len(errs))
	}

	all, err := svc.ListMappings(ctx, "")
	if err != nil {
		t.Fatalf("查询规则失败: %v", err)
	}
	seen := make(map[string]bool)
	for _, m := range all {
		if !m.IsEnabled {
			continue
		}
		key := string(m.Category) + "/" + m.FieldName
		if seen[key] {
			t.Errorf("启用规则出现重复键 %s", key)
		}
		seen[key] = true
	}
}

func TestImportMappings_CollectsRowErrors(t *testing.T) {
	svc, _ := newMappingService(t)

	v := "x"
	imported, errs := svc.ImportMappings(context.Background(), []model.AttributeMapping{
		{Category: "", FieldName: "", MappingType: model.MappingConstant, TargetValue: &v},
		{Category: model.CategoryListing, FieldName: "title", MappingType: model.MappingConstant, TargetValue: &v, IsEnabled: true},
	})
	if imported != 1 {
		t.Errorf("imported = %d, want 1", imported)
	}
	if len(errs) != 1 {
		t.Errorf("错误数 = %d, want 1", len(errs))
	}
}

func TestPatchMapping_NotFound(t *testing.T) {
	svc, _ := newMappingService(t)

	enabled := false
	err := svc.PatchMapping(context.Background(), 999, repository.MappingPatch{IsEnabled: &enabled})
	if err == nil {
		t.Error("更新不存在的规则应报错")
	}
}

// ==================== 覆盖值 ====================

func TestOverrideRoundTrip(t *testing.T) {
	svc, _ := newMappingService(t)
	ctx := context.Background()

	if err := svc.SaveProductOverride(ctx, "123", model.CategoryListing, "condition", "Like New"); err != nil {
		t.Fatalf("写入覆盖值失败: %v", err)
	}

	overrides, err := svc.GetProductOverrides(ctx, "123")
	if err != nil {
		t.Fatalf("查询覆盖值失败: %v", err)
	}
	if len(overrides) != 1 || overrides[0].Value != "Like New" {
		t.Fatalf("覆盖值 = %+v, want 1 条 Like New", overrides)
	}

	if err := svc.DeleteProductOverride(ctx, "123", model.CategoryListing, "condition"); err != nil {
		t.Fatalf("删除覆盖值失败: %v", err)
	}

	overrides, _ = svc.GetProductOverrides(ctx, "123")
	if len(overrides) != 0 {
		t.Errorf("删除后仍有 %d 条覆盖值", len(overrides))
	}
}

func TestOverrideUpsertUpdatesValue(t *testing.T) {
	svc, _ := newMappingService(t)
	ctx := context.Background()

	_ = svc.SaveProductOverride(ctx, "p1", model.CategoryListing, "upc", "000")
	_ = svc.SaveProductOverride(ctx, "p1", model.CategoryListing, "upc", "111")

	overrides, _ := svc.GetProductOverrides(ctx, "p1")
	if len(overrides) != 1 || overrides[0].Value != "111" {
		t.Errorf("upsert 后覆盖值 = %+v, want 1 条 111", overrides)
	}
}

// ==================== ResolveField 走覆盖值 ====================

func TestResolveField_EditInGridUsesOverride(t *testing.T) {
	svc, _ := newMappingService(t)
	ctx := context.Background()

	mustSave(t, svc, &model.AttributeMapping{
		Category: model.CategoryListing, FieldName: "condition",
		MappingType: model.MappingEditInGrid, IsEnabled: true,
	})
	_ = svc.SaveProductOverride(ctx, "p9", model.CategoryListing, "condition", "New")

	val, ok := svc.ResolveField(ctx, "p9", model.CategoryListing, "condition", nil)
	if !ok || val != "New" {
		t.Errorf("ResolveField = %q, %v, want New, true", val, ok)
	}

	// 没有覆盖值的商品退化为空，由调用方走平台默认值
	if _, ok := svc.ResolveField(ctx, "p10", model.CategoryListing, "condition", nil); ok {
		t.Error("无覆盖值时应解析为空")
	}
}
