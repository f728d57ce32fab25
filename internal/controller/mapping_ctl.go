package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ebay_sync_v1_202608/internal/api/dto"
	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
	"ebay_sync_v1_202608/internal/service"
)

// MappingController 映射规则与覆盖值控制器
type MappingController struct {
	mappingSvc *service.MappingService
	listingSvc *service.ListingFieldService
}

// NewMappingController 创建控制器
func NewMappingController(mappingSvc *service.MappingService, listingSvc *service.ListingFieldService) *MappingController {
	return &MappingController{
		mappingSvc: mappingSvc,
		listingSvc: listingSvc,
	}
}

// ==================== 规则 Handler ====================

// ListMappings 规则列表
// @Summary 查询映射规则，支持按分类过滤
// @Tags Mapping
// @Param category query string false "分类 sales/listing/payment/shipping"
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings [get]
func (c *MappingController) ListMappings(ctx *gin.Context) {
	category := model.MappingCategory(ctx.Query("category"))

	mappings, err := c.mappingSvc.ListMappings(ctx.Request.Context(), category)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"mappings": mappings, "total": len(mappings)},
	})
}

// UpsertMapping 新建或更新规则
// @Summary 新建/更新映射规则，(category, field_name) 冲突时更新
// @Tags Mapping
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings [post]
func (c *MappingController) UpsertMapping(ctx *gin.Context) {
	var req dto.UpsertMappingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	mapping := &model.AttributeMapping{
		Category:         model.MappingCategory(req.Category),
		FieldName:        req.FieldName,
		MappingType:      model.MappingType(req.MappingType),
		SourceValue:      req.SourceValue,
		TargetValue:      req.TargetValue,
		VariationMapping: req.VariationMapping,
		IsEnabled:        enabled,
		DisplayOrder:     req.DisplayOrder,
	}

	if err := c.mappingSvc.SaveMapping(ctx.Request.Context(), mapping); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrInvalidMapping) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, gin.H{"code": status, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": mapping})
}

// PatchMapping 部分更新规则
// @Summary 按 ID 部分更新映射规则
// @Tags Mapping
// @Param id path int true "规则 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/{id} [patch]
func (c *MappingController) PatchMapping(ctx *gin.Context) {
	id := parseID(ctx, "id")
	if id == 0 {
		return
	}

	var req dto.PatchMappingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	patch := repository.MappingPatch{
		SourceValue:      req.SourceValue,
		TargetValue:      req.TargetValue,
		VariationMapping: req.VariationMapping,
		IsEnabled:        req.IsEnabled,
		DisplayOrder:     req.DisplayOrder,
	}
	if req.MappingType != nil {
		mt := model.MappingType(*req.MappingType)
		patch.MappingType = &mt
	}

	if err := c.mappingSvc.PatchMapping(ctx.Request.Context(), id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "规则不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "规则已更新"})
}

// ImportMappings 批量导入规则
// @Summary 批量导入映射规则，逐行收集错误
// @Tags Mapping
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/import [post]
func (c *MappingController) ImportMappings(ctx *gin.Context) {
	var req dto.ImportMappingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	mappings := make([]model.AttributeMapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		enabled := true
		if m.IsEnabled != nil {
			enabled = *m.IsEnabled
		}
		mappings = append(mappings, model.AttributeMapping{
			Category:         model.MappingCategory(m.Category),
			FieldName:        m.FieldName,
			MappingType:      model.MappingType(m.MappingType),
			SourceValue:      m.SourceValue,
			TargetValue:      m.TargetValue,
			VariationMapping: m.VariationMapping,
			IsEnabled:        enabled,
			DisplayOrder:     m.DisplayOrder,
		})
	}

	imported, errs := c.mappingSvc.ImportMappings(ctx.Request.Context(), mappings)
	errMsgs := make([]string, 0, len(errs))
	for _, e := range errs {
		errMsgs = append(errMsgs, e.Error())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"imported": imported, "errors": errMsgs},
	})
}

// ResolveField 调试解析
// @Summary 用当前规则对一条商品记录做解析，返回值或 null
// @Tags Mapping
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/resolve [post]
func (c *MappingController) ResolveField(ctx *gin.Context) {
	var req dto.ResolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	mapping, err := c.mappingSvc.GetMapping(ctx.Request.Context(), model.MappingCategory(req.Category), req.FieldName)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	var value interface{}
	if resolved, ok := c.mappingSvc.Resolve(mapping, req.Product); ok {
		value = resolved
	}
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"value": value}})
}

// ==================== 覆盖值 Handler ====================

// GetOverrides 商品覆盖值列表
// @Summary 查询单个商品的全部人工覆盖值
// @Tags Override
// @Param product_id path string true "Shopify 商品 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{product_id}/overrides [get]
func (c *MappingController) GetOverrides(ctx *gin.Context) {
	productID := ctx.Param("product_id")

	overrides, err := c.mappingSvc.GetProductOverrides(ctx.Request.Context(), productID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"overrides": overrides, "total": len(overrides)},
	})
}

// UpsertOverride 写入覆盖值
// @Summary 写入/更新单个商品的人工覆盖值
// @Tags Override
// @Param product_id path string true "Shopify 商品 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{product_id}/overrides [put]
func (c *MappingController) UpsertOverride(ctx *gin.Context) {
	productID := ctx.Param("product_id")

	var req dto.UpsertOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	err := c.mappingSvc.SaveProductOverride(ctx.Request.Context(),
		productID, model.MappingCategory(req.Category), req.FieldName, req.Value)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "覆盖值已保存"})
}

// BulkUpsertOverrides 批量写入覆盖值
// @Summary 批量写入单个商品的人工覆盖值
// @Tags Override
// @Param product_id path string true "Shopify 商品 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{product_id}/overrides/bulk [post]
func (c *MappingController) BulkUpsertOverrides(ctx *gin.Context) {
	productID := ctx.Param("product_id")

	var req dto.BulkOverrideRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	overrides := make([]model.ProductMappingOverride, 0, len(req.Overrides))
	for _, o := range req.Overrides {
		overrides = append(overrides, model.ProductMappingOverride{
			Category:  model.MappingCategory(o.Category),
			FieldName: o.FieldName,
			Value:     o.Value,
		})
	}

	saved, errs := c.mappingSvc.SaveProductOverrides(ctx.Request.Context(), productID, overrides)
	errMsgs := make([]string, 0, len(errs))
	for _, e := range errs {
		errMsgs = append(errMsgs, e.Error())
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"saved": saved, "errors": errMsgs},
	})
}

// DeleteOverride 删除覆盖值
// @Summary 删除单个商品的一条覆盖值
// @Tags Override
// @Param product_id path string true "Shopify 商品 ID"
// @Param category query string true "分类"
// @Param field query string true "字段名"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{product_id}/overrides [delete]
func (c *MappingController) DeleteOverride(ctx *gin.Context) {
	productID := ctx.Param("product_id")
	category := model.MappingCategory(ctx.Query("category"))
	fieldName := ctx.Query("field")

	if category == "" || fieldName == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "category 和 field 必填"})
		return
	}

	err := c.mappingSvc.DeleteProductOverride(ctx.Request.Context(), productID, category, fieldName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "覆盖值不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "覆盖值已删除"})
}

// PreviewListingFields 刊登字段预览
// @Summary 对一条商品记录生成全部 eBay 刊登字段（带回退值）
// @Tags Mapping
// @Success 200 {object} map[string]interface{}
// @Router /api/mappings/preview [post]
func (c *MappingController) PreviewListingFields(ctx *gin.Context) {
	var product map[string]interface{}
	if err := ctx.ShouldBindJSON(&product); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	rctx := ctx.Request.Context()
	var upc interface{}
	if v, ok := c.listingSvc.EbayUPC(rctx, product); ok {
		upc = v
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{
			"condition":     c.listingSvc.EbayCondition(rctx, product),
			"upc":           upc,
			"title":         c.listingSvc.EbayTitle(rctx, product),
			"description":   c.listingSvc.EbayDescription(rctx, product),
			"handling_time": c.listingSvc.EbayHandlingTime(rctx, product),
		},
	})
}
