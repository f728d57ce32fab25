package service

import (
	"context"
	"strconv"
	"strings"

	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/pkg/fieldpath"
)

// ==================== ListingFieldService 刊登字段生成 ====================

// 平台默认值
const (
	DefaultConditionCode = "3000" // Used
	DefaultHandlingTime  = 1
	DefaultTitle         = "Untitled Product"
	DefaultDescription   = "No description available"
)

// conditionCodes eBay 成色枚举，键是解析出来的成色文案（小写）
var conditionCodes = map[string]string{
	"new":       "1000",
	"like new":  "1500",
	"used":      "3000",
	"good":      "3000",
	"for parts": "7000",
}

// ListingFieldService 组合 GetMapping + Resolve，为刊登构建器产出具体字段
// 每个方法都带文档化的回退值，自身永不报错
type ListingFieldService struct {
	mappingSvc *MappingService
}

// NewListingFieldService 创建刊登字段服务
func NewListingFieldService(mappingSvc *MappingService) *ListingFieldService {
	return &ListingFieldService{mappingSvc: mappingSvc}
}

// productID 从源记录里提取 Shopify 商品 ID，用于覆盖值查询
func productID(product fieldpath.Record) string {
	id, _ := fieldpath.LookupString(product, "id")
	return id
}

// EbayCondition 成色码。解析值大小写不敏感地映射到枚举，
// 未配置/解析失败/不在枚举内时一律回退 "3000"
func (s *ListingFieldService) EbayCondition(ctx context.Context, product fieldpath.Record) string {
	resolved, ok := s.mappingSvc.ResolveField(ctx, productID(product), model.CategoryListing, "condition", product)
	if !ok {
		return DefaultConditionCode
	}
	if code, found := conditionCodes[strings.ToLower(strings.TrimSpace(resolved))]; found {
		return code
	}
	return DefaultConditionCode
}

// EbayUPC UPC 没有回退值，未配置时 ok=false
func (s *ListingFieldService) EbayUPC(ctx context.Context, product fieldpath.Record) (string, bool) {
	return s.mappingSvc.ResolveField(ctx, productID(product), model.CategoryListing, "upc", product)
}

// EbayTitle 回退链: 规则解析值 -> product.title -> "Untitled Product"
func (s *ListingFieldService) EbayTitle(ctx context.Context, product fieldpath.Record) string {
	if resolved, ok := s.mappingSvc.ResolveField(ctx, productID(product), model.CategoryListing, "title", product); ok {
		return resolved
	}
	if title, ok := fieldpath.LookupString(product, "title"); ok && title != "" {
		return title
	}
	return DefaultTitle
}

// EbayDescription 回退链: 规则解析值 -> product.body_html -> product.title -> 默认文案
func (s *ListingFieldService) EbayDescription(ctx context.Context, product fieldpath.Record) string {
	if resolved, ok := s.mappingSvc.ResolveField(ctx, productID(product), model.CategoryListing, "description", product); ok {
		return resolved
	}
	if body, ok := fieldpath.LookupString(product, "body_html"); ok && body != "" {
		return body
	}
	if title, ok := fieldpath.LookupString(product, "title"); ok && title != "" {
		return title
	}
	return DefaultDescription
}

// EbayHandlingTime 解析值能转成数字就用，否则默认 1 天
func (s *ListingFieldService) EbayHandlingTime(ctx context.Context, product fieldpath.Record) int {
	resolved, ok := s.mappingSvc.ResolveField(ctx, productID(product), model.CategoryShipping, "handling_time", product)
	if !ok {
		return DefaultHandlingTime
	}
	if n, err := strconv.Atoi(strings.TrimSpace(resolved)); err == nil {
		return n
	}
	// "2.0" 这类带小数的配置也接受，截断取整
	if f, err := strconv.ParseFloat(strings.TrimSpace(resolved), 64); err == nil {
		return int(f)
	}
	return DefaultHandlingTime
}
