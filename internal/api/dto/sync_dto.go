package dto

import "time"

// ==================== 同步请求/响应 ====================

// RunSyncRequest 手动触发一次完整同步
type RunSyncRequest struct {
	DryRun bool       `json:"dry_run"`
	Since  *time.Time `json:"since"`
}

// ==================== 流水线请求 ====================

// CreateJobRequest 新建刊登流水线任务
type CreateJobRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

// UpdateStepRequest 上报步骤状态
type UpdateStepRequest struct {
	StepName string      `json:"step_name" binding:"required,oneof=fetch_product generate_description process_images create_ebay_listing"`
	Status   string      `json:"status" binding:"required,oneof=pending running done error"`
	Result   interface{} `json:"result"`
}
