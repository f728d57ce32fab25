package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ebay_sync_v1_202608/internal/api/dto"
	"ebay_sync_v1_202608/internal/service"
)

// PipelineController 刊登流水线控制器
type PipelineController struct {
	tracker *service.PipelineTracker
}

// NewPipelineController 创建控制器
func NewPipelineController(tracker *service.PipelineTracker) *PipelineController {
	return &PipelineController{tracker: tracker}
}

// CreateJob 新建任务
// @Summary 为一个商品新建刊登流水线任务
// @Tags Pipeline
// @Success 200 {object} map[string]interface{}
// @Router /api/pipeline/jobs [post]
func (c *PipelineController) CreateJob(ctx *gin.Context) {
	var req dto.CreateJobRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	jobID := c.tracker.CreateJob(req.ProductID)
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": gin.H{"job_id": jobID}})
}

// ListJobs 任务列表
// @Summary 查询全部任务，最新创建的在前
// @Tags Pipeline
// @Success 200 {object} map[string]interface{}
// @Router /api/pipeline/jobs [get]
func (c *PipelineController) ListJobs(ctx *gin.Context) {
	jobs := c.tracker.ListJobs()
	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"jobs": jobs, "total": len(jobs)},
	})
}

// GetJob 任务详情
// @Summary 按 ID 查询任务
// @Tags Pipeline
// @Param id path string true "任务 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/pipeline/jobs/{id} [get]
func (c *PipelineController) GetJob(ctx *gin.Context) {
	job, err := c.tracker.GetJob(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "任务不存在"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": job})
}

// StartJob 标记任务开始执行
// @Summary 任务进入执行状态
// @Tags Pipeline
// @Param id path string true "任务 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/pipeline/jobs/{id}/start [post]
func (c *PipelineController) StartJob(ctx *gin.Context) {
	c.tracker.StartJob(ctx.Param("id"))
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "任务已开始"})
}

// UpdateStep 上报步骤状态
// @Summary 外部自动化流程上报单个步骤的状态变化
// @Tags Pipeline
// @Param id path string true "任务 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/pipeline/jobs/{id}/steps [put]
func (c *PipelineController) UpdateStep(ctx *gin.Context) {
	var req dto.UpdateStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.tracker.UpdateStep(ctx.Param("id"), req.StepName, service.StepStatus(req.Status), req.Result)
	ctx.JSON(http.StatusOK, gin.H{"code": 200, "message": "步骤已更新"})
}
