package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ebay_sync_v1_202608/internal/api/dto"
	"ebay_sync_v1_202608/internal/repository"
	"ebay_sync_v1_202608/internal/service"
	"ebay_sync_v1_202608/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	syncService *service.SyncService
	tokenSvc    *service.TokenService
	runRepo     repository.SyncRunRepository
	watchTask   *task.SyncWatchTask // watch 模式未启用时为 nil
}

// NewSyncController 创建同步控制器
func NewSyncController(syncService *service.SyncService, tokenSvc *service.TokenService, runRepo repository.SyncRunRepository, watchTask *task.SyncWatchTask) *SyncController {
	return &SyncController{
		syncService: syncService,
		tokenSvc:    tokenSvc,
		runRepo:     runRepo,
		watchTask:   watchTask,
	}
}

// ==================== Handler 实现 ====================

// RunSync 手动触发一次完整同步
// @Summary 同步四个环节：订单/价格/库存/履约，返回逐环节报告
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "已有一轮在执行"
// @Failure 412 {object} map[string]interface{} "平台未连接"
// @Router /api/sync/run [post]
func (c *SyncController) RunSync(ctx *gin.Context) {
	var req dto.RunSyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": err.Error()})
		return
	}

	opts := service.SyncOptions{
		DryRun: req.DryRun,
		Since:  req.Since,
	}

	// watch 模式下手动触发和轮询共用同一个单飞槽位，不并跑
	var (
		report *service.SyncReport
		err    error
	)
	if c.watchTask != nil {
		report, err = c.watchTask.RunNow(ctx.Request.Context(), opts)
	} else {
		report, err = c.syncService.RunFullSync(ctx.Request.Context(), opts)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotConnected) {
			ctx.JSON(http.StatusPreconditionFailed, gin.H{"code": 412, "message": "两个平台都完成授权后才能同步"})
			return
		}
		if errors.Is(err, task.ErrSyncInProgress) {
			ctx.JSON(http.StatusConflict, gin.H{"code": 409, "message": "已有一轮同步正在进行"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"code": 200, "data": report})
}

// Status 同步状态
// @Summary 平台连通性 + watch 模式状态
// @Tags Sync
// @Success 200 {object} map[string]interface{}
// @Router /api/sync/status [get]
func (c *SyncController) Status(ctx *gin.Context) {
	connectivity := c.tokenSvc.CheckConnectivity(ctx.Request.Context())

	watch := gin.H{"enabled": false}
	if c.watchTask != nil {
		watch = gin.H{"enabled": true, "running": c.watchTask.IsRunning()}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"platforms": connectivity, "watch": watch},
	})
}

// History 最近的同步记录
// @Summary 查询最近 N 次同步的审计记录
// @Tags Sync
// @Param limit query int false "条数，默认 20"
// @Success 200 {object} map[string]interface{}
// @Router /api/sync/history [get]
func (c *SyncController) History(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	runs, err := c.runRepo.ListRecent(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": gin.H{"runs": runs, "total": len(runs)},
	})
}
