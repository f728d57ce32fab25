package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ebay_sync_v1_202608/internal/controller"
	"ebay_sync_v1_202608/internal/model"
	"ebay_sync_v1_202608/internal/repository"
	"ebay_sync_v1_202608/internal/router"
	"ebay_sync_v1_202608/internal/service"
	"ebay_sync_v1_202608/internal/task"
	"ebay_sync_v1_202608/pkg/database"
	"ebay_sync_v1_202608/pkg/ebay"
	"ebay_sync_v1_202608/pkg/shopify"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动 watch 模式（配置了轮询间隔才启）
	initWatchTask(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	WatchTask   *task.SyncWatchTask
}

// Repositories 仓库集合
type Repositories struct {
	Mapping    repository.MappingRepository
	Override   repository.OverrideRepository
	Connection repository.ConnectionRepository
	SyncRun    repository.SyncRunRepository
}

// Services 服务集合
type Services struct {
	Mapping  *service.MappingService
	Listing  *service.ListingFieldService
	Pipeline *service.PipelineTracker
	Token    *service.TokenService
	Facets   *service.FacetService
	Sync     *service.SyncService
}

// ==================== 初始化 ====================

func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_URL",
		"host=localhost user=sync_admin password=1234 dbname=ebay_sync port=5432 sslmode=disable")

	return database.InitDB(dsn,
		&model.AttributeMapping{},
		&model.ProductMappingOverride{},
		&model.PlatformConnection{},
		&model.SyncRun{},
	)
}

func initDependencies(db *gorm.DB) *Dependencies {
	repos := &Repositories{
		Mapping:    repository.NewMappingRepository(db),
		Override:   repository.NewOverrideRepository(db),
		Connection: repository.NewConnectionRepository(db),
		SyncRun:    repository.NewSyncRunRepository(db),
	}

	// -------- 平台客户端 --------
	shopifyClient := shopify.NewClient(getEnv("SHOPIFY_SHOP_DOMAIN", ""))
	ebayClient := ebay.NewClient(getEnv("EBAY_API_BASE", ""))

	// -------- 业务服务 --------
	services := &Services{}
	services.Mapping = service.NewMappingService(repos.Mapping, repos.Override)
	services.Listing = service.NewListingFieldService(services.Mapping)
	services.Pipeline = service.NewPipelineTracker()

	services.Token = service.NewTokenService(repos.Connection)
	services.Token.RegisterPinger(model.PlatformShopify, shopifyClient)
	services.Token.RegisterPinger(model.PlatformEbay, ebayClient)

	services.Facets = service.NewFacetService(shopifyClient, ebayClient)
	services.Sync = service.NewSyncService(services.Token, services.Facets.Steps(), repos.SyncRun)

	// -------- 默认规则 --------
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := services.Mapping.SeedDefaults(ctx); err != nil {
		log.Printf("警告: 默认规则初始化失败: %v", err)
	}

	deps := &Dependencies{
		DB:       db,
		Repos:    repos,
		Services: services,
	}

	// -------- Controller 层 --------
	deps.Controllers = &router.Controllers{
		Mapping:  controller.NewMappingController(services.Mapping, services.Listing),
		Pipeline: controller.NewPipelineController(services.Pipeline),
		Sync:     controller.NewSyncController(services.Sync, services.Token, repos.SyncRun, nil),
	}

	return deps
}

// initWatchTask 配置了 SYNC_INTERVAL_MINUTES 才进入 watch 模式
func initWatchTask(deps *Dependencies) {
	intervalStr := getEnv("SYNC_INTERVAL_MINUTES", "")
	if intervalStr == "" {
		log.Println("未配置轮询间隔，watch 模式关闭")
		return
	}

	interval, err := strconv.Atoi(intervalStr)
	if err != nil {
		log.Printf("警告: SYNC_INTERVAL_MINUTES=%q 不是有效数字，watch 模式关闭", intervalStr)
		return
	}

	watchTask, err := task.NewSyncWatchTask(deps.Services.Sync, interval, service.SyncOptions{
		DryRun: getEnv("SYNC_DRY_RUN", "") == "true",
	})
	if err != nil {
		log.Printf("警告: watch 任务创建失败: %v", err)
		return
	}
	if err := watchTask.Start(); err != nil {
		log.Printf("警告: watch 任务启动失败: %v", err)
		return
	}

	deps.WatchTask = watchTask
	// 让状态接口能看到 watch 运行情况
	deps.Controllers.Sync = controller.NewSyncController(
		deps.Services.Sync, deps.Services.Token, deps.Repos.SyncRun, watchTask)
}

// ==================== 服务启动 ====================

func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	if deps.WatchTask != nil {
		deps.WatchTask.Stop()
	}

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
