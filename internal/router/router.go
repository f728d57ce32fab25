package router

import (
	"github.com/gin-gonic/gin"

	"ebay_sync_v1_202608/internal/controller"
)

// Controllers 控制器集合
type Controllers struct {
	Mapping  *controller.MappingController
	Pipeline *controller.PipelineController
	Sync     *controller.SyncController
}

// SetupRouter 注册全部路由
func SetupRouter(c *Controllers) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		// mapping 映射规则
		mappings := api.Group("/mappings")
		{
			mappings.GET("", c.Mapping.ListMappings)
			mappings.POST("", c.Mapping.UpsertMapping)
			mappings.PATCH("/:id", c.Mapping.PatchMapping)
			mappings.POST("/import", c.Mapping.ImportMappings)
			mappings.POST("/resolve", c.Mapping.ResolveField)
			mappings.POST("/preview", c.Mapping.PreviewListingFields)
		}

		// override 商品级覆盖值
		products := api.Group("/products")
		{
			products.GET("/:product_id/overrides", c.Mapping.GetOverrides)
			products.PUT("/:product_id/overrides", c.Mapping.UpsertOverride)
			products.POST("/:product_id/overrides/bulk", c.Mapping.BulkUpsertOverrides)
			products.DELETE("/:product_id/overrides", c.Mapping.DeleteOverride)
		}

		// pipeline 刊登流水线
		pipeline := api.Group("/pipeline")
		{
			pipeline.POST("/jobs", c.Pipeline.CreateJob)
			pipeline.GET("/jobs", c.Pipeline.ListJobs)
			pipeline.GET("/jobs/:id", c.Pipeline.GetJob)
			pipeline.POST("/jobs/:id/start", c.Pipeline.StartJob)
			pipeline.PUT("/jobs/:id/steps", c.Pipeline.UpdateStep)
		}

		// sync 同步
		sync := api.Group("/sync")
		{
			sync.POST("/run", c.Sync.RunSync)
			sync.GET("/status", c.Sync.Status)
			sync.GET("/history", c.Sync.History)
		}
	}

	return r
}
