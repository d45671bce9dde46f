package router

import (
	"pocketbook/api"
	"pocketbook/config"
	_ "pocketbook/docs"
	"pocketbook/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		passwordResetHandler := api.NewPasswordResetHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", middleware.LoginRateLimit(cfg.RateLimit), authHandler.Login)

			// 密码重置
			auth.POST("/password/request-reset", passwordResetHandler.RequestPasswordReset)
			auth.GET("/password/verify-token", passwordResetHandler.VerifyResetToken)
			auth.POST("/password/reset", passwordResetHandler.ResetPassword)
		}

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.Profile)

			// 支出分类
			categoryHandler := api.NewCategoryHandler()
			categories := authorized.Group("/categories")
			{
				categories.POST("", categoryHandler.Create)
				categories.GET("", categoryHandler.List)
				categories.GET("/:id", categoryHandler.Get)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			// 消费地点
			placeHandler := api.NewPlaceHandler()
			places := authorized.Group("/places")
			{
				places.POST("", placeHandler.Create)
				places.GET("", placeHandler.List)
				places.GET("/:id", placeHandler.Get)
				places.PUT("/:id", placeHandler.Update)
				places.DELETE("/:id", placeHandler.Delete)
			}

			// 收入来源
			incomeSourceHandler := api.NewIncomeSourceHandler()
			sources := authorized.Group("/income-sources")
			{
				sources.POST("", incomeSourceHandler.Create)
				sources.GET("", incomeSourceHandler.List)
				sources.GET("/:id", incomeSourceHandler.Get)
				sources.PUT("/:id", incomeSourceHandler.Update)
				sources.DELETE("/:id", incomeSourceHandler.Delete)
			}

			// 钱包
			pocketHandler := api.NewPocketHandler()
			pockets := authorized.Group("/pockets")
			{
				pockets.POST("", pocketHandler.Create)
				pockets.GET("", pocketHandler.List)
				pockets.GET("/:id", pocketHandler.Get)
				pockets.PUT("/:id", pocketHandler.Update)
				pockets.DELETE("/:id", pocketHandler.Delete)
			}

			// 提醒
			reminderHandler := api.NewReminderHandler()
			reminders := authorized.Group("/reminders")
			{
				reminders.POST("", reminderHandler.Create)
				reminders.GET("", reminderHandler.List)
				reminders.GET("/:id", reminderHandler.Get)
				reminders.PUT("/:id", reminderHandler.Update)
				reminders.DELETE("/:id", reminderHandler.Delete)
			}

			// 支出记录
			expenseHandler := api.NewExpenseHandler()
			expenses := authorized.Group("/expenses")
			{
				expenses.POST("", expenseHandler.Create)
				expenses.GET("", expenseHandler.List)
				expenses.GET("/options", expenseHandler.Options)
				expenses.GET("/:id", expenseHandler.Get)
				expenses.PUT("/:id", expenseHandler.Update)
				expenses.DELETE("/:id", expenseHandler.Delete)
			}

			// 收入记录
			incomeHandler := api.NewIncomeHandler()
			incomes := authorized.Group("/incomes")
			{
				incomes.POST("", incomeHandler.Create)
				incomes.GET("", incomeHandler.List)
				incomes.GET("/options", incomeHandler.Options)
				incomes.GET("/:id", incomeHandler.Get)
				incomes.PUT("/:id", incomeHandler.Update)
				incomes.DELETE("/:id", incomeHandler.Delete)
			}

			// 统计
			summaryHandler := api.NewSummaryHandler()
			statistics := authorized.Group("/statistics")
			{
				statistics.GET("/summary", summaryHandler.GetSummary)
				statistics.GET("/categories", summaryHandler.GetCategoryBreakdown)
			}

			// 导出
			exportHandler := api.NewExportHandler()
			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
