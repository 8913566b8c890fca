package router

import (
	"allegro_dev_v1_202608/internal/controller"
	"allegro_dev_v1_202608/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtl *controller.AuthController,
	orderCtl *controller.OrderController,
	offerCtl *controller.OfferController,
	saleCtl *controller.SaleController,
	userCtl *controller.UserController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 公开路由：登录与授权回调 (Allegro 回调带不了我们的 JWT)
	r.POST("/api/users/login", userCtl.Login)
	r.GET("/api/oauth/callback", authCtl.Callback)

	// 3. 登录后才能访问的 API 组
	api := r.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// oauth 授权组
		oauth := api.Group("/oauth")
		{
			// GET /api/oauth/login
			oauth.GET("/login", authCtl.Login)
			oauth.POST("/refresh", authCtl.Refresh)
			oauth.POST("/refresh-all", authCtl.RefreshAll)
		}

		// 订单组
		orders := api.Group("/orders")
		{
			orders.POST("/sync", orderCtl.Sync)
			orders.GET("", orderCtl.List)
			orders.GET("/:id", orderCtl.Detail)
		}

		// offer 发布
		offers := api.Group("/offers")
		{
			offers.POST("", offerCtl.Publish)
		}

		// 发布前置数据
		sale := api.Group("/sale")
		{
			sale.GET("/shipping-rates", saleCtl.ShippingRates)
			sale.GET("/categories", saleCtl.SearchCategories)
			sale.GET("/categories/:id/parameters", saleCtl.CategoryParameters)
		}

		// 用户管理 (仅管理员)
		users := api.Group("/users")
		users.Use(middleware.RequireRole("admin"))
		{
			users.POST("", userCtl.Create)
		}
	}
}
