package routes

import (
	"net/http"

	"blockflow/accounts"
	"blockflow/catalog"
	"blockflow/controllers"
	"blockflow/middleware"
	"blockflow/orders"

	"github.com/gin-gonic/gin"
)

// Services are the application services the routes dispatch to.
type Services struct {
	Catalog  *catalog.Service
	Accounts *accounts.Service
	Orders   *orders.Service
}

func RegisterRoutes(r *gin.Engine, svc Services) {
	products := controllers.NewProductController(svc.Catalog)
	adminProducts := controllers.NewAdminProductController(svc.Catalog)
	auth := controllers.NewAuthController(svc.Accounts)
	adminUsers := controllers.NewAdminUserController(svc.Accounts)
	userOrders := controllers.NewOrderController(svc.Orders)
	adminOrders := controllers.NewAdminOrderController(svc.Orders)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", auth.Register)
		api.POST("/auth/login", auth.Login)

		catalogRoutes := api.Group("/products")
		{
			catalogRoutes.GET("", products.List)
			catalogRoutes.GET("/search", products.Search)
			catalogRoutes.GET("/search/keyword", products.SearchByKeyword)
			catalogRoutes.GET("/filter", products.Filter)
			catalogRoutes.GET("/sort", products.Sort)
			catalogRoutes.GET("/advanced-search", products.AdvancedSearch)
			catalogRoutes.GET("/categories", products.Categories)
			catalogRoutes.GET("/available", products.Available)
			catalogRoutes.GET("/:id", products.Get)
			catalogRoutes.POST("/:id/view", products.View)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(svc.Accounts))
		{
			protected.POST("/auth/logout", auth.Logout)

			orderRoutes := protected.Group("/orders")
			{
				orderRoutes.POST("", userOrders.Create)
				orderRoutes.GET("", userOrders.List)
				orderRoutes.GET("/:id", userOrders.Get)
				orderRoutes.PUT("/:id", userOrders.Update)
				orderRoutes.DELETE("/:id", userOrders.Delete)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.POST("/products", adminProducts.Create)
				admin.GET("/products", adminProducts.List)
				admin.PUT("/products/:id", adminProducts.Update)
				admin.DELETE("/products/:id", adminProducts.Delete)

				admin.GET("/users", adminUsers.List)
				admin.GET("/users/:id", adminUsers.Get)
				admin.POST("/users/:id/make-admin", adminUsers.MakeAdmin)
				admin.POST("/users/:id/remove-admin", adminUsers.RemoveAdmin)
				admin.POST("/users/:id/disable", adminUsers.Disable)
				admin.POST("/users/:id/enable", adminUsers.Enable)

				admin.GET("/orders", adminOrders.List)
				admin.GET("/orders/:id", adminOrders.Get)
				admin.PUT("/orders/:id/status", adminOrders.UpdateStatus)
				admin.PUT("/orders/:id/cancel", adminOrders.Cancel)
			}
		}
	}
}
