package routes

import (
	"github.com/CharlesX20/chimestradingstore/controllers"
	"github.com/CharlesX20/chimestradingstore/middleware"

	"github.com/gin-gonic/gin"
)

// Controllers groups every handler mounted under /api.
type Controllers struct {
	Auth      *controllers.AuthController
	Products  *controllers.ProductController
	Cart      *controllers.CartController
	Orders    *controllers.OrderController
	Analytics *controllers.AnalyticsController
}

// Guards are the middleware protecting routes. CheckoutLimit throttles the
// public checkout endpoint and may be nil.
type Guards struct {
	Protect       gin.HandlerFunc
	Admin         gin.HandlerFunc
	AuthLimit     gin.HandlerFunc
	CheckoutLimit gin.HandlerFunc
}

func RegisterRoutes(r *gin.Engine, ctrl Controllers, guards Guards) {
	api := r.Group("/api")
	api.Use(middleware.NoStore())

	authRoutes := api.Group("/auth")
	if guards.AuthLimit != nil {
		authRoutes.Use(guards.AuthLimit)
	}
	{
		authRoutes.POST("/signup", ctrl.Auth.Signup)
		authRoutes.POST("/login", ctrl.Auth.Login)
		authRoutes.POST("/logout", ctrl.Auth.Logout)
		authRoutes.POST("/refresh-token", ctrl.Auth.RefreshToken)
		authRoutes.GET("/profile", guards.Protect, ctrl.Auth.Profile)
	}

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", ctrl.Products.GetAll)
		productRoutes.GET("/featured", ctrl.Products.GetFeatured)
		productRoutes.GET("/category/:category", ctrl.Products.GetByCategory)
		productRoutes.GET("/recommendations", ctrl.Products.GetRecommendations)
		productRoutes.POST("", guards.Protect, guards.Admin, ctrl.Products.Create)
		productRoutes.PUT("/:id", guards.Protect, guards.Admin, ctrl.Products.Update)
		productRoutes.PATCH("/:id", guards.Protect, guards.Admin, ctrl.Products.ToggleFeatured)
		productRoutes.DELETE("/:id", guards.Protect, guards.Admin, ctrl.Products.Delete)
	}

	cartRoutes := api.Group("/cart")
	cartRoutes.Use(guards.Protect)
	{
		cartRoutes.GET("", ctrl.Cart.GetCart)
		cartRoutes.POST("", ctrl.Cart.AddItem)
		cartRoutes.PUT("/:id", ctrl.Cart.UpdateQuantity)
		cartRoutes.DELETE("", ctrl.Cart.RemoveItem)
	}

	orderRoutes := api.Group("/orders")
	{
		checkout := []gin.HandlerFunc{ctrl.Orders.CreateOrder}
		if guards.CheckoutLimit != nil {
			checkout = append([]gin.HandlerFunc{guards.CheckoutLimit}, checkout...)
		}
		orderRoutes.POST("", checkout...)
		orderRoutes.GET("", guards.Protect, guards.Admin, ctrl.Orders.ListOrders)
		orderRoutes.GET("/:id", guards.Protect, guards.Admin, ctrl.Orders.GetOrder)
	}

	api.GET("/analytics", guards.Protect, guards.Admin, ctrl.Analytics.GetDashboard)
}
